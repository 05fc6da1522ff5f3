// Package market standardizes payloads shared between data ingestion,
// strategy, and execution layers.
package market

import "fmt"

// Side enumerates trade directions.
type Side string

const (
	// Long indicates a buy-side entry.
	Long Side = "LONG"
	// Short indicates a sell-side entry.
	Short Side = "SHORT"
)

// Signal expresses the directional bias produced by a strategy variant.
type Signal int

const (
	// NoSignal means the strategy has nothing to act on.
	NoSignal Signal = iota
	// SignalLong requests a long entry.
	SignalLong
	// SignalShort requests a short entry.
	SignalShort
)

// Side maps a directional signal onto an order side.
func (s Signal) Side() Side {
	if s == SignalShort {
		return Short
	}
	return Long
}

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	default:
		return "none"
	}
}

// Tick models a single trade execution event from a venue stream.
type Tick struct {
	Symbol    string
	Price     float64
	Size      float64
	Timestamp int64 // milliseconds since epoch
}

// Candle is a fixed-interval OHLCV aggregate of trades. A candle is mutable
// only while it is the most recent one in a sequence; once superseded it
// must be treated as immutable.
type Candle struct {
	OpenTime int64 // milliseconds since epoch
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Contract identifies a tradable instrument and the settlement parameters
// the venue needs for position sizing.
type Contract struct {
	Symbol     string
	Multiplier float64
	// Inverse marks contracts settled in the base asset (e.g. XBTUSD).
	Inverse bool
	// Quanto marks contracts with a fixed multiplier in a third currency.
	Quanto bool
}

// OrderState enumerates the lifecycle states a venue reports for an order.
type OrderState string

const (
	OrderSubmitted OrderState = "submitted"
	OrderFilled    OrderState = "filled"
	OrderCanceled  OrderState = "canceled"
	OrderRejected  OrderState = "rejected"
)

// Terminal reports whether the state ends the order lifecycle without a fill.
func (s OrderState) Terminal() bool {
	return s == OrderCanceled || s == OrderRejected
}

// OrderStatus is the venue's view of an order. AvgFillPrice is zero until
// the venue reports a fill.
type OrderStatus struct {
	OrderID      string
	State        OrderState
	AvgFillPrice float64
}

// Timeframe names a candle interval (1m, 5m, 15m, 30m, 1h, 4h).
type Timeframe string

var tfIntervalMs = map[Timeframe]int64{
	"1m":  60_000,
	"5m":  300_000,
	"15m": 900_000,
	"30m": 1_800_000,
	"1h":  3_600_000,
	"4h":  14_400_000,
}

// IntervalMs returns the timeframe length in milliseconds.
func (tf Timeframe) IntervalMs() (int64, error) {
	ms, ok := tfIntervalMs[tf]
	if !ok {
		return 0, fmt.Errorf("unknown timeframe %q", tf)
	}
	return ms, nil
}

// Valid reports whether the timeframe is one the aggregator supports.
func (tf Timeframe) Valid() bool {
	_, ok := tfIntervalMs[tf]
	return ok
}
