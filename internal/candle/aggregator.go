// Package candle turns an ordered trade stream into fixed-interval OHLCV
// candles, synthesizing flat candles for silent intervals.
package candle

import (
	"errors"
	"fmt"

	"github.com/cabarcas/TradingBot/internal/market"
)

// EventKind classifies what a tick did to the candle sequence.
type EventKind int

const (
	// SameCandle means the tick updated the still-open candle in place.
	SameCandle EventKind = iota
	// NewCandle means the tick opened the next candle and closed the previous one.
	NewCandle
	// GapFilled means one or more silent intervals were back-filled with flat
	// candles before the tick opened a real one.
	GapFilled
)

func (k EventKind) String() string {
	switch k {
	case SameCandle:
		return "same_candle"
	case NewCandle:
		return "new_candle"
	case GapFilled:
		return "gap_filled"
	default:
		return "unknown"
	}
}

// Event describes the outcome of ingesting one tick. Missing is non-zero
// only for GapFilled events.
type Event struct {
	Kind    EventKind
	Missing int
}

// Closed reports whether the event closed at least one candle, which is the
// boundary candle-close strategies evaluate on.
func (e Event) Closed() bool {
	return e.Kind == NewCandle || e.Kind == GapFilled
}

// ErrNoSeed is returned when a tick arrives before the sequence was
// bootstrapped with at least one historical candle.
var ErrNoSeed = errors.New("candle: tick before seed candle, bootstrap required")

// Aggregator owns an ordered candle sequence for one (symbol, timeframe)
// pair. It is not safe for concurrent use; the owning strategy instance
// serializes access.
type Aggregator struct {
	intervalMs int64
	candles    []market.Candle
}

// NewAggregator seeds an aggregator with historical candles. The sequence
// must be non-empty: the ingest algorithm is defined relative to the most
// recent candle.
func NewAggregator(intervalMs int64, seed []market.Candle) (*Aggregator, error) {
	if intervalMs <= 0 {
		return nil, fmt.Errorf("candle: invalid interval %dms", intervalMs)
	}
	if len(seed) == 0 {
		return nil, ErrNoSeed
	}
	candles := make([]market.Candle, len(seed))
	copy(candles, seed)
	return &Aggregator{intervalMs: intervalMs, candles: candles}, nil
}

// IntervalMs returns the candle interval in milliseconds.
func (a *Aggregator) IntervalMs() int64 { return a.intervalMs }

// IngestTick folds one trade into the sequence and reports what happened.
//
// Three cases, decided by comparing the tick timestamp against the open time
// of the most recent candle:
//   - tick inside the open candle's interval: update it in place
//   - tick in the immediately following interval: open a new candle
//   - tick two or more intervals ahead: back-fill flat candles, then open
func (a *Aggregator) IngestTick(price, size float64, timestampMs int64) (Event, error) {
	if len(a.candles) == 0 {
		return Event{}, ErrNoSeed
	}

	last := &a.candles[len(a.candles)-1]

	switch {
	case timestampMs < last.OpenTime+a.intervalMs:
		last.Close = price
		last.Volume += size
		if price > last.High {
			last.High = price
		}
		if price < last.Low {
			last.Low = price
		}
		return Event{Kind: SameCandle}, nil

	case timestampMs >= last.OpenTime+2*a.intervalMs:
		missing := int((timestampMs-last.OpenTime)/a.intervalMs) - 1
		for i := 0; i < missing; i++ {
			flat := market.Candle{
				OpenTime: last.OpenTime + a.intervalMs,
				Open:     last.Close,
				High:     last.Close,
				Low:      last.Close,
				Close:    last.Close,
				Volume:   0,
			}
			a.candles = append(a.candles, flat)
			last = &a.candles[len(a.candles)-1]
		}
		a.candles = append(a.candles, seedCandle(last.OpenTime+a.intervalMs, price, size))
		return Event{Kind: GapFilled, Missing: missing}, nil

	default:
		a.candles = append(a.candles, seedCandle(last.OpenTime+a.intervalMs, price, size))
		return Event{Kind: NewCandle}, nil
	}
}

func seedCandle(openTime int64, price, size float64) market.Candle {
	return market.Candle{
		OpenTime: openTime,
		Open:     price,
		High:     price,
		Low:      price,
		Close:    price,
		Volume:   size,
	}
}

// Len returns the number of candles in the sequence.
func (a *Aggregator) Len() int { return len(a.candles) }

// Last returns the still-open candle.
func (a *Aggregator) Last() market.Candle {
	return a.candles[len(a.candles)-1]
}

// Candles exposes the full sequence, open candle included. Callers must not
// mutate it; Snapshot returns a copy when one is needed.
func (a *Aggregator) Candles() []market.Candle {
	return a.candles
}

// Closed returns the immutable prefix of the sequence, excluding the
// still-open candle. This is the history indicators read.
func (a *Aggregator) Closed() []market.Candle {
	return a.candles[:len(a.candles)-1]
}

// Snapshot returns a copy of the sequence safe to hand to observers.
func (a *Aggregator) Snapshot() []market.Candle {
	out := make([]market.Candle, len(a.candles))
	copy(out, a.candles)
	return out
}
