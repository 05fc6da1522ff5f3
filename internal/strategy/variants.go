// Package strategy contains the signal controllers that decide, per candle
// event, whether to open a position, plus the instance type that owns a
// strategy's candles, trades, and position gate.
package strategy

import (
	"strings"

	"github.com/cabarcas/TradingBot/internal/candle"
	"github.com/cabarcas/TradingBot/internal/indicator"
	"github.com/cabarcas/TradingBot/internal/market"
)

// Variant is the closed set of signal controllers. Evaluate inspects the
// candle history after an ingest event and returns a directional bias.
type Variant interface {
	Name() string
	Evaluate(agg *candle.Aggregator, ev candle.Event) market.Signal
}

// Params expresses the tunable knobs required by variant constructors.
type Params struct {
	EMAFast   int
	EMASlow   int
	EMASignal int
	RSILength int
	MinVolume float64
}

// Build returns the variant implementation matching the configured name.
func Build(variant string, params Params) Variant {
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "breakout":
		return NewBreakout(params.MinVolume)
	default:
		return NewTechnical(params.EMAFast, params.EMASlow, params.EMASignal, params.RSILength)
	}
}

// Technical combines RSI and MACD, evaluated once per closed candle:
// oversold RSI with a MACD line above its signal goes long, overbought RSI
// with MACD below signal goes short.
type Technical struct {
	emaFast   int
	emaSlow   int
	emaSignal int
	rsiLength int
}

// NewTechnical builds the RSI+MACD variant, defaulting unset spans to the
// conventional 12/26/9 MACD and 14-period RSI.
func NewTechnical(emaFast, emaSlow, emaSignal, rsiLength int) *Technical {
	if emaFast <= 0 {
		emaFast = 12
	}
	if emaSlow <= 0 {
		emaSlow = 26
	}
	if emaSignal <= 0 {
		emaSignal = 9
	}
	if rsiLength <= 0 {
		rsiLength = 14
	}
	return &Technical{emaFast: emaFast, emaSlow: emaSlow, emaSignal: emaSignal, rsiLength: rsiLength}
}

// Name returns the identifier for the variant.
func (t *Technical) Name() string { return "technical" }

// Evaluate runs only on candle-close boundaries; mid-candle ticks never
// produce a signal. Insufficient indicator history is "no signal".
func (t *Technical) Evaluate(agg *candle.Aggregator, ev candle.Event) market.Signal {
	if !ev.Closed() {
		return market.NoSignal
	}

	closes := indicator.Closes(agg.Closed())
	rsi, ok := indicator.RSI(closes, t.rsiLength)
	if !ok {
		return market.NoSignal
	}
	macdLine, signalLine, ok := indicator.MACD(closes, t.emaFast, t.emaSlow, t.emaSignal)
	if !ok {
		return market.NoSignal
	}

	if rsi < 30 && macdLine > signalLine {
		return market.SignalLong
	}
	if rsi > 70 && macdLine < signalLine {
		return market.SignalShort
	}
	return market.NoSignal
}

// Breakout trades intrabar: every tick it checks whether the current candle
// has cleared the previous candle's range on sufficient volume.
type Breakout struct {
	minVolume float64
}

// NewBreakout builds the volume-gated breakout variant.
func NewBreakout(minVolume float64) *Breakout {
	return &Breakout{minVolume: minVolume}
}

// Name returns the identifier for the variant.
func (b *Breakout) Name() string { return "breakout" }

// Evaluate checks the still-open candle against the previous one on every
// event kind.
func (b *Breakout) Evaluate(agg *candle.Aggregator, ev candle.Event) market.Signal {
	return indicator.Breakout(agg.Candles(), b.minVolume)
}
