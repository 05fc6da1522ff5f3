// Package indicator implements the technical indicators consumed by the
// strategy variants as pure functions over candle history. Identical input
// always produces identical output; callers treat "not enough history" as
// no signal rather than an error.
package indicator

import (
	"math"

	"github.com/cabarcas/TradingBot/internal/market"
)

// EMA computes an exponential moving average with smoothing factor
// alpha = 2/(span+1), seeded with the first element. The first ~span values
// carry a warm-up bias; callers only consult steady-state values.
func EMA(series []float64, span int) []float64 {
	if len(series) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = series[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal line,
// both evaluated at the second-to-last element of the closed-candle series:
// the decision point is the candle before the one that just closed, so a
// freshly closed candle never moves the reported values.
//
// ok is false until the series covers the slow and signal spans.
func MACD(closes []float64, fastSpan, slowSpan, signalSpan int) (macd, signal float64, ok bool) {
	if fastSpan <= 0 || slowSpan <= 0 || signalSpan <= 0 {
		return 0, 0, false
	}
	if len(closes) < slowSpan+signalSpan || len(closes) < 2 {
		return 0, 0, false
	}
	fast := EMA(closes, fastSpan)
	slow := EMA(closes, slowSpan)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	sig := EMA(line, signalSpan)
	i := len(closes) - 2
	return line[i], sig[i], true
}

// RSI computes the relative strength index over per-step price deltas using
// a Wilder-style exponentially weighted mean of gains and losses with
// center-of-mass length-1. The result is rounded to two decimals and
// bounded to [0, 100].
//
// ok is false until at least length+1 closes exist (length deltas).
func RSI(closes []float64, length int) (float64, bool) {
	if length <= 0 || len(closes) < length+1 {
		return 0, false
	}

	// Adjusted EWM: avg = sum((1-a)^i * x) / sum((1-a)^i), computed by the
	// usual numerator/denominator recursion. alpha = 1/(1+com) with
	// com = length-1.
	alpha := 1.0 / float64(length)
	decay := 1 - alpha

	var gainNum, lossNum, den float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)

		gainNum = gain + decay*gainNum
		lossNum = loss + decay*lossNum
		den = 1 + decay*den
	}

	avgGain := gainNum / den
	avgLoss := lossNum / den

	var rsi float64
	if avgLoss == 0 {
		rsi = 100
	} else {
		rs := avgGain / avgLoss
		rsi = 100 - 100/(1+rs)
	}

	rsi = math.Round(rsi*100) / 100
	return math.Min(100, math.Max(0, rsi)), true
}

// Breakout signals long when the latest candle closes above the previous
// candle's high on volume above minVolume, and short when it closes below
// the previous low on the same volume condition. The latest candle may
// still be open; breakout strategies trade intrabar.
func Breakout(candles []market.Candle, minVolume float64) market.Signal {
	if len(candles) < 2 {
		return market.NoSignal
	}
	last := candles[len(candles)-1]
	prev := candles[len(candles)-2]

	if last.Volume <= minVolume {
		return market.NoSignal
	}
	if last.Close > prev.High {
		return market.SignalLong
	}
	if last.Close < prev.Low {
		return market.SignalShort
	}
	return market.NoSignal
}

// Closes extracts the close series from a candle sequence.
func Closes(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
