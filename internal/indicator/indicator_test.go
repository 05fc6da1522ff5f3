package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabarcas/TradingBot/internal/market"
)

func TestEMASeedsWithFirstValue(t *testing.T) {
	out := EMA([]float64{10, 20, 30}, 9)
	require.Len(t, out, 3)
	require.Equal(t, 10.0, out[0])

	// alpha = 2/10 = 0.2
	require.InDelta(t, 10*0.8+20*0.2, out[1], 1e-9)
	require.InDelta(t, out[1]*0.8+30*0.2, out[2], 1e-9)
}

func TestEMAEmptyAndInvalidSpan(t *testing.T) {
	require.Nil(t, EMA(nil, 9))
	require.Nil(t, EMA([]float64{1}, 0))
}

func TestMACDRequiresHistory(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	_, _, ok := MACD(closes, 12, 26, 9)
	require.False(t, ok, "20 closes should not satisfy a 26+9 requirement")
}

func TestMACDDeterministicAndUsesSecondToLast(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*float64(i%7)
	}

	m1, s1, ok := MACD(closes, 12, 26, 9)
	require.True(t, ok)
	m2, s2, ok := MACD(closes, 12, 26, 9)
	require.True(t, ok)
	require.Equal(t, m1, m2)
	require.Equal(t, s1, s2)

	// changing only the final close must not move the reported values:
	// they are evaluated at the second-to-last element.
	mutated := append([]float64(nil), closes...)
	mutated[len(mutated)-1] += 50
	m3, s3, ok := MACD(mutated, 12, 26, 9)
	require.True(t, ok)
	require.Equal(t, m1, m3)
	require.Equal(t, s1, s3)
}

func TestRSIRequiresLengthPlusOne(t *testing.T) {
	closes := []float64{1, 2, 3}
	_, ok := RSI(closes, 14)
	require.False(t, ok)

	closes = make([]float64, 15)
	for i := range closes {
		closes[i] = float64(i)
	}
	_, ok = RSI(closes, 14)
	require.True(t, ok, "length+1 closes is the minimum history")
}

func TestRSIBounds(t *testing.T) {
	up := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	rsi, ok := RSI(up, 14)
	require.True(t, ok)
	require.Equal(t, 100.0, rsi, "monotonic gains have no losses")

	down := make([]float64, 30)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	rsi, ok = RSI(down, 14)
	require.True(t, ok)
	require.Equal(t, 0.0, rsi, "monotonic losses have no gains")
}

func TestRSIBalancedSeriesNearFifty(t *testing.T) {
	// strict alternation of equal gains and losses
	closes := make([]float64, 31)
	for i := range closes {
		closes[i] = 100
		if i%2 == 1 {
			closes[i] = 101
		}
	}
	rsi, ok := RSI(closes, 14)
	require.True(t, ok)
	require.InDelta(t, 50, rsi, 5)
}

func TestRSIDeterministic(t *testing.T) {
	closes := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22}
	a, ok := RSI(closes, 14)
	require.True(t, ok)
	b, ok := RSI(append([]float64(nil), closes...), 14)
	require.True(t, ok)
	require.Equal(t, a, b)
	require.GreaterOrEqual(t, a, 0.0)
	require.LessOrEqual(t, a, 100.0)
}

func breakoutCandles(prevHigh, prevLow, lastClose, lastVolume float64) []market.Candle {
	return []market.Candle{
		{OpenTime: 0, Open: 100, High: prevHigh, Low: prevLow, Close: 100, Volume: 10},
		{
			OpenTime: 60_000,
			Open:     100,
			High:     math.Max(100, lastClose),
			Low:      math.Min(100, lastClose),
			Close:    lastClose,
			Volume:   lastVolume,
		},
	}
}

func TestBreakoutLong(t *testing.T) {
	sig := Breakout(breakoutCandles(105, 95, 106, 50), 20)
	require.Equal(t, market.SignalLong, sig)
}

func TestBreakoutShort(t *testing.T) {
	sig := Breakout(breakoutCandles(105, 95, 94, 50), 20)
	require.Equal(t, market.SignalShort, sig)
}

func TestBreakoutInsideRangeOrThinVolume(t *testing.T) {
	require.Equal(t, market.NoSignal, Breakout(breakoutCandles(105, 95, 100, 50), 20))
	require.Equal(t, market.NoSignal, Breakout(breakoutCandles(105, 95, 106, 20), 20), "volume must exceed the floor strictly")
	require.Equal(t, market.NoSignal, Breakout(breakoutCandles(105, 95, 106, 50)[:1], 20), "needs two candles")
}
