package candle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabarcas/TradingBot/internal/market"
)

const minute = int64(60_000)

func seeded(t *testing.T) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(minute, []market.Candle{
		{OpenTime: 0, Open: 100, High: 100, Low: 100, Close: 100, Volume: 0},
	})
	require.NoError(t, err)
	return agg
}

func TestNewAggregatorRequiresSeed(t *testing.T) {
	_, err := NewAggregator(minute, nil)
	require.ErrorIs(t, err, ErrNoSeed)

	_, err = NewAggregator(0, []market.Candle{{OpenTime: 0}})
	require.Error(t, err)
}

func TestSameCandleUpdatesInPlace(t *testing.T) {
	agg := seeded(t)

	ev, err := agg.IngestTick(101, 5, 30_000)
	require.NoError(t, err)
	require.Equal(t, SameCandle, ev.Kind)
	require.Equal(t, 1, agg.Len())

	last := agg.Last()
	require.Equal(t, market.Candle{OpenTime: 0, Open: 100, High: 101, Low: 100, Close: 101, Volume: 5}, last)

	// a lower print widens the low, never narrows the high
	ev, err = agg.IngestTick(99, 2, 45_000)
	require.NoError(t, err)
	require.Equal(t, SameCandle, ev.Kind)
	last = agg.Last()
	require.Equal(t, 101.0, last.High)
	require.Equal(t, 99.0, last.Low)
	require.Equal(t, 99.0, last.Close)
	require.Equal(t, 7.0, last.Volume)
}

func TestNewCandleSeedsWithTick(t *testing.T) {
	agg := seeded(t)

	ev, err := agg.IngestTick(99, 3, 61_000)
	require.NoError(t, err)
	require.Equal(t, NewCandle, ev.Kind)
	require.Equal(t, 2, agg.Len())
	require.Equal(t, market.Candle{OpenTime: 60_000, Open: 99, High: 99, Low: 99, Close: 99, Volume: 3}, agg.Last())
}

func TestGapFillSynthesizesFlatCandles(t *testing.T) {
	agg := seeded(t)

	_, err := agg.IngestTick(101, 5, 30_000)
	require.NoError(t, err)
	_, err = agg.IngestTick(99, 3, 61_000)
	require.NoError(t, err)

	ev, err := agg.IngestTick(105, 1, 185_000)
	require.NoError(t, err)
	require.Equal(t, GapFilled, ev.Kind)
	require.Equal(t, 1, ev.Missing)
	require.Equal(t, 4, agg.Len())

	candles := agg.Candles()
	require.Equal(t, market.Candle{OpenTime: 120_000, Open: 99, High: 99, Low: 99, Close: 99, Volume: 0}, candles[2])
	require.Equal(t, market.Candle{OpenTime: 180_000, Open: 105, High: 105, Low: 105, Close: 105, Volume: 1}, candles[3])
}

func TestGapFillTwoMissingIntervals(t *testing.T) {
	// interval 60s, last candle at t=0, tick at t=185s: two synthetic
	// candles at 60s and 120s, then a real one at 180s.
	agg := seeded(t)

	ev, err := agg.IngestTick(105, 2, 185_000)
	require.NoError(t, err)
	require.Equal(t, GapFilled, ev.Kind)
	require.Equal(t, 2, ev.Missing)

	candles := agg.Candles()
	require.Len(t, candles, 4)
	for _, flat := range candles[1:3] {
		require.Equal(t, 100.0, flat.Open)
		require.Equal(t, 100.0, flat.Close)
		require.Zero(t, flat.Volume)
	}
	require.Equal(t, int64(60_000), candles[1].OpenTime)
	require.Equal(t, int64(120_000), candles[2].OpenTime)
	require.Equal(t, int64(180_000), candles[3].OpenTime)
}

func TestOpenTimesStrictlyIncreaseByInterval(t *testing.T) {
	agg := seeded(t)

	ticks := []struct {
		price float64
		ts    int64
	}{
		{101, 10_000}, {102, 59_999}, {103, 60_000}, {99, 100_000},
		{98, 250_000}, {97, 250_500}, {105, 400_000}, {104, 401_000},
	}
	for _, tk := range ticks {
		_, err := agg.IngestTick(tk.price, 1, tk.ts)
		require.NoError(t, err)
	}

	candles := agg.Candles()
	for i := 1; i < len(candles); i++ {
		require.Equal(t, candles[i-1].OpenTime+minute, candles[i].OpenTime,
			"gap or misordering at index %d", i)
	}
}

func TestClosedExcludesOpenCandle(t *testing.T) {
	agg := seeded(t)
	_, err := agg.IngestTick(101, 1, 61_000)
	require.NoError(t, err)

	require.Equal(t, 2, agg.Len())
	closed := agg.Closed()
	require.Len(t, closed, 1)
	require.Equal(t, int64(0), closed[0].OpenTime)
}

func TestSnapshotIsACopy(t *testing.T) {
	agg := seeded(t)
	snap := agg.Snapshot()
	snap[0].Close = -1

	require.Equal(t, 100.0, agg.Last().Close)
}
