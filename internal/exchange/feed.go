package exchange

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/cabarcas/TradingBot/internal/market"
)

const (
	// ProviderStub emits deterministic synthetic ticks (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance streams live trades from Binance public websockets.
	ProviderBinance = "binance"
)

// Feed is a pluggable per-contract tick source.
type Feed struct {
	provider     string
	log          zerolog.Logger
	stubInterval time.Duration
}

// FeedOption configures Feed construction parameters.
type FeedOption func(*Feed)

// WithStubInterval overrides the synthetic tick cadence.
func WithStubInterval(d time.Duration) FeedOption {
	return func(f *Feed) {
		if d > 0 {
			f.stubInterval = d
		}
	}
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, log zerolog.Logger, opts ...FeedOption) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:     provider,
		log:          log,
		stubInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run pushes ticks for one symbol onto the provided channel until the
// context is cancelled.
func (f *Feed) Run(ctx context.Context, symbol string, out chan<- market.Tick) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, symbol, out)
	default:
		return f.runStub(ctx, symbol, out)
	}
}

// runStub walks a synthetic price around a per-symbol base so offline runs
// produce plausible candles.
func (f *Feed) runStub(ctx context.Context, symbol string, out chan<- market.Tick) error {
	ticker := time.NewTicker(f.stubInterval)
	defer ticker.Stop()

	base := stubBasePrice(symbol)
	step := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			step++
			px := base * (1 + 0.002*math.Sin(float64(step)/7) + 0.0005*math.Sin(float64(step)/3))
			tick := market.Tick{
				Symbol:    symbol,
				Price:     px,
				Size:      1,
				Timestamp: ts.UnixMilli(),
			}
			select {
			case out <- tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// stubBasePrice derives a stable base price from the symbol so distinct
// instruments do not share a tape.
func stubBasePrice(symbol string) float64 {
	var h uint32
	for _, r := range symbol {
		h = h*31 + uint32(r)
	}
	return 100 + float64(h%9000)
}
