// Package engine wires the tick feed to strategy instances: it bootstraps
// each instance with historical candles, fans venue trade streams into a
// single channel, and drives the per-tick pipeline until shutdown.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cabarcas/TradingBot/internal/config"
	"github.com/cabarcas/TradingBot/internal/exchange"
	"github.com/cabarcas/TradingBot/internal/execution"
	"github.com/cabarcas/TradingBot/internal/market"
	"github.com/cabarcas/TradingBot/internal/metrics"
	"github.com/cabarcas/TradingBot/internal/sink"
	"github.com/cabarcas/TradingBot/internal/strategy"
)

// Engine routes venue ticks to the strategy instances trading each symbol.
type Engine struct {
	gw        exchange.Gateway
	log       zerolog.Logger
	instances map[string][]*strategy.Instance
	contracts map[string]market.Contract
}

// New creates an engine over the given gateway.
func New(gw exchange.Gateway, log zerolog.Logger) *Engine {
	return &Engine{
		gw:        gw,
		log:       log,
		instances: make(map[string][]*strategy.Instance),
		contracts: make(map[string]market.Contract),
	}
}

// Register adds a bootstrapped instance. Multiple instances may trade the
// same symbol on different timeframes or variants; they share one stream.
func (e *Engine) Register(contract market.Contract, inst *strategy.Instance) {
	e.instances[contract.Symbol] = append(e.instances[contract.Symbol], inst)
	e.contracts[contract.Symbol] = contract
}

// Instances returns every registered instance.
func (e *Engine) Instances() []*strategy.Instance {
	var out []*strategy.Instance
	for _, list := range e.instances {
		out = append(out, list...)
	}
	return out
}

// Run streams trades for every registered contract and dispatches each tick
// serially to the instances on that symbol. It blocks until the context is
// cancelled or a stream or precondition failure ends the run.
func (e *Engine) Run(ctx context.Context) error {
	if len(e.instances) == 0 {
		return fmt.Errorf("engine: no strategy instances registered")
	}

	ticks := make(chan market.Tick, 1024)
	errCh := make(chan error, len(e.contracts))

	for _, contract := range e.contracts {
		contract := contract
		go func() {
			if err := e.gw.StreamTrades(ctx, contract, ticks); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("stream %s: %w", contract.Symbol, err)
			}
		}()
	}

	e.log.Info().Int("symbols", len(e.contracts)).Msg("engine started")

	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("engine shutting down")
			return nil
		case err := <-errCh:
			return err
		case t := <-ticks:
			metrics.TicksTotal.WithLabelValues(t.Symbol).Inc()
			for _, inst := range e.instances[t.Symbol] {
				if err := inst.OnTick(ctx, t); err != nil {
					// An ingest error is a bootstrap/programming bug, not a
					// transient venue failure; stop instead of retrying.
					return fmt.Errorf("instance %s: %w", inst.Name(), err)
				}
			}
		}
	}
}

// FromConfig bootstraps instances for every configured strategy and
// registers them on a new engine. Bootstrap failures are fatal: streaming
// without a seed candle violates the aggregator's precondition.
func FromConfig(ctx context.Context, cfg *config.Config, gw exchange.Gateway, exec *execution.Manager, log zerolog.Logger, snk sink.Sink) (*Engine, error) {
	e := New(gw, log)
	for _, sc := range cfg.Strategies {
		contract := sc.Contract()
		tf := market.Timeframe(sc.Timeframe)

		seed, err := gw.GetHistoricalCandles(ctx, contract, tf)
		if err != nil {
			return nil, fmt.Errorf("historical candles for %s %s: %w", contract.Symbol, tf, err)
		}

		variant := strategy.Build(sc.Variant, strategy.Params{
			EMAFast:   sc.Params.EMAFast,
			EMASlow:   sc.Params.EMASlow,
			EMASignal: sc.Params.EMASignal,
			RSILength: sc.Params.RSILength,
			MinVolume: sc.Params.MinVolume,
		})

		inst, err := strategy.NewInstance(
			cfg.Exchange.Name,
			contract,
			tf,
			strategy.RiskParams{
				BalancePct: sc.BalancePct,
				TakeProfit: sc.TakeProfit,
				StopLoss:   sc.StopLoss,
			},
			variant,
			seed,
			exec,
			log,
			snk,
		)
		if err != nil {
			return nil, err
		}
		e.Register(contract, inst)
		log.Info().
			Str("strategy", inst.Name()).
			Int("seed_candles", len(seed)).
			Msg("strategy bootstrapped")
	}
	return e, nil
}
