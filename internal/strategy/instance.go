package strategy

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cabarcas/TradingBot/internal/candle"
	"github.com/cabarcas/TradingBot/internal/execution"
	"github.com/cabarcas/TradingBot/internal/ledger"
	"github.com/cabarcas/TradingBot/internal/market"
	"github.com/cabarcas/TradingBot/internal/metrics"
	"github.com/cabarcas/TradingBot/internal/sink"
)

// RiskParams sizes and brackets every position the instance opens.
type RiskParams struct {
	BalancePct float64
	TakeProfit float64
	StopLoss   float64
}

// Instance owns the full state of one (symbol, timeframe, variant) strategy:
// its candle sequence, its trade ledger, and the one-position-at-a-time
// gate. The feed path (OnTick) runs under the instance mutex; fill polls
// touch only the ledger, which carries its own lock, and release the gate
// through releaseGate.
type Instance struct {
	name         string
	exchangeName string
	contract     market.Contract
	tf           market.Timeframe
	risk         RiskParams
	variant      Variant

	mu      sync.Mutex
	agg     *candle.Aggregator
	book    *ledger.Ledger
	ongoing bool

	exec *execution.Manager
	log  zerolog.Logger
	snk  sink.Sink
}

// NewInstance bootstraps a strategy instance from historical seed candles.
// The seed must be non-empty; tick ingestion is undefined without it.
func NewInstance(
	exchangeName string,
	contract market.Contract,
	tf market.Timeframe,
	risk RiskParams,
	variant Variant,
	seed []market.Candle,
	exec *execution.Manager,
	log zerolog.Logger,
	snk sink.Sink,
) (*Instance, error) {
	interval, err := tf.IntervalMs()
	if err != nil {
		return nil, err
	}
	agg, err := candle.NewAggregator(interval, seed)
	if err != nil {
		return nil, fmt.Errorf("bootstrap %s %s: %w", contract.Symbol, tf, err)
	}
	name := fmt.Sprintf("%s-%s-%s", variant.Name(), contract.Symbol, tf)
	return &Instance{
		name:         name,
		exchangeName: exchangeName,
		contract:     contract,
		tf:           tf,
		risk:         risk,
		variant:      variant,
		agg:          agg,
		book:         ledger.New(16),
		exec:         exec,
		log:          log.With().Str("strategy", name).Logger(),
		snk:          snk,
	}, nil
}

// Name returns the instance identifier used in logs and snapshots.
func (s *Instance) Name() string { return s.name }

// Symbol returns the contract symbol this instance trades.
func (s *Instance) Symbol() string { return s.contract.Symbol }

// Ledger exposes the instance's trade book, e.g. for reporting.
func (s *Instance) Ledger() *ledger.Ledger { return s.book }

// OnTick drives the full per-tick pipeline: aggregate the trade, evaluate
// the variant, and open a position when a signal fires and no position is
// ongoing. It is called serially from the feed context.
func (s *Instance) OnTick(ctx context.Context, t market.Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.agg.IngestTick(t.Price, t.Size, t.Timestamp)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case candle.NewCandle:
		metrics.CandlesTotal.WithLabelValues(s.contract.Symbol, string(s.tf)).Inc()
		s.addLog(fmt.Sprintf("%s new candle for %s %s", s.exchangeName, s.contract.Symbol, s.tf))
	case candle.GapFilled:
		metrics.CandlesTotal.WithLabelValues(s.contract.Symbol, string(s.tf)).Inc()
		metrics.GapCandlesTotal.WithLabelValues(s.contract.Symbol, string(s.tf)).Add(float64(ev.Missing))
		s.addLog(fmt.Sprintf("%s missing %d candles for %s %s", s.exchangeName, ev.Missing, s.contract.Symbol, s.tf))
	}

	if sig := s.variant.Evaluate(s.agg, ev); sig != market.NoSignal && !s.ongoing {
		s.openPosition(ctx, sig)
	}

	s.publish()
	return nil
}

// openPosition submits the entry and engages the gate on success. The gate
// engages at submission, not at fill, so a second signal cannot double-enter
// while the first order is in flight. Caller holds s.mu.
func (s *Instance) openPosition(ctx context.Context, sig market.Signal) {
	req := execution.OpenRequest{
		Contract:       s.contract,
		Side:           sig.Side(),
		BalancePct:     s.risk.BalancePct,
		ReferencePrice: s.agg.Last().Close,
		Strategy:       s.name,
	}
	if err := s.exec.OpenPosition(ctx, req, s.book, s.releaseGate); err != nil {
		s.addLog(fmt.Sprintf("failed to open %s position on %s: %v", sig, s.contract.Symbol, err))
		return
	}
	s.ongoing = true
	s.addLog(fmt.Sprintf("opening %s position on %s (%s)", sig, s.contract.Symbol, s.tf))
}

// releaseGate clears the ongoing-position gate. It runs on the fill-poll
// goroutine when the venue reports a terminal canceled/rejected state.
func (s *Instance) releaseGate() {
	s.mu.Lock()
	s.ongoing = false
	s.mu.Unlock()
	s.addLog(fmt.Sprintf("order for %s ended without fill, gate released", s.contract.Symbol))
}

// Snapshot returns a read-only copy of the instance state for observers.
func (s *Instance) Snapshot() sink.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Instance) snapshotLocked() sink.Snapshot {
	return sink.Snapshot{
		Strategy:        s.name,
		Candles:         s.agg.Snapshot(),
		Trades:          s.book.Snapshot(),
		OngoingPosition: s.ongoing,
	}
}

// publish refreshes the presentation sink after a tick-processing step.
// Caller holds s.mu.
func (s *Instance) publish() {
	s.snk.Publish(s.snapshotLocked())
}

func (s *Instance) addLog(text string) {
	s.log.Info().Msg(text)
	s.snk.Log(s.name, text)
}
