// Package execution handles the order lifecycle: sizing, submission, and
// fill tracking against the venue gateway.
package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cabarcas/TradingBot/internal/exchange"
	"github.com/cabarcas/TradingBot/internal/ledger"
	"github.com/cabarcas/TradingBot/internal/market"
	"github.com/cabarcas/TradingBot/internal/metrics"
)

// DefaultPollInterval is the delay between order status checks while a fill
// is pending.
const DefaultPollInterval = 2 * time.Second

// OpenRequest carries everything needed to open one position.
type OpenRequest struct {
	Contract       market.Contract
	Side           market.Side
	BalancePct     float64
	ReferencePrice float64
	Strategy       string
}

// Manager submits market orders and resolves their fills. Gateway calls are
// paced by a shared limiter so status polls for many in-flight orders
// cannot hammer the venue.
type Manager struct {
	gw           exchange.Gateway
	log          zerolog.Logger
	limiter      *rate.Limiter
	pollInterval time.Duration
	journal      *ledger.JSONLJournal
}

// Option configures Manager construction.
type Option func(*Manager)

// WithPollInterval overrides the fill poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithGatewayRate overrides the gateway call pacing.
func WithGatewayRate(perSec float64, burst int) Option {
	return func(m *Manager) {
		if perSec > 0 && burst > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// WithJournal attaches a trade journal recording every submitted trade.
func WithJournal(j *ledger.JSONLJournal) Option {
	return func(m *Manager) { m.journal = j }
}

// NewManager builds an order lifecycle manager over the given gateway.
func NewManager(gw exchange.Gateway, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		gw:           gw,
		log:          log,
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OpenPosition sizes and submits a market order, appends the resulting
// trade to the book, and resolves the entry price: synchronously when the
// venue reports an immediate fill, otherwise via a recurring status poll.
//
// Sizing or submission failures abort before any state is committed, so the
// caller must not engage its position gate when an error is returned.
// onRejected is invoked (from the poll goroutine) when the venue reports a
// terminal canceled/rejected state, letting the caller release its gate.
func (m *Manager) OpenPosition(ctx context.Context, req OpenRequest, book *ledger.Ledger, onRejected func()) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	qty, err := m.gw.PositionSize(ctx, req.Contract, req.ReferencePrice, req.BalancePct)
	if err != nil {
		m.log.Error().Err(err).Str("symbol", req.Contract.Symbol).Msg("position sizing failed")
		return fmt.Errorf("size position: %w", err)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	status, err := m.gw.PlaceOrder(ctx, req.Contract, exchange.OrderTypeMarket, qty, req.Side)
	if err != nil {
		m.log.Error().Err(err).Str("symbol", req.Contract.Symbol).Msg("order submission failed")
		return fmt.Errorf("place order: %w", err)
	}
	if status == nil {
		m.log.Error().Str("symbol", req.Contract.Symbol).Msg("order submission returned no result")
		return fmt.Errorf("place order: no result from venue")
	}
	if status.State.Terminal() {
		m.log.Warn().
			Str("symbol", req.Contract.Symbol).
			Str("order_id", status.OrderID).
			Str("state", string(status.State)).
			Msg("order refused by venue")
		return fmt.Errorf("order %s %s by venue", status.OrderID, status.State)
	}

	trade := ledger.Trade{
		OpenTime: time.Now().UnixMilli(),
		Side:     string(req.Side),
		Status:   ledger.StatusOpen,
		Quantity: float64(qty),
		Strategy: req.Strategy,
		OrderID:  status.OrderID,
	}
	book.Append(trade)
	metrics.OrdersTotal.WithLabelValues(req.Contract.Symbol, string(req.Side)).Inc()
	if m.journal != nil {
		m.journal.Record(trade)
	}

	m.log.Info().
		Str("symbol", req.Contract.Symbol).
		Str("side", string(req.Side)).
		Int64("qty", qty).
		Str("order_id", status.OrderID).
		Str("strategy", req.Strategy).
		Msg("order submitted")

	if status.State == market.OrderFilled && status.AvgFillPrice > 0 {
		if book.FillEntry(status.OrderID, status.AvgFillPrice) {
			metrics.FillsTotal.WithLabelValues(req.Contract.Symbol).Inc()
			m.log.Info().
				Str("order_id", status.OrderID).
				Float64("entry_price", status.AvgFillPrice).
				Msg("order filled immediately")
		}
		return nil
	}

	go m.pollFill(ctx, req.Contract, status.OrderID, book, onRejected)
	return nil
}

// pollFill re-queries the order status on a fixed delay until the order
// reaches a terminal state. A gateway no-result is transient: the check is
// rescheduled, never escalated. Exactly one filled response sets the entry
// price; duplicates are ignored by the ledger.
func (m *Manager) pollFill(ctx context.Context, contract market.Contract, orderID string, book *ledger.Ledger, onRejected func()) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Debug().Str("order_id", orderID).Msg("fill poll cancelled")
			return
		case <-ticker.C:
		}

		if err := m.limiter.Wait(ctx); err != nil {
			return
		}
		metrics.StatusPollsTotal.WithLabelValues(contract.Symbol).Inc()

		status, err := m.gw.GetOrderStatus(ctx, contract, orderID)
		if err != nil || status == nil {
			m.log.Debug().Err(err).Str("order_id", orderID).Msg("status check failed, rescheduling")
			continue
		}

		switch {
		case status.State == market.OrderFilled && status.AvgFillPrice > 0:
			if book.FillEntry(orderID, status.AvgFillPrice) {
				metrics.FillsTotal.WithLabelValues(contract.Symbol).Inc()
				m.log.Info().
					Str("order_id", orderID).
					Float64("entry_price", status.AvgFillPrice).
					Msg("order filled")
			}
			return
		case status.State.Terminal():
			m.log.Warn().
				Str("order_id", orderID).
				Str("state", string(status.State)).
				Msg("order ended without fill")
			if onRejected != nil {
				onRejected()
			}
			return
		default:
			m.log.Debug().Str("order_id", orderID).Str("state", string(status.State)).Msg("fill pending")
		}
	}
}
