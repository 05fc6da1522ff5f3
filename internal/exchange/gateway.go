// Package exchange hosts the venue gateway seam: the interface the strategy
// core consumes, a simulated paper venue, and tick stream connectors.
package exchange

import (
	"context"

	"github.com/cabarcas/TradingBot/internal/market"
)

// OrderTypeMarket is the only order type the core submits today.
const OrderTypeMarket = "MARKET"

// Gateway is the venue seam consumed by the strategy core. Implementations
// own transport, signing and credential handling; every method returns an
// error instead of a result when the venue gives nothing back, and the core
// treats those failures as transient.
type Gateway interface {
	// GetHistoricalCandles returns the ordered seed sequence used to
	// bootstrap a strategy before streaming begins.
	GetHistoricalCandles(ctx context.Context, contract market.Contract, tf market.Timeframe) ([]market.Candle, error)

	// StreamTrades pushes the venue's live trade prints for the contract
	// onto out until the context is cancelled. The stream is ordered and
	// non-restartable from the caller's point of view.
	StreamTrades(ctx context.Context, contract market.Contract, out chan<- market.Tick) error

	// PlaceOrder submits an order for qty contracts and returns the venue's
	// immediate view of it.
	PlaceOrder(ctx context.Context, contract market.Contract, orderType string, qty int64, side market.Side) (*market.OrderStatus, error)

	// GetOrderStatus queries the current state of an order.
	GetOrderStatus(ctx context.Context, contract market.Contract, orderID string) (*market.OrderStatus, error)

	// CancelOrder asks the venue to cancel an order.
	CancelOrder(ctx context.Context, contract market.Contract, orderID string) (*market.OrderStatus, error)

	// PositionSize converts a balance percentage at a reference price into a
	// whole number of contracts, respecting the contract's settlement type.
	PositionSize(ctx context.Context, contract market.Contract, referencePrice, balancePct float64) (int64, error)
}
