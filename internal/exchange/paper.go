package exchange

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cabarcas/TradingBot/internal/market"
)

// PaperGateway simulates a derivatives venue: it serves bootstrap candles,
// relays ticks from a Feed, accepts market orders against the last traded
// price, and reports fills either immediately or after a configurable
// number of status polls so the recurring check path gets exercised.
type PaperGateway struct {
	feed *Feed
	log  zerolog.Logger

	mu             sync.Mutex
	balance        float64
	fillAfterPolls int
	bootstrapLen   int
	seq            int
	lastPrice      map[string]float64
	orders         map[string]*paperOrder
}

type paperOrder struct {
	status         market.OrderStatus
	symbol         string
	markPrice      float64
	remainingPolls int
}

// PaperOption configures PaperGateway construction.
type PaperOption func(*PaperGateway)

// WithFillAfterPolls delays fills by n status queries. n <= 0 fills orders
// on submission.
func WithFillAfterPolls(n int) PaperOption {
	return func(g *PaperGateway) { g.fillAfterPolls = n }
}

// WithBootstrapCandles sets how many seed candles the gateway synthesizes.
func WithBootstrapCandles(n int) PaperOption {
	return func(g *PaperGateway) {
		if n > 0 {
			g.bootstrapLen = n
		}
	}
}

// NewPaperGateway builds a simulated venue around the given tick feed.
func NewPaperGateway(feed *Feed, startingBalance float64, log zerolog.Logger, opts ...PaperOption) *PaperGateway {
	if startingBalance <= 0 {
		startingBalance = 1
	}
	g := &PaperGateway{
		feed:         feed,
		log:          log,
		balance:      startingBalance,
		bootstrapLen: 50,
		lastPrice:    make(map[string]float64),
		orders:       make(map[string]*paperOrder),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetHistoricalCandles synthesizes a flat-ish seed sequence aligned to the
// timeframe, ending at the current interval boundary.
func (g *PaperGateway) GetHistoricalCandles(ctx context.Context, contract market.Contract, tf market.Timeframe) ([]market.Candle, error) {
	interval, err := tf.IntervalMs()
	if err != nil {
		return nil, err
	}

	base := stubBasePrice(contract.Symbol)
	end := time.Now().UnixMilli() / interval * interval
	start := end - int64(g.bootstrapLen-1)*interval

	candles := make([]market.Candle, 0, g.bootstrapLen)
	px := base
	for ot := start; ot <= end; ot += interval {
		open := px
		px = base * (1 + 0.001*math.Sin(float64(ot/interval)/5))
		high := math.Max(open, px)
		low := math.Min(open, px)
		candles = append(candles, market.Candle{
			OpenTime: ot,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    px,
			Volume:   10,
		})
	}

	g.mu.Lock()
	g.lastPrice[contract.Symbol] = px
	g.mu.Unlock()
	return candles, nil
}

// StreamTrades relays feed ticks, recording the last traded price so market
// orders have a mark to fill against.
func (g *PaperGateway) StreamTrades(ctx context.Context, contract market.Contract, out chan<- market.Tick) error {
	inner := make(chan market.Tick, 256)
	errCh := make(chan error, 1)
	go func() { errCh <- g.feed.Run(ctx, contract.Symbol, inner) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case t := <-inner:
			g.mu.Lock()
			g.lastPrice[contract.Symbol] = t.Price
			g.mu.Unlock()
			select {
			case out <- t:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// PlaceOrder accepts market orders only and fills them against the last
// traded price, possibly deferring the fill to the status-poll path.
func (g *PaperGateway) PlaceOrder(ctx context.Context, contract market.Contract, orderType string, qty int64, side market.Side) (*market.OrderStatus, error) {
	if orderType != OrderTypeMarket {
		return nil, fmt.Errorf("paper gateway supports %s orders only, got %q", OrderTypeMarket, orderType)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("invalid quantity %d", qty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	mark := g.lastPrice[contract.Symbol]
	if mark <= 0 {
		return nil, fmt.Errorf("no mark price for %s", contract.Symbol)
	}

	g.seq++
	order := &paperOrder{
		status: market.OrderStatus{
			OrderID: fmt.Sprintf("paper-%d", g.seq),
			State:   market.OrderSubmitted,
		},
		symbol:         contract.Symbol,
		markPrice:      mark,
		remainingPolls: g.fillAfterPolls,
	}
	if g.fillAfterPolls <= 0 {
		order.status.State = market.OrderFilled
		order.status.AvgFillPrice = mark
	}
	g.orders[order.status.OrderID] = order

	g.log.Debug().
		Str("order_id", order.status.OrderID).
		Str("symbol", contract.Symbol).
		Str("side", string(side)).
		Int64("qty", qty).
		Str("state", string(order.status.State)).
		Msg("paper order placed")

	st := order.status
	return &st, nil
}

// GetOrderStatus reports an order's state, converting submitted orders to
// filled after the configured number of polls.
func (g *PaperGateway) GetOrderStatus(ctx context.Context, contract market.Contract, orderID string) (*market.OrderStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("unknown order %s", orderID)
	}
	if order.status.State == market.OrderSubmitted {
		order.remainingPolls--
		if order.remainingPolls <= 0 {
			order.status.State = market.OrderFilled
			order.status.AvgFillPrice = order.markPrice
		}
	}
	st := order.status
	return &st, nil
}

// CancelOrder cancels an order that has not filled yet.
func (g *PaperGateway) CancelOrder(ctx context.Context, contract market.Contract, orderID string) (*market.OrderStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("unknown order %s", orderID)
	}
	if order.status.State == market.OrderSubmitted {
		order.status.State = market.OrderCanceled
	}
	st := order.status
	return &st, nil
}

// PositionSize converts a balance percentage into whole contracts. The
// contract value depends on the settlement type: inverse contracts are
// worth multiplier/price in margin currency, quanto and linear contracts
// multiplier*price.
func (g *PaperGateway) PositionSize(ctx context.Context, contract market.Contract, referencePrice, balancePct float64) (int64, error) {
	if referencePrice <= 0 {
		return 0, fmt.Errorf("invalid reference price %f", referencePrice)
	}
	if contract.Multiplier <= 0 {
		return 0, fmt.Errorf("contract %s has no multiplier", contract.Symbol)
	}

	g.mu.Lock()
	balance := g.balance
	g.mu.Unlock()

	margin := balance * balancePct / 100

	var contracts float64
	if contract.Inverse {
		contracts = margin / (contract.Multiplier / referencePrice)
	} else {
		contracts = margin / (contract.Multiplier * referencePrice)
	}

	qty := int64(math.Floor(contracts))
	if qty < 1 {
		return 0, fmt.Errorf("balance too small for %s at %.2f", contract.Symbol, referencePrice)
	}
	return qty, nil
}
