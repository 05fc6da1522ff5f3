package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cabarcas/TradingBot/internal/market"
)

type binanceTrade struct {
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

func (f *Feed) runBinance(ctx context.Context, symbol string, out chan<- market.Tick) error {
	if symbol == "" {
		return fmt.Errorf("binance feed requires a symbol")
	}

	url := fmt.Sprintf("wss://stream.binance.com:9443/ws/%s@trade", strings.ToLower(symbol))
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeBinanceStream(ctx, url, symbol, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Str("symbol", symbol).Msg("binance feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeBinanceStream(ctx context.Context, url, symbol string, out chan<- market.Tick) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderBinance).Str("symbol", symbol).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var trade binanceTrade
		if err := json.Unmarshal(message, &trade); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode binance message")
			continue
		}

		px, err := strconv.ParseFloat(trade.Price, 64)
		if err != nil {
			f.log.Warn().Err(err).Msg("invalid price from binance")
			continue
		}
		qty, err := strconv.ParseFloat(trade.Quantity, 64)
		if err != nil {
			f.log.Warn().Err(err).Msg("invalid quantity from binance")
			continue
		}

		tick := market.Tick{
			Symbol:    symbol,
			Price:     px,
			Size:      qty,
			Timestamp: trade.TradeTime,
		}

		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
