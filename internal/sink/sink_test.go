package sink

import (
	"testing"

	"github.com/cabarcas/TradingBot/internal/ledger"
	"github.com/cabarcas/TradingBot/internal/market"
)

func TestPendingLogsMarkDisplayed(t *testing.T) {
	m := NewMemory()
	m.Log("technical-XBTUSD-1m", "first")
	m.Log("technical-XBTUSD-1m", "second")
	m.Log("breakout-ETHUSD-5m", "other strategy")

	pending := m.PendingLogs("technical-XBTUSD-1m")
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending lines, got %d", len(pending))
	}
	if pending[0] != "first" || pending[1] != "second" {
		t.Fatalf("unexpected lines: %v", pending)
	}

	if again := m.PendingLogs("technical-XBTUSD-1m"); len(again) != 0 {
		t.Fatalf("lines should be marked displayed, got %v", again)
	}
	if other := m.PendingLogs("breakout-ETHUSD-5m"); len(other) != 1 {
		t.Fatalf("other strategy buffer should be untouched, got %v", other)
	}
}

func TestPublishKeepsLatestSnapshot(t *testing.T) {
	m := NewMemory()

	if _, ok := m.Snapshot("technical-XBTUSD-1m"); ok {
		t.Fatalf("no snapshot should exist yet")
	}

	m.Publish(Snapshot{Strategy: "technical-XBTUSD-1m", OngoingPosition: false})
	m.Publish(Snapshot{
		Strategy:        "technical-XBTUSD-1m",
		Candles:         []market.Candle{{OpenTime: 0, Close: 100}},
		Trades:          []ledger.Trade{{OrderID: "o-1"}},
		OngoingPosition: true,
	})

	snap, ok := m.Snapshot("technical-XBTUSD-1m")
	if !ok {
		t.Fatalf("snapshot missing")
	}
	if !snap.OngoingPosition || len(snap.Candles) != 1 || len(snap.Trades) != 1 {
		t.Fatalf("stale snapshot returned: %+v", snap)
	}
}
