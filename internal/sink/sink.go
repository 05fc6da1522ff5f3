// Package sink collects log lines and state snapshots for a presentation
// layer. The sink observes strategy state; it never mutates it.
package sink

import (
	"sync"

	"github.com/cabarcas/TradingBot/internal/ledger"
	"github.com/cabarcas/TradingBot/internal/market"
)

// LogEntry is one strategy log line. Displayed flips to true once a
// presentation consumer has rendered it.
type LogEntry struct {
	Text      string
	Displayed bool
}

// Snapshot is a read-only copy of a strategy instance's state, refreshed
// after each tick-processing step.
type Snapshot struct {
	Strategy        string
	Candles         []market.Candle
	Trades          []ledger.Trade
	OngoingPosition bool
}

// Sink receives log lines and snapshots from strategy instances.
type Sink interface {
	Log(strategy, text string)
	Publish(Snapshot)
}

// Memory buffers log lines and keeps the latest snapshot per strategy.
type Memory struct {
	mu        sync.Mutex
	logs      map[string][]LogEntry
	snapshots map[string]Snapshot
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		logs:      make(map[string][]LogEntry),
		snapshots: make(map[string]Snapshot),
	}
}

// Log appends a line to the strategy's buffer.
func (m *Memory) Log(strategy, text string) {
	m.mu.Lock()
	m.logs[strategy] = append(m.logs[strategy], LogEntry{Text: text})
	m.mu.Unlock()
}

// Publish replaces the latest snapshot for the strategy.
func (m *Memory) Publish(s Snapshot) {
	m.mu.Lock()
	m.snapshots[s.Strategy] = s
	m.mu.Unlock()
}

// PendingLogs returns the lines not yet displayed for a strategy and marks
// them displayed.
func (m *Memory) PendingLogs(strategy string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.logs[strategy]
	var out []string
	for i := range entries {
		if entries[i].Displayed {
			continue
		}
		out = append(out, entries[i].Text)
		entries[i].Displayed = true
	}
	return out
}

// Snapshot returns the latest published state for a strategy.
func (m *Memory) Snapshot(strategy string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[strategy]
	return s, ok
}

// Nop discards everything; useful where no presentation layer is attached.
type Nop struct{}

func (Nop) Log(string, string) {}
func (Nop) Publish(Snapshot)   {}
