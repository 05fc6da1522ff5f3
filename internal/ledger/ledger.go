// Package ledger keeps the append-only record of positions a strategy
// instance has opened.
package ledger

import "sync"

// Status tracks a trade's lifecycle. Closing positions is handled outside
// this core; Closed is reserved so the schema holds when a closer lands.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Trade records one opened position. EntryPrice stays zero ("pending")
// until the venue confirms the fill; it is written exactly once.
type Trade struct {
	OpenTime   int64   `json:"open_time"`
	EntryPrice float64 `json:"entry_price"`
	Side       string  `json:"side"`
	Status     Status  `json:"status"`
	Quantity   float64 `json:"quantity"`
	Strategy   string  `json:"strategy"`
	OrderID    string  `json:"order_id"`
}

// Filled reports whether the entry price has been confirmed.
func (t Trade) Filled() bool { return t.EntryPrice > 0 }

// Ledger stores trades in memory. Appends only; the single permitted
// mutation of an existing entry is setting its entry price once. The fill
// path runs on poll goroutines, so the ledger carries its own lock.
type Ledger struct {
	mu     sync.Mutex
	trades []Trade
}

// New creates an empty ledger, optionally pre-sizing storage.
func New(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{trades: make([]Trade, 0, capacity)}
}

// Append records a newly submitted trade.
func (l *Ledger) Append(t Trade) {
	l.mu.Lock()
	l.trades = append(l.trades, t)
	l.mu.Unlock()
}

// FillEntry writes the confirmed entry price into the trade matching
// orderID. It returns false when no such trade exists or the entry price
// was already set, so duplicate fill reports are harmless.
func (l *Ledger) FillEntry(orderID string, price float64) bool {
	if price <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.trades {
		if l.trades[i].OrderID != orderID {
			continue
		}
		if l.trades[i].Filled() {
			return false
		}
		l.trades[i].EntryPrice = price
		return true
	}
	return false
}

// Snapshot returns a copy of the recorded trades.
func (l *Ledger) Snapshot() []Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Len returns the number of recorded trades.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.trades)
}
