package state

import (
	"context"
	"sync"

	"solsniper/internal/domain"
)

// defaultTradeLogCap bounds the in-memory history when no database is
// configured.
const defaultTradeLogCap = 1000

// TradeLog is an in-memory, bounded implementation of
// domain.TradeHistoryStore. It backs deployments that run without Postgres;
// the oldest records are evicted once the capacity is reached.
type TradeLog struct {
	mu   sync.RWMutex
	recs []domain.TradeRecord
	cap  int
}

// NewTradeLog creates a TradeLog holding at most capacity records. A
// non-positive capacity falls back to the default.
func NewTradeLog(capacity int) *TradeLog {
	if capacity <= 0 {
		capacity = defaultTradeLogCap
	}
	return &TradeLog{cap: capacity}
}

// Append records one trade outcome, evicting the oldest entry when full.
func (l *TradeLog) Append(ctx context.Context, rec domain.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recs = append(l.recs, rec)
	if len(l.recs) > l.cap {
		l.recs = l.recs[len(l.recs)-l.cap:]
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (l *TradeLog) ListRecent(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.recs) {
		limit = len(l.recs)
	}

	out := make([]domain.TradeRecord, 0, limit)
	for i := len(l.recs) - 1; i >= len(l.recs)-limit; i-- {
		out = append(out, l.recs[i])
	}
	return out, nil
}

// Len returns the number of records currently held.
func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.recs)
}

// Compile-time interface check.
var _ domain.TradeHistoryStore = (*TradeLog)(nil)
