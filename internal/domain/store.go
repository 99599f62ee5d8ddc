package domain

import (
	"context"
	"time"
)

// TradeHistoryStore is the append-only log of trade outcomes. Appends must be
// safe under concurrent use: the background consumer and the manual-execution
// API may both record trades at the same time.
type TradeHistoryStore interface {
	Append(ctx context.Context, rec TradeRecord) error
	ListRecent(ctx context.Context, limit int) ([]TradeRecord, error)
}

// TradeHistoryArchiver exports trade records older than a cutoff to cold
// storage and returns how many records were archived.
type TradeHistoryArchiver interface {
	Archive(ctx context.Context, before time.Time) (int, error)
}

// OpportunityPublisher receives the full opportunity set produced by each
// detection cycle, for consumers outside the process (dashboards, alerting).
type OpportunityPublisher interface {
	Publish(ctx context.Context, opps []TradeOpportunity) error
}
