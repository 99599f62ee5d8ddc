package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"solsniper/internal/domain"
)

// Archiver moves aged trade history from the database to cold storage on a
// fixed interval.
type Archiver struct {
	blobArchiver  domain.TradeHistoryArchiver
	retentionDays int
	interval      time.Duration
	logger        *slog.Logger
}

// NewArchiver creates an Archiver. retentionDays controls the cutoff; records
// older than that are exported and pruned.
func NewArchiver(blobArchiver domain.TradeHistoryArchiver, retentionDays int, interval time.Duration, logger *slog.Logger) *Archiver {
	return &Archiver{
		blobArchiver:  blobArchiver,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger.With(slog.String("component", "archiver")),
	}
}

// Run executes a single archive pass over everything older than the
// retention cutoff.
func (a *Archiver) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-time.Duration(a.retentionDays) * 24 * time.Hour)

	archived, err := a.blobArchiver.Archive(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pipeline: archiving trades before %v: %w", cutoff, err)
	}

	a.logger.Info("archive run complete",
		slog.Time("cutoff", cutoff),
		slog.Int("trades_archived", archived),
	)
	return nil
}

// RunLoop repeats archive passes on the configured interval until the context
// is cancelled. Unlike the pollers there is no immediate first run; history
// shortly after startup is rarely old enough to archive.
func (a *Archiver) RunLoop(ctx context.Context) error {
	a.logger.Info("archiver started",
		slog.Duration("interval", a.interval),
		slog.Int("retention_days", a.retentionDays),
	)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("archiver stopped")
			return nil
		case <-ticker.C:
			if err := a.Run(ctx); err != nil {
				a.logger.Error("archive run failed", slog.Any("error", err))
			}
		}
	}
}
