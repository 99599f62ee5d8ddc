package detector

import (
	"context"
	"log/slog"
	"time"

	"solsniper/internal/domain"
	"solsniper/internal/state"
)

// Runner drives the detection cycle on an interval, publishing results to
// the opportunity store and, when configured, to the cache and the execution
// queue.
type Runner struct {
	detector *Detector
	pools    *state.PoolStore
	opps     *state.OpportunityStore

	publisher domain.OpportunityPublisher // optional
	execCh    chan<- domain.TradeOpportunity

	interval time.Duration
	logger   *slog.Logger
}

// NewRunner creates a Runner. publisher may be nil when no cache is
// configured; execCh may be nil when auto-execution is off.
func NewRunner(
	detector *Detector,
	pools *state.PoolStore,
	opps *state.OpportunityStore,
	publisher domain.OpportunityPublisher,
	execCh chan<- domain.TradeOpportunity,
	interval time.Duration,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		detector:  detector,
		pools:     pools,
		opps:      opps,
		publisher: publisher,
		execCh:    execCh,
		interval:  interval,
		logger:    logger.With(slog.String("component", "detector_runner")),
	}
}

// Run executes one detection cycle over the current pool snapshot. The new
// opportunity set wholly replaces the previous one.
func (r *Runner) Run(ctx context.Context) error {
	started := time.Now()

	snapshot := r.pools.Snapshot()
	found := r.detector.DetectCycle(snapshot)
	r.opps.Replace(found)

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, found); err != nil {
			r.logger.Warn("opportunity publish failed", slog.Any("error", err))
		}
	}

	if r.execCh != nil {
		for _, opp := range found {
			select {
			case r.execCh <- opp:
			case <-ctx.Done():
				return nil
			default:
				// Executor is busy; this opportunity will be rediscovered
				// next cycle if it survives.
				r.logger.Warn("execution queue full, opportunity dropped",
					slog.String("pool_id", opp.PoolID),
				)
			}
		}
	}

	r.logger.Debug("detect cycle complete",
		slog.Int("pools", len(snapshot)),
		slog.Int("opportunities", len(found)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// RunLoop runs an immediate cycle and then repeats on the configured
// interval until the context is cancelled.
func (r *Runner) RunLoop(ctx context.Context) error {
	r.logger.Info("detector started", slog.Duration("interval", r.interval))

	if err := r.Run(ctx); err != nil {
		r.logger.Error("detect cycle failed", slog.Any("error", err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("detector stopped")
			return nil
		case <-ticker.C:
			if err := r.Run(ctx); err != nil {
				r.logger.Error("detect cycle failed", slog.Any("error", err))
			}
		}
	}
}
