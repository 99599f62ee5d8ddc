// Package pipeline wires the bot's long-running tasks together: source
// pollers and the push listener feed the pool store, the detector turns
// snapshots into opportunities, and the executor consumes them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"solsniper/internal/detector"
	"solsniper/internal/domain"
	"solsniper/internal/executor"
	"solsniper/internal/source"
)

// Orchestrator supervises every pipeline goroutine. Any task exiting with a
// non-context error cancels the shared context and stops the bot.
type Orchestrator struct {
	pollers        []*source.Poller
	wsListener     *source.WSListener // optional
	detectorRunner *detector.Runner
	executor       *executor.Executor // optional
	oppCh          chan domain.TradeOpportunity
	archiver       *Archiver // optional
	logger         *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given tasks. wsListener,
// exec (with its channel), and archiver may be nil when those subsystems are
// disabled by configuration.
func NewOrchestrator(
	pollers []*source.Poller,
	wsListener *source.WSListener,
	detectorRunner *detector.Runner,
	exec *executor.Executor,
	oppCh chan domain.TradeOpportunity,
	archiver *Archiver,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		pollers:        pollers,
		wsListener:     wsListener,
		detectorRunner: detectorRunner,
		executor:       exec,
		oppCh:          oppCh,
		archiver:       archiver,
		logger:         logger.With(slog.String("component", "orchestrator")),
	}
}

// Run starts every configured task and blocks until all have stopped. A task
// failure cancels the rest; context cancellation is a clean shutdown.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline starting",
		slog.Int("pollers", len(o.pollers)),
		slog.Bool("push_listener", o.wsListener != nil),
		slog.Bool("auto_execute", o.executor != nil),
	)

	g, ctx := errgroup.WithContext(ctx)

	for _, p := range o.pollers {
		g.Go(func() error {
			err := p.RunLoop(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("poller: %w", err)
		})
	}

	if o.wsListener != nil {
		g.Go(func() error {
			err := o.wsListener.RunLoop(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("push listener: %w", err)
		})
	}

	g.Go(func() error {
		err := o.detectorRunner.RunLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("detector: %w", err)
	})

	if o.executor != nil && o.oppCh != nil {
		g.Go(func() error {
			err := o.executor.Run(ctx, o.oppCh)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("executor: %w", err)
		})
	}

	if o.archiver != nil {
		g.Go(func() error {
			err := o.archiver.RunLoop(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archiver: %w", err)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("pipeline stopped with error", slog.Any("error", err))
		return err
	}

	o.logger.Info("pipeline stopped cleanly")
	return nil
}
