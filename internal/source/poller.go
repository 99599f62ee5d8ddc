// Package source feeds the shared pool store: pollers pull full pool lists
// from REST sources on an interval, and the websocket listener applies push
// updates as they arrive.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"solsniper/internal/domain"
	"solsniper/internal/state"
)

// Fetcher pulls the full pool list from one upstream data source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.PoolState, error)
}

// Poller periodically fetches pools from one source and replaces that
// source's slice of the shared store.
type Poller struct {
	fetcher  Fetcher
	store    *state.PoolStore
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a Poller for one fetcher.
func NewPoller(fetcher Fetcher, store *state.PoolStore, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		logger:   logger.With(slog.String("component", "poller"), slog.String("source", fetcher.Name())),
	}
}

// Run executes one poll cycle: fetch the full pool list and swap it into the
// store under this source's key.
func (p *Poller) Run(ctx context.Context) error {
	started := time.Now()

	pools, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("source: poll %s: %w", p.fetcher.Name(), err)
	}

	p.store.ReplaceSource(p.fetcher.Name(), pools)

	p.logger.Debug("poll cycle complete",
		slog.Int("pools", len(pools)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// RunLoop runs an immediate cycle and then repeats on the configured
// interval until the context is cancelled. Cycle errors are logged and do not
// stop the loop.
func (p *Poller) RunLoop(ctx context.Context) error {
	p.logger.Info("poller started", slog.Duration("interval", p.interval))

	if err := p.Run(ctx); err != nil {
		p.logger.Error("poll cycle failed", slog.Any("error", err))
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return nil
		case <-ticker.C:
			if err := p.Run(ctx); err != nil {
				p.logger.Error("poll cycle failed", slog.Any("error", err))
			}
		}
	}
}
