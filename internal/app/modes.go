package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"solsniper/internal/detector"
	"solsniper/internal/domain"
	"solsniper/internal/executor"
	"solsniper/internal/pipeline"
	"solsniper/internal/platform/jupiter"
	"solsniper/internal/platform/orca"
	"solsniper/internal/platform/raydium"
	"solsniper/internal/retry"
	"solsniper/internal/server"
	"solsniper/internal/server/handler"
	"solsniper/internal/source"
	"solsniper/internal/wallet"
)

// MonitorMode runs the data sources and the detector without an executor.
// Opportunities are published and served over the API but never traded.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startPipeline(ctx, g, deps, nil, nil, nil)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, nil)
	}

	return g.Wait()
}

// TradeMode runs the full monitor pipeline plus the executor. With
// auto_execute enabled the detector feeds the executor directly; otherwise
// trades run only through POST /api/execute.
func (a *App) TradeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting trade mode",
		slog.Bool("auto_execute", a.cfg.Trading.AutoExecute),
	)

	exec, err := a.buildExecutor(deps)
	if err != nil {
		return fmt.Errorf("trade mode: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	var oppCh chan domain.TradeOpportunity
	pipelineExec := exec
	if a.cfg.Trading.AutoExecute {
		oppCh = make(chan domain.TradeOpportunity, 64)
	} else {
		a.logger.InfoContext(ctx, "auto_execute disabled; trades run only via the API")
		pipelineExec = nil
	}

	a.startPipeline(ctx, g, deps, pipelineExec, oppCh, nil)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, exec)
	}

	return g.Wait()
}

// ServerMode serves the HTTP API alone. Useful for inspecting trade history
// against a shared database while the pipeline runs elsewhere.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, nil)
	return g.Wait()
}

// FullMode runs everything: sources, detector, executor, archiver, and the
// HTTP server.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode",
		slog.Bool("auto_execute", a.cfg.Trading.AutoExecute),
	)

	exec, err := a.buildExecutor(deps)
	if err != nil {
		return fmt.Errorf("full mode: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	var oppCh chan domain.TradeOpportunity
	pipelineExec := exec
	if a.cfg.Trading.AutoExecute {
		oppCh = make(chan domain.TradeOpportunity, 64)
	} else {
		a.logger.InfoContext(ctx, "auto_execute disabled; trades run only via the API")
		pipelineExec = nil
	}

	a.startPipeline(ctx, g, deps, pipelineExec, oppCh, deps.Archiver)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, exec)
	}

	return g.Wait()
}

// startPipeline assembles the source pollers, push listener, detector, and
// optional executor and archiver into an orchestrator goroutine. A pipeline
// failure is pushed to the notifier before it takes the process down.
func (a *App) startPipeline(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	exec *executor.Executor,
	oppCh chan domain.TradeOpportunity,
	archiver *pipeline.Archiver,
) {
	pollers := a.buildPollers(deps)

	var wsListener *source.WSListener
	if a.cfg.Sources.Geyser.Enabled {
		wsListener = source.NewWSListener(
			a.cfg.Sources.Geyser.URL,
			deps.Pools,
			a.cfg.Sources.Geyser.ReconnectDelay.Duration,
			a.logger,
		)
	}

	runner := a.buildDetectorRunner(deps, oppCh)
	orch := pipeline.NewOrchestrator(pollers, wsListener, runner, exec, oppCh, archiver, a.logger)

	g.Go(func() error {
		if err := orch.Run(ctx); err != nil {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if nerr := deps.Notifier.Notify(notifyCtx, "pipeline_error",
				"Pipeline stopped", err.Error()); nerr != nil {
				a.logger.Warn("pipeline error notification failed", slog.Any("error", nerr))
			}
			return err
		}
		return nil
	})
}

// buildPollers creates one poller per enabled pull-based source.
func (a *App) buildPollers(deps *Dependencies) []*source.Poller {
	var pollers []*source.Poller
	if a.cfg.Sources.Raydium.Enabled {
		client := raydium.New(a.cfg.Sources.Raydium.Endpoint, 0)
		pollers = append(pollers, source.NewPoller(
			client, deps.Pools, a.cfg.Sources.Raydium.PollInterval.Duration, a.logger,
		))
	}
	if a.cfg.Sources.Orca.Enabled {
		client := orca.New(a.cfg.Sources.Orca.Endpoint, 0)
		pollers = append(pollers, source.NewPoller(
			client, deps.Pools, a.cfg.Sources.Orca.PollInterval.Duration, a.logger,
		))
	}
	return pollers
}

// buildDetectorRunner creates the detector and its runner. execCh may be nil
// when nothing consumes opportunities.
func (a *App) buildDetectorRunner(deps *Dependencies, execCh chan<- domain.TradeOpportunity) *detector.Runner {
	predicate := detector.NewHeuristicPredicate(
		a.cfg.Detector.MinLiquidity,
		a.cfg.Detector.MinVolume24h,
		a.cfg.Detector.MaxPoolAge.Duration,
	)
	det := detector.New(
		predicate,
		detector.DepthEdge{EdgeRatio: a.cfg.Detector.EdgeRatio},
		a.cfg.Trading.TradeSolAmount,
		a.cfg.Trading.MinProfitThreshold,
		a.logger,
	)

	var publisher domain.OpportunityPublisher
	if deps.OppCache != nil {
		publisher = deps.OppCache
	}

	return detector.NewRunner(
		det, deps.Pools, deps.Opps, publisher, execCh,
		a.cfg.Detector.Interval.Duration, a.logger,
	)
}

// buildExecutor creates the executor over the swap aggregator. The signer is
// loaded from the wallet configuration when one is provided; without one the
// executor rejects every trade, which is the correct behavior for modes that
// only expose the manual endpoint for dry inspection.
func (a *App) buildExecutor(deps *Dependencies) (*executor.Executor, error) {
	signerPubkey := ""
	if a.cfg.Wallet.PrivateKey != "" || a.cfg.Wallet.EncryptedKeyPath != "" {
		w, err := wallet.Load(wallet.Config{
			PrivateKey:       a.cfg.Wallet.PrivateKey,
			EncryptedKeyPath: a.cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      a.cfg.Wallet.KeyPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("load wallet: %w", err)
		}
		signerPubkey = w.PublicKey()
		a.logger.Info("wallet loaded", slog.String("pubkey", signerPubkey))
	}

	jup := jupiter.New(a.cfg.Jupiter.Host, a.cfg.Jupiter.RequestTimeout.Duration)

	exec := executor.New(jup, jup, deps.Pools, signerPubkey, executor.Config{
		SlippageBps:        a.cfg.Jupiter.SlippageBps,
		MaxSlippageBps:     a.cfg.Jupiter.MaxSlippageBps,
		MinProfitThreshold: a.cfg.Trading.MinProfitThreshold,
		ProfitDecayFactor:  a.cfg.Trading.ProfitDecayFactor,
		MinLiquidity:       a.cfg.Trading.MinLiquidity,
		RetryPolicy: retry.Policy{
			MaxAttempts: a.cfg.Trading.MaxRetries,
			BaseDelay:   a.cfg.Trading.RetryBaseDelay.Duration,
			Multiplier:  2.0,
		},
	}, a.logger)
	exec.SetHistory(deps.History)
	exec.SetNotifier(deps.Notifier)
	return exec, nil
}

// startHTTPServer adds the API server plus its shutdown watcher to the given
// errgroup. The manual execution endpoint is registered only when an executor
// is available.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, exec *executor.Executor) {
	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Status:        handler.NewStatusHandler(a.cfg.Mode, a.cfg.Trading.AutoExecute, deps.Pools, deps.Opps),
		Pools:         handler.NewPoolHandler(deps.Pools),
		Opportunities: handler.NewOpportunityHandler(deps.Opps),
		Trades:        handler.NewTradeHandler(deps.History, a.logger),
	}
	if exec != nil {
		handlers.Execute = handler.NewExecuteHandler(exec, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
