package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "solsniper/internal/blob/s3"
	"solsniper/internal/cache/redis"
	"solsniper/internal/config"
	"solsniper/internal/domain"
	"solsniper/internal/notify"
	"solsniper/internal/pipeline"
	"solsniper/internal/state"
	"solsniper/internal/store/postgres"
)

// Dependencies bundles every shared dependency that the application modes
// need to operate. It is constructed by Wire and torn down by the returned
// cleanup function.
type Dependencies struct {
	// In-memory shared state.
	Pools *state.PoolStore
	Opps  *state.OpportunityStore

	// Trade history: Postgres-backed when enabled, otherwise a bounded
	// in-memory log so the API and notifier still see outcomes.
	History domain.TradeHistoryStore

	// Optional subsystems; nil when disabled by configuration.
	OppCache *redis.OpportunityCache
	Archiver *pipeline.Archiver

	// Notifications.
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Pools: state.NewPoolStore(),
		Opps:  state.NewOpportunityStore(),
	}

	// --- PostgreSQL trade history (optional) ---
	var pgTrades *postgres.TradeStore
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}

		pgTrades = postgres.NewTradeStore(pgClient.Pool())
		deps.History = pgTrades
	} else {
		deps.History = state.NewTradeLog(0)
	}

	// --- Redis opportunity publication (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.OppCache = redis.NewOpportunityCache(redisClient)
	}

	// --- S3 trade archival (optional; needs the Postgres-backed history) ---
	if cfg.S3.Enabled {
		if pgTrades == nil {
			logger.Warn("s3 archival enabled without postgres; archiver disabled")
		} else {
			s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
				Endpoint:       cfg.S3.Endpoint,
				Region:         cfg.S3.Region,
				Bucket:         cfg.S3.Bucket,
				AccessKey:      cfg.S3.AccessKey,
				SecretKey:      cfg.S3.SecretKey,
				UseSSL:         cfg.S3.UseSSL,
				ForcePathStyle: cfg.S3.ForcePathStyle,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: s3: %w", err)
			}
			closers = append(closers, func() { _ = s3Client.Close() })

			// Fail fast on a misconfigured bucket rather than at the first
			// archive run hours later.
			if err := s3Client.Health(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: s3: %w", err)
			}

			blobArchiver := s3blob.NewArchiver(s3blob.NewWriter(s3Client), pgTrades)
			deps.Archiver = pipeline.NewArchiver(
				blobArchiver,
				cfg.S3.RetentionDays,
				cfg.S3.ArchiveInterval.Duration,
				logger,
			)
		}
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
