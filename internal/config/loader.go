package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SOLSNIPER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SOLSNIPER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Solana ──
	setStr(&cfg.Solana.RPCURL, "SOLSNIPER_SOLANA_RPC_URL")
	setStr(&cfg.Solana.WSURL, "SOLSNIPER_SOLANA_WS_URL")

	// ── Sources ──
	setBool(&cfg.Sources.Raydium.Enabled, "SOLSNIPER_SOURCES_RAYDIUM_ENABLED")
	setStr(&cfg.Sources.Raydium.Endpoint, "SOLSNIPER_SOURCES_RAYDIUM_ENDPOINT")
	setDuration(&cfg.Sources.Raydium.PollInterval, "SOLSNIPER_SOURCES_RAYDIUM_POLL_INTERVAL")
	setBool(&cfg.Sources.Orca.Enabled, "SOLSNIPER_SOURCES_ORCA_ENABLED")
	setStr(&cfg.Sources.Orca.Endpoint, "SOLSNIPER_SOURCES_ORCA_ENDPOINT")
	setDuration(&cfg.Sources.Orca.PollInterval, "SOLSNIPER_SOURCES_ORCA_POLL_INTERVAL")
	setBool(&cfg.Sources.Geyser.Enabled, "SOLSNIPER_SOURCES_GEYSER_ENABLED")
	setStr(&cfg.Sources.Geyser.URL, "SOLSNIPER_SOURCES_GEYSER_URL")
	setDuration(&cfg.Sources.Geyser.ReconnectDelay, "SOLSNIPER_SOURCES_GEYSER_RECONNECT_DELAY")

	// ── Jupiter ──
	setStr(&cfg.Jupiter.Host, "SOLSNIPER_JUPITER_HOST")
	setInt(&cfg.Jupiter.SlippageBps, "SOLSNIPER_JUPITER_SLIPPAGE_BPS")
	setInt(&cfg.Jupiter.MaxSlippageBps, "SOLSNIPER_JUPITER_MAX_SLIPPAGE_BPS")
	setDuration(&cfg.Jupiter.RequestTimeout, "SOLSNIPER_JUPITER_REQUEST_TIMEOUT")

	// ── Trading ──
	setFloat64(&cfg.Trading.TradeSolAmount, "SOLSNIPER_TRADING_TRADE_SOL_AMOUNT")
	setFloat64(&cfg.Trading.MinProfitThreshold, "SOLSNIPER_TRADING_MIN_PROFIT_THRESHOLD")
	setFloat64(&cfg.Trading.ProfitDecayFactor, "SOLSNIPER_TRADING_PROFIT_DECAY_FACTOR")
	setFloat64(&cfg.Trading.MinLiquidity, "SOLSNIPER_TRADING_MIN_LIQUIDITY")
	setInt(&cfg.Trading.MaxRetries, "SOLSNIPER_TRADING_MAX_RETRIES")
	setDuration(&cfg.Trading.RetryBaseDelay, "SOLSNIPER_TRADING_RETRY_BASE_DELAY")
	setBool(&cfg.Trading.AutoExecute, "SOLSNIPER_TRADING_AUTO_EXECUTE")

	// ── Detector ──
	setDuration(&cfg.Detector.Interval, "SOLSNIPER_DETECTOR_INTERVAL")
	setFloat64(&cfg.Detector.EdgeRatio, "SOLSNIPER_DETECTOR_EDGE_RATIO")
	setFloat64(&cfg.Detector.MinVolume24h, "SOLSNIPER_DETECTOR_MIN_VOLUME_24H")
	setFloat64(&cfg.Detector.MinLiquidity, "SOLSNIPER_DETECTOR_MIN_LIQUIDITY")
	setDuration(&cfg.Detector.MaxPoolAge, "SOLSNIPER_DETECTOR_MAX_POOL_AGE")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "SOLSNIPER_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "SOLSNIPER_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "SOLSNIPER_WALLET_KEY_PASSWORD")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "SOLSNIPER_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SOLSNIPER_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SOLSNIPER_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SOLSNIPER_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SOLSNIPER_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SOLSNIPER_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SOLSNIPER_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SOLSNIPER_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SOLSNIPER_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SOLSNIPER_POSTGRES_POOL_MIN_CONNS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SOLSNIPER_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SOLSNIPER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SOLSNIPER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SOLSNIPER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SOLSNIPER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SOLSNIPER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SOLSNIPER_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SOLSNIPER_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SOLSNIPER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SOLSNIPER_S3_REGION")
	setStr(&cfg.S3.Bucket, "SOLSNIPER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SOLSNIPER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SOLSNIPER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SOLSNIPER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SOLSNIPER_S3_FORCE_PATH_STYLE")
	setDuration(&cfg.S3.ArchiveInterval, "SOLSNIPER_S3_ARCHIVE_INTERVAL")
	setInt(&cfg.S3.RetentionDays, "SOLSNIPER_S3_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SOLSNIPER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SOLSNIPER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SOLSNIPER_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SOLSNIPER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SOLSNIPER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SOLSNIPER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SOLSNIPER_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SOLSNIPER_MODE")
	setStr(&cfg.LogLevel, "SOLSNIPER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
