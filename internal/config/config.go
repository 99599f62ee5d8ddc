// Package config defines the top-level configuration for the sniper bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SOLSNIPER_* environment
// variables.
type Config struct {
	Solana   SolanaConfig   `toml:"solana"`
	Sources  SourcesConfig  `toml:"sources"`
	Jupiter  JupiterConfig  `toml:"jupiter"`
	Trading  TradingConfig  `toml:"trading"`
	Detector DetectorConfig `toml:"detector"`
	Wallet   WalletConfig   `toml:"wallet"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// SolanaConfig holds cluster endpoints.
type SolanaConfig struct {
	RPCURL string `toml:"rpc_url"`
	WSURL  string `toml:"ws_url"`
}

// SourceConfig describes one pull-based pool data source.
type SourceConfig struct {
	Enabled      bool     `toml:"enabled"`
	Endpoint     string   `toml:"endpoint"`
	PollInterval duration `toml:"poll_interval"`
}

// SourcesConfig holds per-source settings for every pool data source.
type SourcesConfig struct {
	Raydium SourceConfig   `toml:"raydium"`
	Orca    SourceConfig   `toml:"orca"`
	Geyser  WSSourceConfig `toml:"geyser"`
}

// WSSourceConfig describes the push-based WebSocket pool source.
type WSSourceConfig struct {
	Enabled        bool     `toml:"enabled"`
	URL            string   `toml:"url"`
	ReconnectDelay duration `toml:"reconnect_delay"`
}

// JupiterConfig holds swap-aggregator parameters.
type JupiterConfig struct {
	Host           string   `toml:"host"`
	SlippageBps    int      `toml:"slippage_bps"`
	MaxSlippageBps int      `toml:"max_slippage_bps"`
	RequestTimeout duration `toml:"request_timeout"`
}

// TradingConfig holds execution parameters.
type TradingConfig struct {
	TradeSolAmount     float64  `toml:"trade_sol_amount"`
	MinProfitThreshold float64  `toml:"min_profit_threshold"`
	ProfitDecayFactor  float64  `toml:"profit_decay_factor"`
	MinLiquidity       float64  `toml:"min_liquidity"`
	MaxRetries         int      `toml:"max_retries"`
	RetryBaseDelay     duration `toml:"retry_base_delay"`
	AutoExecute        bool     `toml:"auto_execute"`
}

// DetectorConfig holds opportunity-detection parameters. MaxPoolAge bounds
// how stale a pool observation may be before it is ignored; zero disables the
// freshness gate.
type DetectorConfig struct {
	Interval     duration `toml:"interval"`
	EdgeRatio    float64  `toml:"edge_ratio"`
	MinVolume24h float64  `toml:"min_volume_24h"`
	MinLiquidity float64  `toml:"min_liquidity"`
	MaxPoolAge   duration `toml:"max_pool_age"`
}

// WalletConfig holds the signer identity. Either a base58-encoded private key
// or a path to an encrypted keystore file must be provided for trading modes.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// PostgresConfig holds trade-history persistence parameters.
type PostgresConfig struct {
	Enabled      bool   `toml:"enabled"`
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// RedisConfig holds opportunity-publication parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds trade-history archival parameters for S3-compatible storage.
type S3Config struct {
	Enabled         bool     `toml:"enabled"`
	Endpoint        string   `toml:"endpoint"`
	Region          string   `toml:"region"`
	Bucket          string   `toml:"bucket"`
	AccessKey       string   `toml:"access_key"`
	SecretKey       string   `toml:"secret_key"`
	UseSSL          bool     `toml:"use_ssl"`
	ForcePathStyle  bool     `toml:"force_path_style"`
	ArchiveInterval duration `toml:"archive_interval"`
	RetentionDays   int      `toml:"retention_days"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Solana: SolanaConfig{
			RPCURL: "https://api.mainnet-beta.solana.com",
			WSURL:  "wss://api.mainnet-beta.solana.com",
		},
		Sources: SourcesConfig{
			Raydium: SourceConfig{
				Enabled:      true,
				Endpoint:     "https://api.raydium.io/v2/main/pairs",
				PollInterval: duration{10 * time.Second},
			},
			Orca: SourceConfig{
				Enabled:      true,
				Endpoint:     "https://api.orca.so/v2/solana/pools",
				PollInterval: duration{15 * time.Second},
			},
			Geyser: WSSourceConfig{
				Enabled:        false,
				ReconnectDelay: duration{5 * time.Second},
			},
		},
		Jupiter: JupiterConfig{
			Host:           "https://quote-api.jup.ag",
			SlippageBps:    50,
			MaxSlippageBps: 100,
			RequestTimeout: duration{10 * time.Second},
		},
		Trading: TradingConfig{
			TradeSolAmount:     0.1,
			MinProfitThreshold: 0.01,
			ProfitDecayFactor:  0.8,
			MinLiquidity:       1000,
			MaxRetries:         3,
			RetryBaseDelay:     duration{100 * time.Millisecond},
			AutoExecute:        false,
		},
		Detector: DetectorConfig{
			Interval:     duration{time.Second},
			EdgeRatio:    0.01,
			MinVolume24h: 1000,
			MinLiquidity: 5000,
			MaxPoolAge:   duration{10 * time.Minute},
		},
		Postgres: PostgresConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "solsniper",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:         false,
			Endpoint:        "http://localhost:9000",
			Region:          "us-east-1",
			Bucket:          "solsniper-data",
			ForcePathStyle:  true,
			ArchiveInterval: duration{24 * time.Hour},
			RetentionDays:   90,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Notify: NotifyConfig{
			Events: []string{"trade_executed", "trade_failed", "pipeline_error"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"trade":   true,
	"server":  true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, trade, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Solana.RPCURL == "" {
		errs = append(errs, "solana: rpc_url must not be empty")
	}

	if !c.Sources.Raydium.Enabled && !c.Sources.Orca.Enabled && !c.Sources.Geyser.Enabled {
		errs = append(errs, "sources: at least one data source must be enabled")
	}
	if c.Sources.Raydium.Enabled && c.Sources.Raydium.PollInterval.Duration <= 0 {
		errs = append(errs, "sources.raydium: poll_interval must be positive")
	}
	if c.Sources.Orca.Enabled && c.Sources.Orca.PollInterval.Duration <= 0 {
		errs = append(errs, "sources.orca: poll_interval must be positive")
	}
	if c.Sources.Geyser.Enabled && c.Sources.Geyser.URL == "" {
		errs = append(errs, "sources.geyser: url is required when enabled")
	}

	if c.Jupiter.Host == "" {
		errs = append(errs, "jupiter: host must not be empty")
	}
	if c.Jupiter.SlippageBps <= 0 {
		errs = append(errs, "jupiter: slippage_bps must be positive")
	}
	if c.Jupiter.SlippageBps > c.Jupiter.MaxSlippageBps {
		errs = append(errs, "jupiter: slippage_bps must not exceed max_slippage_bps")
	}

	if c.Trading.TradeSolAmount <= 0 {
		errs = append(errs, "trading: trade_sol_amount must be positive")
	}
	if c.Trading.MinProfitThreshold < 0 {
		errs = append(errs, "trading: min_profit_threshold must not be negative")
	}
	if c.Trading.ProfitDecayFactor <= 0 || c.Trading.ProfitDecayFactor > 1 {
		errs = append(errs, "trading: profit_decay_factor must be in (0, 1]")
	}
	if c.Trading.MaxRetries < 1 {
		errs = append(errs, "trading: max_retries must be >= 1")
	}

	if c.Detector.Interval.Duration <= 0 {
		errs = append(errs, "detector: interval must be positive")
	}
	if c.Detector.EdgeRatio <= 0 {
		errs = append(errs, "detector: edge_ratio must be positive")
	}

	// Wallet is required for modes that can actually sign swaps.
	needsWallet := c.Mode == "trade" || (c.Mode == "full" && c.Trading.AutoExecute)
	if needsWallet {
		if c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
			errs = append(errs, "wallet: either private_key or encrypted_key_path must be set for mode "+c.Mode)
		}
		if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
			errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
		}
	}

	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" && c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.RetentionDays < 1 {
			errs = append(errs, "s3: retention_days must be >= 1")
		}
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
