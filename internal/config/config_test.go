package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	// Defaults ship with auto_execute off, so no wallet is required.
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "yolo" }, "unknown mode"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "unknown log_level"},
		{"non-positive trade amount", func(c *Config) { c.Trading.TradeSolAmount = 0 }, "trade_sol_amount"},
		{"negative trade amount", func(c *Config) { c.Trading.TradeSolAmount = -0.1 }, "trade_sol_amount"},
		{"slippage above max", func(c *Config) { c.Jupiter.SlippageBps = 150 }, "max_slippage_bps"},
		{"decay factor above one", func(c *Config) { c.Trading.ProfitDecayFactor = 1.5 }, "profit_decay_factor"},
		{"zero detector interval", func(c *Config) { c.Detector.Interval.Duration = 0 }, "detector: interval"},
		{"no sources", func(c *Config) {
			c.Sources.Raydium.Enabled = false
			c.Sources.Orca.Enabled = false
			c.Sources.Geyser.Enabled = false
		}, "at least one data source"},
		{"trade mode without wallet", func(c *Config) { c.Mode = "trade" }, "wallet"},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }, "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "monitor"
log_level = "debug"

[trading]
trade_sol_amount = 0.25

[sources.raydium]
poll_interval = "30s"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.25, cfg.Trading.TradeSolAmount)
	assert.Equal(t, 30*time.Second, cfg.Sources.Raydium.PollInterval.Duration)
	// Untouched fields keep their defaults.
	assert.Equal(t, 50, cfg.Jupiter.SlippageBps)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`mode = "monitor"`), 0o600))

	t.Setenv("SOLSNIPER_MODE", "server")
	t.Setenv("SOLSNIPER_TRADING_MAX_RETRIES", "5")
	t.Setenv("SOLSNIPER_DETECTOR_INTERVAL", "2s")
	t.Setenv("SOLSNIPER_SERVER_CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, 5, cfg.Trading.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Detector.Interval.Duration)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	require.Error(t, err)
}
