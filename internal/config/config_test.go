package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "ENV", "")
	setEnv(t, "LOG_LEVEL", "")
	setEnv(t, "LOG_FORMAT", "")
	setEnv(t, "DATABASE_URL", "")
	setEnv(t, "HISTORY_LOOKBACK_DAYS", "")
	setEnv(t, "HISTORY_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, 30*24*time.Hour, cfg.HistoryLookback)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "ENV", "production")
	setEnv(t, "LOG_FORMAT", "json")
	setEnv(t, "DATABASE_URL", "postgres://localhost/cardrisk")
	setEnv(t, "HISTORY_LOOKBACK_DAYS", "7")
	setEnv(t, "HISTORY_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "postgres://localhost/cardrisk", cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.HistoryLookback)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidLookback(t *testing.T) {
	setEnv(t, "HISTORY_LOOKBACK_DAYS", "-1")
	setEnv(t, "LOG_FORMAT", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "HISTORY_LOOKBACK_DAYS")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	setEnv(t, "HISTORY_LOOKBACK_DAYS", "")
	setEnv(t, "HISTORY_LIMIT", "")
	setEnv(t, "LOG_FORMAT", "yaml")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
