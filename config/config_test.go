package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/spotjournal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAMLAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
journal:
  lookback_days: 30
bybit:
  base_url: http://localhost:9999
storage:
  enabled: true
  dsn: ":memory:"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*24*time.Hour, cfg.Lookback())
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval())
	assert.Equal(t, "http://localhost:9999", cfg.Bybit.BaseURL)
	assert.Equal(t, "spot", cfg.Bybit.Category)
	assert.Equal(t, 5000, cfg.Bybit.RecvWindow)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 730, cfg.Journal.LookbackDays)
	assert.Equal(t, "https://api.bybit.com", cfg.Bybit.BaseURL)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal: [unclosed"), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "env-key")
	t.Setenv("BYBIT_API_SECRET", "env-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JOURNAL_DSN", "/tmp/j.db")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Bybit.APIKey)
	assert.Equal(t, "env-secret", cfg.Bybit.APISecret)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/j.db", cfg.Storage.DSN)
	assert.True(t, cfg.Storage.Enabled)
}
