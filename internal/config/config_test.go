package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.FetchTimeout)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("cache_dir: /tmp/ds\nlog_level: debug\nlog_console: true\nfetch_timeout: 30s\nseed: 7\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ds", cfg.CacheDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogConsole)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.FetchTimeout)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().LogLevel, cfg.LogLevel)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: [broken\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APPLIEDML_CACHE_DIR", "/env/cache")
	t.Setenv("APPLIEDML_LOG_LEVEL", "trace")
	t.Setenv("APPLIEDML_LOG_CONSOLE", "true")
	t.Setenv("APPLIEDML_FETCH_TIMEOUT", "1m")
	t.Setenv("APPLIEDML_SEED", "99")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/cache", cfg.CacheDir)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogConsole)
	assert.Equal(t, time.Minute, cfg.FetchTimeout)
	assert.Equal(t, int64(99), cfg.Seed)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch_timeout: -5s\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
