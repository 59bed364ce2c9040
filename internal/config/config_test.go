package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.URL)
		assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, 2, cfg.Backend.HistoryRetries)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.False(t, cfg.Logging.Development)
		assert.NotEmpty(t, cfg.Store.Path)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("BACKEND_URL", "http://chat.internal:9000")
		t.Setenv("BACKEND_TIMEOUT", "5s")
		t.Setenv("CHAT_STORE_PATH", "/tmp/custom/session.json")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "http://chat.internal:9000", cfg.Backend.URL)
		assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "/tmp/custom/session.json", cfg.Store.Path)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestApplyFile(t *testing.T) {
	t.Run("overlays only fields present in the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"backend:\n  url: http://file.example:8080\nlogging:\n  level: warn\n",
		), 0o644))

		cfg := Default()
		require.NoError(t, cfg.ApplyFile(path))

		assert.Equal(t, "http://file.example:8080", cfg.Backend.URL)
		assert.Equal(t, "warn", cfg.Logging.Level)
		// Untouched fields keep their defaults
		assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
		assert.NotEmpty(t, cfg.Store.Path)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		cfg := Default()
		assert.Error(t, cfg.ApplyFile(filepath.Join(t.TempDir(), "absent.yaml")))
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backend: [not a map"), 0o644))

		cfg := Default()
		assert.Error(t, cfg.ApplyFile(path))
	})
}
