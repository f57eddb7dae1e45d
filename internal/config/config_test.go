package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDRESS", "ACTIVITIES_API_URL", "API_TIMEOUT", "STATUS_HIDE_DELAY", "CSRF_KEY", "CSRF_SECURE", "LOG_LEVEL", "BOARD_TITLE", "SESSION_IDLE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	require.Equal(t, ":8000", cfg.HTTPAddress)
	require.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	require.Zero(t, cfg.APITimeout)
	require.Equal(t, 5*time.Second, cfg.StatusHideDelay)
	require.Empty(t, cfg.CSRFKey)
	require.False(t, cfg.CSRFSecure)
	require.Equal(t, 30*time.Minute, cfg.SessionIdle)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ACTIVITIES_API_URL", "https://api.example.com/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("STATUS_HIDE_DELAY", "not-a-duration")
	t.Setenv("CSRF_SECURE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_IDLE_TIMEOUT", "2m")

	cfg := FromEnv()
	require.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	require.Equal(t, 3*time.Second, cfg.APITimeout)
	require.Equal(t, 5*time.Second, cfg.StatusHideDelay)
	require.True(t, cfg.CSRFSecure)
	require.Equal(t, 2*time.Minute, cfg.SessionIdle)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDRESS=:9999\n"), 0o600))

	t.Chdir(dir)

	t.Setenv("HTTP_ADDRESS", "")
	require.NoError(t, os.Unsetenv("HTTP_ADDRESS"))

	require.Equal(t, ":9999", Load().HTTPAddress)
}
