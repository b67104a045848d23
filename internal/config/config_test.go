package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"GRID_SERVER_URL", "GRID_API_ADDR", "REDIS_ADDR", "REDIS_DB", "GRID_LOG_LEVEL", "GRID_LOG_FILE", "GRID_HEADLESS", "GRID_SESSION_ID"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	require.Equal(t, "ws://127.0.0.1:8080/ws", cfg.ServerURL)
	require.Equal(t, "127.0.0.1:8081", cfg.APIAddr)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, 0, cfg.RedisDB)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "client.log", cfg.LogFile)
	require.False(t, cfg.Headless)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GRID_SERVER_URL", "ws://game:9000/ws")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GRID_HEADLESS", "true")

	cfg := FromEnv()
	require.Equal(t, "ws://game:9000/ws", cfg.ServerURL)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, 3, cfg.RedisDB)
	require.True(t, cfg.Headless)

	t.Setenv("REDIS_DB", "three")
	t.Setenv("GRID_HEADLESS", "maybe")
	cfg = FromEnv()
	require.Equal(t, 0, cfg.RedisDB)
	require.False(t, cfg.Headless)
}

func TestLoadOverlay(t *testing.T) {
	t.Setenv("GRID_SERVER_URL", "ws://env/ws")
	t.Setenv("GRID_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nredis_db: 2\nsession_id: abc\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ws://env/ws", cfg.ServerURL, "unset file fields keep env values")
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 2, cfg.RedisDB)
	require.Equal(t, "abc", cfg.SessionID)

	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, "ws://env/ws", cfg.ServerURL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redis_db: [1, 2\n"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}
