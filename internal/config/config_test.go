package config_test

import (
	"os"
	"testing"
	"time"

	"auctions/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"POSTGRES_CONN", "SERVER_ADDRESS", "ADMIN_TOKEN", "TICK_INTERVAL", "MAX_CLOCK_SKEW", "TICK_WORKERS", "EVENT_BUFFER"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	require.Equal(t, time.Second, cfg.TickInterval)
	require.Equal(t, 2*time.Second, cfg.MaxClockSkew)
	require.Equal(t, 8, cfg.TickWorkers)
	require.Equal(t, 1024, cfg.EventBuffer)
	require.Empty(t, cfg.PostgresConn)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("TICK_WORKERS", "2")
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ServerAddress)
	require.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	require.Equal(t, 2, cfg.TickWorkers)
	require.Equal(t, "secret", cfg.AdminToken)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TICK_INTERVAL", "soon")
	_, err := config.Load()
	require.ErrorContains(t, err, "TICK_INTERVAL")

	t.Setenv("TICK_INTERVAL", "")
	t.Setenv("TICK_WORKERS", "-1")
	_, err = config.Load()
	require.ErrorContains(t, err, "TICK_WORKERS")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
