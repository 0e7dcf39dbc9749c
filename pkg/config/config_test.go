package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "sqlite", cfg.Storage)
	require.Equal(t, 1, cfg.DayWorkers)
	require.Equal(t, 30*time.Second, cfg.RequestTimeoutDuration())

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DAY_WORKERS", "4")
	t.Setenv("TIMEZONE", "Asia/Tokyo")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Storage)
	require.Equal(t, 4, cfg.DayWorkers)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("STORAGE", "mongo")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STORAGE", "sqlite")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load()
	require.Error(t, err)
}
