package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(viper.New())

	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, ":8000", cfg.HTTPAddr())
	assert.Equal(t, "./nexus.db", cfg.DBPath)
	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Equal(t, 100, cfg.InitialCredits)
	assert.Equal(t, []string{"simulated"}, cfg.BuiltinConverters)
	assert.InDelta(t, 0.1, cfg.SimulateTimeScale, 1e-9)
	assert.Empty(t, cfg.CatalogPath)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NEXUS_HTTP_PORT", "9090")
	t.Setenv("NEXUS_MAX_WORKERS", "0")
	t.Setenv("NEXUS_BUILTIN_CONVERTERS", " simulated , ,other ")
	t.Setenv("NEXUS_INITIAL_CREDITS", "-4")
	t.Setenv("NEXUS_GIN_MODE", "verbose")

	cfg := Load(viper.New())
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 1, cfg.MaxWorkers)
	assert.Equal(t, []string{"simulated", "other"}, cfg.BuiltinConverters)
	assert.Equal(t, 0, cfg.InitialCredits)
	assert.Equal(t, "release", cfg.GinMode)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /tmp/x.db\ncatalog_path: ./catalog.yaml\nlog_level: debug\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg := Load(v)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "./catalog.yaml", cfg.CatalogPath)
	assert.True(t, cfg.Logger().Enabled(context.Background(), slog.LevelDebug))
}

func TestLoggerLevel(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	logger := cfg.Logger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	cfg.LogLevel = "nonsense"
	assert.True(t, cfg.Logger().Enabled(context.Background(), slog.LevelInfo))
}
