package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "storemap.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 500.0, cfg.Cluster.EpsMeters)
	assert.Equal(t, 3, cfg.Cluster.MinPoints)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
store:
  driver: postgres
  database_url: postgres://localhost/storemap
cluster:
  eps_meters: 750
  min_points: 5
log:
  level: debug
  format: console
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/storemap", cfg.Store.DatabaseURL)
	assert.Equal(t, 750.0, cfg.Cluster.EpsMeters)
	assert.Equal(t, 5, cfg.Cluster.MinPoints)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOREMAP_STORE_DRIVER", "postgres")
	t.Setenv("STOREMAP_CLUSTER_MIN_POINTS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 7, cfg.Cluster.MinPoints)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Valid(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "console"}))
}
