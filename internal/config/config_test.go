package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
log:
  level: debug
  format: console
postgres:
  url: postgres://file
catalog:
  ttl: 2m
scoring:
  serialize_writes: true
  lock_ttl: 3s
`), 0o600))

	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("POSTGRES_URL", "postgres://env")
	t.Setenv("REDIS_DB", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://env", cfg.Postgres.URL)
	assert.Equal(t, 4, cfg.Redis.DB)
	assert.True(t, cfg.Scoring.SerializeWrites)
	assert.Equal(t, 2*time.Minute, TTLDuration(cfg.Catalog.TTL, time.Minute))
	assert.Equal(t, 3*time.Second, TTLDuration(cfg.Scoring.LockTTL, time.Second))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Postgres.URL)
}

func TestTTLDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, TTLDuration("90s", time.Minute))
}
