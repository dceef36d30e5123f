package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

func validConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
			SQLite:  SQLiteConfig{Path: ":memory:"},
		},
		Catalog: CatalogConfig{
			BaseURL:     "https://www.dnd5eapi.co/api/2014/",
			HTTPTimeout: 30 * time.Second,
			CacheTTL:    time.Hour,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "charbuilder.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Catalog.HTTPTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Catalog.CacheTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charbuilder.yaml")
	err := os.WriteFile(path, []byte(`
store:
  backend: redis
  redis:
    addr: redis.internal:6379
    db: 3
catalog:
  http_timeout: 5s
logging:
  level: debug
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, 5*time.Second, cfg.Catalog.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.SlogLevel())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHARBUILDER_STORE_BACKEND", "redis")
	t.Setenv("CHARBUILDER_STORE_REDIS_ADDR", "cache:6380")
	t.Setenv("CHARBUILDER_LOGGING_LEVEL", "warn")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, slog.LevelWarn, cfg.Logging.SlogLevel())
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = "postgres"
	cfg.Catalog.HTTPTimeout = 0
	cfg.Logging.Level = "trace"

	err := cfg.Validate()

	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "store.backend")
	assert.Contains(t, err.Error(), "catalog.http_timeout")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidateBackendSettings(t *testing.T) {
	t.Run("redis needs an address", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.Backend = BackendRedis
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.redis.addr")
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.SQLite.Path = " "
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.sqlite.path")
	})
}

func TestProperty_LogLevelValidation(t *testing.T) {
	valid := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.OneOf(
			rapid.SampledFrom([]string{"debug", "info", "warn", "error"}),
			rapid.StringMatching(`[a-z]{1,8}`),
		).Draw(t, "level")

		cfg := validConfig()
		cfg.Logging.Level = level
		err := cfg.Validate()

		if valid[level] && err != nil {
			t.Fatalf("level %q rejected: %v", level, err)
		}
		if !valid[level] && err == nil {
			t.Fatalf("level %q accepted", level)
		}
	})
}
