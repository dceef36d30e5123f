// Package config provides Viper-based configuration loading for charbuilder.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

// EnvPrefix namespaces environment overrides, e.g. CHARBUILDER_STORE_BACKEND
const EnvPrefix = "CHARBUILDER"

// Store backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SQLiteConfig holds the sqlite database location.
type SQLiteConfig struct {
	// Path is a file path or ":memory:"
	Path string `mapstructure:"path"`
}

// StoreConfig selects and configures the record backend.
type StoreConfig struct {
	Backend string       `mapstructure:"backend"`
	Redis   RedisConfig  `mapstructure:"redis"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
}

// CatalogConfig holds the upstream catalog API settings.
type CatalogConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
}

// SlogLevel converts Level for slog handlers. Unknown values map to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the top-level application configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants and reports every violation.
func (c Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Store.Backend {
	case BackendRedis:
		errors.ValidateRequired("store.redis.addr", c.Store.Redis.Addr, vb)
		if c.Store.Redis.DB < 0 {
			vb.Fieldf("store.redis.db", "must be >= 0, got %d", c.Store.Redis.DB)
		}
	case BackendSQLite:
		errors.ValidateRequired("store.sqlite.path", c.Store.SQLite.Path, vb)
	default:
		errors.ValidateEnum("store.backend", c.Store.Backend, []string{BackendRedis, BackendSQLite}, vb)
	}

	errors.ValidateRequired("catalog.base_url", c.Catalog.BaseURL, vb)
	if c.Catalog.HTTPTimeout <= 0 {
		vb.Field("catalog.http_timeout", "must be positive")
	}
	if c.Catalog.CacheTTL < 0 {
		vb.Field("catalog.cache_ttl", "must not be negative")
	}

	errors.ValidateEnum("logging.level", c.Logging.Level, []string{"debug", "info", "warn", "error"}, vb)

	return vb.Build()
}

// Load reads the optional config file at path, applies CHARBUILDER_*
// environment overrides and defaults, then validates the result.
func Load(path string) (Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "reading config file")
		}
	}
	return LoadFromViper(v)
}

// New returns a Viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.sqlite.path", "charbuilder.db")

	v.SetDefault("catalog.base_url", "https://www.dnd5eapi.co/api/2014/")
	v.SetDefault("catalog.http_timeout", "30s")
	v.SetDefault("catalog.cache_ttl", "24h")

	v.SetDefault("logging.level", "info")
}
