package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers for the checkpoint and history slots.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFormat is "pretty", "json" or "auto" (pretty on a terminal).
	LogFormat string `env:"LOG_FORMAT" envDefault:"auto"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/exstem-prep.db"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// ArchiveDatabaseURL enables the Postgres archive mirror when set.
	ArchiveDatabaseURL string `env:"ARCHIVE_DATABASE_URL"`
	MaxDBConns         int32  `env:"MAX_DB_CONNS" envDefault:"4"`
	// AMQPURL enables publishing finalized attempts when set.
	AMQPURL string `env:"AMQP_URL"`

	SessionDurationSeconds int           `env:"SESSION_DURATION_SECONDS" envDefault:"3600"`
	TickInterval           time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	AlertTTL               time.Duration `env:"ALERT_TTL" envDefault:"4s"`
	StoreTimeout           time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`
	// CatalogSeed makes the synthesized catalog reproducible; 0 means unseeded.
	CatalogSeed uint64 `env:"CATALOG_SEED" envDefault:"0"`

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"600"`
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AllowedOrigins = trimOrigins(cfg.AllowedOrigins)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionDurationSeconds <= 0 {
		return fmt.Errorf("SESSION_DURATION_SECONDS must be positive, got %d", c.SessionDurationSeconds)
	}
	return nil
}

// ArchiveEnabled reports whether finalized attempts are mirrored to Postgres.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveDatabaseURL != ""
}

// trimOrigins drops blank entries. Returns nil (allow-all) if nothing is left.
func trimOrigins(raw []string) []string {
	var origins []string
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
