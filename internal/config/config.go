// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends selectable through CARAVAN_STORE.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Store       string        `env:"CARAVAN_STORE" envDefault:"sqlite"`
	SQLitePath  string        `env:"CARAVAN_SQLITE_PATH" envDefault:"caravan.db"`
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisURL    string        `env:"REDIS_URL"`
	CacheTTL    time.Duration `env:"CARAVAN_CACHE_TTL" envDefault:"30s"`
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	Seed        int64         `env:"CARAVAN_SEED"` // 0 picks a random seed
	CatalogPath string        `env:"CARAVAN_CATALOG"`
	Player      string        `env:"CARAVAN_PLAYER" envDefault:"Trader"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected store has what it needs to connect.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("CARAVAN_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown CARAVAN_STORE %q", c.Store)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CARAVAN_CACHE_TTL must not be negative")
	}
	return nil
}
