package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/atmx/caravan/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"CARAVAN_STORE", "CARAVAN_SQLITE_PATH", "DATABASE_URL", "REDIS_URL", "CARAVAN_CACHE_TTL", "LOG_LEVEL", "CARAVAN_SEED", "CARAVAN_CATALOG", "CARAVAN_PLAYER"} {
		t.Setenv(k, "") // restores the original value after the test
		os.Unsetenv(k)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != config.StoreSQLite || cfg.SQLitePath != "caravan.db" {
		t.Errorf("store = %s at %s", cfg.Store, cfg.SQLitePath)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.LogLevel != slog.LevelInfo || cfg.Player != "Trader" || cfg.Seed != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CARAVAN_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/caravan")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CARAVAN_SEED", "42")
	t.Setenv("CARAVAN_CACHE_TTL", "2m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != config.StorePostgres || cfg.LogLevel != slog.LevelDebug || cfg.Seed != 42 || cfg.CacheTTL != 2*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		ok   bool
	}{
		{"sqlite", config.Config{Store: "sqlite", SQLitePath: "x.db"}, true},
		{"memory", config.Config{Store: "memory"}, true},
		{"postgres without url", config.Config{Store: "postgres"}, false},
		{"redis without url", config.Config{Store: "redis"}, false},
		{"redis", config.Config{Store: "redis", RedisURL: "redis://localhost:6379"}, true},
		{"unknown", config.Config{Store: "etcd"}, false},
		{"negative ttl", config.Config{Store: "memory", CacheTTL: -time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
