package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atmx/caravan/internal/config"
	"github.com/atmx/caravan/internal/store"
)

// openStore connects the backend named by CARAVAN_STORE. Postgres is
// fronted by a Redis read-through cache when REDIS_URL is also set.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	cfg := a.cfg

	switch cfg.Store {
	case config.StoreMemory:
		slog.Warn("using in-memory store (saves will not persist)")
		return store.NewMemoryStore(), nil

	case config.StoreSQLite:
		st, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.cleanup = append(a.cleanup, func() { st.Close() })
		slog.Debug("opened SQLite store", "path", cfg.SQLitePath)
		return st, nil

	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.cleanup = append(a.cleanup, pool.Close)
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		slog.Info("connected to PostgreSQL")

		var st store.Store = pg
		if cfg.RedisURL != "" {
			rdb, err := a.redisClient(cfg.RedisURL)
			if err != nil {
				return nil, err
			}
			st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
			slog.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
		}
		return st, nil

	case config.StoreRedis:
		rdb, err := a.redisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		slog.Info("connected to Redis")
		return store.NewRedisStore(rdb), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func (a *app) redisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	a.cleanup = append(a.cleanup, func() { rdb.Close() })
	return rdb, nil
}
