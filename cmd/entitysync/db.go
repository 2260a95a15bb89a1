package main

import (
	"context"
	"fmt"
	"strings"

	"entitysync/internal/config"
	"entitysync/internal/store"
	"entitysync/internal/store/postgres"
	"entitysync/internal/store/redis"
	"entitysync/internal/store/sqlite"
)

// openDB picks the store backend from the DSN scheme.
func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN
	scheme, _, _ := strings.Cut(dsn, "://")
	switch scheme {
	case "sqlite":
		return sqlite.New(ctx, dsn)
	case "postgres", "postgresql":
		return postgres.New(ctx, dsn)
	case "redis", "rediss":
		return redis.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database dsn %q", dsn)
	}
}
