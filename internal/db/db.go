// Package db opens the configured document store and loads bootstrap data.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/bistro/internal/config"
	"github.com/geocoder89/bistro/internal/domain/user"
	"github.com/geocoder89/bistro/internal/repo"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/geocoder89/bistro/internal/store/memory"
	"github.com/geocoder89/bistro/internal/store/mongostore"
	"github.com/geocoder89/bistro/internal/store/pgstore"
	"github.com/geocoder89/bistro/internal/store/redisstore"
)

// Open connects to the backend named by cfg.StoreDriver, checks it is
// reachable and applies the indexes the domain relies on.
func Open(ctx context.Context, cfg config.Config) (store.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := EnsureIndexes(ctx, database); err != nil {
		_ = database.Close(context.Background())
		return nil, err
	}
	return database, nil
}

func open(ctx context.Context, cfg config.Config) (store.Database, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.MongoURL(), cfg.DBName)
	case config.DriverPostgres:
		return pgstore.Open(ctx, cfg.PostgresURL)
	case config.DriverRedis:
		return redisstore.Open(ctx, redisstore.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.DBName + ":",
		})
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// EnsureIndexes makes users.email unique on backends that support it.
// Redis has no such index; registration there relies on the lookup alone.
func EnsureIndexes(ctx context.Context, database store.Database) error {
	ix, ok := database.(store.UniqueIndexer)
	if !ok {
		return nil
	}
	return ix.EnsureUnique(ctx, repo.UserCollection, user.EmailField)
}
