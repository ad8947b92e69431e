package main

import (
	"context"
	"database/sql"
	"fmt"

	currency "github.com/goliatone/go-currency"
	"github.com/goliatone/go-currency/storage"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// openStore builds the configured preference store. The returned closer
// releases network handles.
func openStore(ctx context.Context, cfg settings, logger logrus.FieldLogger) (currency.PreferenceStore, func(), error) {
	noop := func() {}

	switch cfg.Store {
	case "memory":
		return storage.NewMemory(0), noop, nil

	case "redis":
		client, err := storage.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		store := guard(storage.NewRedis(client), "redis", cfg, logger)
		return store, func() { client.Close() }, nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		pg, err := storage.NewPostgres(db, storage.DefaultPostgresTable)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return guard(pg, "postgres", cfg, logger), func() { db.Close() }, nil

	default:
		return storage.NewFile(cfg.StorePath), noop, nil
	}
}

func guard(store storage.Store, name string, cfg settings, logger logrus.FieldLogger) currency.PreferenceStore {
	if !cfg.Breaker {
		return store
	}
	return storage.NewBreaker(store, storage.BreakerSettings{
		Name:   name,
		Logger: logger,
	})
}
