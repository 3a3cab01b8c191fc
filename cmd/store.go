package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/store"
)

// initStore opens the configured run-history store. The "none" driver
// disables persistence and yields a nil store.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "evidence.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	case "none":
		return nil, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadMapping returns the column-spelling vocabulary, extended from the
// configured overrides file when one is set.
func loadMapping() (schema.Mapping, error) {
	if cfg.Schema.MappingsFile == "" {
		return schema.DefaultMapping(), nil
	}
	return schema.LoadMapping(cfg.Schema.MappingsFile)
}
