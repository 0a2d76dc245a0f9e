package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sales-analyzer/internal/store"
)

// defaultSQLiteDSN is used when the sqlite driver has no database_url.
const defaultSQLiteDSN = "sales-analyzer.db"

// initStore opens the configured run log. It returns a nil Store when the
// driver is "none".
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens and migrates the run log. A nil Store with a nil error
// means the run log is disabled.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil || st == nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate run log")
	}
	return st, nil
}
