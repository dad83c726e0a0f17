package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/gatehouse/internal/platform/db"
	"github.com/odyssey-erp/gatehouse/internal/platform/docstore"
	"github.com/odyssey-erp/gatehouse/internal/users"
)

// OpenUserStore connects the configured backend, prepares its schema or
// indexes and returns the store with a function releasing its connections.
func OpenUserStore(ctx context.Context, cfg StoreConfig, logger *slog.Logger) (users.Store, func(context.Context) error, error) {
	switch cfg.Backend {
	case StoreMongo:
		client, err := docstore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		store := users.NewMongoStore(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		logger.Info("user store ready", slog.String("backend", cfg.Backend), slog.String("database", cfg.MongoDatabase))
		return store, client.Disconnect, nil

	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, MaxConnLifetime: cfg.PGConnLifetime})
		if err != nil {
			return nil, nil, err
		}
		if err := users.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("user store ready", slog.String("backend", cfg.Backend))
		return users.NewPGStore(pool), func(context.Context) error {
			pool.Close()
			return nil
		}, nil

	case StoreMemory:
		logger.Warn("using in-memory user store; accounts are lost on restart")
		return users.NewMemoryStore(), func(context.Context) error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("app: unknown user store %q", cfg.Backend)
	}
}
