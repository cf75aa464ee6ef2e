// If you are AI: This file selects and opens the storage backend named in the configuration.

package server

import (
	"context"
	"fmt"

	"logbook/internal/config"
	"logbook/internal/storage"
	"logbook/internal/storage/localfs"
	"logbook/internal/storage/sqlstore"
)

// OpenStorage opens the configured backend.
// The sql backend is pinged and migrated before it is returned.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendFS:
		store, err := localfs.New(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open fs storage: %w", err)
		}
		return store, nil
	case config.BackendSQL:
		pool := sqlstore.DefaultPoolConfig(cfg.Driver, cfg.DSN)
		pool.MaxOpenConns = cfg.MaxOpenConns
		pool.MaxIdleConns = cfg.MaxIdleConns
		if err := pool.Validate(); err != nil {
			return nil, fmt.Errorf("sql storage: %w", err)
		}
		store, err := sqlstore.Open(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("open sql storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
