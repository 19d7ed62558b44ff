package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/agreement-lab/internal/storage"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/pg"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/seed"
)

// NewBackend opens the backend selected by cfg, migrates it if asked to and
// loads the seed file when one is configured.
func NewBackend(ctx context.Context, cfg StorageConfig) (storage.Backend, error) {
	var backend storage.Backend

	switch cfg.Type {
	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("missing PostgreSQL configuration")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		if cfg.MigrateOnStart {
			if err := pg.MigrateUp(pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		backend = pg.NewStore(pool)

	case storage.InMem:
		backend = in_mem.NewStore()

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}

	if cfg.SeedPath != "" {
		if err := seed.LoadFile(ctx, backend, cfg.SeedPath); err != nil {
			backend.Close()
			return nil, err
		}
	}

	return backend, nil
}
