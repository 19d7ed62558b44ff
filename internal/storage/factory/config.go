package factory

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/DjordjeVuckovic/agreement-lab/internal/storage"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/pg"
	"github.com/DjordjeVuckovic/agreement-lab/pkg/config/env"
)

type StorageConfig struct {
	storage.Type
	Pg *pg.PoolConfig
	// MigrateOnStart applies the embedded schema migrations when the pg backend opens.
	MigrateOnStart bool
	// SeedPath is an optional YAML seed loaded after the backend opens.
	SeedPath string
}

func LoadEnv() (*StorageConfig, error) {
	storageType := (storage.Type)(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		slog.Error("STORAGE_TYPE environment variable is not set")
		return nil, fmt.Errorf("STORAGE_TYPE environment variable is not set")
	}
	if storageType != storage.PG && storageType != storage.InMem {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType,
			[]storage.Type{storage.PG, storage.InMem})
	}

	migrate, err := env.Bool("MIGRATE_ON_START", true)
	if err != nil {
		return nil, err
	}

	var pgCfg *pg.PoolConfig
	if storageType == storage.PG {
		pgCfg = &pg.PoolConfig{
			ConnStr: os.Getenv("PG_CONNECTION_STRING"),
		}
		if pgCfg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
		maxConns, err := env.Int("PG_MAX_CONNS", 0)
		if err != nil {
			return nil, err
		}
		if maxConns < 0 || maxConns > math.MaxInt32 {
			return nil, fmt.Errorf("invalid PG_MAX_CONNS value %d", maxConns)
		}
		pgCfg.MaxConns = int32(maxConns)
	}

	return &StorageConfig{
		Type:           storageType,
		Pg:             pgCfg,
		MigrateOnStart: migrate,
		SeedPath:       os.Getenv("SEED_PATH"),
	}, nil
}
