package testing

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const defaultPGImage = "postgres:17.5"

type PGConfig struct {
	Image    string
	Database string
	Username string
	Password string
}

func (c PGConfig) withDefaults() PGConfig {
	if c.Image == "" {
		c.Image = defaultPGImage
	}
	if c.Database == "" {
		c.Database = "agreement_test_db"
	}
	if c.Username == "" {
		c.Username = "test"
	}
	if c.Password == "" {
		c.Password = "test"
	}
	return c
}

// PGContainer is a throwaway PostgreSQL instance with an empty database.
// Schema setup is left to the caller so tests run the production migrations.
type PGContainer struct {
	Container  *postgres.PostgresContainer
	ConnString string
}

func NewPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	cfg = cfg.withDefaults()

	c, err := postgres.Run(ctx,
		cfg.Image,
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = c.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PGContainer{Container: c, ConnString: connStr}, nil
}

func (p *PGContainer) Terminate() error {
	return p.Container.Terminate(context.Background())
}
