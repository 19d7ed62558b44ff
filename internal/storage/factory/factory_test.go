package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/agreement-lab/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    storage.Type
		migrate bool
		wantErr bool
	}{
		{name: "missing type", env: map[string]string{}, wantErr: true},
		{name: "unknown type", env: map[string]string{"STORAGE_TYPE": "es"}, wantErr: true},
		{name: "in memory", env: map[string]string{"STORAGE_TYPE": "in_mem"}, want: storage.InMem, migrate: true},
		{name: "pg without connection string", env: map[string]string{"STORAGE_TYPE": "pg"}, wantErr: true},
		{
			name:    "pg",
			env:     map[string]string{"STORAGE_TYPE": "pg", "PG_CONNECTION_STRING": "postgres://u:p@localhost/db", "MIGRATE_ON_START": "false"},
			want:    storage.PG,
			migrate: false,
		},
		{name: "bad migrate flag", env: map[string]string{"STORAGE_TYPE": "in_mem", "MIGRATE_ON_START": "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"STORAGE_TYPE", "PG_CONNECTION_STRING", "MIGRATE_ON_START", "PG_MAX_CONNS", "SEED_PATH"} {
				t.Setenv(k, tt.env[k])
			}

			cfg, err := LoadEnv()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Type)
			assert.Equal(t, tt.migrate, cfg.MigrateOnStart)
			if tt.want == storage.PG {
				require.NotNil(t, cfg.Pg)
			}
		})
	}
}

func TestNewBackend_InMemWithSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - id: 1
    call_id: c1
gold_standards:
  - id: gs
    name: strategies
    variable: "X"
    modality: audio
    labels:
      1: REFLET
`), 0o600))

	backend, err := NewBackend(context.Background(), StorageConfig{Type: storage.InMem, SeedPath: path})
	require.NoError(t, err)
	defer backend.Close()

	assert.True(t, backend.Healthy(context.Background()))
	cur, err := backend.CurrentVersion(context.Background(), 1, "gs")
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "REFLET", cur.Label)
}

func TestNewBackend_Unsupported(t *testing.T) {
	_, err := NewBackend(context.Background(), StorageConfig{Type: "es"})
	assert.Error(t, err)

	_, err = NewBackend(context.Background(), StorageConfig{Type: storage.PG})
	assert.Error(t, err)
}
