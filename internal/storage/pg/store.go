package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type txKey struct{}

// Store is the PostgreSQL backend. Statements issued with a context returned
// by WithinTx run on that transaction, everything else runs on the pool.
type Store struct {
	pool *ConnectionPool
}

func NewStore(pool *ConnectionPool) *Store {
	return &Store{pool: pool}
}

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool.GetConn()
}

// WithinTx commits when fn returns nil. A nested call opens a savepoint on the
// outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgx.BeginFunc(ctx, s.q(ctx), func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// withKeyLock serialises writers of one (item, gold standard) key until the
// surrounding transaction ends.
func (s *Store) withKeyLock(ctx context.Context, itemID int64, goldStandardID string, fn func(ctx context.Context) error) error {
	return s.WithinTx(ctx, func(ctx context.Context) error {
		key := fmt.Sprintf("%s:%d", goldStandardID, itemID)
		_, err := s.q(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
		if err != nil {
			return err
		}
		return fn(ctx)
	})
}

func (s *Store) Healthy(ctx context.Context) bool {
	if s.pool == nil {
		return false
	}
	return s.pool.Ping(ctx) == nil
}

func (s *Store) Close() {
	s.pool.Close()
}
