package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not_found")

// Store wraps DB access for the durable audit trail behind the in-memory
// ledger.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the archive tables when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS wager_archive (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			bet JSONB NOT NULL,
			amount BIGINT NOT NULL,
			status TEXT NOT NULL,
			remote_ref TEXT NOT NULL DEFAULT '',
			payout BIGINT NOT NULL DEFAULT 0,
			fail_cause TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			settled_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reconciliation_log (
			id TEXT PRIMARY KEY,
			expected BIGINT NOT NULL,
			observed BIGINT NOT NULL,
			drift BIGINT NOT NULL,
			in_flight INT NOT NULL,
			adopted BOOLEAN NOT NULL,
			corrected_at TIMESTAMPTZ NOT NULL
		)`)
	return err
}
