package store

import (
	"context"
	"errors"

	"token-casino/internal/reconcile"

	"github.com/jackc/pgx/v5"
)

func (s *Store) RecordReconciliation(ctx context.Context, rec reconcile.Record) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO reconciliation_log (id, expected, observed, drift, in_flight, adopted, corrected_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Expected, rec.Observed, rec.Drift, rec.InFlight, rec.Adopted, rec.CorrectedAt)
	return err
}

func (s *Store) ListReconciliations(ctx context.Context, limit, offset int) ([]reconcile.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, expected, observed, drift, in_flight, adopted, corrected_at
		FROM reconciliation_log
		ORDER BY corrected_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]reconcile.Record, 0, limit)
	for rows.Next() {
		var r reconcile.Record
		if err := rows.Scan(&r.ID, &r.Expected, &r.Observed, &r.Drift, &r.InFlight, &r.Adopted, &r.CorrectedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
