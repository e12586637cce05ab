package store

import (
	"context"
	"encoding/json"
	"time"

	"token-casino/internal/wager"
)

// ArchivedWager is the persisted form of a terminal wager; the bet descriptor
// is kept as raw JSON since the archive never interprets it.
type ArchivedWager struct {
	ID        string          `json:"id"`
	Game      string          `json:"game"`
	Bet       json.RawMessage `json:"bet"`
	Amount    int64           `json:"amount"`
	Status    string          `json:"status"`
	RemoteRef string          `json:"remote_ref,omitempty"`
	Payout    int64           `json:"payout"`
	FailCause string          `json:"fail_cause,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	SettledAt time.Time       `json:"settled_at"`
}

// ArchiveWager records a terminal wager. Replays (the sweep and a late settle
// never archive the same id twice, but crash recovery might) are ignored.
func (s *Store) ArchiveWager(ctx context.Context, w wager.Wager) error {
	bet, err := json.Marshal(w.Bet)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO wager_archive (id, game, bet, amount, status, remote_ref, payout, fail_cause, created_at, settled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO NOTHING`,
		w.ID, string(w.Game), bet, w.Amount, string(w.Status), w.RemoteRef, w.Payout, w.FailCause, w.CreatedAt, w.LastTransitionAt)
	return err
}

type ArchiveFilter struct {
	Game   string
	Status string
}

func (s *Store) ListArchivedWagers(ctx context.Context, f ArchiveFilter, limit, offset int) ([]ArchivedWager, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, game, bet, amount, status, remote_ref, payout, fail_cause, created_at, settled_at
		FROM wager_archive
		WHERE ($1 = '' OR game = $1) AND ($2 = '' OR status = $2)
		ORDER BY settled_at DESC
		LIMIT $3 OFFSET $4`,
		f.Game, f.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ArchivedWager, 0, limit)
	for rows.Next() {
		var a ArchivedWager
		if err := rows.Scan(&a.ID, &a.Game, &a.Bet, &a.Amount, &a.Status, &a.RemoteRef, &a.Payout, &a.FailCause, &a.CreatedAt, &a.SettledAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetArchivedWager returns one archived wager by id.
func (s *Store) GetArchivedWager(ctx context.Context, id string) (*ArchivedWager, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, game, bet, amount, status, remote_ref, payout, fail_cause, created_at, settled_at
		FROM wager_archive WHERE id = $1`, id)
	var a ArchivedWager
	if err := row.Scan(&a.ID, &a.Game, &a.Bet, &a.Amount, &a.Status, &a.RemoteRef, &a.Payout, &a.FailCause, &a.CreatedAt, &a.SettledAt); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
