package reconcile

import (
	"context"
	"time"

	"token-casino/internal/chain"
	"token-casino/internal/retry"
	"token-casino/internal/wager"

	"github.com/rs/zerolog/log"
)

// Record is the durable trace of one reconciliation pass that corrected the
// optimistic balance.
type Record struct {
	ID          string
	Expected    int64
	Observed    int64
	Drift       int64
	InFlight    int
	Adopted     bool
	CorrectedAt time.Time
}

// RecordStore persists reconciliation records. Failures are logged and
// swallowed; the correction itself already happened in the ledger.
type RecordStore interface {
	RecordReconciliation(ctx context.Context, rec Record) error
}

type Config struct {
	// Account is the ledger account whose authoritative balance is polled.
	Account string
	// Interval between drift passes.
	Interval time.Duration
	// SweepInterval between deadline sweeps.
	SweepInterval time.Duration
	// WagerDeadline after which a wager still Placing or Pending is
	// force-rolled-back.
	WagerDeadline time.Duration
}

// Supervisor keeps the optimistic balance from silently diverging from the
// remote authoritative balance, and unsticks wagers that never receive an
// outcome. Local rollback now, remote-truth adoption later if the rollback
// guessed wrong.
type Supervisor struct {
	cfg     Config
	ledger  *wager.Ledger
	source  chain.BalanceSource
	policy  retry.Policy
	records RecordStore
}

func New(cfg Config, ledger *wager.Ledger, source chain.BalanceSource, policy retry.Policy, records RecordStore) *Supervisor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.WagerDeadline <= 0 {
		cfg.WagerDeadline = 2 * time.Minute
	}
	return &Supervisor{cfg: cfg, ledger: ledger, source: source, policy: policy, records: records}
}

// Bootstrap seeds the ledger with the first authoritative balance. Until it
// succeeds the ledger refuses placements.
func (s *Supervisor) Bootstrap(ctx context.Context) error {
	observed, err := s.queryBalance(ctx)
	if err != nil {
		return err
	}
	s.ledger.Seed(observed)
	log.Info().Int64("balance", observed).Str("account", s.cfg.Account).Msg("ledger seeded from remote balance")
	return nil
}

// Start runs the periodic passes until ctx is cancelled.
func (s *Supervisor) Start(ctx context.Context) {
	driftTicker := time.NewTicker(s.cfg.Interval)
	sweepTicker := time.NewTicker(s.cfg.SweepInterval)
	go func() {
		defer driftTicker.Stop()
		defer sweepTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-driftTicker.C:
				s.driftPass(ctx)
			case now := <-sweepTicker.C:
				s.sweep(now)
			}
		}
	}()
}

// driftPass fetches the authoritative balance and hands it to the ledger,
// which adopts it only when no wagers are in flight.
func (s *Supervisor) driftPass(ctx context.Context) {
	observed, err := s.queryBalance(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reconciliation balance query failed")
		return
	}
	res := s.ledger.ReconcileBalance(observed)
	switch {
	case res.Adopted:
		s.record(ctx, res)
	case res.Drift != 0:
		log.Info().Int64("drift", res.Drift).Int("in_flight", res.InFlight).Msg("drift observed while wagers in flight, deferring")
	}
}

// sweep expires wagers stuck past the deadline through the ledger's own
// rollback path.
func (s *Supervisor) sweep(now time.Time) {
	swept := s.ledger.ExpireStale(now, s.cfg.WagerDeadline)
	if len(swept) > 0 {
		log.Warn().Int("count", len(swept)).Msg("stale wagers swept")
	}
}

func (s *Supervisor) queryBalance(ctx context.Context) (int64, error) {
	var observed int64
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		v, err := s.source.QueryBalance(ctx, s.cfg.Account)
		if err == nil {
			observed = v
		}
		return err
	}, chain.Classify)
	return observed, err
}

func (s *Supervisor) record(ctx context.Context, res wager.ReconcileResult) {
	if s.records == nil {
		return
	}
	rec := Record{
		ID:          wager.NewID(),
		Expected:    res.Expected,
		Observed:    res.Observed,
		Drift:       res.Drift,
		InFlight:    res.InFlight,
		Adopted:     res.Adopted,
		CorrectedAt: res.At,
	}
	if err := s.records.RecordReconciliation(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("reconciliation record persist failed")
	}
}
