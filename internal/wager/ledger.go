package wager

import (
	"context"
	"sort"
	"sync"
	"time"

	"token-casino/internal/chain"
	"token-casino/internal/payout"
	"token-casino/internal/retry"

	"github.com/rs/zerolog/log"
)

// Archiver persists terminal wagers for audit queries. Archive failures are
// logged and swallowed: the in-memory registry stays authoritative.
type Archiver interface {
	ArchiveWager(ctx context.Context, w Wager) error
}

type Config struct {
	// HouseAccount receives placement transfers.
	HouseAccount string
	// SpenderAccount, when set, is pre-authorized via ApproveSpender before
	// each placement transfer.
	SpenderAccount string
	// PlacementTimeout bounds the whole remote placement attempt, retries
	// included.
	PlacementTimeout time.Duration
	HistorySize      int
	EventBufferSize  int
}

func (c Config) withDefaults() Config {
	if c.PlacementTimeout <= 0 {
		c.PlacementTimeout = 30 * time.Second
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 200
	}
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = 500
	}
	return c
}

// Ledger owns the optimistic balance and the wager registry. Every mutation
// of either goes through a Ledger method under one mutex; no collaborator
// touches them directly.
type Ledger struct {
	cfg     Config
	source  chain.BalanceSource
	policy  retry.Policy
	archive Archiver
	events  *EventBuffer

	mu               sync.Mutex
	ready            bool
	balance          int64
	active           map[string]*Wager
	history          []*Wager
	results          map[string]SettlementResult
	lastReconciledAt time.Time
}

func NewLedger(cfg Config, source chain.BalanceSource, policy retry.Policy, archive Archiver) *Ledger {
	cfg = cfg.withDefaults()
	return &Ledger{
		cfg:     cfg,
		source:  source,
		policy:  policy,
		archive: archive,
		events:  NewEventBuffer(cfg.EventBufferSize),
		active:  map[string]*Wager{},
		results: map[string]SettlementResult{},
	}
}

func (l *Ledger) Events() *EventBuffer { return l.events }

// Seed installs the first authoritative balance and opens the ledger for
// placements. Later drift is handled by reconciliation, not by re-seeding.
func (l *Ledger) Seed(balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return
	}
	l.ready = true
	l.balance = balance
}

// Reset tears the session down: registry, history and balance are dropped
// and the ledger refuses placements until re-seeded.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ready = false
	l.balance = 0
	l.active = map[string]*Wager{}
	l.history = nil
	l.results = map[string]SettlementResult{}
}

// Info is the read-only balance view for the UI.
type Info struct {
	Balance          int64     `json:"balance"`
	Ready            bool      `json:"ready"`
	InFlight         int       `json:"in_flight"`
	LastReconciledAt time.Time `json:"last_reconciled_at"`
}

func (l *Ledger) Info() Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Info{
		Balance:          l.balance,
		Ready:            l.ready,
		InFlight:         len(l.active),
		LastReconciledAt: l.lastReconciledAt,
	}
}

func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Place debits the optimistic balance synchronously, registers the wager in
// Placing, and hands the remote transfer to a background task that drives
// the next transition. A second Place issued immediately after checks
// against the already-debited balance.
func (l *Ledger) Place(ctx context.Context, game payout.Game, bet payout.BetDescriptor, amount int64) (Wager, error) {
	if bet == nil || bet.Game() != game {
		return Wager{}, payout.ErrInvalidDescriptor
	}
	if err := bet.Validate(); err != nil {
		return Wager{}, err
	}
	if amount <= 0 {
		return Wager{}, ErrInvalidAmount
	}

	l.mu.Lock()
	if !l.ready {
		l.mu.Unlock()
		return Wager{}, ErrNotReady
	}
	if amount > l.balance {
		l.mu.Unlock()
		return Wager{}, ErrInsufficientBalance
	}
	now := time.Now()
	w := &Wager{
		ID:               NewID(),
		Game:             game,
		Bet:              bet,
		Amount:           amount,
		Status:           StatusPlacing,
		CreatedAt:        now,
		LastTransitionAt: now,
	}
	l.balance -= amount
	l.active[w.ID] = w
	snapshot := *w
	l.mu.Unlock()

	log.Info().Str("wager_id", w.ID).Str("game", string(game)).Int64("amount", amount).Msg("wager placed")
	l.events.Append(EventWagerPlaced, w.ID, map[string]any{"game": game, "amount": amount})

	go l.runPlacement(snapshot.ID, amount)
	return snapshot, nil
}

// runPlacement performs the remote side of a placement: optional spender
// approval, then the transfer, both through the retry policy. The result
// drives the Placing transition; a wager cancelled or swept in the meantime
// discards the late result.
func (l *Ledger) runPlacement(id string, amount int64) {
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.PlacementTimeout)
	defer cancel()

	if l.cfg.SpenderAccount != "" {
		err := l.policy.Do(ctx, func(ctx context.Context) error {
			_, err := l.source.ApproveSpender(ctx, l.cfg.SpenderAccount, amount)
			return err
		}, chain.Classify)
		if err != nil {
			l.failPlacement(id, amount, err)
			return
		}
	}

	var receipt chain.TransferReceipt
	err := l.policy.Do(ctx, func(ctx context.Context) error {
		r, err := l.source.Transfer(ctx, l.cfg.HouseAccount, amount, id)
		if err == nil {
			receipt = r
		}
		return err
	}, chain.Classify)
	switch {
	case err == nil:
		l.confirmPlacement(id, receipt.TxID)
	case chain.IsUnknown(err):
		// The transfer may have landed. Hold the wager Pending without a
		// remote ref; the deadline sweep and the next quiescent
		// reconciliation converge it either way.
		l.holdPlacement(id, err)
	default:
		l.failPlacement(id, amount, err)
	}
}

func (l *Ledger) confirmPlacement(id, remoteRef string) {
	l.mu.Lock()
	w, ok := l.active[id]
	if !ok || w.Status != StatusPlacing {
		l.mu.Unlock()
		log.Debug().Str("wager_id", id).Msg("late transfer confirmation discarded")
		return
	}
	w.Status = StatusPending
	w.RemoteRef = remoteRef
	w.LastTransitionAt = time.Now()
	l.mu.Unlock()

	l.events.Append(EventWagerPending, id, map[string]any{"remote_ref": remoteRef})
}

func (l *Ledger) holdPlacement(id string, cause error) {
	l.mu.Lock()
	w, ok := l.active[id]
	if !ok || w.Status != StatusPlacing {
		l.mu.Unlock()
		return
	}
	w.Status = StatusPending
	w.FailCause = "outcome_unknown"
	w.LastTransitionAt = time.Now()
	l.mu.Unlock()

	log.Warn().Str("wager_id", id).Err(cause).Msg("transfer outcome unknown, holding wager pending")
	l.events.Append(EventWagerPending, id, map[string]any{"outcome_unknown": true})
}

func (l *Ledger) failPlacement(id string, amount int64, cause error) {
	l.mu.Lock()
	w, ok := l.active[id]
	if !ok || w.Status != StatusPlacing {
		l.mu.Unlock()
		log.Debug().Str("wager_id", id).Msg("late transfer failure discarded")
		return
	}
	w.Status = StatusPlacementFailed
	w.FailCause = cause.Error()
	w.LastTransitionAt = time.Now()
	l.balance += amount
	l.retireLocked(w)
	snapshot := *w
	l.mu.Unlock()

	log.Warn().Str("wager_id", id).Err(cause).Msg("placement failed, balance rolled back")
	l.events.Append(EventPlacementFailed, id, map[string]any{"cause": snapshot.FailCause, "refund": amount})
	l.archiveTerminal(snapshot)
}

// Settle computes the payout for a pending wager and applies the credit
// exactly once. Repeats replay the recorded result. Status is classified
// from the payout magnitude alone: zero is Lost, anything else Won, so a
// break-even cash-out is a Won with payout equal to the stake.
func (l *Ledger) Settle(ctx context.Context, id string, outcome payout.Outcome) (SettlementResult, error) {
	l.mu.Lock()
	if res, ok := l.results[id]; ok {
		l.mu.Unlock()
		return res, nil
	}
	w, ok := l.active[id]
	if !ok {
		if prev := l.findHistoryLocked(id); prev != nil {
			err := terminalError(prev.Status)
			l.mu.Unlock()
			return SettlementResult{}, err
		}
		l.mu.Unlock()
		return SettlementResult{}, ErrNotFound
	}
	if w.Status != StatusPending {
		l.mu.Unlock()
		return SettlementResult{}, ErrNotSettleable
	}

	mult, err := payout.Multiplier(w.Bet, outcome)
	if err != nil {
		l.mu.Unlock()
		return SettlementResult{}, err
	}
	pay, err := payout.Payout(w.Amount, w.Bet, outcome)
	if err != nil {
		l.mu.Unlock()
		return SettlementResult{}, err
	}

	w.Status = StatusSettling
	w.Payout = pay
	if pay == 0 {
		w.Status = StatusLost
	} else {
		w.Status = StatusWon
		l.balance += pay
	}
	w.LastTransitionAt = time.Now()
	res := SettlementResult{
		WagerID:    id,
		Status:     w.Status,
		Payout:     pay,
		Multiplier: mult.RatString(),
	}
	l.results[id] = res
	l.retireLocked(w)
	snapshot := *w
	l.mu.Unlock()

	log.Info().Str("wager_id", id).Str("status", string(snapshot.Status)).Int64("payout", pay).Msg("wager settled")
	l.events.Append(EventWagerSettled, id, res)
	l.archiveTerminalCtx(ctx, snapshot)
	return res, nil
}

// Cancel rolls the full amount back exactly once for a wager that has not
// settled. The in-flight remote call, if any, cannot be stopped; its eventual
// result is discarded by the Placing-status guard.
func (l *Ledger) Cancel(ctx context.Context, id string) (Wager, error) {
	l.mu.Lock()
	w, ok := l.active[id]
	if !ok {
		if prev := l.findHistoryLocked(id); prev != nil {
			err := terminalError(prev.Status)
			l.mu.Unlock()
			return Wager{}, err
		}
		l.mu.Unlock()
		return Wager{}, ErrNotFound
	}
	w.Status = StatusCancelled
	w.LastTransitionAt = time.Now()
	l.balance += w.Amount
	l.retireLocked(w)
	snapshot := *w
	l.mu.Unlock()

	log.Info().Str("wager_id", id).Int64("refund", snapshot.Amount).Msg("wager cancelled")
	l.events.Append(EventWagerCancelled, id, map[string]any{"refund": snapshot.Amount})
	l.archiveTerminalCtx(ctx, snapshot)
	return snapshot, nil
}

// ExpireStale force-rolls-back wagers stuck past the deadline: a stuck
// Placing becomes PlacementFailed, a stuck Pending becomes Expired, each
// through the same rollback path as a cancel. If the remote transfer
// actually landed, the next quiescent reconciliation adopts the remote value.
func (l *Ledger) ExpireStale(now time.Time, deadline time.Duration) []Wager {
	l.mu.Lock()
	var swept []Wager
	for _, w := range l.active {
		if now.Sub(w.LastTransitionAt) < deadline {
			continue
		}
		if w.Status == StatusPlacing {
			w.Status = StatusPlacementFailed
			w.FailCause = "placement_deadline_exceeded"
		} else {
			w.Status = StatusExpired
		}
		w.LastTransitionAt = now
		l.balance += w.Amount
		l.retireLocked(w)
		swept = append(swept, *w)
	}
	l.mu.Unlock()

	for _, w := range swept {
		log.Warn().Str("wager_id", w.ID).Str("status", string(w.Status)).Int64("refund", w.Amount).Msg("stale wager rolled back")
		l.events.Append(EventWagerExpired, w.ID, map[string]any{"status": w.Status, "refund": w.Amount})
		l.archiveTerminal(w)
	}
	return swept
}

// ReconcileResult is the outcome of one reconciliation pass.
type ReconcileResult struct {
	Expected int64
	Observed int64
	Drift    int64
	InFlight int
	Adopted  bool
	At       time.Time
}

// ReconcileBalance compares the optimistic balance against the observed
// authoritative value under a single lock, so the in-flight check and the
// decision use one consistent snapshot. Remote is adopted only at rest:
// drift while wagers are in flight defers to the next pass.
func (l *Ledger) ReconcileBalance(observed int64) ReconcileResult {
	l.mu.Lock()
	res := ReconcileResult{
		Expected: l.balance,
		Observed: observed,
		Drift:    observed - l.balance,
		InFlight: len(l.active),
		At:       time.Now(),
	}
	l.lastReconciledAt = res.At
	if res.Drift != 0 && res.InFlight == 0 && l.ready {
		l.balance = observed
		res.Adopted = true
	}
	l.mu.Unlock()

	if res.Adopted {
		log.Info().Int64("expected", res.Expected).Int64("observed", res.Observed).Int64("drift", res.Drift).Msg("optimistic balance corrected")
		l.events.Append(EventBalanceCorrected, "", map[string]any{
			"expected": res.Expected,
			"observed": res.Observed,
			"drift":    res.Drift,
		})
	}
	return res
}

// Get returns a snapshot of a live or recently retired wager.
func (l *Ledger) Get(id string) (Wager, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.active[id]; ok {
		return *w, true
	}
	if w := l.findHistoryLocked(id); w != nil {
		return *w, true
	}
	return Wager{}, false
}

// List returns live wagers followed by retired ones, newest first, capped at
// limit.
func (l *Ledger) List(limit int) []Wager {
	if limit <= 0 {
		limit = 50
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Wager, 0, len(l.active)+len(l.history))
	for _, w := range l.active {
		out = append(out, *w)
	}
	sortWagersNewestFirst(out)
	for i := len(l.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *l.history[i])
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// retireLocked moves a wager to the terminal history ring. Eviction never
// touches the balance: its effect was folded in at transition time.
func (l *Ledger) retireLocked(w *Wager) {
	delete(l.active, w.ID)
	l.history = append(l.history, w)
	if len(l.history) > l.cfg.HistorySize {
		evicted := l.history[0]
		l.history = l.history[1:]
		delete(l.results, evicted.ID)
	}
}

func sortWagersNewestFirst(ws []Wager) {
	sort.Slice(ws, func(i, j int) bool {
		return ws[i].CreatedAt.After(ws[j].CreatedAt)
	})
}

func (l *Ledger) findHistoryLocked(id string) *Wager {
	for i := len(l.history) - 1; i >= 0; i-- {
		if l.history[i].ID == id {
			return l.history[i]
		}
	}
	return nil
}

func (l *Ledger) archiveTerminal(w Wager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l.archiveTerminalCtx(ctx, w)
}

func (l *Ledger) archiveTerminalCtx(ctx context.Context, w Wager) {
	if l.archive == nil {
		return
	}
	if err := l.archive.ArchiveWager(ctx, w); err != nil {
		log.Warn().Str("wager_id", w.ID).Err(err).Msg("wager archive failed")
	}
}
