package wager

import (
	"errors"
	"time"

	"token-casino/internal/payout"
)

type Status string

const (
	// StatusPlacing: balance debited, remote transfer in flight.
	StatusPlacing Status = "placing"
	// StatusPending: transfer confirmed (or outcome unknown), awaiting a game
	// outcome.
	StatusPending Status = "pending"
	// StatusSettling is the instant between outcome receipt and payout
	// classification; it never survives a ledger operation.
	StatusSettling Status = "settling"

	StatusPlacementFailed Status = "placement_failed"
	StatusWon             Status = "won"
	StatusLost            Status = "lost"
	StatusCancelled       Status = "cancelled"
	StatusExpired         Status = "expired"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusPlacementFailed, StatusWon, StatusLost, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

var (
	ErrNotReady            = errors.New("ledger_not_ready")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrNotFound            = errors.New("wager_not_found")
	ErrNotSettleable       = errors.New("wager_not_settleable")
	ErrAlreadySettled      = errors.New("already_settled")
	ErrAlreadyCancelled    = errors.New("already_cancelled")
	ErrAlreadyExpired      = errors.New("already_expired")
	ErrPlacementFailed     = errors.New("placement_failed")
)

// Wager is a single bet attempt. Amount is immutable after creation; Payout
// is set exactly once, at the transition into a settled state.
type Wager struct {
	ID               string               `json:"id"`
	Game             payout.Game          `json:"game"`
	Bet              payout.BetDescriptor `json:"bet"`
	Amount           int64                `json:"amount"`
	Status           Status               `json:"status"`
	RemoteRef        string               `json:"remote_ref,omitempty"`
	Payout           int64                `json:"payout"`
	FailCause        string               `json:"fail_cause,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	LastTransitionAt time.Time            `json:"last_transition_at"`
}

// SettlementResult is what Settle returns, and what a repeated Settle on the
// same wager replays unchanged.
type SettlementResult struct {
	WagerID    string `json:"wager_id"`
	Status     Status `json:"status"`
	Payout     int64  `json:"payout"`
	Multiplier string `json:"multiplier"`
}

// terminalError maps a terminal status to the race-loser error for a settle
// or cancel that arrived too late.
func terminalError(s Status) error {
	switch s {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusExpired:
		return ErrAlreadyExpired
	case StatusPlacementFailed:
		return ErrPlacementFailed
	default:
		return ErrAlreadySettled
	}
}
