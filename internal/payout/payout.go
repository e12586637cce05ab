package payout

import (
	"errors"
	"math/big"
)

type Game string

const (
	GameRoulette Game = "roulette"
	GameMines    Game = "mines"
	GamePlinko   Game = "plinko"
)

var ErrInvalidDescriptor = errors.New("invalid_bet_descriptor")
var ErrInvalidOutcome = errors.New("invalid_outcome")
var ErrGameMismatch = errors.New("game_mismatch")

// BetDescriptor is the immutable, game-specific description of what was bet
// on. The ledger treats it as opaque; only this package interprets it.
type BetDescriptor interface {
	Game() Game
	Validate() error
}

// Outcome is the game-specific result supplied by the game's result source.
type Outcome interface {
	Game() Game
}

// Multiplier returns the total payout multiplier (stake included) for the
// given bet and outcome. A losing outcome yields 0/1. The function is pure
// and deterministic; it returns an error only for malformed inputs.
func Multiplier(desc BetDescriptor, out Outcome) (*big.Rat, error) {
	if desc == nil || out == nil {
		return nil, ErrInvalidDescriptor
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.Game() != out.Game() {
		return nil, ErrGameMismatch
	}
	switch d := desc.(type) {
	case RouletteBet:
		o, ok := out.(RouletteOutcome)
		if !ok {
			return nil, ErrInvalidOutcome
		}
		return rouletteMultiplier(d, o)
	case MinesBet:
		o, ok := out.(MinesOutcome)
		if !ok {
			return nil, ErrInvalidOutcome
		}
		return minesMultiplier(d, o)
	case PlinkoBet:
		o, ok := out.(PlinkoOutcome)
		if !ok {
			return nil, ErrInvalidOutcome
		}
		return plinkoMultiplier(d, o)
	default:
		return nil, ErrInvalidDescriptor
	}
}

// Payout computes the integer token payout for a settled wager: the floor of
// amount times the total multiplier. Zero means the stake is lost.
func Payout(amount int64, desc BetDescriptor, out Outcome) (int64, error) {
	mult, err := Multiplier(desc, out)
	if err != nil {
		return 0, err
	}
	total := new(big.Rat).Mul(big.NewRat(amount, 1), mult)
	quo := new(big.Int).Quo(total.Num(), total.Denom())
	return quo.Int64(), nil
}
