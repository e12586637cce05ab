package payout

import "math/big"

type PlinkoRisk string

const (
	PlinkoLow    PlinkoRisk = "low"
	PlinkoMedium PlinkoRisk = "medium"
	PlinkoHigh   PlinkoRisk = "high"
)

// PlinkoBet fixes the board: a risk level and the number of peg rows. A board
// with n rows has n+1 landing slots.
type PlinkoBet struct {
	Risk PlinkoRisk `json:"risk"`
	Rows int        `json:"rows"`
}

func (PlinkoBet) Game() Game { return GamePlinko }

func (b PlinkoBet) Validate() error {
	switch b.Risk {
	case PlinkoLow, PlinkoMedium, PlinkoHigh:
	default:
		return ErrInvalidDescriptor
	}
	if _, ok := plinkoTables[b.Rows]; !ok {
		return ErrInvalidDescriptor
	}
	return nil
}

// PlinkoOutcome is the landing slot index, 0..rows, produced by the physics
// collaborator.
type PlinkoOutcome struct {
	Slot int `json:"slot"`
}

func (PlinkoOutcome) Game() Game { return GamePlinko }

// Multipliers in tenths of the stake, keyed by row count then risk. Each
// table is symmetric around the center slot; the extremes carry the largest
// values and the center the smallest.
var plinkoTables = map[int]map[PlinkoRisk][]int64{
	8: {
		PlinkoLow:    {56, 21, 11, 10, 5, 10, 11, 21, 56},
		PlinkoMedium: {130, 30, 13, 7, 4, 7, 13, 30, 130},
		PlinkoHigh:   {290, 40, 15, 3, 2, 3, 15, 40, 290},
	},
	12: {
		PlinkoLow:    {100, 30, 16, 14, 11, 10, 5, 10, 11, 14, 16, 30, 100},
		PlinkoMedium: {330, 110, 40, 20, 11, 6, 3, 6, 11, 20, 40, 110, 330},
		PlinkoHigh:   {1700, 240, 81, 20, 7, 2, 2, 2, 7, 20, 81, 240, 1700},
	},
	16: {
		PlinkoLow:    {160, 90, 20, 14, 14, 12, 11, 10, 5, 10, 11, 12, 14, 14, 20, 90, 160},
		PlinkoMedium: {1100, 410, 100, 50, 30, 15, 10, 5, 3, 5, 10, 15, 30, 50, 100, 410, 1100},
		PlinkoHigh:   {10000, 1300, 260, 90, 40, 20, 2, 2, 2, 2, 2, 20, 40, 90, 260, 1300, 10000},
	},
}

func plinkoMultiplier(b PlinkoBet, o PlinkoOutcome) (*big.Rat, error) {
	table := plinkoTables[b.Rows][b.Risk]
	if o.Slot < 0 || o.Slot >= len(table) {
		return nil, ErrInvalidOutcome
	}
	return big.NewRat(table[o.Slot], 10), nil
}
