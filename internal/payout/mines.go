package payout

import "math/big"

const minesDefaultGridSize = 25

// MinesBet fixes the board shape for a mines round: GridSize cells hiding
// MinesCount mines. A zero GridSize means the standard 5x5 board.
type MinesBet struct {
	MinesCount int `json:"mines_count"`
	GridSize   int `json:"grid_size,omitempty"`
}

func (MinesBet) Game() Game { return GameMines }

func (b MinesBet) gridSize() int {
	if b.GridSize == 0 {
		return minesDefaultGridSize
	}
	return b.GridSize
}

func (b MinesBet) Validate() error {
	grid := b.gridSize()
	if grid < 2 {
		return ErrInvalidDescriptor
	}
	if b.MinesCount < 1 || b.MinesCount >= grid {
		return ErrInvalidDescriptor
	}
	return nil
}

// MinesOutcome is the state of the round at cash-out or bust: how many safe
// cells were revealed, and whether the last reveal hit a mine.
type MinesOutcome struct {
	Revealed int  `json:"revealed"`
	HitMine  bool `json:"hit_mine"`
}

func (MinesOutcome) Game() Game { return GameMines }

// minesMultiplier is the fair inverse-hypergeometric product: surviving k
// reveals has probability prod (safe-i)/(grid-i), so the multiplier is the
// reciprocal, 1 at zero reveals and strictly increasing per safe reveal.
// Hitting a mine voids the round.
func minesMultiplier(b MinesBet, o MinesOutcome) (*big.Rat, error) {
	grid := b.gridSize()
	safe := grid - b.MinesCount
	if o.Revealed < 0 || o.Revealed > safe {
		return nil, ErrInvalidOutcome
	}
	if o.HitMine {
		return new(big.Rat), nil
	}
	mult := big.NewRat(1, 1)
	for i := 0; i < o.Revealed; i++ {
		mult.Mul(mult, big.NewRat(int64(grid-i), int64(safe-i)))
	}
	return mult, nil
}
