package payout

import "math/big"

type RouletteClass string

const (
	RouletteStraight RouletteClass = "straight"
	RouletteRed      RouletteClass = "red"
	RouletteBlack    RouletteClass = "black"
	RouletteOdd      RouletteClass = "odd"
	RouletteEven     RouletteClass = "even"
	RouletteLow      RouletteClass = "low"
	RouletteHigh     RouletteClass = "high"
	RouletteDozen    RouletteClass = "dozen"
	RouletteColumn   RouletteClass = "column"
)

// RouletteBet selects one of the standard wager classes. Number is only
// meaningful for straight bets, Index (1..3) only for dozen and column bets.
type RouletteBet struct {
	Class  RouletteClass `json:"class"`
	Number int           `json:"number,omitempty"`
	Index  int           `json:"index,omitempty"`
}

func (RouletteBet) Game() Game { return GameRoulette }

func (b RouletteBet) Validate() error {
	switch b.Class {
	case RouletteStraight:
		if b.Number < 0 || b.Number > 36 {
			return ErrInvalidDescriptor
		}
	case RouletteDozen, RouletteColumn:
		if b.Index < 1 || b.Index > 3 {
			return ErrInvalidDescriptor
		}
	case RouletteRed, RouletteBlack, RouletteOdd, RouletteEven, RouletteLow, RouletteHigh:
	default:
		return ErrInvalidDescriptor
	}
	return nil
}

// RouletteOutcome is the winning number, 0..36.
type RouletteOutcome struct {
	Number int `json:"number"`
}

func (RouletteOutcome) Game() Game { return GameRoulette }

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// winMultiplier is the winnings-to-stake ratio per class; the total payout on
// a win is stake * (winMultiplier + 1).
func winMultiplier(class RouletteClass) int64 {
	switch class {
	case RouletteStraight:
		return 35
	case RouletteDozen, RouletteColumn:
		return 2
	default:
		return 1
	}
}

// satisfies reports whether the spun number falls in the bet's class. Zero is
// green: it satisfies no class other than a straight bet on 0 itself.
func (b RouletteBet) satisfies(n int) bool {
	if b.Class == RouletteStraight {
		return n == b.Number
	}
	if n == 0 {
		return false
	}
	switch b.Class {
	case RouletteRed:
		return redNumbers[n]
	case RouletteBlack:
		return !redNumbers[n]
	case RouletteOdd:
		return n%2 == 1
	case RouletteEven:
		return n%2 == 0
	case RouletteLow:
		return n <= 18
	case RouletteHigh:
		return n >= 19
	case RouletteDozen:
		return (n-1)/12+1 == b.Index
	case RouletteColumn:
		return (n-1)%3+1 == b.Index
	default:
		return false
	}
}

func rouletteMultiplier(b RouletteBet, o RouletteOutcome) (*big.Rat, error) {
	if o.Number < 0 || o.Number > 36 {
		return nil, ErrInvalidOutcome
	}
	if !b.satisfies(o.Number) {
		return new(big.Rat), nil
	}
	return big.NewRat(winMultiplier(b.Class)+1, 1), nil
}
