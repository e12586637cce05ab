package payout

import "encoding/json"

// ParseBet decodes a game-tagged bet descriptor from its wire form.
func ParseBet(game Game, raw json.RawMessage) (BetDescriptor, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidDescriptor
	}
	switch game {
	case GameRoulette:
		var b RouletteBet
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, ErrInvalidDescriptor
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		return b, nil
	case GameMines:
		var b MinesBet
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, ErrInvalidDescriptor
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		return b, nil
	case GamePlinko:
		var b PlinkoBet
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, ErrInvalidDescriptor
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, ErrInvalidDescriptor
	}
}

// ParseOutcome decodes a game-tagged outcome from its wire form.
func ParseOutcome(game Game, raw json.RawMessage) (Outcome, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidOutcome
	}
	switch game {
	case GameRoulette:
		var o RouletteOutcome
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, ErrInvalidOutcome
		}
		return o, nil
	case GameMines:
		var o MinesOutcome
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, ErrInvalidOutcome
		}
		return o, nil
	case GamePlinko:
		var o PlinkoOutcome
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, ErrInvalidOutcome
		}
		return o, nil
	default:
		return nil, ErrInvalidOutcome
	}
}
