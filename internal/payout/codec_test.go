package payout

import (
	"encoding/json"
	"testing"
)

func TestParseBetRoundTrip(t *testing.T) {
	bet, err := ParseBet(GameRoulette, json.RawMessage(`{"class":"dozen","index":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rb, ok := bet.(RouletteBet)
	if !ok || rb.Class != RouletteDozen || rb.Index != 2 {
		t.Fatalf("unexpected descriptor: %+v", bet)
	}
}

func TestParseBetRejectsInvalid(t *testing.T) {
	if _, err := ParseBet(GameMines, json.RawMessage(`{"mines_count":0}`)); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := ParseBet("dice", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected unknown game error")
	}
	if _, err := ParseBet(GamePlinko, nil); err == nil {
		t.Fatalf("expected empty payload error")
	}
}

func TestParseOutcomePerGame(t *testing.T) {
	out, err := ParseOutcome(GameMines, json.RawMessage(`{"revealed":3,"hit_mine":false}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mo, ok := out.(MinesOutcome)
	if !ok || mo.Revealed != 3 || mo.HitMine {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if _, err := ParseOutcome("dice", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected unknown game error")
	}
}
