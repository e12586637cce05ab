package wager

import "testing"

func TestEventBufferReplayAfter(t *testing.T) {
	b := NewEventBuffer(10)
	b.Append(EventWagerPlaced, "w1", nil)
	b.Append(EventWagerPending, "w1", nil)
	third := b.Append(EventWagerSettled, "w1", nil)

	all := b.ReplayAfter("")
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	tail := b.ReplayAfter(all[1].EventID)
	if len(tail) != 1 || tail[0].EventID != third.EventID {
		t.Fatalf("expected only the third event, got %+v", tail)
	}
}

func TestEventBufferBounded(t *testing.T) {
	b := NewEventBuffer(3)
	for i := 0; i < 10; i++ {
		b.Append(EventWagerPlaced, "w", nil)
	}
	got := b.ReplayAfter("")
	if len(got) != 3 {
		t.Fatalf("expected ring of 3, got %d", len(got))
	}
	if got[0].EventID != "8" {
		t.Fatalf("expected oldest surviving event 8, got %s", got[0].EventID)
	}
}

func TestEventBufferSubscribe(t *testing.T) {
	b := NewEventBuffer(10)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	sent := b.Append(EventBalanceCorrected, "", map[string]any{"drift": int64(50)})
	got := <-ch
	if got.EventID != sent.EventID || got.Event != EventBalanceCorrected {
		t.Fatalf("expected fan-out of appended event, got %+v", got)
	}
}

func TestEventBufferSlowSubscriberDrops(t *testing.T) {
	b := NewEventBuffer(200)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)
	for i := 0; i < 100; i++ {
		b.Append(EventWagerPlaced, "w", nil)
	}
	// Channel capacity is 64; the rest must be dropped, never block.
	if len(ch) != 64 {
		t.Fatalf("expected full channel of 64, got %d", len(ch))
	}
}
