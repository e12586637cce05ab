package wager

import (
	"strconv"
	"sync"
	"time"
)

const (
	EventWagerPlaced      = "wager_placed"
	EventWagerPending     = "wager_pending"
	EventPlacementFailed  = "placement_failed"
	EventWagerSettled     = "wager_settled"
	EventWagerCancelled   = "wager_cancelled"
	EventWagerExpired     = "wager_expired"
	EventBalanceCorrected = "balance_corrected"
)

// Event is a fire-and-forget notification for UI collaborators. Events are
// never part of the consistency mechanism.
type Event struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	WagerID  string `json:"wager_id,omitempty"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data,omitempty"`
}

// EventBuffer keeps a bounded ring of recent events and fans them out to
// subscriber channels. Slow subscribers drop events rather than block the
// ledger.
type EventBuffer struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	events   []Event
	watchers map[chan Event]struct{}
}

func NewEventBuffer(max int) *EventBuffer {
	if max <= 0 {
		max = 500
	}
	return &EventBuffer{
		max:      max,
		watchers: map[chan Event]struct{}{},
	}
}

func (b *EventBuffer) Append(event, wagerID string, data any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ev := Event{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		WagerID:  wagerID,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID, or everything
// still buffered when the id is empty or unparsable.
func (b *EventBuffer) ReplayAfter(lastEventID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		out := make([]Event, len(b.events))
		copy(out, b.events)
		return out
	}
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *EventBuffer) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.watchers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *EventBuffer) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
	b.mu.Unlock()
}
