package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"token-casino/internal/wager"
)

func TestEventsHandlerReplaysAfterLastEventID(t *testing.T) {
	buf := wager.NewEventBuffer(10)
	first := buf.Append(wager.EventWagerPlaced, "w1", nil)
	buf.Append(wager.EventWagerSettled, "w1", nil)
	buf.Append(wager.EventWagerPlaced, "w2", nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", first.EventID)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		EventsHandler(buf)(rec, req)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not stop on context cancel")
	}

	body := rec.Body.String()
	if strings.Contains(body, "id: "+first.EventID+"\n") {
		t.Fatalf("replay included event at or before Last-Event-ID: %s", body)
	}
	if !strings.Contains(body, "event: "+wager.EventWagerSettled) {
		t.Fatalf("missing settled event in replay: %s", body)
	}
	if !strings.Contains(body, `"wager_id":"w2"`) {
		t.Fatalf("missing later event in replay: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestEventsHandlerStreamsLiveEvents(t *testing.T) {
	buf := wager.NewEventBuffer(10)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		EventsHandler(buf)(rec, req)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	buf.Append(wager.EventBalanceCorrected, "", map[string]any{"drift": int64(50)})
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(rec.Body.String(), "event: "+wager.EventBalanceCorrected) {
		t.Fatalf("live event not streamed: %s", rec.Body.String())
	}
}
