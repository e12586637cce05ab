package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"token-casino/internal/chain"
	"token-casino/internal/retry"
	"token-casino/internal/wager"

	"github.com/go-chi/chi/v5"
)

type fakeSource struct {
	balance     int64
	transferErr error
}

func (f *fakeSource) QueryBalance(ctx context.Context, account string) (int64, error) {
	return f.balance, nil
}

func (f *fakeSource) Transfer(ctx context.Context, destination string, amount int64, dedupeID string) (chain.TransferReceipt, error) {
	if f.transferErr != nil {
		return chain.TransferReceipt{}, f.transferErr
	}
	return chain.TransferReceipt{TxID: "tx-" + dedupeID}, nil
}

func (f *fakeSource) ApproveSpender(ctx context.Context, spender string, amount int64) (chain.TransferReceipt, error) {
	return chain.TransferReceipt{TxID: "approval"}, nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *wager.Ledger) {
	t.Helper()
	ledger := wager.NewLedger(
		wager.Config{HouseAccount: "house", PlacementTimeout: time.Second},
		&fakeSource{balance: 1000},
		retry.Policy{MaxAttempts: 1, Base: time.Millisecond, MaxDelay: time.Millisecond, MaxElapsed: time.Second},
		nil,
	)
	ledger.Seed(1000)
	h := NewWagerHandlers(ledger)

	r := chi.NewRouter()
	r.Post("/api/wagers", h.Place())
	r.Get("/api/wagers", h.List())
	r.Get("/api/wagers/{wager_id}", h.Get())
	r.Post("/api/wagers/{wager_id}/settle", h.Settle())
	r.Post("/api/wagers/{wager_id}/cancel", h.Cancel())
	r.Get("/api/balance", h.Balance())
	r.Get("/api/events", EventsHandler(ledger.Events()))
	return r, ledger
}

// placedWager is the slice of the place response the tests care about. The
// full wager payload carries a polymorphic bet descriptor that plain
// unmarshalling cannot reconstruct.
type placedWager struct {
	ID     string       `json:"id"`
	Status wager.Status `json:"status"`
}

func placeWager(t *testing.T, r http.Handler, body string) placedWager {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("place status = %d body = %s", rec.Code, rec.Body.String())
	}
	var placed placedWager
	if err := json.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
		t.Fatalf("decode placed wager: %v", err)
	}
	return placed
}

func waitPending(t *testing.T, ledger *wager.Ledger, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w, ok := ledger.Get(id); ok && w.Status == wager.StatusPending {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("wager %s never reached pending", id)
}

func TestPlaceWagerDebitsAndConfirms(t *testing.T) {
	r, ledger := newTestRouter(t)

	placed := placeWager(t, r, `{"game":"roulette","amount":100,"bet":{"class":"red"}}`)
	if placed.Status != wager.StatusPlacing {
		t.Fatalf("status = %s, want placing", placed.Status)
	}
	if got := ledger.Balance(); got != 900 {
		t.Fatalf("balance after place = %d, want 900", got)
	}
	waitPending(t, ledger, placed.ID)
}

func TestPlaceWagerRejectsBadDescriptor(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers",
		strings.NewReader(`{"game":"roulette","amount":100,"bet":{"class":"purple"}}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_bet_descriptor") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestPlaceWagerRejectsInsufficientBalance(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers",
		strings.NewReader(`{"game":"roulette","amount":5000,"bet":{"class":"red"}}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "insufficient_balance") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSettleWagerIdempotent(t *testing.T) {
	r, ledger := newTestRouter(t)
	placed := placeWager(t, r, `{"game":"roulette","amount":100,"bet":{"class":"red"}}`)
	waitPending(t, ledger, placed.ID)

	settle := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers/"+placed.ID+"/settle",
			strings.NewReader(`{"outcome":{"number":7}}`)))
		return rec
	}

	first := settle()
	if first.Code != http.StatusOK {
		t.Fatalf("settle status = %d body = %s", first.Code, first.Body.String())
	}
	var res wager.SettlementResult
	if err := json.Unmarshal(first.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Status != wager.StatusWon || res.Payout != 200 {
		t.Fatalf("result = %+v, want won payout 200", res)
	}
	if got := ledger.Balance(); got != 1100 {
		t.Fatalf("balance after win = %d, want 1100", got)
	}

	second := settle()
	if second.Code != http.StatusOK {
		t.Fatalf("repeat settle status = %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("repeat settle diverged: %s vs %s", first.Body.String(), second.Body.String())
	}
	if got := ledger.Balance(); got != 1100 {
		t.Fatalf("balance after repeat settle = %d, want 1100", got)
	}
}

func TestSettleUnknownWagerIs404(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers/nope/settle",
		strings.NewReader(`{"outcome":{"number":7}}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCancelWagerOnceThenConflict(t *testing.T) {
	r, ledger := newTestRouter(t)
	placed := placeWager(t, r, `{"game":"mines","amount":100,"bet":{"mines_count":3}}`)
	waitPending(t, ledger, placed.ID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers/"+placed.ID+"/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got := ledger.Balance(); got != 1000 {
		t.Fatalf("balance after cancel = %d, want 1000", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers/"+placed.ID+"/cancel", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat cancel status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already_cancelled") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestBalanceEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/balance", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var info wager.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if !info.Ready || info.Balance != 1000 {
		t.Fatalf("info = %+v", info)
	}
}

func TestListWagers(t *testing.T) {
	r, ledger := newTestRouter(t)
	a := placeWager(t, r, `{"game":"roulette","amount":10,"bet":{"class":"odd"}}`)
	b := placeWager(t, r, `{"game":"plinko","amount":10,"bet":{"risk":"low","rows":8}}`)
	waitPending(t, ledger, a.ID)
	waitPending(t, ledger, b.ID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wagers?limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(body.Items))
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	guarded := AdminAuthMiddleware("sekrit")(next)

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reconciliations", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without key = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reconciliations", nil)
	req.Header.Set("X-Admin-Key", "sekrit")
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with key = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reconciliations", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with bearer = %d, want 200", rec.Code)
	}
}
