package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"token-casino/internal/payout"
	"token-casino/internal/wager"

	"github.com/go-chi/chi/v5"
)

type WagerHandlers struct {
	ledger *wager.Ledger
}

func NewWagerHandlers(l *wager.Ledger) *WagerHandlers {
	return &WagerHandlers{ledger: l}
}

func (h *WagerHandlers) Place() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricWagerPlaceTotal.Add(1)
		var body struct {
			Game   payout.Game     `json:"game"`
			Amount int64           `json:"amount"`
			Bet    json.RawMessage `json:"bet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricWagerPlaceErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		bet, err := payout.ParseBet(body.Game, body.Bet)
		if err != nil {
			metricWagerPlaceErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, errorCode(err))
			return
		}
		placed, err := h.ledger.Place(r.Context(), body.Game, bet, body.Amount)
		if err != nil {
			metricWagerPlaceErrors.Add(1)
			WriteHTTPError(w, errorStatus(err), errorCode(err))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(placed)
	}
}

func (h *WagerHandlers) Settle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricWagerSettleTotal.Add(1)
		id := chi.URLParam(r, "wager_id")
		existing, ok := h.ledger.Get(id)
		if !ok {
			metricWagerSettleErrors.Add(1)
			WriteHTTPError(w, http.StatusNotFound, errorCode(wager.ErrNotFound))
			return
		}
		var body struct {
			Outcome json.RawMessage `json:"outcome"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricWagerSettleErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		outcome, err := payout.ParseOutcome(existing.Game, body.Outcome)
		if err != nil {
			metricWagerSettleErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, errorCode(err))
			return
		}
		res, err := h.ledger.Settle(r.Context(), id, outcome)
		if err != nil {
			metricWagerSettleErrors.Add(1)
			WriteHTTPError(w, errorStatus(err), errorCode(err))
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *WagerHandlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricWagerCancelTotal.Add(1)
		id := chi.URLParam(r, "wager_id")
		cancelled, err := h.ledger.Cancel(r.Context(), id)
		if err != nil {
			metricWagerCancelErrors.Add(1)
			WriteHTTPError(w, errorStatus(err), errorCode(err))
			return
		}
		_ = json.NewEncoder(w).Encode(cancelled)
	}
}

func (h *WagerHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "wager_id")
		found, ok := h.ledger.Get(id)
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, errorCode(wager.ErrNotFound))
			return
		}
		_ = json.NewEncoder(w).Encode(found)
	}
}

func (h *WagerHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := ParsePagination(r)
		items := h.ledger.List(limit)
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit})
	}
}

func (h *WagerHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(h.ledger.Info())
	}
}

// errorStatus maps ledger and payout errors onto HTTP statuses. Unmapped
// errors are internal.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, wager.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, wager.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, wager.ErrInvalidAmount),
		errors.Is(err, wager.ErrInsufficientBalance),
		errors.Is(err, payout.ErrInvalidDescriptor),
		errors.Is(err, payout.ErrInvalidOutcome),
		errors.Is(err, payout.ErrGameMismatch):
		return http.StatusBadRequest
	case errors.Is(err, wager.ErrNotSettleable),
		errors.Is(err, wager.ErrAlreadySettled),
		errors.Is(err, wager.ErrAlreadyCancelled),
		errors.Is(err, wager.ErrAlreadyExpired),
		errors.Is(err, wager.ErrPlacementFailed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	if errorStatus(err) == http.StatusInternalServerError {
		return "internal_error"
	}
	return err.Error()
}
