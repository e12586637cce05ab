package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"token-casino/internal/store"
	"token-casino/internal/wager"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	store  *store.Store
	ledger *wager.Ledger
}

func NewAdminHandlers(st *store.Store, l *wager.Ledger) *AdminHandlers {
	return &AdminHandlers{store: st, ledger: l}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db := "up"
		if err := h.store.Ping(r.Context()); err != nil {
			db = "down"
		}
		info := h.ledger.Info()
		if db == "down" || !info.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": db, "ledger_ready": info.Ready})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": db, "ledger_ready": true})
	}
}

func (h *AdminHandlers) ArchivedWagers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		f := store.ArchiveFilter{
			Game:   r.URL.Query().Get("game"),
			Status: r.URL.Query().Get("status"),
		}
		items, err := h.store.ListArchivedWagers(r.Context(), f, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func (h *AdminHandlers) ArchivedWager() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "wager_id")
		item, err := h.store.GetArchivedWager(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "wager_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(item)
	}
}

func (h *AdminHandlers) Reconciliations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, err := h.store.ListReconciliations(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
