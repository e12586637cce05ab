package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"token-casino/internal/config"
	"token-casino/internal/store"
	"token-casino/internal/wager"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, ledger *wager.Ledger, cfg config.ServerConfig) *chi.Mux {
	wagerHandlers := NewWagerHandlers(ledger)
	adminHandlers := NewAdminHandlers(st, ledger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/wagers", wagerHandlers.Place())
		r.Get("/wagers", wagerHandlers.List())
		r.Get("/wagers/{wager_id}", wagerHandlers.Get())
		r.Post("/wagers/{wager_id}/settle", wagerHandlers.Settle())
		r.Post("/wagers/{wager_id}/cancel", wagerHandlers.Cancel())
		r.Get("/balance", wagerHandlers.Balance())
		r.Get("/events", EventsHandler(ledger.Events()))

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/archive/wagers", adminHandlers.ArchivedWagers())
			r.Get("/archive/wagers/{wager_id}", adminHandlers.ArchivedWager())
			r.Get("/reconciliations", adminHandlers.Reconciliations())

			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
