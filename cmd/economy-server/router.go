package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"heartbound/internal/config"
	"heartbound/internal/games"
	"heartbound/internal/ledger"
	"heartbound/internal/profile"
	"heartbound/internal/rng"
	"heartbound/internal/store"
	"heartbound/internal/trade"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type serverDeps struct {
	cfg    config.AppConfig
	st     *store.Store
	cache  *profile.Cache
	bank   *ledger.Ledger
	src    *rng.Source
	games  *games.Service
	trades *trade.Service
}

func newRouter(d serverDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(d.st))

	initial := d.cfg.Server.InitialCredits
	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())

		r.Group(func(r chi.Router) {
			r.Use(userAuthMiddleware(d.st, initial))

			r.Get("/economy/balance", balanceHandler(d.bank, d.cache))
			r.Post("/economy/transfer", transferHandler(d.bank, d.st, initial))
			r.Get("/economy/inventory", inventoryHandler(d.st))
			r.Get("/economy/ledger", myLedgerHandler(d.st))

			r.Post("/games/blackjack", createBlackjackHandler(d.games, d.src, d.cfg.Games))
			r.Post("/games/mines", createMinesHandler(d.games, d.src, d.cfg.Games))
			r.Post("/games/rps", createRPSHandler(d.games, d.st, initial))
			r.Post("/games/{kind}/actions", gameActionHandler(d.games))
			r.Get("/games/{kind}", gameSnapshotHandler(d.games))

			r.Post("/trades", createTradeHandler(d.trades, d.st, initial))
			r.Get("/trades/{trade_id}", getTradeHandler(d.trades))
			r.Post("/trades/{trade_id}/items", tradeOfferHandler(d.trades))
			r.Post("/trades/{trade_id}/lock", tradeLockHandler(d.trades))
			r.Post("/trades/{trade_id}/accept", tradeAcceptHandler(d.trades))
			r.Post("/trades/{trade_id}/cancel", tradeCancelHandler(d.trades))
		})

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(d.cfg.Server.AdminAPIKey))
			r.Post("/admin/topup", adminTopupHandler(d.bank, d.st, initial))
			r.Get("/admin/ledger", adminLedgerHandler(d.st))
			r.Post("/admin/items", adminCreateItemHandler(d.st))
			r.Post("/admin/items/grant", adminGrantItemHandler(d.st, initial))
			r.Get("/admin/escrows/unresolved", adminUnresolvedEscrowsHandler(d.st))
		})
	})

	return r
}

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
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
