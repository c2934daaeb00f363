package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"heartbound/internal/config"
	"heartbound/internal/games"
	"heartbound/internal/ledger"
	"heartbound/internal/logging"
	"heartbound/internal/profile"
	"heartbound/internal/rng"
	"heartbound/internal/session"
	"heartbound/internal/store"
	"heartbound/internal/trade"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	seedUsers(st, cfg.Server)
	reportUnresolvedEscrows(st)

	cache := profile.NewCache(cfg.Games.ProfileCacheTTL)
	bank := ledger.New(st, cache)

	src := rng.New(cfg.Games.RNGPoolSize)
	src.StartReseeder(context.Background(), cfg.Games.RNGReseedInterval)

	reg := session.NewRegistry()
	gameSvc := games.NewService(bank, reg, cfg.Games.SessionTimeout, cfg.Games.MinBetCredits, cfg.Games.MaxBetCredits)
	tradeSvc := trade.NewService(st)

	r := newRouter(serverDeps{
		cfg:    cfg,
		st:     st,
		cache:  cache,
		bank:   bank,
		src:    src,
		games:  gameSvc,
		trades: tradeSvc,
	})
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func seedUsers(st *store.Store, cfg config.ServerConfig) {
	if cfg.SeedUsers == "" {
		return
	}
	ctx := context.Background()
	for _, id := range strings.Split(cfg.SeedUsers, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := st.EnsureUser(ctx, id, cfg.InitialCredits); err != nil {
			log.Error().Err(err).Str("user_id", id).Msg("seed user failed")
		}
	}
}

// reportUnresolvedEscrows surfaces escrow debits stranded by a restart.
// Sessions are in-memory only, so these bets can no longer resolve; an
// operator settles them through the admin topup endpoint.
func reportUnresolvedEscrows(st *store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	entries, err := st.ListUnresolvedEscrows(ctx)
	if err != nil {
		log.Error().Err(err).Msg("unresolved escrow scan failed")
		return
	}
	for _, e := range entries {
		log.Warn().
			Str("user_id", e.UserID).
			Str("session_id", e.RefID).
			Int64("amount", -e.Amount).
			Time("escrowed_at", e.CreatedAt).
			Msg("unresolved escrow from previous run")
	}
	if len(entries) == 0 {
		log.Info().Msg("no unresolved escrows")
	}
}
