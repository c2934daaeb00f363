package main

import (
	"net/http"

	"heartbound/internal/config"
	"heartbound/internal/games"
	"heartbound/internal/games/blackjack"
	"heartbound/internal/games/mines"
	"heartbound/internal/games/rps"
	"heartbound/internal/rng"
	"heartbound/internal/session"
	"heartbound/internal/store"

	"github.com/go-chi/chi/v5"
)

func createBlackjackHandler(svc *games.Service, src *rng.Source, cfg config.GamesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		var body struct {
			Bet int64 `json:"bet"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		key := session.UserKey(games.KindBlackjack, userID)
		sess, step, err := svc.Create(r.Context(), key, userID, body.Bet, func(id string) (games.Table, error) {
			return blackjack.New(svc.Bank, src, id, userID, body.Bet, cfg.BlackjackPayout, 1), nil
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, createResponse(sess, step, userID))
	}
}

func createMinesHandler(svc *games.Service, src *rng.Source, cfg config.GamesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		var body struct {
			Bet   int64 `json:"bet"`
			Mines int   `json:"mines"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		key := session.UserKey(games.KindMines, userID)
		sess, step, err := svc.Create(r.Context(), key, userID, body.Bet, func(id string) (games.Table, error) {
			return mines.New(src, id, userID, body.Bet, body.Mines, cfg.MinesHouseEdge)
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, createResponse(sess, step, userID))
	}
}

func createRPSHandler(svc *games.Service, st *store.Store, initialCredits int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		var body struct {
			OpponentID string `json:"opponent_id"`
			Bet        int64  `json:"bet"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.OpponentID == "" || body.OpponentID == userID {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.EnsureUser(r.Context(), body.OpponentID, initialCredits); err != nil {
			writeServiceError(w, err)
			return
		}
		key := session.PairKey(games.KindRPS, userID, body.OpponentID)
		sess, step, err := svc.Create(r.Context(), key, userID, body.Bet, func(id string) (games.Table, error) {
			return rps.New(svc.Bank, id, userID, body.OpponentID, body.Bet), nil
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, createResponse(sess, step, userID))
	}
}

func gameActionHandler(svc *games.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		kind := chi.URLParam(r, "kind")
		if !validKind(kind) {
			writeHTTPError(w, http.StatusNotFound, "unknown_game")
			return
		}
		var act games.Action
		if !decodeJSON(w, r, &act) {
			return
		}
		step, snap, err := svc.Act(r.Context(), kind, userID, act)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"done":    step.Done,
			"outcome": step.Outcome,
			"state":   snap,
		})
	}
}

func gameSnapshotHandler(svc *games.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		kind := chi.URLParam(r, "kind")
		if !validKind(kind) {
			writeHTTPError(w, http.StatusNotFound, "unknown_game")
			return
		}
		snap, err := svc.Snapshot(kind, userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"state": snap})
	}
}

func createResponse(sess *games.Session, step games.Step, viewerID string) map[string]any {
	return map[string]any{
		"session_id": sess.ID(),
		"done":       step.Done,
		"outcome":    step.Outcome,
		"state":      sess.View(viewerID),
	}
}

func validKind(kind string) bool {
	switch kind {
	case games.KindBlackjack, games.KindMines, games.KindRPS:
		return true
	}
	return false
}
