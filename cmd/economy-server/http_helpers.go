package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"heartbound/internal/games"
	"heartbound/internal/logging"
	"heartbound/internal/store"
	"heartbound/internal/trade"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// writeServiceError maps domain sentinels onto HTTP statuses. Anything not
// recognized is an internal error and the real cause stays in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, games.ErrSessionNotFound), errors.Is(err, store.ErrNotFound):
		writeHTTPError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, games.ErrInsufficientFunds), errors.Is(err, store.ErrInsufficientFunds):
		writeHTTPError(w, http.StatusConflict, "insufficient_funds")
	case errors.Is(err, games.ErrDuplicateSession),
		errors.Is(err, games.ErrInvalidAction),
		errors.Is(err, store.ErrTradeNotPending),
		errors.Is(err, store.ErrTradeLocked),
		errors.Is(err, store.ErrItemUnavailable):
		writeHTTPError(w, http.StatusConflict, err.Error())
	case errors.Is(err, trade.ErrNotParticipant), errors.Is(err, store.ErrNotParticipant):
		writeHTTPError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, games.ErrInvalidRequest),
		errors.Is(err, games.ErrBetOutOfRange),
		errors.Is(err, trade.ErrSelfTrade),
		errors.Is(err, trade.ErrInvalidQuantity):
		writeHTTPError(w, http.StatusBadRequest, err.Error())
	default:
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func parsePagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
