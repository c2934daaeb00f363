package main

import (
	"context"
	"net/http"
	"regexp"

	"heartbound/internal/store"
)

type userIDContextKey struct{}

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// userAuthMiddleware resolves the calling user from X-User-ID, set by the
// bot gateway in front of this service. Unknown users are created with the
// configured starting balance on first sight.
func userAuthMiddleware(st *store.Store, initialCredits int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if !userIDPattern.MatchString(userID) {
				writeHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err := st.EnsureUser(r.Context(), userID, initialCredits); err != nil {
				writeHTTPError(w, http.StatusInternalServerError, "internal_error")
				return
			}
			ctx := context.WithValue(r.Context(), userIDContextKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestUserID(r *http.Request) string {
	v, _ := r.Context().Value(userIDContextKey{}).(string)
	return v
}

func adminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" || !checkAdminAuth(r, adminKey) {
				writeHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v == adminKey {
		return true
	}
	auth := r.Header.Get("Authorization")
	prefix := "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):] == adminKey
	}
	return false
}
