package main

import (
	"net/http"
	"time"

	"heartbound/internal/ledger"
	"heartbound/internal/store"

	"github.com/google/uuid"
)

func adminTopupHandler(bank *ledger.Ledger, st *store.Store, initialCredits int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"user_id"`
			Amount int64  `json:"amount"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.UserID == "" || body.Amount <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.EnsureUser(r.Context(), body.UserID, initialCredits); err != nil {
			writeServiceError(w, err)
			return
		}
		bal, err := bank.Credit(r.Context(), body.UserID, body.Amount, "topup_credit", "topup", uuid.NewString())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "credits": bal})
	}
}

func adminLedgerHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		f := store.LedgerFilter{
			UserID:  r.URL.Query().Get("user_id"),
			RefType: r.URL.Query().Get("ref_type"),
			RefID:   r.URL.Query().Get("ref_id"),
		}
		if v := r.URL.Query().Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.From = &t
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.To = &t
			}
		}
		items, err := st.ListLedgerEntries(r.Context(), f, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"items": ledgerEntriesOut(items), "limit": limit, "offset": offset})
	}
}

func adminCreateItemHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ItemID    string `json:"item_id"`
			Name      string `json:"name"`
			Stackable bool   `json:"stackable"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.ItemID == "" || body.Name == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.EnsureItem(r.Context(), body.ItemID, body.Name, body.Stackable); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func adminGrantItemHandler(st *store.Store, initialCredits int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID   string `json:"user_id"`
			ItemID   string `json:"item_id"`
			Quantity int64  `json:"quantity"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.UserID == "" || body.ItemID == "" || body.Quantity <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.EnsureUser(r.Context(), body.UserID, initialCredits); err != nil {
			writeServiceError(w, err)
			return
		}
		if _, err := st.GetItem(r.Context(), body.ItemID); err != nil {
			writeServiceError(w, err)
			return
		}
		if err := st.GrantItem(r.Context(), body.UserID, body.ItemID, body.Quantity); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func adminUnresolvedEscrowsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := st.ListUnresolvedEscrows(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"items": ledgerEntriesOut(items)})
	}
}
