package main

import (
	"net/http"

	"heartbound/internal/ledger"
	"heartbound/internal/profile"
	"heartbound/internal/store"

	"github.com/google/uuid"
)

func balanceHandler(bank *ledger.Ledger, cache *profile.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if credits, ok := cache.Get(userID); ok {
			writeJSON(w, map[string]any{"user_id": userID, "credits": credits, "cached": true})
			return
		}
		credits, err := bank.Balance(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		cache.Put(userID, credits)
		writeJSON(w, map[string]any{"user_id": userID, "credits": credits, "cached": false})
	}
}

func transferHandler(bank *ledger.Ledger, st *store.Store, initialCredits int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		var body struct {
			To     string `json:"to"`
			Amount int64  `json:"amount"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.To == "" || body.To == userID || body.Amount <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.EnsureUser(r.Context(), body.To, initialCredits); err != nil {
			writeServiceError(w, err)
			return
		}
		ok, newBal, err := bank.Transfer(r.Context(), userID, body.To, body.Amount, "transfer", uuid.NewString())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !ok {
			writeHTTPError(w, http.StatusConflict, "insufficient_funds")
			return
		}
		writeJSON(w, map[string]any{"ok": true, "credits": newBal})
	}
}

func inventoryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		items, err := st.UserItems(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			out = append(out, map[string]any{
				"item_id":  it.ItemID,
				"quantity": it.Quantity,
			})
		}
		writeJSON(w, map[string]any{"user_id": userID, "items": out})
	}
}

func myLedgerHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		limit, offset := parsePagination(r)
		f := store.LedgerFilter{
			UserID:  userID,
			RefType: r.URL.Query().Get("ref_type"),
			RefID:   r.URL.Query().Get("ref_id"),
		}
		items, err := st.ListLedgerEntries(r.Context(), f, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"items": ledgerEntriesOut(items), "limit": limit, "offset": offset})
	}
}

func ledgerEntriesOut(items []store.LedgerEntry) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, e := range items {
		out = append(out, map[string]any{
			"id":         e.ID,
			"user_id":    e.UserID,
			"entry_type": e.EntryType,
			"amount":     e.Amount,
			"ref_type":   e.RefType,
			"ref_id":     e.RefID,
			"created_at": e.CreatedAt,
		})
	}
	return out
}
