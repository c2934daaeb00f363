package main

import (
	"net/http"

	"heartbound/internal/store"
	"heartbound/internal/trade"

	"github.com/go-chi/chi/v5"
)

func createTradeHandler(svc *trade.Service, st *store.Store, initialCredits int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		var body struct {
			PartnerID string `json:"partner_id"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.PartnerID == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.EnsureUser(r.Context(), body.PartnerID, initialCredits); err != nil {
			writeServiceError(w, err)
			return
		}
		tr, err := svc.Create(r.Context(), userID, body.PartnerID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, tradeOut(tr, nil))
	}
}

func getTradeHandler(svc *trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		tr, items, err := svc.Get(r.Context(), chi.URLParam(r, "trade_id"), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, tradeOut(tr, items))
	}
}

func tradeOfferHandler(svc *trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		var body struct {
			ItemID   string `json:"item_id"`
			Quantity int64  `json:"quantity"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.ItemID == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := svc.Offer(r.Context(), chi.URLParam(r, "trade_id"), userID, body.ItemID, body.Quantity); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func tradeLockHandler(svc *trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		tr, err := svc.Lock(r.Context(), chi.URLParam(r, "trade_id"), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, tradeOut(tr, nil))
	}
}

func tradeAcceptHandler(svc *trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		tr, executed, err := svc.Accept(r.Context(), chi.URLParam(r, "trade_id"), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := tradeOut(tr, nil)
		out["executed"] = executed
		writeJSON(w, out)
	}
}

func tradeCancelHandler(svc *trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if err := svc.Cancel(r.Context(), chi.URLParam(r, "trade_id"), userID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func tradeOut(tr store.Trade, items []store.TradeItem) map[string]any {
	out := map[string]any{
		"trade_id":           tr.ID,
		"initiator_id":       tr.InitiatorID,
		"partner_id":         tr.PartnerID,
		"status":             tr.Status,
		"initiator_locked":   tr.InitiatorLocked,
		"partner_locked":     tr.PartnerLocked,
		"initiator_accepted": tr.InitiatorAccepted,
		"partner_accepted":   tr.PartnerAccepted,
		"created_at":         tr.CreatedAt,
		"updated_at":         tr.UpdatedAt,
	}
	if items != nil {
		list := make([]map[string]any, 0, len(items))
		for _, it := range items {
			list = append(list, map[string]any{
				"owner_id": it.OwnerID,
				"item_id":  it.ItemID,
				"quantity": it.Quantity,
			})
		}
		out["items"] = list
	}
	return out
}
