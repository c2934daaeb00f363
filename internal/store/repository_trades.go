package store

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateTrade(ctx context.Context, tradeID, initiatorID, partnerID string) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO trades (id, initiator_id, partner_id, status)
		VALUES ($1, $2, $3, 'pending')
	`, tradeID, initiatorID, partnerID)
	return err
}

func (s *Store) GetTrade(ctx context.Context, tradeID string) (Trade, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, initiator_id, partner_id, status,
		       initiator_locked, partner_locked, initiator_accepted, partner_accepted,
		       created_at, updated_at
		FROM trades WHERE id = $1
	`, tradeID)
	return scanTrade(row)
}

func (s *Store) ListTradeItems(ctx context.Context, tradeID string) ([]TradeItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT trade_id, owner_id, item_id, quantity FROM trade_items
		WHERE trade_id = $1
		ORDER BY owner_id, item_id
	`, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TradeItem{}
	for rows.Next() {
		var ti TradeItem
		if err := rows.Scan(&ti.TradeID, &ti.OwnerID, &ti.ItemID, &ti.Quantity); err != nil {
			return nil, err
		}
		out = append(out, ti)
	}
	return out, rows.Err()
}

// AddTradeOffer appends quantity to a party's offer. The trade row is locked
// first so an offer cannot slip in after the owner locked their side.
func (s *Store) AddTradeOffer(ctx context.Context, tradeID, ownerID, itemID string, quantity int64) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tr, err := lockTrade(ctx, tx, tradeID)
	if err != nil {
		return err
	}
	if tr.Status != TradeStatusPending {
		return ErrTradeNotPending
	}
	if (ownerID == tr.InitiatorID && tr.InitiatorLocked) || (ownerID == tr.PartnerID && tr.PartnerLocked) {
		return ErrTradeLocked
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO trade_items (trade_id, owner_id, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (trade_id, owner_id, item_id) DO UPDATE SET quantity = trade_items.quantity + EXCLUDED.quantity
	`, tradeID, ownerID, itemID, quantity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) LockTrade(ctx context.Context, tradeID, userID string) (Trade, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Trade{}, err
	}
	defer tx.Rollback(ctx)

	tr, err := lockTrade(ctx, tx, tradeID)
	if err != nil {
		return Trade{}, err
	}
	if userID != tr.InitiatorID && userID != tr.PartnerID {
		return Trade{}, ErrNotParticipant
	}
	if tr.Status != TradeStatusPending {
		return Trade{}, ErrTradeNotPending
	}
	col := "initiator_locked"
	if userID == tr.PartnerID {
		col = "partner_locked"
	}
	if _, err := tx.Exec(ctx, `UPDATE trades SET `+col+` = TRUE, updated_at = now() WHERE id = $1`, tradeID); err != nil {
		return Trade{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Trade{}, err
	}
	return s.GetTrade(ctx, tradeID)
}

// AcceptTrade records a party's acceptance and, when both sides have locked
// and accepted, executes the exchange in the same transaction. The bool
// result reports whether execution happened in this call.
func (s *Store) AcceptTrade(ctx context.Context, tradeID, userID string) (Trade, bool, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Trade{}, false, err
	}
	defer tx.Rollback(ctx)

	tr, err := lockTrade(ctx, tx, tradeID)
	if err != nil {
		return Trade{}, false, err
	}
	if userID != tr.InitiatorID && userID != tr.PartnerID {
		return Trade{}, false, ErrNotParticipant
	}
	if tr.Status != TradeStatusPending {
		return Trade{}, false, ErrTradeNotPending
	}
	if !tr.InitiatorLocked || !tr.PartnerLocked {
		return Trade{}, false, ErrTradeLocked
	}
	if userID == tr.InitiatorID {
		tr.InitiatorAccepted = true
	} else {
		tr.PartnerAccepted = true
	}
	if _, err := tx.Exec(ctx, `
		UPDATE trades SET initiator_accepted = $1, partner_accepted = $2, updated_at = now() WHERE id = $3
	`, tr.InitiatorAccepted, tr.PartnerAccepted, tradeID); err != nil {
		return Trade{}, false, err
	}

	executed := false
	if tr.InitiatorAccepted && tr.PartnerAccepted {
		if err := executeTradeLocked(ctx, tx, tr); err != nil {
			return Trade{}, false, err
		}
		if _, err := tx.Exec(ctx, `UPDATE trades SET status = 'executed', updated_at = now() WHERE id = $1`, tradeID); err != nil {
			return Trade{}, false, err
		}
		tr.Status = TradeStatusExecuted
		executed = true
	}
	if err := tx.Commit(ctx); err != nil {
		return Trade{}, false, err
	}
	return tr, executed, nil
}

func (s *Store) CancelTrade(ctx context.Context, tradeID string) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tr, err := lockTrade(ctx, tx, tradeID)
	if err != nil {
		return err
	}
	if tr.Status != TradeStatusPending {
		return ErrTradeNotPending
	}
	if _, err := tx.Exec(ctx, `UPDATE trades SET status = 'cancelled', updated_at = now() WHERE id = $1`, tradeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// executeTradeLocked transfers every offered item between the two parties.
// Ownership and uniqueness are verified against live inventory rows under
// FOR UPDATE, not against what was true when the offer was added.
func executeTradeLocked(ctx context.Context, tx pgx.Tx, tr Trade) error {
	rows, err := tx.Query(ctx, `
		SELECT trade_id, owner_id, item_id, quantity FROM trade_items
		WHERE trade_id = $1
	`, tr.ID)
	if err != nil {
		return err
	}
	items := []TradeItem{}
	for rows.Next() {
		var ti TradeItem
		if err := rows.Scan(&ti.TradeID, &ti.OwnerID, &ti.ItemID, &ti.Quantity); err != nil {
			rows.Close()
			return err
		}
		items = append(items, ti)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Lock inventory rows in a fixed order so concurrent executions cannot
	// deadlock against each other.
	type invKey struct{ userID, itemID string }
	need := map[invKey]bool{}
	for _, ti := range items {
		receiver := tr.PartnerID
		if ti.OwnerID == tr.PartnerID {
			receiver = tr.InitiatorID
		}
		need[invKey{ti.OwnerID, ti.ItemID}] = true
		need[invKey{receiver, ti.ItemID}] = true
	}
	keys := make([]invKey, 0, len(need))
	for k := range need {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].userID != keys[j].userID {
			return keys[i].userID < keys[j].userID
		}
		return keys[i].itemID < keys[j].itemID
	})
	held := map[invKey]int64{}
	for _, k := range keys {
		qty, err := lockUserItem(ctx, tx, k.userID, k.itemID)
		if err != nil {
			return err
		}
		held[k] = qty
	}

	for _, ti := range items {
		receiver := tr.PartnerID
		if ti.OwnerID == tr.PartnerID {
			receiver = tr.InitiatorID
		}
		var stackable bool
		if err := tx.QueryRow(ctx, `SELECT stackable FROM items WHERE id = $1`, ti.ItemID).Scan(&stackable); err != nil {
			return mapNotFound(err)
		}
		ownerKey := invKey{ti.OwnerID, ti.ItemID}
		receiverKey := invKey{receiver, ti.ItemID}
		if held[ownerKey] < ti.Quantity {
			return ErrItemUnavailable
		}
		if !stackable && (ti.Quantity != 1 || held[receiverKey] > 0) {
			return ErrItemUnavailable
		}
		held[ownerKey] -= ti.Quantity
		held[receiverKey] += ti.Quantity
	}

	for k, qty := range held {
		if err := setUserItem(ctx, tx, k.userID, k.itemID, qty); err != nil {
			return err
		}
	}
	return nil
}

func lockTrade(ctx context.Context, tx pgx.Tx, tradeID string) (Trade, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, initiator_id, partner_id, status,
		       initiator_locked, partner_locked, initiator_accepted, partner_accepted,
		       created_at, updated_at
		FROM trades WHERE id = $1
		FOR UPDATE
	`, tradeID)
	return scanTrade(row)
}

func scanTrade(row pgx.Row) (Trade, error) {
	var tr Trade
	err := row.Scan(&tr.ID, &tr.InitiatorID, &tr.PartnerID, &tr.Status,
		&tr.InitiatorLocked, &tr.PartnerLocked, &tr.InitiatorAccepted, &tr.PartnerAccepted,
		&tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		return Trade{}, mapNotFound(err)
	}
	return tr, nil
}
