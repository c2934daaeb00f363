package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *Store) EnsureItem(ctx context.Context, itemID, name string, stackable bool) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO items (id, name, stackable)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, itemID, name, stackable)
	return err
}

func (s *Store) GetItem(ctx context.Context, itemID string) (Item, error) {
	var it Item
	err := s.Pool.QueryRow(ctx, `SELECT id, name, stackable FROM items WHERE id = $1`, itemID).
		Scan(&it.ID, &it.Name, &it.Stackable)
	if err != nil {
		return Item{}, mapNotFound(err)
	}
	return it, nil
}

// GrantItem adds quantity to a user's inventory, used by giveaways and admin
// tooling. Game and trade paths never call this directly.
func (s *Store) GrantItem(ctx context.Context, userID, itemID string, quantity int64) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO user_items (user_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO UPDATE SET quantity = user_items.quantity + EXCLUDED.quantity
	`, userID, itemID, quantity)
	return err
}

func (s *Store) UserItems(ctx context.Context, userID string) ([]UserItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT user_id, item_id, quantity FROM user_items
		WHERE user_id = $1 AND quantity > 0
		ORDER BY item_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []UserItem{}
	for rows.Next() {
		var ui UserItem
		if err := rows.Scan(&ui.UserID, &ui.ItemID, &ui.Quantity); err != nil {
			return nil, err
		}
		out = append(out, ui)
	}
	return out, rows.Err()
}

func lockUserItem(ctx context.Context, tx pgx.Tx, userID, itemID string) (int64, error) {
	var qty int64
	err := tx.QueryRow(ctx, `
		SELECT quantity FROM user_items
		WHERE user_id = $1 AND item_id = $2
		FOR UPDATE
	`, userID, itemID).Scan(&qty)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

func setUserItem(ctx context.Context, tx pgx.Tx, userID, itemID string, quantity int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_items (user_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`, userID, itemID, quantity)
	return err
}
