package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) EnsureUser(ctx context.Context, userID string, initial int64) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, credits)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, userID, initial)
	return err
}

func (s *Store) GetCredits(ctx context.Context, userID string) (int64, error) {
	var credits int64
	err := s.Pool.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&credits)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return credits, nil
}

// Debit subtracts amount from the user's credits under a row lock so the
// balance check and the write are one indivisible step. Returns
// ErrInsufficientFunds without mutation when the balance cannot cover it.
func (s *Store) Debit(ctx context.Context, userID string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	credits, err := lockCredits(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if credits < amount {
		return 0, ErrInsufficientFunds
	}
	newBal := credits - amount
	if err := updateCredits(ctx, tx, userID, newBal); err != nil {
		return 0, err
	}
	if err := insertLedgerEntry(ctx, tx, userID, entryType, -amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Store) Credit(ctx context.Context, userID string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	credits, err := lockCredits(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	newBal := credits + amount
	if err := updateCredits(ctx, tx, userID, newBal); err != nil {
		return 0, err
	}
	if err := insertLedgerEntry(ctx, tx, userID, entryType, amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

// Transfer moves amount between two users in one transaction. Rows are
// locked in id order so two opposing transfers cannot deadlock.
func (s *Store) Transfer(ctx context.Context, fromID, toID string, amount int64, refType, refID string) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}
	if fromID == toID {
		return 0, errors.New("cannot transfer to self")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	balances := map[string]int64{}
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	for _, id := range []string{first, second} {
		bal, err := lockCredits(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		balances[id] = bal
	}
	fromBal, toBal := balances[fromID], balances[toID]
	if fromBal < amount {
		return 0, ErrInsufficientFunds
	}
	if err := updateCredits(ctx, tx, fromID, fromBal-amount); err != nil {
		return 0, err
	}
	if err := updateCredits(ctx, tx, toID, toBal+amount); err != nil {
		return 0, err
	}
	if err := insertLedgerEntry(ctx, tx, fromID, "transfer_debit", -amount, refType, refID); err != nil {
		return 0, err
	}
	if err := insertLedgerEntry(ctx, tx, toID, "transfer_credit", amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return fromBal - amount, nil
}

func lockCredits(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	var credits int64
	err := tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&credits)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return credits, nil
}

func updateCredits(ctx context.Context, tx pgx.Tx, userID string, credits int64) error {
	_, err := tx.Exec(ctx, `UPDATE users SET credits = $1, updated_at = now() WHERE id = $2`, credits, userID)
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
