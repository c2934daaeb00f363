package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

func insertLedgerEntry(ctx context.Context, tx pgx.Tx, userID, entryType string, amount int64, refType, refID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, user_id, entry_type, amount, ref_type, ref_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, NewID(), userID, entryType, amount, refType, refID)
	return err
}

// RecordSettlement writes a zero-amount audit entry so every escrowed session
// ends with a trailing ledger record even when the bet is lost outright.
func (s *Store) RecordSettlement(ctx context.Context, userID, entryType, refType, refID string) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO ledger_entries (id, user_id, entry_type, amount, ref_type, ref_id)
		VALUES ($1, $2, $3, 0, $4, $5)
	`, NewID(), userID, entryType, refType, refID)
	return err
}

func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, cond+"$"+strconv.Itoa(len(args)))
	}
	if f.UserID != "" {
		add("user_id = ", f.UserID)
	}
	if f.RefType != "" {
		add("ref_type = ", f.RefType)
	}
	if f.RefID != "" {
		add("ref_id = ", f.RefID)
	}
	if f.From != nil {
		add("created_at >= ", *f.From)
	}
	if f.To != nil {
		add("created_at <= ", *f.To)
	}
	q := `SELECT id, user_id, entry_type, amount, ref_type, ref_id, created_at FROM ledger_entries`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	q += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListUnresolvedEscrows returns escrow debits whose session ref has no later
// ledger entry. Sessions live only in memory, so after a restart these are
// bets that were escrowed but will never resolve on their own.
func (s *Store) ListUnresolvedEscrows(ctx context.Context) ([]LedgerEntry, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT e.id, e.user_id, e.entry_type, e.amount, e.ref_type, e.ref_id, e.created_at
		FROM ledger_entries e
		WHERE e.entry_type = 'escrow_debit'
		  AND e.ref_type = 'session'
		  AND NOT EXISTS (
			SELECT 1 FROM ledger_entries later
			WHERE later.ref_type = 'session'
			  AND later.ref_id = e.ref_id
			  AND later.created_at > e.created_at
		  )
		ORDER BY e.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
