// Package ledger is the single mutation path for user credit balances.
// Callers never read-modify-write a balance themselves; the store serializes
// each mutation behind a per-user row lock.
package ledger

import (
	"context"
	"errors"

	"heartbound/internal/store"
)

// Invalidator is notified after every successful balance mutation so cached
// profile reads are dropped.
type Invalidator interface {
	Invalidate(userID string)
}

type Ledger struct {
	Store *store.Store
	Cache Invalidator
}

func New(s *store.Store, cache Invalidator) *Ledger {
	return &Ledger{Store: s, Cache: cache}
}

// DebitIfSufficient atomically checks and subtracts amount. The bool result
// reports whether the debit happened; an insufficient balance is not an
// error and causes no mutation.
func (l *Ledger) DebitIfSufficient(ctx context.Context, userID string, amount int64, entryType, refType, refID string) (bool, int64, error) {
	newBal, err := l.Store.Debit(ctx, userID, amount, entryType, refType, refID)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return false, 0, nil
		}
		return false, 0, err
	}
	l.invalidate(userID)
	return true, newBal, nil
}

func (l *Ledger) Credit(ctx context.Context, userID string, amount int64, entryType, refType, refID string) (int64, error) {
	newBal, err := l.Store.Credit(ctx, userID, amount, entryType, refType, refID)
	if err != nil {
		return 0, err
	}
	l.invalidate(userID)
	return newBal, nil
}

// Transfer debits one user and credits another such that a refused debit
// leaves no partial effect.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount int64, refType, refID string) (bool, int64, error) {
	newBal, err := l.Store.Transfer(ctx, fromID, toID, amount, refType, refID)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return false, 0, nil
		}
		return false, 0, err
	}
	l.invalidate(fromID)
	l.invalidate(toID)
	return true, newBal, nil
}

// RecordSettlement writes a zero-amount trailing entry for a session that
// resolved without a payout, so every escrow has a terminal ledger record.
func (l *Ledger) RecordSettlement(ctx context.Context, userID, entryType, refType, refID string) error {
	return l.Store.RecordSettlement(ctx, userID, entryType, refType, refID)
}

func (l *Ledger) Balance(ctx context.Context, userID string) (int64, error) {
	return l.Store.GetCredits(ctx, userID)
}

func (l *Ledger) invalidate(userID string) {
	if l.Cache != nil {
		l.Cache.Invalidate(userID)
	}
}
