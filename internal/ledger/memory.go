package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryBank implements the same balance contract as Ledger against an
// in-process map. It backs unit tests and local development without
// Postgres; mutations for one user serialize on a single mutex so the
// check-then-act of a debit can never interleave with another mutation.
type MemoryBank struct {
	Cache Invalidator

	mu       sync.Mutex
	balances map[string]int64
	entries  []MemoryEntry
}

type MemoryEntry struct {
	UserID    string
	EntryType string
	Amount    int64
	RefType   string
	RefID     string
	CreatedAt time.Time
}

func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: map[string]int64{}}
}

func (b *MemoryBank) SetBalance(userID string, credits int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[userID] = credits
}

func (b *MemoryBank) DebitIfSufficient(_ context.Context, userID string, amount int64, entryType, refType, refID string) (bool, int64, error) {
	b.mu.Lock()
	bal := b.balances[userID]
	if bal < amount {
		b.mu.Unlock()
		return false, 0, nil
	}
	newBal := bal - amount
	b.balances[userID] = newBal
	b.entries = append(b.entries, MemoryEntry{UserID: userID, EntryType: entryType, Amount: -amount, RefType: refType, RefID: refID, CreatedAt: time.Now()})
	b.mu.Unlock()
	b.invalidate(userID)
	return true, newBal, nil
}

func (b *MemoryBank) Credit(_ context.Context, userID string, amount int64, entryType, refType, refID string) (int64, error) {
	b.mu.Lock()
	newBal := b.balances[userID] + amount
	b.balances[userID] = newBal
	b.entries = append(b.entries, MemoryEntry{UserID: userID, EntryType: entryType, Amount: amount, RefType: refType, RefID: refID, CreatedAt: time.Now()})
	b.mu.Unlock()
	b.invalidate(userID)
	return newBal, nil
}

func (b *MemoryBank) RecordSettlement(_ context.Context, userID, entryType, refType, refID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, MemoryEntry{UserID: userID, EntryType: entryType, RefType: refType, RefID: refID, CreatedAt: time.Now()})
	return nil
}

func (b *MemoryBank) Balance(_ context.Context, userID string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[userID], nil
}

// Entries returns a copy of the recorded mutations in order.
func (b *MemoryBank) Entries() []MemoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]MemoryEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *MemoryBank) invalidate(userID string) {
	if b.Cache != nil {
		b.Cache.Invalidate(userID)
	}
}
