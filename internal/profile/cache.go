// Package profile caches balance snapshots for profile reads. The ledger
// invalidates an entry on every mutation so a cached read is never stale
// beyond one round trip.
package profile

import (
	"sync"
	"time"
)

type entry struct {
	credits   int64
	expiresAt time.Time
}

type Cache struct {
	ttl time.Duration
	mu  sync.Mutex
	byU map[string]entry
	now func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{ttl: ttl, byU: map[string]entry{}, now: time.Now}
}

func (c *Cache) Get(userID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byU[userID]
	if !ok || c.now().After(e.expiresAt) {
		delete(c.byU, userID)
		return 0, false
	}
	return e.credits, true
}

func (c *Cache) Put(userID string, credits int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byU[userID] = entry{credits: credits, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops the cached snapshot for a user. Safe for unknown users.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byU, userID)
}
