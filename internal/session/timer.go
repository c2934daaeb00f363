package session

import (
	"sync"
	"time"
)

// Timer is a cancellable expiration handle. Cancelling after the callback
// started is harmless: the resolution path it guards re-checks liveness via
// RemoveIfSame.
type Timer struct {
	mu        sync.Mutex
	t         *time.Timer
	cancelled bool
}

func After(d time.Duration, fn func()) *Timer {
	tm := &Timer{}
	tm.t = time.AfterFunc(d, func() {
		tm.mu.Lock()
		cancelled := tm.cancelled
		tm.mu.Unlock()
		if cancelled {
			return
		}
		fn()
	})
	return tm
}

func (t *Timer) Cancel() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
	t.t.Stop()
}
