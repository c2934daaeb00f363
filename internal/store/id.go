package store

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

var idGen = struct {
	sync.Mutex
	entropy *ulid.MonotonicEntropy
}{entropy: ulid.Monotonic(rand.Reader, 0)}

// NewID mints a lexically sortable id for ledger entries and game sessions.
// Entropy is monotonic within the process, so ids created in the same
// millisecond still sort in insertion order.
func NewID() string {
	idGen.Lock()
	defer idGen.Unlock()
	return ulid.MustNew(ulid.Now(), idGen.entropy).String()
}
