// Package rng produces uniformly distributed random values from a pooled
// cryptographic generator. Bounded draws use rejection sampling so
// non-power-of-two bounds carry no modulo bias.
package rng

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand/v2"
	"sync"
	"time"
)

const defaultPoolSize = 1024

type Source struct {
	capacity int

	mu        sync.Mutex
	pool      []uint64
	refilling bool

	fbMu     sync.Mutex
	fallback *mrand.ChaCha8
}

// New builds a Source with a pre-filled pool. Construction never fails: if
// OS entropy is unavailable the fallback generator is seeded from the clock
// and draws degrade rather than erroring.
func New(poolSize int) *Source {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	s := &Source{capacity: poolSize, fallback: newFallback()}
	s.pool = append(s.pool, secureBatch(poolSize)...)
	return s
}

// StartReseeder periodically replaces the fallback generator with one seeded
// from fresh OS entropy, independent of pool refills.
func (s *Source) StartReseeder(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fb := newFallback()
				s.fbMu.Lock()
				s.fallback = fb
				s.fbMu.Unlock()
			}
		}
	}()
}

// Uint64 pops a pooled value, triggering an asynchronous refill when the
// pool drops below half capacity. An exhausted pool falls through to a
// direct synchronous draw instead of blocking.
func (s *Source) Uint64() uint64 {
	s.mu.Lock()
	if n := len(s.pool); n > 0 {
		v := s.pool[n-1]
		s.pool = s.pool[:n-1]
		if len(s.pool) < s.capacity/2 && !s.refilling {
			s.refilling = true
			go s.refill()
		}
		s.mu.Unlock()
		return v
	}
	if !s.refilling {
		s.refilling = true
		go s.refill()
	}
	s.mu.Unlock()
	return s.directUint64()
}

// IntN returns a uniform int in [0, bound). Panics if bound is not positive.
func (s *Source) IntN(bound int) int {
	return int(s.Int64N(int64(bound)))
}

// Int64N returns a uniform int64 in [0, bound). Panics if bound is not
// positive. Draws landing in the biased remainder above the largest multiple
// of bound are discarded and redrawn.
func (s *Source) Int64N(bound int64) int64 {
	if bound <= 0 {
		panic("rng: bound must be positive")
	}
	b := uint64(bound)
	// Largest value below which v % b is unbiased.
	max := math.MaxUint64 - (math.MaxUint64%b+1)%b
	for {
		v := s.Uint64()
		if v <= max {
			return int64(v % b)
		}
	}
}

// Bytes fills and returns n cryptographically random bytes.
func (s *Source) Bytes(n int) []byte {
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		s.fbMu.Lock()
		for i := range buf {
			buf[i] = byte(s.fallback.Uint64())
		}
		s.fbMu.Unlock()
	}
	return buf
}

// Shuffle performs a Fisher-Yates shuffle over n elements.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		swap(i, j)
	}
}

func (s *Source) refill() {
	batch := secureBatch(s.capacity / 2)
	s.mu.Lock()
	room := s.capacity - len(s.pool)
	if room < len(batch) {
		batch = batch[:room]
	}
	s.pool = append(s.pool, batch...)
	s.refilling = false
	s.mu.Unlock()
}

func (s *Source) directUint64() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		s.fbMu.Lock()
		defer s.fbMu.Unlock()
		return s.fallback.Uint64()
	}
	return binary.LittleEndian.Uint64(buf[:])
}

func secureBatch(n int) []uint64 {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n*8)
	if _, err := crand.Read(buf); err != nil {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	return out
}

func newFallback() *mrand.ChaCha8 {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		binary.LittleEndian.PutUint64(seed[:8], uint64(time.Now().UnixNano()))
	}
	return mrand.NewChaCha8(seed)
}
