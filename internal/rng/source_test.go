package rng

import "testing"

func TestInt64NBounds(t *testing.T) {
	s := New(32)
	for _, bound := range []int64{1, 2, 3, 7, 100, 1 << 40} {
		for i := 0; i < 200; i++ {
			v := s.Int64N(bound)
			if v < 0 || v >= bound {
				t.Fatalf("Int64N(%d) = %d out of range", bound, v)
			}
		}
	}
}

func TestInt64NPanicsOnNonPositiveBound(t *testing.T) {
	s := New(8)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for bound 0")
		}
	}()
	s.Int64N(0)
}

// Non-power-of-two bound: a modulo-biased generator over uint64 would skew
// low residues. A chi-square over 6 buckets with 60k draws sits far below
// the rejection threshold when sampling is uniform.
func TestInt64NUniformNonPowerOfTwo(t *testing.T) {
	s := New(256)
	const bound = 6
	const draws = 60000
	counts := make([]int, bound)
	for i := 0; i < draws; i++ {
		counts[s.Int64N(bound)]++
	}
	expected := float64(draws) / float64(bound)
	var chi2 float64
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	// 5 degrees of freedom, p=0.001 critical value is 20.5.
	if chi2 > 20.5 {
		t.Fatalf("chi-square = %.2f, counts %v", chi2, counts)
	}
}

func TestUint64DrainsPoolWithoutBlocking(t *testing.T) {
	s := New(16)
	seen := map[uint64]bool{}
	for i := 0; i < 200; i++ {
		seen[s.Uint64()] = true
	}
	// 200 draws of 64-bit values colliding would be astronomically unlikely.
	if len(seen) < 199 {
		t.Fatalf("expected ~200 distinct values, got %d", len(seen))
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	s := New(64)
	vals := make([]int, 52)
	for i := range vals {
		vals[i] = i
	}
	s.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
	seen := make([]bool, len(vals))
	for _, v := range vals {
		if v < 0 || v >= len(seen) || seen[v] {
			t.Fatalf("not a permutation: %v", vals)
		}
		seen[v] = true
	}
}

func TestBytesLength(t *testing.T) {
	s := New(8)
	b := s.Bytes(32)
	if len(b) != 32 {
		t.Fatalf("Bytes(32) length = %d", len(b))
	}
	allZero := true
	for _, x := range b {
		if x != 0 {
			allZero = false
		}
	}
	if allZero {
		t.Fatal("Bytes returned all zeros")
	}
}
