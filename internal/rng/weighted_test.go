package rng

import (
	"errors"
	"testing"
)

func TestPickWeightedAtBoundaries(t *testing.T) {
	s := New(8)
	items := []Weighted{
		{Value: "a", Weight: 10},
		{Value: "b", Weight: 30},
		{Value: "c", Weight: 60},
	}
	cases := []struct {
		roll int64
		want string
	}{
		{0, "a"},
		{9, "a"},
		{10, "b"},
		{39, "b"},
		{40, "c"},
		{99, "c"},
	}
	for _, c := range cases {
		got, err := s.PickWeightedAt(items, 100, c.roll)
		if err != nil {
			t.Fatalf("roll %d: %v", c.roll, err)
		}
		if got.Value != c.want {
			t.Fatalf("roll %d: got %v, want %s", c.roll, got.Value, c.want)
		}
	}
}

func TestPickWeightedAtRejectsOutOfRangeRoll(t *testing.T) {
	s := New(8)
	items := []Weighted{{Value: "a", Weight: 5}}
	if _, err := s.PickWeightedAt(items, 5, 5); !errors.Is(err, ErrInvalidRoll) {
		t.Fatalf("roll == total: err = %v, want ErrInvalidRoll", err)
	}
	if _, err := s.PickWeightedAt(items, 5, -1); !errors.Is(err, ErrInvalidRoll) {
		t.Fatalf("negative roll: err = %v, want ErrInvalidRoll", err)
	}
}

func TestPickWeightedAtSkipsNonPositiveWeights(t *testing.T) {
	s := New(8)
	items := []Weighted{
		{Value: "dead", Weight: 0},
		{Value: "live", Weight: 10},
	}
	got, err := s.PickWeightedAt(items, 0, 3)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if got.Value != "live" {
		t.Fatalf("got %v, want live", got.Value)
	}
}

func TestPickWeightedEmpty(t *testing.T) {
	s := New(8)
	if _, err := s.PickWeighted(nil, 0); !errors.Is(err, ErrEmptyOutcomes) {
		t.Fatalf("err = %v, want ErrEmptyOutcomes", err)
	}
}

func TestPickWeightedDistribution(t *testing.T) {
	s := New(64)
	items := []Weighted{
		{Value: "rare", Weight: 1},
		{Value: "common", Weight: 9},
	}
	const draws = 20000
	rare := 0
	for i := 0; i < draws; i++ {
		got, err := s.PickWeighted(items, 0)
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if got.Value == "rare" {
			rare++
		}
	}
	// Expected 10%; allow a wide band to keep the test stable.
	if rare < draws/20 || rare > draws/5 {
		t.Fatalf("rare drawn %d of %d, expected around %d", rare, draws, draws/10)
	}
}
