package rng

import "errors"

var (
	ErrEmptyOutcomes = errors.New("empty_outcome_set")
	ErrInvalidRoll   = errors.New("invalid_roll")
)

type Weighted struct {
	Value  any
	Weight int64
}

func TotalWeight(items []Weighted) int64 {
	var total int64
	for _, it := range items {
		if it.Weight > 0 {
			total += it.Weight
		}
	}
	return total
}

// PickWeighted selects an item with probability proportional to its weight.
// Pass total <= 0 to have it computed from the items.
func (s *Source) PickWeighted(items []Weighted, total int64) (Weighted, error) {
	if total <= 0 {
		total = TotalWeight(items)
	}
	if len(items) == 0 || total <= 0 {
		return Weighted{}, ErrEmptyOutcomes
	}
	return s.PickWeightedAt(items, total, s.Int64N(total))
}

// PickWeightedAt resolves a weighted draw against a caller-supplied roll, so
// an outcome shown elsewhere (e.g. a client animation) can be verified to
// match the authoritative one. The roll must lie in [0, total).
func (s *Source) PickWeightedAt(items []Weighted, total, roll int64) (Weighted, error) {
	if total <= 0 {
		total = TotalWeight(items)
	}
	if len(items) == 0 || total <= 0 {
		return Weighted{}, ErrEmptyOutcomes
	}
	if roll < 0 || roll >= total {
		return Weighted{}, ErrInvalidRoll
	}
	var cum int64
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		cum += it.Weight
		if roll < cum {
			return it, nil
		}
	}
	return items[len(items)-1], nil
}
