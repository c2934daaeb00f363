package blackjack

import "heartbound/internal/rng"

type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

var (
	suits = []string{"S", "H", "D", "C"}
	ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

func newDeck(src *rng.Source) []Card {
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	src.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

func cardValue(c Card) int {
	switch c.Rank {
	case "A":
		return 11
	case "K", "Q", "J", "10":
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

// handValue scores a hand with aces counted high until that would bust.
func handValue(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		v := cardValue(c)
		if c.Rank == "A" {
			aces++
		}
		total += v
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// isNatural reports a two-card 21 on an original (unsplit) hand.
func isNatural(cards []Card) bool {
	return len(cards) == 2 && handValue(cards) == 21
}
