// Package blackjack is the single-player blackjack table: hit, stand,
// double and a single split, dealer drawing to 17, naturals paying three to
// two scaled by the player's role multiplier.
package blackjack

import (
	"context"
	"math"

	"heartbound/internal/games"
	"heartbound/internal/rng"
)

const (
	actionHit    = "hit"
	actionStand  = "stand"
	actionDouble = "double"
	actionSplit  = "split"
)

type hand struct {
	cards   []Card
	bet     int64
	stood   bool
	doubled bool
}

func (h *hand) busted() bool { return handValue(h.cards) > 21 }
func (h *hand) settled() bool {
	return h.stood || h.busted() || handValue(h.cards) == 21
}

type Table struct {
	bank      games.Bank
	sessionID string
	userID    string
	bet       int64
	rate      float64
	roleMult  float64

	deck    []Card
	dealer  []Card
	hands   []*hand
	current int
	split   bool
	ended   bool
	acted   bool

	openStep games.Step
}

// New deals the opening hands. Naturals are settled through Open rather than
// here, so the constructor stays side-effect free on the ledger.
func New(bank games.Bank, src *rng.Source, sessionID, userID string, bet int64, payoutRate, roleMult float64) *Table {
	if roleMult <= 0 {
		roleMult = 1
	}
	t := &Table{
		bank:      bank,
		sessionID: sessionID,
		userID:    userID,
		bet:       bet,
		rate:      payoutRate,
		roleMult:  roleMult,
		deck:      newDeck(src),
	}
	first := &hand{bet: bet}
	first.cards = append(first.cards, t.draw(), t.draw())
	t.dealer = append(t.dealer, t.draw(), t.draw())
	t.hands = []*hand{first}
	t.openStep = t.openingStep()
	return t
}

func (t *Table) Kind() string      { return games.KindBlackjack }
func (t *Table) Members() []string { return []string{t.userID} }
func (t *Table) Progressed() bool  { return t.acted }

// Open reports the deal's immediate resolution, if any.
func (t *Table) Open() games.Step {
	if t.openStep.Done {
		t.ended = true
	}
	return t.openStep
}

func (t *Table) openingStep() games.Step {
	playerNat := isNatural(t.hands[0].cards)
	dealerNat := isNatural(t.dealer)
	switch {
	case playerNat && dealerNat:
		return games.Step{Done: true, Outcome: games.OutcomePush, Payouts: []games.Payout{
			{UserID: t.userID, Amount: t.bet, EntryType: games.EntryRefund},
		}}
	case playerNat:
		winnings := int64(math.Round(float64(t.bet) * t.rate * t.roleMult))
		return games.Step{Done: true, Outcome: games.OutcomeWin, Payouts: []games.Payout{
			{UserID: t.userID, Amount: t.bet + winnings, EntryType: games.EntryPayout},
		}}
	case dealerNat:
		return games.Step{Done: true, Outcome: games.OutcomeLoss, Payouts: []games.Payout{
			{UserID: t.userID, Amount: 0, EntryType: games.EntrySettlement},
		}}
	}
	return games.Step{}
}

func (t *Table) Decide(ctx context.Context, actorID string, act games.Action) (games.Step, error) {
	if actorID != t.userID || t.ended {
		return games.Step{}, games.ErrInvalidAction
	}
	h := t.hands[t.current]
	switch act.Type {
	case actionHit:
		h.cards = append(h.cards, t.draw())
		t.acted = true
	case actionStand:
		h.stood = true
		t.acted = true
	case actionDouble:
		if len(h.cards) != 2 || h.doubled {
			return games.Step{}, games.ErrInvalidAction
		}
		// Extra escrow before any state change, so a refused debit
		// leaves the hand exactly as it was.
		ok, _, err := t.bank.DebitIfSufficient(ctx, t.userID, h.bet, games.EntryEscrow, games.RefSession, t.sessionID)
		if err != nil {
			return games.Step{}, err
		}
		if !ok {
			return games.Step{}, games.ErrInsufficientFunds
		}
		h.bet *= 2
		h.doubled = true
		h.cards = append(h.cards, t.draw())
		h.stood = true
		t.acted = true
	case actionSplit:
		if t.split || len(t.hands) != 1 || len(h.cards) != 2 || cardValue(h.cards[0]) != cardValue(h.cards[1]) {
			return games.Step{}, games.ErrInvalidAction
		}
		ok, _, err := t.bank.DebitIfSufficient(ctx, t.userID, t.bet, games.EntryEscrow, games.RefSession, t.sessionID)
		if err != nil {
			return games.Step{}, err
		}
		if !ok {
			return games.Step{}, games.ErrInsufficientFunds
		}
		second := &hand{bet: t.bet, cards: []Card{h.cards[1]}}
		h.cards = h.cards[:1]
		h.cards = append(h.cards, t.draw())
		second.cards = append(second.cards, t.draw())
		t.hands = append(t.hands, second)
		t.split = true
		t.acted = true
	default:
		return games.Step{}, games.ErrInvalidAction
	}
	t.advance()
	if t.playerDone() {
		return t.finish(), nil
	}
	return games.Step{}, nil
}

// Expire refunds an untouched session; otherwise the open hands stand and
// the dealer plays out, the same resolution a stand would have produced.
func (t *Table) Expire() games.Step {
	if t.ended {
		return games.Step{}
	}
	if !t.acted {
		t.ended = true
		return games.Step{Done: true, Outcome: games.OutcomeRefund, Payouts: []games.Payout{
			{UserID: t.userID, Amount: t.escrowed(), EntryType: games.EntryRefund},
		}}
	}
	for _, h := range t.hands {
		h.stood = true
	}
	return t.finish()
}

func (t *Table) draw() Card {
	c := t.deck[len(t.deck)-1]
	t.deck = t.deck[:len(t.deck)-1]
	return c
}

// advance moves play to the next unsettled hand.
func (t *Table) advance() {
	for t.current < len(t.hands) && t.hands[t.current].settled() {
		t.current++
	}
}

func (t *Table) playerDone() bool { return t.current >= len(t.hands) }

func (t *Table) escrowed() int64 {
	var total int64
	for _, h := range t.hands {
		total += h.bet
	}
	return total
}

// finish plays the dealer to 17 and settles every hand.
func (t *Table) finish() games.Step {
	t.ended = true
	anyLive := false
	for _, h := range t.hands {
		if !h.busted() {
			anyLive = true
		}
	}
	if anyLive {
		for handValue(t.dealer) < 17 {
			t.dealer = append(t.dealer, t.draw())
		}
	}
	dealerScore := handValue(t.dealer)
	var credit int64
	for _, h := range t.hands {
		score := handValue(h.cards)
		switch {
		case score > 21:
		case dealerScore > 21 || score > dealerScore:
			credit += 2 * h.bet
		case score == dealerScore:
			credit += h.bet
		}
	}
	escrow := t.escrowed()
	switch {
	case credit == 0:
		return games.Step{Done: true, Outcome: games.OutcomeLoss, Payouts: []games.Payout{
			{UserID: t.userID, Amount: 0, EntryType: games.EntrySettlement},
		}}
	case credit > escrow:
		return games.Step{Done: true, Outcome: games.OutcomeWin, Payouts: []games.Payout{
			{UserID: t.userID, Amount: credit, EntryType: games.EntryPayout},
		}}
	default:
		return games.Step{Done: true, Outcome: games.OutcomePush, Payouts: []games.Payout{
			{UserID: t.userID, Amount: credit, EntryType: games.EntryRefund},
		}}
	}
}

type HandView struct {
	Cards   []Card `json:"cards"`
	Value   int    `json:"value"`
	Bet     int64  `json:"bet"`
	Stood   bool   `json:"stood"`
	Busted  bool   `json:"busted"`
	Doubled bool   `json:"doubled"`
}

type View struct {
	Game        string     `json:"game"`
	Hands       []HandView `json:"hands"`
	Current     int        `json:"current"`
	Dealer      []Card     `json:"dealer"`
	DealerValue int        `json:"dealer_value,omitempty"`
	Ended       bool       `json:"ended"`
}

// Snapshot hides the dealer hole card until the session ends.
func (t *Table) Snapshot(string) any {
	v := View{Game: games.KindBlackjack, Current: t.current, Ended: t.ended}
	for _, h := range t.hands {
		v.Hands = append(v.Hands, HandView{
			Cards:   append([]Card(nil), h.cards...),
			Value:   handValue(h.cards),
			Bet:     h.bet,
			Stood:   h.stood,
			Busted:  h.busted(),
			Doubled: h.doubled,
		})
	}
	if t.ended {
		v.Dealer = append([]Card(nil), t.dealer...)
		v.DealerValue = handValue(t.dealer)
	} else {
		v.Dealer = []Card{t.dealer[0]}
	}
	return v
}
