// Package games runs wagered game sessions: credits move into escrow when a
// session starts and come back out exactly once when it resolves, whether a
// player finished it or the expiration timer did.
package games

import "context"

const (
	KindBlackjack = "blackjack"
	KindMines     = "mines"
	KindRPS       = "rps"
)

type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomePush    Outcome = "push"
	OutcomeTie     Outcome = "tie"
	OutcomeForfeit Outcome = "forfeit"
	OutcomeRefund  Outcome = "refund"
)

// Action is a player move. Which fields matter depends on the game: X/Y for
// mines reveals, Move for rock-paper-scissors, Type alone for the rest.
type Action struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Move string `json:"move"`
}

// Payout is one terminal ledger effect of a resolved session. A zero amount
// records a settlement entry rather than a credit, so losing sessions still
// leave a terminal ledger record against their escrow.
type Payout struct {
	UserID    string
	Amount    int64
	EntryType string
}

// Step is the result of advancing a session. Done marks the session
// resolved; the service then applies Payouts and removes it.
type Step struct {
	Done    bool
	Outcome Outcome
	Payouts []Payout
}

// Table is one game's state machine. The service calls it only while holding
// the session mutex, so implementations need no locking of their own.
type Table interface {
	Kind() string
	Members() []string

	// Decide applies actorID's action and reports the resulting step.
	// Tables that move extra credits mid-game (blackjack double) do their
	// own escrow through the bank they were built with.
	Decide(ctx context.Context, actorID string, act Action) (Step, error)

	// Expire resolves the session after the deadline passed: a refund if
	// the player never progressed it, the best terminal outcome otherwise.
	Expire() Step

	// Progressed reports whether any game-advancing action was applied.
	Progressed() bool

	// Snapshot renders the state visible to viewerID. Hidden information
	// (dealer hole card, unrevealed mines, the opponent's move) stays
	// hidden until the session ends.
	Snapshot(viewerID string) any
}

// Bank is the slice of the ledger the games layer needs. *ledger.Ledger and
// *ledger.MemoryBank both satisfy it.
type Bank interface {
	DebitIfSufficient(ctx context.Context, userID string, amount int64, entryType, refType, refID string) (bool, int64, error)
	Credit(ctx context.Context, userID string, amount int64, entryType, refType, refID string) (int64, error)
	RecordSettlement(ctx context.Context, userID, entryType, refType, refID string) error
	Balance(ctx context.Context, userID string) (int64, error)
}
