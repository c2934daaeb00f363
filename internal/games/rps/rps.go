// Package rps is the two-player rock-paper-scissors challenge. The
// challenger's bet is escrowed at creation; the opponent's moves into escrow
// when they accept. Moves stay hidden from the other party until both are
// in.
package rps

import (
	"context"

	"heartbound/internal/games"
)

const (
	actionAccept = "accept"
	actionReject = "reject"
	actionCancel = "cancel"
	actionMove   = "move"
)

var beats = map[string]string{
	"rock":     "scissors",
	"paper":    "rock",
	"scissors": "paper",
}

type Table struct {
	bank       games.Bank
	sessionID  string
	challenger string
	opponent   string
	bet        int64

	accepted bool
	moves    map[string]string
	ended    bool
}

func New(bank games.Bank, sessionID, challenger, opponent string, bet int64) *Table {
	return &Table{
		bank:       bank,
		sessionID:  sessionID,
		challenger: challenger,
		opponent:   opponent,
		bet:        bet,
		moves:      map[string]string{},
	}
}

func (t *Table) Kind() string      { return games.KindRPS }
func (t *Table) Members() []string { return []string{t.challenger, t.opponent} }
func (t *Table) Progressed() bool  { return len(t.moves) > 0 }

func (t *Table) Decide(ctx context.Context, actorID string, act games.Action) (games.Step, error) {
	if t.ended || (actorID != t.challenger && actorID != t.opponent) {
		return games.Step{}, games.ErrInvalidAction
	}
	switch act.Type {
	case actionAccept:
		if actorID != t.opponent || t.accepted {
			return games.Step{}, games.ErrInvalidAction
		}
		ok, _, err := t.bank.DebitIfSufficient(ctx, t.opponent, t.bet, games.EntryEscrow, games.RefSession, t.sessionID)
		if err != nil {
			return games.Step{}, err
		}
		if !ok {
			return games.Step{}, games.ErrInsufficientFunds
		}
		t.accepted = true
		return games.Step{}, nil
	case actionReject:
		if actorID != t.opponent || t.accepted {
			return games.Step{}, games.ErrInvalidAction
		}
		return t.refundChallenger(), nil
	case actionCancel:
		if actorID != t.challenger || t.accepted {
			return games.Step{}, games.ErrInvalidAction
		}
		return t.refundChallenger(), nil
	case actionMove:
		if !t.accepted {
			return games.Step{}, games.ErrInvalidAction
		}
		if _, already := t.moves[actorID]; already {
			return games.Step{}, games.ErrInvalidAction
		}
		if _, valid := beats[act.Move]; !valid {
			return games.Step{}, games.ErrInvalidAction
		}
		t.moves[actorID] = act.Move
		if len(t.moves) == 2 {
			return t.resolve(), nil
		}
		return games.Step{}, nil
	default:
		return games.Step{}, games.ErrInvalidAction
	}
}

// Expire settles whatever phase the challenge died in: a never-accepted
// challenge refunds the challenger, an accepted game with a single mover is
// a forfeit win for them, and one where nobody moved refunds both.
func (t *Table) Expire() games.Step {
	if t.ended {
		return games.Step{}
	}
	if !t.accepted {
		return t.refundChallenger()
	}
	switch len(t.moves) {
	case 1:
		for mover := range t.moves {
			return t.winStep(mover, games.OutcomeForfeit)
		}
	case 0:
		t.ended = true
		return games.Step{Done: true, Outcome: games.OutcomeRefund, Payouts: []games.Payout{
			{UserID: t.challenger, Amount: t.bet, EntryType: games.EntryRefund},
			{UserID: t.opponent, Amount: t.bet, EntryType: games.EntryRefund},
		}}
	}
	return games.Step{}
}

func (t *Table) refundChallenger() games.Step {
	t.ended = true
	return games.Step{Done: true, Outcome: games.OutcomeRefund, Payouts: []games.Payout{
		{UserID: t.challenger, Amount: t.bet, EntryType: games.EntryRefund},
	}}
}

func (t *Table) resolve() games.Step {
	a, b := t.moves[t.challenger], t.moves[t.opponent]
	if a == b {
		t.ended = true
		return games.Step{Done: true, Outcome: games.OutcomeTie, Payouts: []games.Payout{
			{UserID: t.challenger, Amount: t.bet, EntryType: games.EntryRefund},
			{UserID: t.opponent, Amount: t.bet, EntryType: games.EntryRefund},
		}}
	}
	winner := t.opponent
	if beats[a] == b {
		winner = t.challenger
	}
	return t.winStep(winner, games.OutcomeWin)
}

func (t *Table) winStep(winner string, outcome games.Outcome) games.Step {
	t.ended = true
	loser := t.challenger
	if winner == t.challenger {
		loser = t.opponent
	}
	return games.Step{Done: true, Outcome: outcome, Payouts: []games.Payout{
		{UserID: winner, Amount: 2 * t.bet, EntryType: games.EntryPayout},
		{UserID: loser, Amount: 0, EntryType: games.EntrySettlement},
	}}
}

type View struct {
	Game       string            `json:"game"`
	Challenger string            `json:"challenger"`
	Opponent   string            `json:"opponent"`
	Bet        int64             `json:"bet"`
	Accepted   bool              `json:"accepted"`
	YourMove   string            `json:"your_move,omitempty"`
	Moved      map[string]bool   `json:"moved"`
	Moves      map[string]string `json:"moves,omitempty"`
	Ended      bool              `json:"ended"`
}

// Snapshot shows the viewer their own move and only whether the other party
// has moved, until the game ends.
func (t *Table) Snapshot(viewerID string) any {
	v := View{
		Game:       games.KindRPS,
		Challenger: t.challenger,
		Opponent:   t.opponent,
		Bet:        t.bet,
		Accepted:   t.accepted,
		YourMove:   t.moves[viewerID],
		Moved:      map[string]bool{},
		Ended:      t.ended,
	}
	for _, m := range t.Members() {
		_, moved := t.moves[m]
		v.Moved[m] = moved
	}
	if t.ended {
		v.Moves = map[string]string{}
		for who, move := range t.moves {
			v.Moves[who] = move
		}
	}
	return v
}
