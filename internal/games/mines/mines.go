// Package mines is the single-player mines board: reveal cells to grow a
// multiplier, cash out before hitting a mine. Each safe reveal multiplies
// the running payout by the survival odds of that pick, shaved by the house
// edge.
package mines

import (
	"context"
	"math"
	"sort"

	"heartbound/internal/games"
	"heartbound/internal/rng"
)

const (
	actionReveal  = "reveal"
	actionCashout = "cashout"

	defaultGridSize = 5
)

type Table struct {
	sessionID string
	userID    string
	bet       int64
	houseEdge float64

	size      int
	mineCount int
	mines     map[int]bool
	revealed  map[int]bool

	mult  float64
	ended bool
}

func New(src *rng.Source, sessionID, userID string, bet int64, mineCount int, houseEdge float64) (*Table, error) {
	size := defaultGridSize
	cells := size * size
	if mineCount < 1 || mineCount >= cells {
		return nil, games.ErrInvalidRequest
	}
	if houseEdge <= 0 || houseEdge > 1 {
		houseEdge = 1
	}
	t := &Table{
		sessionID: sessionID,
		userID:    userID,
		bet:       bet,
		houseEdge: houseEdge,
		size:      size,
		mineCount: mineCount,
		mines:     make(map[int]bool, mineCount),
		revealed:  map[int]bool{},
		mult:      1,
	}
	for len(t.mines) < mineCount {
		t.mines[src.IntN(cells)] = true
	}
	return t, nil
}

func (t *Table) Kind() string      { return games.KindMines }
func (t *Table) Members() []string { return []string{t.userID} }
func (t *Table) Progressed() bool  { return len(t.revealed) > 0 }

func (t *Table) Decide(_ context.Context, actorID string, act games.Action) (games.Step, error) {
	if actorID != t.userID || t.ended {
		return games.Step{}, games.ErrInvalidAction
	}
	switch act.Type {
	case actionReveal:
		return t.reveal(act.X, act.Y)
	case actionCashout:
		if len(t.revealed) == 0 {
			return games.Step{}, games.ErrInvalidAction
		}
		return t.cashout(), nil
	default:
		return games.Step{}, games.ErrInvalidAction
	}
}

func (t *Table) reveal(x, y int) (games.Step, error) {
	if x < 0 || x >= t.size || y < 0 || y >= t.size {
		return games.Step{}, games.ErrInvalidAction
	}
	idx := y*t.size + x
	if t.revealed[idx] {
		return games.Step{}, games.ErrInvalidAction
	}
	if t.mines[idx] {
		t.revealed[idx] = true
		t.ended = true
		return games.Step{Done: true, Outcome: games.OutcomeLoss, Payouts: []games.Payout{
			{UserID: t.userID, Amount: 0, EntryType: games.EntrySettlement},
		}}, nil
	}
	// Survival odds of this pick: unrevealed cells before it, of which
	// mineCount are mines.
	unrevealed := t.size*t.size - len(t.revealed)
	t.mult *= float64(unrevealed) / float64(unrevealed-t.mineCount) * t.houseEdge
	t.revealed[idx] = true
	if len(t.revealed) == t.size*t.size-t.mineCount {
		return t.cashout(), nil
	}
	return games.Step{}, nil
}

func (t *Table) cashout() games.Step {
	t.ended = true
	payout := int64(math.Round(float64(t.bet) * t.mult))
	return games.Step{Done: true, Outcome: games.OutcomeWin, Payouts: []games.Payout{
		{UserID: t.userID, Amount: payout, EntryType: games.EntryPayout},
	}}
}

// Expire cashes out a board with safe reveals; an untouched board refunds.
func (t *Table) Expire() games.Step {
	if t.ended {
		return games.Step{}
	}
	if len(t.revealed) == 0 {
		t.ended = true
		return games.Step{Done: true, Outcome: games.OutcomeRefund, Payouts: []games.Payout{
			{UserID: t.userID, Amount: t.bet, EntryType: games.EntryRefund},
		}}
	}
	return t.cashout()
}

type View struct {
	Game       string  `json:"game"`
	Size       int     `json:"size"`
	MineCount  int     `json:"mine_count"`
	Revealed   []int   `json:"revealed"`
	Mines      []int   `json:"mines,omitempty"`
	Multiplier float64 `json:"multiplier"`
	Potential  int64   `json:"potential_payout"`
	Ended      bool    `json:"ended"`
}

// Snapshot never exposes mine positions while the board is live.
func (t *Table) Snapshot(string) any {
	v := View{
		Game:       games.KindMines,
		Size:       t.size,
		MineCount:  t.mineCount,
		Multiplier: t.mult,
		Potential:  int64(math.Round(float64(t.bet) * t.mult)),
		Ended:      t.ended,
	}
	for idx := range t.revealed {
		v.Revealed = append(v.Revealed, idx)
	}
	sort.Ints(v.Revealed)
	if t.ended {
		for idx := range t.mines {
			v.Mines = append(v.Mines, idx)
		}
		sort.Ints(v.Mines)
	}
	return v
}
