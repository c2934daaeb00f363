package mines

import (
	"context"
	"errors"
	"math"
	"testing"

	"heartbound/internal/games"
	"heartbound/internal/rng"
)

func testBoard(t *testing.T, bet int64, mineCells []int, houseEdge float64) *Table {
	t.Helper()
	tbl, err := New(rng.New(8), "sess1", "u1", bet, len(mineCells), houseEdge)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tbl.mines = map[int]bool{}
	for _, c := range mineCells {
		tbl.mines[c] = true
	}
	return tbl
}

func reveal(x, y int) games.Action { return games.Action{Type: actionReveal, X: x, Y: y} }

func TestNewRejectsBadMineCount(t *testing.T) {
	if _, err := New(rng.New(8), "s", "u1", 100, 0, 0.97); !errors.Is(err, games.ErrInvalidRequest) {
		t.Fatalf("0 mines: err = %v", err)
	}
	if _, err := New(rng.New(8), "s", "u1", 100, 25, 0.97); !errors.Is(err, games.ErrInvalidRequest) {
		t.Fatalf("25 mines on 25 cells: err = %v", err)
	}
}

func TestNewPlacesRequestedMines(t *testing.T) {
	tbl, err := New(rng.New(8), "s", "u1", 100, 5, 0.97)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(tbl.mines) != 5 {
		t.Fatalf("placed %d mines, want 5", len(tbl.mines))
	}
	for idx := range tbl.mines {
		if idx < 0 || idx >= 25 {
			t.Fatalf("mine index %d out of grid", idx)
		}
	}
}

func TestSafeRevealsGrowMultiplierAndCashout(t *testing.T) {
	const houseEdge = 0.97
	tbl := testBoard(t, 100, []int{22, 23, 24}, houseEdge)

	ctx := context.Background()
	for i, a := range []games.Action{reveal(0, 0), reveal(1, 0), reveal(2, 0)} {
		step, err := tbl.Decide(ctx, "u1", a)
		if err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
		if step.Done {
			t.Fatalf("reveal %d resolved early", i)
		}
	}

	want := 1.0
	for _, unrevealed := range []int{25, 24, 23} {
		want *= float64(unrevealed) / float64(unrevealed-3) * houseEdge
	}
	if math.Abs(tbl.mult-want) > 1e-9 {
		t.Fatalf("multiplier = %v, want %v", tbl.mult, want)
	}

	step, err := tbl.Decide(ctx, "u1", games.Action{Type: actionCashout})
	if err != nil {
		t.Fatalf("cashout: %v", err)
	}
	wantPayout := int64(math.Round(100 * want))
	if !step.Done || step.Outcome != games.OutcomeWin || step.Payouts[0].Amount != wantPayout {
		t.Fatalf("step = %+v, want win paying %d", step, wantPayout)
	}
}

func TestMineHitLosesEscrow(t *testing.T) {
	tbl := testBoard(t, 100, []int{0}, 0.97)

	step, err := tbl.Decide(context.Background(), "u1", reveal(0, 0))
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if !step.Done || step.Outcome != games.OutcomeLoss {
		t.Fatalf("step = %+v, want loss", step)
	}
	if step.Payouts[0].Amount != 0 || step.Payouts[0].EntryType != games.EntrySettlement {
		t.Fatalf("payouts = %+v, want zero-amount settlement", step.Payouts)
	}
}

func TestCashoutBeforeAnyRevealInvalid(t *testing.T) {
	tbl := testBoard(t, 100, []int{0}, 0.97)
	if _, err := tbl.Decide(context.Background(), "u1", games.Action{Type: actionCashout}); !errors.Is(err, games.ErrInvalidAction) {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
}

func TestRepeatedAndOutOfRangeRevealsInvalid(t *testing.T) {
	tbl := testBoard(t, 100, []int{24}, 0.97)
	ctx := context.Background()
	if _, err := tbl.Decide(ctx, "u1", reveal(0, 0)); err != nil {
		t.Fatalf("first reveal: %v", err)
	}
	if _, err := tbl.Decide(ctx, "u1", reveal(0, 0)); !errors.Is(err, games.ErrInvalidAction) {
		t.Fatalf("repeat reveal err = %v, want ErrInvalidAction", err)
	}
	if _, err := tbl.Decide(ctx, "u1", reveal(5, 0)); !errors.Is(err, games.ErrInvalidAction) {
		t.Fatalf("out of range err = %v, want ErrInvalidAction", err)
	}
}

func TestAllSafeCellsAutoCashout(t *testing.T) {
	mines := make([]int, 0, 24)
	for i := 1; i < 25; i++ {
		mines = append(mines, i)
	}
	tbl := testBoard(t, 100, mines, 1)

	step, err := tbl.Decide(context.Background(), "u1", reveal(0, 0))
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if !step.Done || step.Outcome != games.OutcomeWin {
		t.Fatalf("step = %+v, want auto cashout on full clear", step)
	}
	// Single safe cell among 25 with no house edge pays 25x.
	if step.Payouts[0].Amount != 2500 {
		t.Fatalf("payout = %d, want 2500", step.Payouts[0].Amount)
	}
}

func TestExpireRefundsUntouchedBoard(t *testing.T) {
	tbl := testBoard(t, 100, []int{0}, 0.97)
	step := tbl.Expire()
	if step.Outcome != games.OutcomeRefund || step.Payouts[0].Amount != 100 {
		t.Fatalf("step = %+v, want full refund", step)
	}
}

func TestExpireCashesOutProgressedBoard(t *testing.T) {
	tbl := testBoard(t, 100, []int{24}, 1)
	if _, err := tbl.Decide(context.Background(), "u1", reveal(0, 0)); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	step := tbl.Expire()
	if !step.Done || step.Outcome != games.OutcomeWin {
		t.Fatalf("step = %+v, want auto cashout", step)
	}
	// One safe reveal at 25/24 odds, no house edge.
	want := int64(math.Round(100 * (25.0 / 24.0)))
	if step.Payouts[0].Amount != want {
		t.Fatalf("payout = %d, want %d", step.Payouts[0].Amount, want)
	}
}

func TestSnapshotHidesMinesUntilEnded(t *testing.T) {
	tbl := testBoard(t, 100, []int{24}, 0.97)
	if _, err := tbl.Decide(context.Background(), "u1", reveal(0, 0)); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	v := tbl.Snapshot("u1").(View)
	if v.Mines != nil {
		t.Fatal("live snapshot leaked mine positions")
	}
	tbl.ended = true
	v = tbl.Snapshot("u1").(View)
	if len(v.Mines) != 1 || v.Mines[0] != 24 {
		t.Fatalf("ended snapshot mines = %v, want [24]", v.Mines)
	}
}
