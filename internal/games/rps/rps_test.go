package rps

import (
	"context"
	"errors"
	"testing"

	"heartbound/internal/games"
	"heartbound/internal/ledger"
)

func testGame(challengerBal, opponentBal int64) (*Table, *ledger.MemoryBank) {
	bank := ledger.NewMemoryBank()
	bank.SetBalance("alice", challengerBal)
	bank.SetBalance("bob", opponentBal)
	return New(bank, "sess1", "alice", "bob", 100), bank
}

func act(typ, move string) games.Action { return games.Action{Type: typ, Move: move} }

func TestAcceptEscrowsOpponentBet(t *testing.T) {
	tbl, bank := testGame(500, 500)
	ctx := context.Background()

	step, err := tbl.Decide(ctx, "bob", act(actionAccept, ""))
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if step.Done {
		t.Fatal("accept must not resolve the game")
	}
	if bal, _ := bank.Balance(ctx, "bob"); bal != 400 {
		t.Fatalf("opponent balance = %d, want 400", bal)
	}
}

func TestAcceptRefusedWithoutFunds(t *testing.T) {
	tbl, _ := testGame(500, 50)
	_, err := tbl.Decide(context.Background(), "bob", act(actionAccept, ""))
	if !errors.Is(err, games.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if tbl.accepted {
		t.Fatal("refused accept must leave the challenge pending")
	}
}

func TestChallengerCannotAccept(t *testing.T) {
	tbl, _ := testGame(500, 500)
	if _, err := tbl.Decide(context.Background(), "alice", act(actionAccept, "")); !errors.Is(err, games.ErrInvalidAction) {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
}

func TestMoveBeforeAcceptInvalid(t *testing.T) {
	tbl, _ := testGame(500, 500)
	if _, err := tbl.Decide(context.Background(), "alice", act(actionMove, "rock")); !errors.Is(err, games.ErrInvalidAction) {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
}

func TestRejectRefundsChallenger(t *testing.T) {
	tbl, _ := testGame(500, 500)
	step, err := tbl.Decide(context.Background(), "bob", act(actionReject, ""))
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !step.Done || step.Outcome != games.OutcomeRefund {
		t.Fatalf("step = %+v, want refund resolution", step)
	}
	if len(step.Payouts) != 1 || step.Payouts[0].UserID != "alice" || step.Payouts[0].Amount != 100 {
		t.Fatalf("payouts = %+v, want challenger refund only", step.Payouts)
	}
}

func TestCancelOnlyBeforeAccept(t *testing.T) {
	tbl, _ := testGame(500, 500)
	ctx := context.Background()
	if _, err := tbl.Decide(ctx, "bob", act(actionAccept, "")); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := tbl.Decide(ctx, "alice", act(actionCancel, "")); !errors.Is(err, games.ErrInvalidAction) {
		t.Fatalf("cancel after accept err = %v, want ErrInvalidAction", err)
	}
}

func TestWinnerTakesPot(t *testing.T) {
	tbl, _ := testGame(500, 500)
	ctx := context.Background()
	if _, err := tbl.Decide(ctx, "bob", act(actionAccept, "")); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if step, err := tbl.Decide(ctx, "alice", act(actionMove, "rock")); err != nil || step.Done {
		t.Fatalf("first move: step=%+v err=%v", step, err)
	}
	step, err := tbl.Decide(ctx, "bob", act(actionMove, "scissors"))
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if !step.Done || step.Outcome != games.OutcomeWin {
		t.Fatalf("step = %+v, want win", step)
	}
	var winner, loser games.Payout
	for _, p := range step.Payouts {
		if p.Amount > 0 {
			winner = p
		} else {
			loser = p
		}
	}
	if winner.UserID != "alice" || winner.Amount != 200 {
		t.Fatalf("winner payout = %+v, want alice 200", winner)
	}
	if loser.UserID != "bob" || loser.EntryType != games.EntrySettlement {
		t.Fatalf("loser payout = %+v, want bob settlement", loser)
	}
}

func TestTieRefundsBoth(t *testing.T) {
	tbl, _ := testGame(500, 500)
	ctx := context.Background()
	tbl.Decide(ctx, "bob", act(actionAccept, ""))
	tbl.Decide(ctx, "alice", act(actionMove, "paper"))
	step, err := tbl.Decide(ctx, "bob", act(actionMove, "paper"))
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if step.Outcome != games.OutcomeTie || len(step.Payouts) != 2 {
		t.Fatalf("step = %+v, want tie refunding both", step)
	}
	for _, p := range step.Payouts {
		if p.Amount != 100 {
			t.Fatalf("tie payout = %+v, want bet back", p)
		}
	}
}

func TestDoubleMoveInvalid(t *testing.T) {
	tbl, _ := testGame(500, 500)
	ctx := context.Background()
	tbl.Decide(ctx, "bob", act(actionAccept, ""))
	tbl.Decide(ctx, "alice", act(actionMove, "rock"))
	if _, err := tbl.Decide(ctx, "alice", act(actionMove, "paper")); !errors.Is(err, games.ErrInvalidAction) {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
}

func TestExpirePendingRefundsChallenger(t *testing.T) {
	tbl, _ := testGame(500, 500)
	step := tbl.Expire()
	if step.Outcome != games.OutcomeRefund || len(step.Payouts) != 1 || step.Payouts[0].UserID != "alice" {
		t.Fatalf("step = %+v, want challenger refund", step)
	}
}

func TestExpireSoleMoverWinsByForfeit(t *testing.T) {
	tbl, _ := testGame(500, 500)
	ctx := context.Background()
	tbl.Decide(ctx, "bob", act(actionAccept, ""))
	tbl.Decide(ctx, "bob", act(actionMove, "rock"))

	step := tbl.Expire()
	if step.Outcome != games.OutcomeForfeit {
		t.Fatalf("outcome = %v, want forfeit", step.Outcome)
	}
	for _, p := range step.Payouts {
		if p.UserID == "bob" && p.Amount != 200 {
			t.Fatalf("forfeit winner payout = %+v, want 200", p)
		}
		if p.UserID == "alice" && p.Amount != 0 {
			t.Fatalf("forfeit loser payout = %+v, want settlement", p)
		}
	}
}

func TestExpireNoMovesRefundsBoth(t *testing.T) {
	tbl, _ := testGame(500, 500)
	ctx := context.Background()
	tbl.Decide(ctx, "bob", act(actionAccept, ""))

	step := tbl.Expire()
	if step.Outcome != games.OutcomeRefund || len(step.Payouts) != 2 {
		t.Fatalf("step = %+v, want both refunded", step)
	}
}

func TestSnapshotHidesOpponentMove(t *testing.T) {
	tbl, _ := testGame(500, 500)
	ctx := context.Background()
	tbl.Decide(ctx, "bob", act(actionAccept, ""))
	tbl.Decide(ctx, "alice", act(actionMove, "rock"))

	v := tbl.Snapshot("bob").(View)
	if v.YourMove != "" {
		t.Fatalf("bob sees move %q before moving", v.YourMove)
	}
	if !v.Moved["alice"] {
		t.Fatal("snapshot should show that alice moved")
	}
	if v.Moves != nil {
		t.Fatal("moves leaked before resolution")
	}

	tbl.Decide(ctx, "bob", act(actionMove, "paper"))
	v = tbl.Snapshot("alice").(View)
	if v.Moves["bob"] != "paper" {
		t.Fatalf("ended snapshot moves = %v, want revealed", v.Moves)
	}
}
