package baucua

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestBalanceConservationProperty checks that betting only moves money
// between the balance and the board.
// For any sequence of PlaceBet, PlaceBetWith, SelectChip and ResetBets
// without a roll, balance + Σ bets stays equal to the starting balance, and
// every stake is a sum of valid chips.
func TestBalanceConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New(fastConfig(&scriptedSource{}))
		defer e.Close()

		chipList := Chips()
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				e.PlaceBet(SymbolID(rapid.IntRange(0, SymbolCount+1).Draw(t, "symbol")))
			case 1:
				chip := chipList[rapid.IntRange(0, len(chipList)-1).Draw(t, "chip")]
				e.PlaceBetWith(SymbolID(rapid.IntRange(1, SymbolCount).Draw(t, "symbol")), chip)
			case 2:
				e.SelectChip(Chip(rapid.SampledFrom([]int64{1000, 2000, 5000, 10000, 50000, 100000, 0}).Draw(t, "amount")))
			case 3:
				e.ResetBets()
			}

			s := e.Snapshot()
			if s.Balance < 0 {
				t.Fatalf("balance went negative: %d", s.Balance)
			}
			if got := s.Balance + s.Bets.Total(); got != InitialBalance {
				t.Fatalf("balance %d + bets %d = %d, want %d", s.Balance, s.Bets.Total(), got, InitialBalance)
			}
			for id, amount := range s.Bets {
				if amount%int64(Chip1K) != 0 {
					t.Fatalf("stake on %d is not a chip multiple: %d", id+1, amount)
				}
			}
		}
	})
}

// TestRollClearsBetsProperty checks settlement bookkeeping for random boards.
// For any board and scripted throw, a completed roll leaves no bets, credits
// exactly CalculateWinnings once, and records the round.
func TestRollClearsBetsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var final Dice
		for i := range final {
			final[i] = SymbolID(rapid.IntRange(1, SymbolCount).Draw(t, "die"))
		}
		e := New(fastConfig(finalThrow(final)))
		defer e.Close()

		placed := 0
		n := rapid.IntRange(1, 20).Draw(t, "bets")
		for i := 0; i < n; i++ {
			id := SymbolID(rapid.IntRange(1, SymbolCount).Draw(t, "symbol"))
			chip := Chips()[rapid.IntRange(0, 2).Draw(t, "chip")]
			if e.PlaceBetWith(id, chip) {
				placed++
			}
		}
		if placed == 0 {
			t.Fatalf("no bet accepted")
		}

		before := e.Snapshot()
		if !e.Roll() {
			t.Fatalf("roll rejected with bets %v", before.Bets)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Wait(ctx); err != nil {
			t.Fatalf("roll did not finish: %v", err)
		}

		after := e.Snapshot()
		if !after.Bets.Empty() {
			t.Fatalf("bets not cleared: %v", after.Bets)
		}
		want := before.Balance + CalculateWinnings(before.Bets, final)
		if after.Balance != want {
			t.Fatalf("balance %d, want %d (dice %v bets %v)", after.Balance, want, final, before.Bets)
		}
		if len(after.History) != 1 || after.History[0].Dice != final {
			t.Fatalf("history %v does not hold the final throw %v", after.History, final)
		}
	})
}
