package baucua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestCountMatches tests match counting across the three dice.
func TestCountMatches(t *testing.T) {
	tests := []struct {
		name     string
		symbol   SymbolID
		dice     Dice
		expected int
	}{
		{"no match", Deer, Dice{Gourd, Fish, Crab}, 0},
		{"one match", Fish, Dice{Gourd, Fish, Crab}, 1},
		{"two matches", Gourd, Dice{Gourd, Gourd, Crab}, 2},
		{"three matches", Shrimp, Dice{Shrimp, Shrimp, Shrimp}, 3},
		{"invalid symbol", SymbolID(7), Dice{Gourd, Gourd, Crab}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountMatches(tt.symbol, tt.dice))
		})
	}
}

// TestCalculateWinnings tests settlement of a board against a throw.
func TestCalculateWinnings(t *testing.T) {
	tests := []struct {
		name     string
		bets     Bets
		dice     Dice
		expected int64
	}{
		{
			name:     "mixed board on 2-2-5",
			bets:     Bets{0, 1000, 500, 0, 2000, 0},
			dice:     Dice{Gourd, Gourd, Crab},
			expected: 4000,
		},
		{
			name:     "nothing matches",
			bets:     Bets{1000, 0, 0, 0, 0, 0},
			dice:     Dice{Gourd, Fish, Shrimp},
			expected: 0,
		},
		{
			name:     "triple pays three times the stake",
			bets:     Bets{0, 0, 0, 0, 0, 5000},
			dice:     Dice{Shrimp, Shrimp, Shrimp},
			expected: 15000,
		},
		{
			name:     "every die matches a different bet",
			bets:     Bets{1000, 1000, 1000, 0, 0, 0},
			dice:     Dice{Deer, Gourd, Rooster},
			expected: 3000,
		},
		{
			name:     "empty board",
			bets:     Bets{},
			dice:     Dice{Deer, Deer, Deer},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateWinnings(tt.bets, tt.dice))
		})
	}
}

func TestValidateDice(t *testing.T) {
	assert.True(t, ValidateDice(Dice{Deer, Fish, Shrimp}))
	assert.False(t, ValidateDice(Dice{0, Fish, Shrimp}))
	assert.False(t, ValidateDice(Dice{Deer, Fish, 7}))
}

func TestChipValid(t *testing.T) {
	for _, c := range Chips() {
		assert.True(t, c.Valid(), "chip %d", c)
	}
	for _, c := range []Chip{0, -1000, 2000, 20000, 1000000} {
		assert.False(t, c.Valid(), "chip %d", c)
	}
}

func TestBetsHelpers(t *testing.T) {
	b := Bets{1000, 0, 500, 0, 0, 2000}

	assert.Equal(t, int64(3500), b.Total())
	assert.False(t, b.Empty())
	assert.True(t, Bets{}.Empty())
	assert.Equal(t, int64(500), b.Of(Rooster))
	assert.Equal(t, int64(0), b.Of(SymbolID(0)))

	m := b.Map()
	assert.Len(t, m, SymbolCount)
	assert.Equal(t, int64(2000), m[Shrimp])
	assert.Equal(t, int64(0), m[Fish])
}

// TestWinningsMatchCountProperty checks the payout rule for random boards.
// For any board and throw, winnings = Σ stake(s) * count(s), never including
// the stake of a symbol that did not appear.
func TestWinningsMatchCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var dice Dice
		for i := range dice {
			dice[i] = SymbolID(rapid.IntRange(1, SymbolCount).Draw(t, "die"))
		}
		var bets Bets
		for i := range bets {
			bets[i] = rapid.Int64Range(0, 100).Draw(t, "chips") * int64(Chip1K)
		}

		var expected int64
		for i, stake := range bets {
			matches := 0
			for _, d := range dice {
				if int(d) == i+1 {
					matches++
				}
			}
			expected += stake * int64(matches)
		}

		win := CalculateWinnings(bets, dice)
		if win != expected {
			t.Fatalf("dice %v bets %v: expected %d, got %d", dice, bets, expected, win)
		}
		if win > bets.Total()*DiceCount {
			t.Fatalf("win %d exceeds three times the stake %d", win, bets.Total())
		}
	})
}

// TestWinningsOrderIndependentProperty checks that the order of the dice does
// not affect the payout.
func TestWinningsOrderIndependentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d1 := SymbolID(rapid.IntRange(1, SymbolCount).Draw(t, "d1"))
		d2 := SymbolID(rapid.IntRange(1, SymbolCount).Draw(t, "d2"))
		d3 := SymbolID(rapid.IntRange(1, SymbolCount).Draw(t, "d3"))
		var bets Bets
		for i := range bets {
			bets[i] = rapid.Int64Range(0, 50000).Draw(t, "stake")
		}

		a := CalculateWinnings(bets, Dice{d1, d2, d3})
		b := CalculateWinnings(bets, Dice{d3, d1, d2})
		c := CalculateWinnings(bets, Dice{d2, d3, d1})
		if a != b || b != c {
			t.Fatalf("order changed payout: %d %d %d", a, b, c)
		}
	})
}

// TestRollDiceRangeProperty checks that seeded throws always land on a symbol.
func TestRollDiceRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		src := NewSeededSource(seed)
		for i := 0; i < 20; i++ {
			if d := RollDice(src); !ValidateDice(d) {
				t.Fatalf("seed %d produced invalid dice %v", seed, d)
			}
		}
	})
}
