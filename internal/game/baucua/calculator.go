package baucua

// Chip is a wager denomination.
type Chip int64

const (
	Chip1K   Chip = 1000
	Chip5K   Chip = 5000
	Chip10K  Chip = 10000
	Chip50K  Chip = 50000
	Chip100K Chip = 100000
)

const (
	// InitialBalance is the balance every new table starts with.
	InitialBalance int64 = 500000

	// DefaultChip is selected when a table is created.
	DefaultChip = Chip1K

	// HistorySize caps the number of settled rounds kept per table.
	HistorySize = 10
)

var chips = [...]Chip{Chip1K, Chip5K, Chip10K, Chip50K, Chip100K}

// Chips returns the selectable denominations in ascending order.
func Chips() []Chip {
	out := make([]Chip, len(chips))
	copy(out, chips[:])
	return out
}

// Valid reports whether c is one of the fixed denominations.
func (c Chip) Valid() bool {
	for _, v := range chips {
		if v == c {
			return true
		}
	}
	return false
}

// Bets holds the stake on every symbol, indexed by SymbolID-1.
// All six symbols are always present.
type Bets [SymbolCount]int64

// Of returns the stake on id, 0 for an invalid id.
func (b Bets) Of(id SymbolID) int64 {
	if !id.Valid() {
		return 0
	}
	return b[id-1]
}

// Total returns the sum of all stakes.
func (b Bets) Total() int64 {
	var total int64
	for _, amount := range b {
		total += amount
	}
	return total
}

// Empty reports whether no symbol carries a stake.
func (b Bets) Empty() bool {
	for _, amount := range b {
		if amount > 0 {
			return false
		}
	}
	return true
}

// Map returns the stakes keyed by symbol, including zero entries.
func (b Bets) Map() map[SymbolID]int64 {
	out := make(map[SymbolID]int64, SymbolCount)
	for i, amount := range b {
		out[SymbolID(i+1)] = amount
	}
	return out
}

// CountMatches returns how many dice show id.
func CountMatches(id SymbolID, dice Dice) int {
	count := 0
	for _, d := range dice {
		if d == id {
			count++
		}
	}
	return count
}

// CalculateWinnings returns the amount credited back for a throw.
// Rules:
//   - each symbol pays stake * matches;
//   - a symbol with no match pays nothing;
//   - the stake is not returned on top, it was deducted when the bet was placed.
func CalculateWinnings(bets Bets, dice Dice) int64 {
	var win int64
	for i, stake := range bets {
		if stake <= 0 {
			continue
		}
		if n := CountMatches(SymbolID(i+1), dice); n > 0 {
			win += stake * int64(n)
		}
	}
	return win
}

// ValidateDice checks that every die shows a valid symbol.
func ValidateDice(dice Dice) bool {
	for _, d := range dice {
		if !d.Valid() {
			return false
		}
	}
	return true
}
