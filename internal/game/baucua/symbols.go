// Package baucua implements the Bầu Cua Tôm Cá round engine: six symbols,
// three dice and a payout per matching die.
package baucua

import "strings"

// SymbolID identifies one of the six faces shared by the betting board and
// the dice. Ids are stable and start at 1.
type SymbolID int

const (
	Deer SymbolID = iota + 1
	Gourd
	Rooster
	Fish
	Crab
	Shrimp
)

// SymbolCount is the number of faces on the board and on each die.
const SymbolCount = 6

// DiceCount is the number of dice thrown per round.
const DiceCount = 3

// Symbol is a face's display data.
type Symbol struct {
	ID   SymbolID
	Name string
	Icon string
}

var symbols = [SymbolCount]Symbol{
	{ID: Deer, Name: "Nai", Icon: "🦌"},
	{ID: Gourd, Name: "Bầu", Icon: "🎃"},
	{ID: Rooster, Name: "Gà", Icon: "🐓"},
	{ID: Fish, Name: "Cá", Icon: "🐟"},
	{ID: Crab, Name: "Cua", Icon: "🦀"},
	{ID: Shrimp, Name: "Tôm", Icon: "🦐"},
}

// Symbols returns the six faces in id order.
func Symbols() []Symbol {
	out := make([]Symbol, SymbolCount)
	copy(out, symbols[:])
	return out
}

// Valid reports whether id names one of the six faces.
func (id SymbolID) Valid() bool {
	return id >= Deer && id <= Shrimp
}

// Symbol returns the face for id, or the zero Symbol if id is invalid.
func (id SymbolID) Symbol() Symbol {
	if !id.Valid() {
		return Symbol{}
	}
	return symbols[id-1]
}

// Icon returns the face's emoji, "?" for an invalid id.
func (id SymbolID) Icon() string {
	if !id.Valid() {
		return "?"
	}
	return symbols[id-1].Icon
}

func (id SymbolID) String() string {
	if !id.Valid() {
		return "?"
	}
	return symbols[id-1].Name
}

// Dice is one throw of the three dice.
type Dice [DiceCount]SymbolID

// InitialDice is what the board shows before the first roll.
var InitialDice = Dice{Deer, Deer, Deer}

// Icons returns the emoji of each die, in throw order.
func (d Dice) Icons() [DiceCount]string {
	var out [DiceCount]string
	for i, id := range d {
		out[i] = id.Icon()
	}
	return out
}

func (d Dice) String() string {
	icons := d.Icons()
	return strings.Join(icons[:], " ")
}

// Ints returns the dice as plain integers, for storage.
func (d Dice) Ints() [DiceCount]int {
	var out [DiceCount]int
	for i, id := range d {
		out[i] = int(id)
	}
	return out
}

// DiceFromInts converts stored integers back to Dice.
func DiceFromInts(v [DiceCount]int) Dice {
	var d Dice
	for i, n := range v {
		d[i] = SymbolID(n)
	}
	return d
}
