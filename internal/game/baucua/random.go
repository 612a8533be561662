package baucua

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Source produces the randomness for dice throws.
type Source interface {
	// Intn returns a non-negative int in [0, n).
	Intn(n int) int
}

// NewSource returns a math/rand generator seeded from crypto/rand.
// The result is not safe for concurrent use; the engine only calls it while
// holding its own lock.
func NewSource() Source {
	return NewSeededSource(newSeed())
}

// NewSeededSource returns a deterministic generator for seed.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// RollDie draws one face uniformly from the six symbols.
func RollDie(src Source) SymbolID {
	return SymbolID(src.Intn(SymbolCount) + 1)
}

// RollDice draws three independent faces, with replacement.
func RollDice(src Source) Dice {
	var d Dice
	for i := range d {
		d[i] = RollDie(src)
	}
	return d
}
