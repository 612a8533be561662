// Package game keeps the per-player tables the bot serves.
package game

import (
	"errors"
	"time"
)

// ErrTableNotFound is returned when a player has no open table.
var ErrTableNotFound = errors.New("table not found")

// Table is a single player's game session.
// *baucua.Engine satisfies it.
type Table interface {
	// LastActivity returns when the table last changed state.
	LastActivity() time.Time

	// Busy reports whether the table is in the middle of a round and
	// must not be dropped.
	Busy() bool

	// Close stops the table. A round in progress is settled first.
	Close()
}

// Factory creates a fresh table for a player.
type Factory[T Table] func(userID int64) T
