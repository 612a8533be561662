// Package model defines the data models for the Bầu Cua bot's round ledger.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Round is one settled roll as stored in the rounds table.
type Round struct {
	ID           uuid.UUID `db:"id"`
	UserID       int64     `db:"user_id"`
	Username     string    `db:"username"`
	Dice         [3]int    `db:"-"` // die1, die2, die3; symbol IDs 1-6
	Staked       int64     `db:"staked"`
	Win          int64     `db:"win"`
	BalanceAfter int64     `db:"balance_after"`
	CreatedAt    time.Time `db:"created_at"`
}

// Net returns the round's result for the player: win - staked.
func (r *Round) Net() int64 {
	return r.Win - r.Staked
}

// DailyRank represents a user's net result over one day for ranking.
type DailyRank struct {
	UserID    int64  `db:"user_id"`
	Username  string `db:"username"`
	NetProfit int64  `db:"net_profit"`
}

// UserStats aggregates every recorded round of one user.
type UserStats struct {
	UserID     int64     `db:"user_id"`
	Rounds     int64     `db:"rounds"`
	Wins       int64     `db:"wins"` // rounds with a positive net result
	Staked     int64     `db:"staked"`
	Won        int64     `db:"won"`
	BiggestWin int64     `db:"biggest_win"`
	LastPlayed time.Time `db:"last_played"`
}

// Net returns the user's overall result: won - staked.
func (s *UserStats) Net() int64 {
	return s.Won - s.Staked
}
