// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"baucua-bot/internal/model"
)

// Repository errors.
var (
	ErrNoRounds = errors.New("no rounds recorded")
)

// RoundRepository handles round ledger persistence.
type RoundRepository struct {
	pool *pgxpool.Pool
}

// NewRoundRepository creates a new RoundRepository instance.
func NewRoundRepository(pool *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{pool: pool}
}

// Create inserts a settled round. A zero CreatedAt is stamped by the database.
func (r *RoundRepository) Create(ctx context.Context, round *model.Round) error {
	const query = `
		INSERT INTO rounds (id, user_id, username, die1, die2, die3, staked, win, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		RETURNING created_at
	`

	var createdAt *time.Time
	if !round.CreatedAt.IsZero() {
		createdAt = &round.CreatedAt
	}

	err := r.pool.QueryRow(ctx, query,
		round.ID,
		round.UserID,
		round.Username,
		round.Dice[0], round.Dice[1], round.Dice[2],
		round.Staked,
		round.Win,
		round.BalanceAfter,
		createdAt,
	).Scan(&round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's rounds, newest first.
func (r *RoundRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Round, error) {
	const query = `
		SELECT id, user_id, username, die1, die2, die3, staked, win, balance_after, created_at
		FROM rounds
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*model.Round
	for rows.Next() {
		var round model.Round
		err := rows.Scan(
			&round.ID,
			&round.UserID,
			&round.Username,
			&round.Dice[0], &round.Dice[1], &round.Dice[2],
			&round.Staked,
			&round.Win,
			&round.BalanceAfter,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, &round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rounds: %w", err)
	}

	return rounds, nil
}

// UserStats aggregates all of a user's rounds.
// Returns ErrNoRounds if the user has none.
func (r *RoundRepository) UserStats(ctx context.Context, userID int64) (*model.UserStats, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE win > staked),
		       COALESCE(SUM(staked), 0)::BIGINT,
		       COALESCE(SUM(win), 0)::BIGINT,
		       COALESCE(MAX(win), 0),
		       MAX(created_at)
		FROM rounds
		WHERE user_id = $1
	`

	stats := model.UserStats{UserID: userID}
	var lastPlayed *time.Time
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.Rounds,
		&stats.Wins,
		&stats.Staked,
		&stats.Won,
		&stats.BiggestWin,
		&lastPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if stats.Rounds == 0 {
		return nil, ErrNoRounds
	}
	stats.LastPlayed = *lastPlayed

	return &stats, nil
}

// DailyWinners retrieves the users with the largest positive net result on
// date's calendar day, in date's location.
func (r *RoundRepository) DailyWinners(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	const query = `
		SELECT user_id, (ARRAY_AGG(username ORDER BY created_at DESC))[1], SUM(win - staked)::BIGINT AS net_profit
		FROM rounds
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY user_id
		HAVING SUM(win - staked) > 0
		ORDER BY net_profit DESC, user_id
		LIMIT $3
	`
	return r.dailyRanks(ctx, query, date, limit)
}

// DailyLosers retrieves the users with the largest negative net result on
// date's calendar day, in date's location.
func (r *RoundRepository) DailyLosers(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	const query = `
		SELECT user_id, (ARRAY_AGG(username ORDER BY created_at DESC))[1], SUM(win - staked)::BIGINT AS net_profit
		FROM rounds
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY user_id
		HAVING SUM(win - staked) < 0
		ORDER BY net_profit ASC, user_id
		LIMIT $3
	`
	return r.dailyRanks(ctx, query, date, limit)
}

func (r *RoundRepository) dailyRanks(ctx context.Context, query string, date time.Time, limit int) ([]*model.DailyRank, error) {
	start, end := DayBounds(date)

	rows, err := r.pool.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily ranks: %w", err)
	}

	ranks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.DailyRank, error) {
		var rank model.DailyRank
		err := row.Scan(&rank.UserID, &rank.Username, &rank.NetProfit)
		return &rank, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily rank: %w", err)
	}

	return ranks, nil
}

// DayBounds returns the start of date's calendar day and the start of the
// next one, both in date's location.
func DayBounds(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}
