// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"baucua-bot/internal/game/baucua"
	"baucua-bot/internal/model"
	"baucua-bot/internal/repository"
)

var _ RoundStore = (*repository.RoundRepository)(nil)

// RoundStore persists settled rounds.
// *repository.RoundRepository and the in-memory store both satisfy it.
type RoundStore interface {
	Create(ctx context.Context, round *model.Round) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Round, error)
	UserStats(ctx context.Context, userID int64) (*model.UserStats, error)
	DailyWinners(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error)
	DailyLosers(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error)
}

// LedgerService records settled rounds and answers statistics over them.
type LedgerService struct {
	store    RoundStore
	timezone *time.Location
	now      func() time.Time
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(store RoundStore, timezone *time.Location) *LedgerService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &LedgerService{
		store:    store,
		timezone: timezone,
		now:      time.Now,
	}
}

// Record stores a settled round together with the balance it left.
func (s *LedgerService) Record(ctx context.Context, userID int64, username string, rec baucua.Record, balanceAfter int64) error {
	if !baucua.ValidateDice(rec.Dice) {
		return fmt.Errorf("round %s has invalid dice %v", rec.ID, rec.Dice)
	}

	round := &model.Round{
		ID:           rec.ID,
		UserID:       userID,
		Username:     username,
		Dice:         rec.Dice.Ints(),
		Staked:       rec.Staked,
		Win:          rec.Win,
		BalanceAfter: balanceAfter,
		CreatedAt:    rec.Time,
	}
	if err := s.store.Create(ctx, round); err != nil {
		return fmt.Errorf("failed to record round: %w", err)
	}

	log.Debug().
		Int64("user_id", userID).
		Str("round_id", rec.ID.String()).
		Int64("net", rec.Net()).
		Msg("Round recorded")

	return nil
}

// Recent returns the user's latest recorded rounds, newest first.
func (s *LedgerService) Recent(ctx context.Context, userID int64, limit int) ([]*model.Round, error) {
	return s.store.ListByUser(ctx, userID, limit)
}

// Stats returns the user's totals over all recorded rounds.
func (s *LedgerService) Stats(ctx context.Context, userID int64) (*model.UserStats, error) {
	return s.store.UserStats(ctx, userID)
}

// DailyWinners retrieves today's top winners in the ledger's timezone.
func (s *LedgerService) DailyWinners(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.store.DailyWinners(ctx, s.today(), limit)
}

// DailyLosers retrieves today's top losers in the ledger's timezone.
func (s *LedgerService) DailyLosers(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.store.DailyLosers(ctx, s.today(), limit)
}

func (s *LedgerService) today() time.Time {
	return s.now().In(s.timezone)
}
