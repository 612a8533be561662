package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"baucua-bot/internal/model"
	"baucua-bot/internal/repository"
)

// memstore is an in-memory RoundStore used when no database is configured.
// Rounds live as long as the process.
type memstore struct {
	mu     sync.RWMutex
	byUser map[int64][]*model.Round // append order
}

// NewMemoryStore creates an empty in-memory RoundStore.
func NewMemoryStore() RoundStore {
	return &memstore{byUser: make(map[int64][]*model.Round)}
}

func (m *memstore) Create(ctx context.Context, round *model.Round) error {
	if round.CreatedAt.IsZero() {
		round.CreatedAt = time.Now()
	}
	stored := *round

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[round.UserID] = append(m.byUser[round.UserID], &stored)
	return nil
}

func (m *memstore) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Round, error) {
	m.mu.RLock()
	list := m.byUser[userID]
	items := make([]*model.Round, 0, len(list))
	for _, r := range list {
		c := *r
		items = append(items, &c)
	}
	m.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memstore) UserStats(ctx context.Context, userID int64) (*model.UserStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.byUser[userID]
	if len(list) == 0 {
		return nil, repository.ErrNoRounds
	}

	stats := &model.UserStats{UserID: userID}
	for _, r := range list {
		stats.Rounds++
		if r.Win > r.Staked {
			stats.Wins++
		}
		stats.Staked += r.Staked
		stats.Won += r.Win
		stats.BiggestWin = max(stats.BiggestWin, r.Win)
		if r.CreatedAt.After(stats.LastPlayed) {
			stats.LastPlayed = r.CreatedAt
		}
	}
	return stats, nil
}

func (m *memstore) DailyWinners(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	ranks := m.daily(date, func(net int64) bool { return net > 0 })
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].NetProfit != ranks[j].NetProfit {
			return ranks[i].NetProfit > ranks[j].NetProfit
		}
		return ranks[i].UserID < ranks[j].UserID
	})
	return truncate(ranks, limit), nil
}

func (m *memstore) DailyLosers(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	ranks := m.daily(date, func(net int64) bool { return net < 0 })
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].NetProfit != ranks[j].NetProfit {
			return ranks[i].NetProfit < ranks[j].NetProfit
		}
		return ranks[i].UserID < ranks[j].UserID
	})
	return truncate(ranks, limit), nil
}

// daily sums each user's net result over date's calendar day and keeps the
// users whose total passes keep. Usernames come from the latest round.
func (m *memstore) daily(date time.Time, keep func(net int64) bool) []*model.DailyRank {
	start, end := repository.DayBounds(date)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var ranks []*model.DailyRank
	for userID, list := range m.byUser {
		var (
			net    int64
			played bool
			name   string
			latest time.Time
		)
		for _, r := range list {
			if r.CreatedAt.Before(start) || !r.CreatedAt.Before(end) {
				continue
			}
			played = true
			net += r.Net()
			if !r.CreatedAt.Before(latest) {
				latest = r.CreatedAt
				name = r.Username
			}
		}
		if played && keep(net) {
			ranks = append(ranks, &model.DailyRank{UserID: userID, Username: name, NetProfit: net})
		}
	}
	return ranks
}

func truncate(ranks []*model.DailyRank, limit int) []*model.DailyRank {
	if limit > 0 && len(ranks) > limit {
		return ranks[:limit]
	}
	return ranks
}
