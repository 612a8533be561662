package handler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"baucua-bot/internal/game/baucua"
	"baucua-bot/internal/model"
	"baucua-bot/internal/service"
)

func recordRound(t *testing.T, ledger *service.LedgerService, userID int64, name string, staked, win int64) {
	rec := baucua.Record{
		ID:     uuid.New(),
		Time:   time.Now(),
		Dice:   baucua.Dice{baucua.Gourd, baucua.Gourd, baucua.Crab},
		Staked: staked,
		Win:    win,
	}
	require.NoError(t, ledger.Record(context.Background(), userID, name, rec, baucua.InitialBalance-staked+win))
}

func TestHandleStats(t *testing.T) {
	ledger := service.NewLedgerService(service.NewMemoryStore(), time.UTC)
	h := NewStatsHandler(ledger)
	c := &fakeContext{sender: &tele.User{ID: 42, Username: "alice"}}

	require.NoError(t, h.HandleStats(c))
	assert.Contains(t, c.replies[0], "chưa chơi ván nào")

	recordRound(t, ledger, 42, "alice", 3500, 4000)
	recordRound(t, ledger, 42, "alice", 1000, 0)

	require.NoError(t, h.HandleStats(c))
	text := c.replies[1]
	assert.Contains(t, text, "Thống kê của alice")
	assert.Contains(t, text, "Số ván: 2 (thắng 1)")
	assert.Contains(t, text, "Lãi/lỗ: -500đ")
	assert.Contains(t, text, "🎃 🎃 🦀 +500đ")
}

func TestHandleDailyTop(t *testing.T) {
	ledger := service.NewLedgerService(service.NewMemoryStore(), time.UTC)
	h := NewRankingHandler(ledger)

	c := &fakeContext{}
	require.NoError(t, h.HandleDailyTop(c))
	assert.Contains(t, c.replies[0], "Chưa có dữ liệu")

	recordRound(t, ledger, 1, "alice", 1000, 3000)
	recordRound(t, ledger, 2, "", 5000, 0)

	require.NoError(t, h.HandleDailyTop(c))
	text := c.replies[1]
	assert.Contains(t, text, "🥇 alice: +2.000đ")
	assert.Contains(t, text, "1. User2: -5.000đ")
}

func TestFormatDailyTop_Medals(t *testing.T) {
	winners := []*model.DailyRank{
		{UserID: 1, Username: "a", NetProfit: 4000},
		{UserID: 2, Username: "b", NetProfit: 3000},
		{UserID: 3, Username: "c", NetProfit: 2000},
		{UserID: 4, Username: "d", NetProfit: 1000},
	}
	text := FormatDailyTop(winners, nil)

	assert.Contains(t, text, "🥉 c: +2.000đ")
	assert.Contains(t, text, "4. d: +1.000đ")
}
