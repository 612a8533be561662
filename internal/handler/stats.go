package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"baucua-bot/internal/game/baucua"
	"baucua-bot/internal/model"
	"baucua-bot/internal/repository"
	"baucua-bot/internal/service"
)

const recentRounds = 5

// StatsHandler answers questions about a player's recorded rounds.
type StatsHandler struct {
	ledger *service.LedgerService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(ledger *service.LedgerService) *StatsHandler {
	return &StatsHandler{ledger: ledger}
}

// HandleStats handles the /stats command.
func (h *StatsHandler) HandleStats(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	stats, err := h.ledger.Stats(ctx, sender.ID)
	if errors.Is(err, repository.ErrNoRounds) {
		return c.Reply("🎲 Bạn chưa chơi ván nào. Gõ /baucua để bắt đầu.")
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load stats")
		return c.Reply("❌ Không tải được thống kê, vui lòng thử lại sau")
	}

	recent, err := h.ledger.Recent(ctx, sender.ID, recentRounds)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load recent rounds")
		recent = nil
	}

	return c.Reply(FormatStats(displayName(sender), stats, recent))
}

// FormatStats formats a player's ledger totals and latest rounds.
func FormatStats(name string, s *model.UserStats, recent []*model.Round) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Thống kê của %s\n", name)
	b.WriteString("━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "🎲 Số ván: %d (thắng %d)\n", s.Rounds, s.Wins)
	fmt.Fprintf(&b, "💸 Tổng cược: %s\n", baucua.FormatAmount(s.Staked))
	fmt.Fprintf(&b, "💰 Tổng thưởng: %s\n", baucua.FormatAmount(s.Won))
	fmt.Fprintf(&b, "📊 Lãi/lỗ: %s\n", signedAmount(s.Net()))
	fmt.Fprintf(&b, "🏆 Thưởng lớn nhất: %s", baucua.FormatAmount(s.BiggestWin))

	if len(recent) > 0 {
		b.WriteString("\n━━━━━━━━━━━━━━━\n")
		b.WriteString("🕘 Gần đây")
		for _, r := range recent {
			dice := baucua.DiceFromInts(r.Dice)
			fmt.Fprintf(&b, "\n%s %s %s", r.CreatedAt.Format("02/01 15:04"), dice, signedAmount(r.Net()))
		}
	}

	return b.String()
}

func signedAmount(n int64) string {
	if n > 0 {
		return "+" + baucua.FormatAmount(n)
	}
	return baucua.FormatAmount(n)
}
