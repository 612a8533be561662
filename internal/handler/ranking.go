package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"baucua-bot/internal/game/baucua"
	"baucua-bot/internal/model"
	"baucua-bot/internal/service"
)

const dailyTopLimit = 10

// RankingHandler handles ranking-related commands.
type RankingHandler struct {
	ledger *service.LedgerService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(ledger *service.LedgerService) *RankingHandler {
	return &RankingHandler{
		ledger: ledger,
	}
}

// HandleDailyTop handles the /daily_top command.
// Displays today's top winners and losers.
func (h *RankingHandler) HandleDailyTop(c tele.Context) error {
	ctx := context.Background()

	winners, err := h.ledger.DailyWinners(ctx, dailyTopLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load daily winners")
		return c.Reply("❌ Không tải được bảng xếp hạng, vui lòng thử lại sau")
	}

	losers, err := h.ledger.DailyLosers(ctx, dailyTopLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load daily losers")
		return c.Reply("❌ Không tải được bảng xếp hạng, vui lòng thử lại sau")
	}

	return c.Reply(FormatDailyTop(winners, losers))
}

// FormatDailyTop formats today's rankings.
func FormatDailyTop(winners, losers []*model.DailyRank) string {
	var b strings.Builder
	b.WriteString("📊 Bảng xếp hạng hôm nay\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")

	fmt.Fprintf(&b, "🏆 Thắng nhiều nhất TOP %d\n", dailyTopLimit)
	if len(winners) == 0 {
		b.WriteString("Chưa có dữ liệu\n")
	} else {
		medals := []string{"🥇", "🥈", "🥉"}
		for i, w := range winners {
			rank := fmt.Sprintf("%d.", i+1)
			if i < len(medals) {
				rank = medals[i]
			}
			fmt.Fprintf(&b, "%s %s: +%s\n", rank, rankName(w), baucua.FormatAmount(w.NetProfit))
		}
	}

	b.WriteString("\n━━━━━━━━━━━━━━━\n")

	fmt.Fprintf(&b, "😢 Thua nhiều nhất TOP %d\n", dailyTopLimit)
	if len(losers) == 0 {
		b.WriteString("Chưa có dữ liệu\n")
	} else {
		for i, l := range losers {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, rankName(l), baucua.FormatAmount(l.NetProfit))
		}
	}

	b.WriteString("━━━━━━━━━━━━━━━")
	return b.String()
}

func rankName(r *model.DailyRank) string {
	if r.Username == "" {
		return fmt.Sprintf("User%d", r.UserID)
	}
	return r.Username
}
