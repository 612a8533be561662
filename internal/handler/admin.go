package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"baucua-bot/internal/game"
	"baucua-bot/internal/game/baucua"
)

// AdminHandler handles admin-related commands.
type AdminHandler struct {
	registry *game.Registry[*baucua.Engine]
	tables   *TableHandler
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(registry *game.Registry[*baucua.Engine], tables *TableHandler) *AdminHandler {
	return &AdminHandler{
		registry: registry,
		tables:   tables,
	}
}

// HandleTables handles the /tables command: every open table with its state.
func (h *AdminHandler) HandleTables(c tele.Context) error {
	ids := h.registry.UserIDs()
	if len(ids) == 0 {
		return c.Reply("🎲 Không có bàn nào đang mở")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎲 Bàn đang mở: %d\n", len(ids))
	b.WriteString("━━━━━━━━━━━━━━━")
	for _, id := range ids {
		table, ok := h.registry.Get(id)
		if !ok {
			continue
		}
		s := table.Snapshot()
		fmt.Fprintf(&b, "\n%d · %s · %s · cược %s",
			id, s.Phase, baucua.FormatAmount(s.Balance), baucua.FormatAmount(s.Bets.Total()))
	}
	return c.Reply(b.String())
}

// HandleCloseTable handles the /close_table command.
// Format: /close_table <user_id>
func (h *AdminHandler) HandleCloseTable(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Cú pháp: /close_table <user_id>")
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply("❌ user_id không hợp lệ")
	}

	if err := h.tables.CloseTable(targetID); err != nil {
		if errors.Is(err, game.ErrTableNotFound) {
			return c.Reply(fmt.Sprintf("❌ Người chơi %d không có bàn nào đang mở", targetID))
		}
		return c.Reply("❌ Thao tác thất bại")
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Str("operation", "close_table").
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf("✅ Đã đóng bàn của %d", targetID))
}
