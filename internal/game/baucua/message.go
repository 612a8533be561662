package baucua

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Vietnamese)

// FormatAmount renders an amount the way the board shows money: "500.000đ".
func FormatAmount(n int64) string {
	return printer.Sprintf("%d", n) + "đ"
}

// FormatShort renders chip-sized amounts compactly: 1000 -> "1K", 150000 -> "150K".
func FormatShort(n int64) string {
	switch {
	case n >= 1_000_000 && n%1_000_000 == 0:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1000 && n%1000 == 0:
		return fmt.Sprintf("%dK", n/1000)
	default:
		return printer.Sprintf("%d", n)
	}
}

// FormatBoard formats the table message shown above the keyboard.
func FormatBoard(s Snapshot) string {
	var b strings.Builder
	b.WriteString("🎲 Bầu Cua Tôm Cá\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "💰 Số dư: %s\n", FormatAmount(s.Balance))
	fmt.Fprintf(&b, "🎯 Xúc xắc: %s\n", s.Dice)
	b.WriteString("━━━━━━━━━━━━━━━\n")

	if s.Bets.Empty() {
		b.WriteString("Chưa đặt cược\n")
	} else {
		for _, sym := range Symbols() {
			if stake := s.Bets.Of(sym.ID); stake > 0 {
				fmt.Fprintf(&b, "• %s %s: %s\n", sym.Icon, sym.Name, FormatAmount(stake))
			}
		}
		fmt.Fprintf(&b, "Tổng cược: %s\n", FormatAmount(s.Bets.Total()))
	}

	b.WriteString("━━━━━━━━━━━━━━━\n")
	switch s.Phase {
	case PhaseRolling:
		b.WriteString("⏳ Đang quay...")
	case PhaseSettling:
		if rec, ok := s.LastRound(); ok {
			b.WriteString(FormatResult(rec))
		}
	default:
		fmt.Fprintf(&b, "Chip: %s · chọn ô để đặt cược", FormatAmount(int64(s.SelectedChip)))
	}

	return b.String()
}

// FormatResult formats the outcome line of a settled round.
func FormatResult(r Record) string {
	switch {
	case r.Win > 0:
		return fmt.Sprintf("🎉 Kết quả: %s · thắng +%s", r.Dice, FormatAmount(r.Win))
	default:
		return fmt.Sprintf("😢 Kết quả: %s · không trúng", r.Dice)
	}
}

// FormatHistory formats the history log, newest first.
func FormatHistory(records []Record) string {
	if len(records) == 0 {
		return "📜 Chưa có ván nào"
	}

	var b strings.Builder
	b.WriteString("📜 Lịch sử\n")
	b.WriteString("━━━━━━━━━━━━━━━")
	for _, r := range records {
		b.WriteString("\n")
		b.WriteString(r.String())
	}
	return b.String()
}

// RejectReason explains, from the table state, why action was ignored.
func RejectReason(s Snapshot, a Action) string {
	if s.Phase != PhaseIdle && a.Kind != ActionChip && a.Kind != ActionHistory {
		return "⏳ Đang quay, vui lòng chờ"
	}

	switch a.Kind {
	case ActionBet:
		if s.Balance < int64(s.SelectedChip) {
			return fmt.Sprintf("❌ Số dư không đủ (cần %s, còn %s)",
				FormatAmount(int64(s.SelectedChip)), FormatAmount(s.Balance))
		}
	case ActionChip:
		if !a.Chip.Valid() {
			return "❌ Mệnh giá không hợp lệ"
		}
	case ActionRoll:
		if s.Bets.Empty() {
			return "❌ Hãy đặt cược trước khi quay"
		}
	}
	return "❌ Không thể thực hiện"
}

// FormatRules explains the game and the bot's commands.
func FormatRules() string {
	var b strings.Builder
	b.WriteString("🎲 Bầu Cua Tôm Cá\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Mỗi người chơi có một bàn riêng với %s.\n", FormatAmount(InitialBalance))
	b.WriteString("Chọn mệnh giá chip, bấm vào các ô để đặt cược rồi bấm Quay.\n")
	b.WriteString("Mỗi mặt xúc xắc trùng với ô bạn đặt trả lại tiền cược × số mặt trùng.\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	b.WriteString("/baucua - mở bàn\n")
	b.WriteString("/history - 10 ván gần nhất\n")
	b.WriteString("/stats - thống kê của bạn\n")
	b.WriteString("/daily_top - bảng xếp hạng hôm nay")
	return b.String()
}
