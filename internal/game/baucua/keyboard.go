package baucua

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"
)

const (
	// CallbackPrefix is the prefix for all Bầu Cua callback data.
	CallbackPrefix = "baucua_"
)

// ActionKind is a button the player can press on the board.
type ActionKind string

const (
	ActionBet     ActionKind = "bet"
	ActionChip    ActionKind = "chip"
	ActionReset   ActionKind = "reset"
	ActionRoll    ActionKind = "roll"
	ActionHistory ActionKind = "history"
)

// Action is a decoded button press.
type Action struct {
	Kind   ActionKind
	Symbol SymbolID // ActionBet only
	Chip   Chip     // ActionChip only
}

// EncodeCallback encodes an action and parameter into callback data.
func EncodeCallback(action ActionKind, param string) string {
	if param != "" {
		return fmt.Sprintf("%s%s_%s", CallbackPrefix, action, param)
	}
	return CallbackPrefix + string(action)
}

// DecodeCallback decodes callback data into action and parameter.
func DecodeCallback(data string) (action string, param string) {
	data = strings.TrimPrefix(data, "\f")
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", ""
	}

	content := strings.TrimPrefix(data, CallbackPrefix)
	parts := strings.SplitN(content, "_", 2)
	action = parts[0]
	if len(parts) > 1 {
		param = parts[1]
	}
	return action, param
}

// ParseAction decodes and validates callback data.
func ParseAction(data string) (Action, error) {
	action, param := DecodeCallback(data)
	switch ActionKind(action) {
	case ActionBet:
		id, err := strconv.Atoi(param)
		if err != nil || !SymbolID(id).Valid() {
			return Action{}, fmt.Errorf("invalid symbol %q", param)
		}
		return Action{Kind: ActionBet, Symbol: SymbolID(id)}, nil
	case ActionChip:
		amount, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("invalid chip %q", param)
		}
		// Validity is left to the engine, which rejects unknown denominations.
		return Action{Kind: ActionChip, Chip: Chip(amount)}, nil
	case ActionReset, ActionRoll, ActionHistory:
		return Action{Kind: ActionKind(action)}, nil
	default:
		return Action{}, fmt.Errorf("unknown action %q", data)
	}
}

// KeyboardBuilder builds the inline keyboard for a table.
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder instance.
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// BuildBoard builds the board for s.
// Layout:
//   - Rows 1-2: the six symbols, three per row, with the current stake
//   - Row 3: the chips, selected one marked
//   - Row 4: [Đặt lại] [Quay]
//   - Row 5: [Lịch sử]
func (kb *KeyboardBuilder) BuildBoard(s Snapshot) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var symbolRows [][]tele.InlineButton
	row := make([]tele.InlineButton, 0, 3)
	for _, sym := range Symbols() {
		text := sym.Icon + " " + sym.Name
		if stake := s.Bets.Of(sym.ID); stake > 0 {
			text += " · " + FormatShort(stake)
		}
		row = append(row, tele.InlineButton{
			Text: text,
			Data: EncodeCallback(ActionBet, strconv.Itoa(int(sym.ID))),
		})
		if len(row) == 3 {
			symbolRows = append(symbolRows, row)
			row = make([]tele.InlineButton, 0, 3)
		}
	}

	chipRow := make([]tele.InlineButton, 0, len(chips))
	for _, c := range chips {
		text := FormatShort(int64(c))
		if c == s.SelectedChip {
			text = "✅ " + text
		}
		chipRow = append(chipRow, tele.InlineButton{
			Text: text,
			Data: EncodeCallback(ActionChip, strconv.FormatInt(int64(c), 10)),
		})
	}

	rollText := "🎲 Quay"
	if s.Phase != PhaseIdle {
		rollText = "⏳ Đang quay..."
	}
	actionRow := []tele.InlineButton{
		{
			Text: "🔄 Đặt lại",
			Data: EncodeCallback(ActionReset, ""),
		},
		{
			Text: rollText,
			Data: EncodeCallback(ActionRoll, ""),
		},
	}

	historyRow := []tele.InlineButton{
		{
			Text: "📜 Lịch sử",
			Data: EncodeCallback(ActionHistory, ""),
		},
	}

	markup.InlineKeyboard = append(symbolRows, chipRow, actionRow, historyRow)
	return markup
}
