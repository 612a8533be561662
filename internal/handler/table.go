// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"baucua-bot/internal/game"
	"baucua-bot/internal/game/baucua"
	"baucua-bot/internal/pkg/lock"
	"baucua-bot/internal/service"
)

const (
	editTimeout   = 5 * time.Second
	ledgerTimeout = 5 * time.Second
)

// Messenger sends and edits messages. *tele.Bot satisfies it.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TableHandler connects each player's table to the message that shows it.
type TableHandler struct {
	registry       *game.Registry[*baucua.Engine]
	ledger         *service.LedgerService
	locks          *lock.KeyedLock
	bot            Messenger
	keyboard       *baucua.KeyboardBuilder
	renderInterval time.Duration

	mu     sync.Mutex
	boards map[int64]*board
	wg     sync.WaitGroup
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(
	registry *game.Registry[*baucua.Engine],
	ledger *service.LedgerService,
	locks *lock.KeyedLock,
	bot Messenger,
	renderInterval time.Duration,
) *TableHandler {
	return &TableHandler{
		registry:       registry,
		ledger:         ledger,
		locks:          locks,
		bot:            bot,
		keyboard:       baucua.NewKeyboardBuilder(),
		renderInterval: renderInterval,
		boards:         make(map[int64]*board),
	}
}

// HandleTable handles the /baucua command.
// It opens the sender's table, or moves an existing one to a fresh message.
func (h *TableHandler) HandleTable(c tele.Context) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	table, created := h.registry.GetOrCreate(sender.ID)
	b := h.ensureBoard(sender.ID, displayName(sender), table)
	s := table.Snapshot()

	msg, err := h.bot.Send(chat, baucua.FormatBoard(s), h.keyboard.BuildBoard(s))
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to send board")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()
	err = h.locks.WithLockContext(ctx, sender.ID, editTimeout, func() error {
		old := b.attach(msg, s, displayName(sender))
		if old != nil {
			h.retire(old, "⬇️ Bàn đã chuyển xuống tin nhắn mới")
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int64("user_id", sender.ID).Msg("Board lock busy")
	}
	// Anything that changed while the message was in flight.
	b.offer(table.Snapshot())

	log.Info().
		Int64("user_id", sender.ID).
		Int64("chat_id", chat.ID).
		Bool("new_table", created).
		Msg("Board opened")

	return nil
}

// HandleCallback handles the board's inline buttons.
func (h *TableHandler) HandleCallback(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	action, err := baucua.ParseAction(callback.Data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Thao tác không hợp lệ"})
	}

	table, ok := h.registry.Get(sender.ID)
	b := h.boardFor(sender.ID)
	if !ok || b == nil || !b.owns(callback.Message) {
		return c.Respond(&tele.CallbackResponse{
			Text:      "❌ Đây không phải bàn của bạn. Gõ /baucua để mở bàn.",
			ShowAlert: true,
		})
	}

	var accepted bool
	switch action.Kind {
	case baucua.ActionBet:
		accepted = table.PlaceBet(action.Symbol)
	case baucua.ActionChip:
		accepted = table.SelectChip(action.Chip)
	case baucua.ActionReset:
		accepted = table.ResetBets()
	case baucua.ActionRoll:
		accepted = table.Roll()
	case baucua.ActionHistory:
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send(baucua.FormatHistory(table.Snapshot().History))
	}

	if !accepted {
		return c.Respond(&tele.CallbackResponse{
			Text: baucua.RejectReason(table.Snapshot(), action),
		})
	}

	log.Debug().
		Int64("user_id", sender.ID).
		Str("action", string(action.Kind)).
		Msg("Board action")

	return c.Respond()
}

// HandleHistory handles the /history command: the live table's last rounds.
func (h *TableHandler) HandleHistory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	table, ok := h.registry.Get(sender.ID)
	if !ok {
		return c.Reply("🎲 Bạn chưa mở bàn. Gõ /baucua để bắt đầu.")
	}
	return c.Reply(baucua.FormatHistory(table.Snapshot().History))
}

// SweepIdle closes tables idle for longer than ttl and retires their boards.
func (h *TableHandler) SweepIdle(now time.Time, ttl time.Duration) int {
	removed := h.registry.Sweep(now, ttl)
	for _, userID := range removed {
		h.dropBoard(userID, "💤 Bàn đã đóng do lâu không hoạt động. Gõ /baucua để chơi tiếp.")
	}
	if len(removed) > 0 {
		log.Info().
			Int("closed", len(removed)).
			Int("open", h.registry.Count()).
			Msg("Idle tables swept")
	}
	return len(removed)
}

// CloseTable closes one player's table. Returns game.ErrTableNotFound if the
// player has none.
func (h *TableHandler) CloseTable(userID int64) error {
	if err := h.registry.Remove(userID); err != nil {
		return err
	}
	h.dropBoard(userID, "🔒 Bàn đã bị đóng bởi quản trị viên.")
	return nil
}

// Close stops every render loop and waits for pending ledger writes.
// Tables must be closed first so no new rounds settle afterwards.
func (h *TableHandler) Close() {
	h.mu.Lock()
	boards := h.boards
	h.boards = make(map[int64]*board)
	h.mu.Unlock()

	for _, b := range boards {
		b.unsubscribe()
		close(b.done)
	}
	h.wg.Wait()
}

func (h *TableHandler) boardFor(userID int64) *board {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.boards[userID]
}

// ensureBoard returns the player's board, subscribing a new one to table.
func (h *TableHandler) ensureBoard(userID int64, username string, table *baucua.Engine) *board {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.boards[userID]; ok {
		return b
	}

	b := newBoard(userID, username)
	b.unsubscribe = table.Subscribe(func(s baucua.Snapshot) {
		if rec, ok := b.settled(s); ok {
			h.wg.Add(1)
			go h.record(b.userID, b.name(), rec, s.Balance)
		}
		b.offer(s)
	})
	h.boards[userID] = b

	h.wg.Add(1)
	go h.renderLoop(b)
	return b
}

func (h *TableHandler) dropBoard(userID int64, notice string) {
	h.mu.Lock()
	b, ok := h.boards[userID]
	delete(h.boards, userID)
	h.mu.Unlock()
	if !ok {
		return
	}

	b.unsubscribe()
	close(b.done)
	if msg := b.message(); msg != nil {
		h.retire(msg, notice)
	}
}

// renderLoop draws the board's newest snapshot whenever it changes.
func (h *TableHandler) renderLoop(b *board) {
	defer h.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}

		if wait := b.throttle(time.Now(), h.renderInterval); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-b.done:
				t.Stop()
				return
			case <-t.C:
			}
		}

		s, msg, ok := b.take(time.Now())
		if !ok {
			continue
		}
		if err := h.render(b.userID, msg, s); err != nil {
			log.Warn().
				Err(err).
				Int64("user_id", b.userID).
				Uint64("version", s.Version).
				Msg("Failed to render board")
		}
	}
}

func (h *TableHandler) render(userID int64, msg *tele.Message, s baucua.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()

	return h.locks.WithLockContext(ctx, userID, editTimeout, func() error {
		_, err := h.bot.Edit(msg, baucua.FormatBoard(s), h.keyboard.BuildBoard(s))
		if err != nil && !errors.Is(err, tele.ErrSameMessageContent) && !errors.Is(err, tele.ErrMessageNotModified) {
			return err
		}
		return nil
	})
}

// retire replaces a board message's content with notice and removes its buttons.
func (h *TableHandler) retire(msg *tele.Message, notice string) {
	if _, err := h.bot.Edit(msg, notice); err != nil {
		log.Debug().Err(err).Int("message_id", msg.ID).Msg("Failed to retire board message")
	}
}

func (h *TableHandler) record(userID int64, username string, rec baucua.Record, balance int64) {
	defer h.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()

	if err := h.ledger.Record(ctx, userID, username, rec, balance); err != nil {
		log.Error().
			Err(err).
			Int64("user_id", userID).
			Str("round_id", rec.ID.String()).
			Msg("Failed to record round")
	}
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}
