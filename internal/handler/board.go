package handler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"

	"baucua-bot/internal/game/baucua"
)

// board is the Telegram message that shows one player's table.
// Engine snapshots are coalesced here; a single render loop per board turns
// the newest one into a message edit.
type board struct {
	userID int64

	mu       sync.Mutex
	username string
	msg      *tele.Message
	latest   baucua.Snapshot
	rendered uint64
	lastEdit time.Time
	recorded uuid.UUID

	wake        chan struct{}
	done        chan struct{}
	unsubscribe func()
}

func newBoard(userID int64, username string) *board {
	return &board{
		userID:   userID,
		username: username,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// offer stores s if it is newer than what the board holds and wakes the
// render loop. It never blocks.
func (b *board) offer(s baucua.Snapshot) {
	b.mu.Lock()
	if s.Version > b.latest.Version {
		b.latest = s
	}
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// throttle returns how long to wait before the next frame may be drawn.
// Only rolling frames are throttled; the result and idle boards go out at once.
func (b *board) throttle(now time.Time, interval time.Duration) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest.Phase != baucua.PhaseRolling || b.lastEdit.IsZero() {
		return 0
	}
	if wait := interval - now.Sub(b.lastEdit); wait > 0 {
		return wait
	}
	return 0
}

// take returns the newest snapshot not yet drawn, together with the message
// to edit, and marks it drawn.
func (b *board) take(now time.Time) (baucua.Snapshot, *tele.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msg == nil || b.latest.Version <= b.rendered {
		return baucua.Snapshot{}, nil, false
	}
	b.rendered = b.latest.Version
	b.lastEdit = now
	return b.latest, b.msg, true
}

// settled reports a round to record, once per round ID.
func (b *board) settled(s baucua.Snapshot) (baucua.Record, bool) {
	if s.Phase != baucua.PhaseSettling {
		return baucua.Record{}, false
	}
	rec, ok := s.LastRound()
	if !ok {
		return baucua.Record{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recorded == rec.ID {
		return baucua.Record{}, false
	}
	b.recorded = rec.ID
	return rec, true
}

// attach points the board at msg, returning the message it replaces.
func (b *board) attach(msg *tele.Message, s baucua.Snapshot, username string) *tele.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := b.msg
	b.msg = msg
	b.username = username
	if s.Version >= b.latest.Version {
		b.latest = s
	}
	b.rendered = s.Version
	return old
}

func (b *board) owns(msg *tele.Message) bool {
	if msg == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg != nil && b.msg.ID == msg.ID && b.msg.Chat != nil && msg.Chat != nil && b.msg.Chat.ID == msg.Chat.ID
}

func (b *board) name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.username
}

func (b *board) message() *tele.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}
