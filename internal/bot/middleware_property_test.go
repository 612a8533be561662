package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"baucua-bot/internal/config"
)

// fakeContext implements the parts of tele.Context the middleware uses.
type fakeContext struct {
	tele.Context

	sender    *tele.User
	chat      *tele.Chat
	callback  *tele.Callback
	text      string
	replies   []string
	responses []*tele.CallbackResponse
}

func (c *fakeContext) Sender() *tele.User       { return c.sender }
func (c *fakeContext) Chat() *tele.Chat         { return c.chat }
func (c *fakeContext) Callback() *tele.Callback { return c.callback }
func (c *fakeContext) Text() string             { return c.text }

func (c *fakeContext) Reply(what interface{}, opts ...interface{}) error {
	c.replies = append(c.replies, what.(string))
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	c.responses = append(c.responses, resp...)
	return nil
}

func counting(calls *int) tele.HandlerFunc {
	return func(tele.Context) error {
		*calls++
		return nil
	}
}

// TestAdminPermissionCheckProperty checks that IsAdmin holds exactly for
// the configured IDs and that the middleware only lets admins through.
func TestAdminPermissionCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := rapid.SliceOfN(rapid.Int64Range(1, 1000), 1, 10).Draw(t, "adminIDs")
		userID := rapid.Int64Range(1, 1000).Draw(t, "userID")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		expected := false
		for _, id := range adminIDs {
			if id == userID {
				expected = true
				break
			}
		}
		if cfg.IsAdmin(userID) != expected {
			t.Fatalf("IsAdmin(%d) = %v with admins %v", userID, !expected, adminIDs)
		}

		calls := 0
		c := &fakeContext{sender: &tele.User{ID: userID}, text: "/tables"}
		if err := AdminMiddleware(cfg)(counting(&calls))(c); err != nil {
			t.Fatalf("middleware: %v", err)
		}
		if expected != (calls == 1) {
			t.Fatalf("admin=%v but handler called %d times", expected, calls)
		}
		if !expected && len(c.replies) != 1 {
			t.Fatalf("non-admin got %d replies", len(c.replies))
		}
	})
}

// TestWhitelistEnforcementProperty checks that group updates reach the
// handler only from whitelisted chats, and private chats only from users
// already seen in one of them.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		whitelist := rapid.SliceOfNDistinct(rapid.Int64Range(-1000, -1), 1, 5, rapid.ID[int64]).Draw(t, "whitelist")
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: whitelist}}
		private := newPrivateUsers()
		mw := WhitelistMiddleware(cfg, private)

		seen := make(map[int64]bool)
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			userID := rapid.Int64Range(1, 5).Draw(t, "user")
			isPrivate := rapid.Bool().Draw(t, "private")

			var chat *tele.Chat
			var want bool
			if isPrivate {
				chat = &tele.Chat{ID: userID, Type: tele.ChatPrivate}
				want = seen[userID]
			} else {
				chatID := rapid.Int64Range(-1000, -1).Draw(t, "chat")
				chat = &tele.Chat{ID: chatID, Type: tele.ChatGroup}
				want = cfg.IsChatAllowed(chatID)
				if want {
					seen[userID] = true
				}
			}

			calls := 0
			c := &fakeContext{sender: &tele.User{ID: userID}, chat: chat}
			if err := mw(counting(&calls))(c); err != nil {
				t.Fatalf("middleware: %v", err)
			}
			if want != (calls == 1) {
				t.Fatalf("user %d in chat %d (%s): want pass=%v, handler called %d times",
					userID, chat.ID, chat.Type, want, calls)
			}
		}
	})
}

func TestWhitelistMiddleware_EmptyAllowsAll(t *testing.T) {
	cfg := &config.Config{}
	mw := WhitelistMiddleware(cfg, newPrivateUsers())

	for _, chat := range []*tele.Chat{
		{ID: -42, Type: tele.ChatSuperGroup},
		{ID: 7, Type: tele.ChatPrivate},
	} {
		calls := 0
		c := &fakeContext{sender: &tele.User{ID: 7}, chat: chat}
		require.NoError(t, mw(counting(&calls))(c))
		assert.Equal(t, 1, calls)
	}
}

func TestWhitelistMiddleware_IgnoresMissingSender(t *testing.T) {
	mw := WhitelistMiddleware(&config.Config{}, newPrivateUsers())
	calls := 0
	require.NoError(t, mw(counting(&calls))(&fakeContext{chat: &tele.Chat{ID: -1}}))
	assert.Zero(t, calls)
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := func(tele.Context) error { panic("boom") }

	c := &fakeContext{sender: &tele.User{ID: 1}}
	err := RecoveryMiddleware()(panicking)(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	require.Len(t, c.replies, 1)

	cb := &fakeContext{sender: &tele.User{ID: 1}, callback: &tele.Callback{Data: "baucua_roll"}}
	require.Error(t, RecoveryMiddleware()(panicking)(cb))
	require.Len(t, cb.responses, 1)
	assert.Empty(t, cb.replies)

	want := errors.New("plain")
	ok := &fakeContext{}
	assert.ErrorIs(t, RecoveryMiddleware()(func(tele.Context) error { return want })(ok), want)
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	calls := 0
	c := &fakeContext{
		sender:   &tele.User{ID: 1, Username: "alice"},
		chat:     &tele.Chat{ID: -5, Type: tele.ChatGroup},
		callback: &tele.Callback{Data: "baucua_bet_1"},
	}
	require.NoError(t, LoggingMiddleware()(counting(&calls))(c))
	assert.Equal(t, 1, calls)
}
