// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"baucua-bot/internal/config"
	"baucua-bot/internal/game"
	"baucua-bot/internal/game/baucua"
	"baucua-bot/internal/handler"
	"baucua-bot/internal/pkg/lock"
	"baucua-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot      *tele.Bot
	cfg      *config.Config
	registry *game.Registry[*baucua.Engine]
	private  *privateUsers

	// Handlers
	tableHandler   *handler.TableHandler
	statsHandler   *handler.StatsHandler
	rankingHandler *handler.RankingHandler
	adminHandler   *handler.AdminHandler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config   *config.Config
	Registry *game.Registry[*baucua.Engine]
	Ledger   *service.LedgerService
	Locks    *lock.KeyedLock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: deps.Config.Bot.PollTimeout},
		OnError: func(err error, c tele.Context) {
			ev := log.Error().Err(err)
			if c != nil && c.Sender() != nil {
				ev = ev.Int64("user_id", c.Sender().ID)
			}
			ev.Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:      teleBot,
		cfg:      deps.Config,
		registry: deps.Registry,
		private:  newPrivateUsers(),
	}

	// Initialize handlers
	b.tableHandler = handler.NewTableHandler(deps.Registry, deps.Ledger, deps.Locks, teleBot, deps.Config.Game.RenderInterval)
	b.statsHandler = handler.NewStatsHandler(deps.Ledger)
	b.rankingHandler = handler.NewRankingHandler(deps.Ledger)
	b.adminHandler = handler.NewAdminHandler(deps.Registry, b.tableHandler)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.private))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/help", b.handleStart)

	// Table handlers
	b.bot.Handle("/baucua", b.tableHandler.HandleTable)
	b.bot.Handle("/history", b.tableHandler.HandleHistory)

	// Ledger handlers
	b.bot.Handle("/stats", b.statsHandler.HandleStats)
	b.bot.Handle("/daily_top", b.rankingHandler.HandleDailyTop)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/tables", b.adminHandler.HandleTables)
	adminGroup.Handle("/close_table", b.adminHandler.HandleCloseTable)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Reply(baucua.FormatRules())
}

// handleCallback routes callbacks to appropriate handlers
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	data := strings.TrimPrefix(callback.Data, "\f")
	if strings.HasPrefix(data, baucua.CallbackPrefix) {
		return b.tableHandler.HandleCallback(c)
	}

	log.Debug().Str("data", data).Msg("Unknown callback")
	return c.Respond()
}

// Start starts the idle-table sweeper and blocks polling for updates.
func (b *Bot) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	b.wg.Add(1)
	go b.runSweeper(ctx)
	log.Info().
		Dur("interval", b.cfg.Game.SweepInterval).
		Dur("ttl", b.cfg.Game.IdleTableTTL).
		Msg("Table sweeper started")

	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops polling, settles running rolls and flushes pending ledger writes.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()

	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()

	open := b.registry.Count()
	b.registry.CloseAll()
	b.tableHandler.Close()
	log.Info().Int("tables", open).Msg("Tables closed")
}

func (b *Bot) runSweeper(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.Game.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.tableHandler.SweepIdle(now, b.cfg.Game.IdleTableTTL)
		}
	}
}
