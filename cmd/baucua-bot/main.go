// Package main is the entry point for the Bầu Cua bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"baucua-bot/internal/bot"
	"baucua-bot/internal/config"
	"baucua-bot/internal/game"
	"baucua-bot/internal/game/baucua"
	"baucua-bot/internal/pkg/db"
	"baucua-bot/internal/pkg/lock"
	"baucua-bot/internal/repository"
	"baucua-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.Log.ZerologLevel())

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Round ledger: PostgreSQL when enabled, otherwise in memory
	var store service.RoundStore
	if cfg.Database.Enabled {
		dbPool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()

		if err := db.Migrate(ctx, dbPool.Pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		store = repository.NewRoundRepository(dbPool.Pool)
	} else {
		log.Warn().Msg("Database disabled, rounds are kept in memory only")
		store = service.NewMemoryStore()
	}

	loc, err := cfg.Game.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid timezone")
	}
	ledger := service.NewLedgerService(store, loc)

	// One table per player, created on first /baucua
	registry := game.NewRegistry(func(userID int64) *baucua.Engine {
		logger := log.With().Int64("user_id", userID).Logger()
		return baucua.New(&baucua.Config{
			RollDuration: cfg.Game.RollDuration,
			TickInterval: cfg.Game.TickInterval,
			SettleDelay:  cfg.Game.SettleDelay,
			Logger:       &logger,
		})
	})

	deps := &bot.Dependencies{
		Config:   cfg,
		Registry: registry,
		Ledger:   ledger,
		Locks:    lock.New(),
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go telegramBot.Start()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
