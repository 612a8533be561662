package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// schema creates the round ledger. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rounds (
		id            UUID PRIMARY KEY,
		user_id       BIGINT       NOT NULL,
		username      VARCHAR(255) NOT NULL DEFAULT '',
		die1          SMALLINT     NOT NULL CHECK (die1 BETWEEN 1 AND 6),
		die2          SMALLINT     NOT NULL CHECK (die2 BETWEEN 1 AND 6),
		die3          SMALLINT     NOT NULL CHECK (die3 BETWEEN 1 AND 6),
		staked        BIGINT       NOT NULL CHECK (staked > 0),
		win           BIGINT       NOT NULL CHECK (win >= 0),
		balance_after BIGINT       NOT NULL CHECK (balance_after >= 0),
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rounds_user_created ON rounds (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_rounds_created ON rounds (created_at)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}

	log.Info().Int("statements", len(schema)).Msg("All migrations completed successfully")
	return nil
}
