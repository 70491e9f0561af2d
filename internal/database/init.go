package database

import (
	"context"
	"fmt"

	"github.com/yourusername/futures-signal/internal/config"
)

// schema holds the DDL for the signal pipeline tables. Statements are
// idempotent so startup can run them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS bars (
		symbol         TEXT             NOT NULL,
		date           DATE             NOT NULL,
		open           DOUBLE PRECISION NOT NULL,
		high           DOUBLE PRECISION NOT NULL,
		low            DOUBLE PRECISION NOT NULL,
		close          DOUBLE PRECISION NOT NULL,
		volume         DOUBLE PRECISION NOT NULL DEFAULT 0,
		tomorrow_close DOUBLE PRECISION,
		target         SMALLINT,
		PRIMARY KEY (symbol, date)
	)`,
	`CREATE TABLE IF NOT EXISTS macro_events (
		series          TEXT    NOT NULL,
		date            DATE    NOT NULL,
		actual          NUMERIC NOT NULL,
		forecast        NUMERIC NOT NULL,
		previous        NUMERIC NOT NULL,
		change          NUMERIC NOT NULL,
		days_until_next DOUBLE PRECISION,
		PRIMARY KEY (series, date)
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		run_id     UUID     NOT NULL,
		date       DATE     NOT NULL,
		target     SMALLINT NOT NULL,
		prediction SMALLINT NOT NULL,
		fold_index INTEGER  NOT NULL,
		PRIMARY KEY (run_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS backtest_reports (
		id            UUID             PRIMARY KEY,
		symbol        TEXT             NOT NULL,
		start_date    DATE             NOT NULL,
		end_date      DATE             NOT NULL,
		train_start   INTEGER          NOT NULL,
		test_step     INTEGER          NOT NULL,
		folds         INTEGER          NOT NULL,
		failed_folds  INTEGER          NOT NULL,
		predictions   INTEGER          NOT NULL,
		precision     DOUBLE PRECISION NOT NULL,
		class_balance JSONB            NOT NULL,
		importances   JSONB            NOT NULL,
		feature_count INTEGER          NOT NULL,
		model_version TEXT             NOT NULL DEFAULT '',
		completed_at  TIMESTAMPTZ      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bars_date ON bars (date)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_reports_symbol
		ON backtest_reports (symbol, completed_at DESC)`,
}

// Initialize creates the connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies the pipeline DDL
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
