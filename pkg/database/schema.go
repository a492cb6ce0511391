package database

import (
	"context"
	"fmt"
)

// schema holds the tables read and written by this service.
// factor_values / risk_loadings are filled by the upstream data pipeline;
// latest_selection is overwritten on every rebalance (no history).
var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS lsequity`,
	`CREATE TABLE IF NOT EXISTS lsequity.universe (
		as_of      DATE NOT NULL,
		security   TEXT NOT NULL,
		PRIMARY KEY (as_of, security)
	)`,
	`CREATE TABLE IF NOT EXISTS lsequity.factor_values (
		as_of      DATE NOT NULL,
		security   TEXT NOT NULL,
		factor     TEXT NOT NULL,
		value      DOUBLE PRECISION,
		PRIMARY KEY (as_of, security, factor)
	)`,
	`CREATE TABLE IF NOT EXISTS lsequity.risk_loadings (
		as_of       DATE NOT NULL,
		security    TEXT NOT NULL,
		risk_factor TEXT NOT NULL,
		exposure    DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (as_of, security, risk_factor)
	)`,
	`CREATE TABLE IF NOT EXISTS lsequity.latest_selection (
		strategy_id TEXT NOT NULL,
		security    TEXT NOT NULL,
		as_of       DATE NOT NULL,
		side        TEXT NOT NULL,
		rank        INT NOT NULL,
		score       DOUBLE PRECISION NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (strategy_id, security)
	)`,
	`CREATE TABLE IF NOT EXISTS lsequity.position_counts (
		strategy_id TEXT PRIMARY KEY,
		as_of       TIMESTAMPTZ NOT NULL,
		positions   INT NOT NULL
	)`,
}

// EnsureSchema creates the service tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
