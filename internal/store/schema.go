package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS carriers (
		id         uuid PRIMARY KEY,
		code       text NOT NULL UNIQUE,
		name       text NOT NULL,
		enabled    boolean NOT NULL DEFAULT true,
		position   integer NOT NULL DEFAULT 0,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS carrier_ranges (
		id                  uuid PRIMARY KEY,
		carrier_id          uuid NOT NULL REFERENCES carriers(id) ON DELETE CASCADE,
		position            integer NOT NULL,
		kind                text NOT NULL,
		name                text NOT NULL DEFAULT '',
		price_amount        bigint NOT NULL DEFAULT 0,
		price_currency      text NOT NULL DEFAULT '',
		from_price_amount   bigint,
		from_price_currency text,
		to_price_amount     bigint,
		to_price_currency   text,
		from_weight         double precision,
		to_weight           double precision,
		UNIQUE (carrier_id, position),
		CHECK (kind <> 'price' OR (from_price_amount IS NOT NULL AND to_price_amount IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_carriers_enabled_position ON carriers(enabled, position)`,
}

// InitSchema creates the carrier tables if they do not exist.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("init schema: pool is nil")
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}
