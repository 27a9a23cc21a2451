package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option adjusts the pool config before connecting.
type Option func(*pgxpool.Config)

// ReadOnly makes every session default to read-only transactions. The API only
// looks carriers up; migrations and seeding connect without it.
func ReadOnly() Option {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	}
}

// Config parses databaseURL into a pool config sized for carrier lookups.
func Config(databaseURL string, opts ...Option) (*pgxpool.Config, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	// One eligibility request is a single carriers-join-ranges query.
	cfg.MaxConns = 5
	cfg.MinConns = 0
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.RuntimeParams["application_name"] = "shippinginfra"
	cfg.ConnConfig.RuntimeParams["search_path"] = "public"
	cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	// Server-side params; may be ignored depending on server configuration
	cfg.ConnConfig.RuntimeParams["statement_timeout"] = "2000"                   // 2s, checkout is waiting
	cfg.ConnConfig.RuntimeParams["idle_in_transaction_session_timeout"] = "5000" // 5s
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

func NewPool(ctx context.Context, databaseURL string, opts ...Option) (*pgxpool.Pool, error) {
	cfg, err := Config(databaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}
