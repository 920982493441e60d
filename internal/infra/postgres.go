package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/attaboy/puzzlequest/internal/state"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates a pgx connection pool from the given config.
func NewPostgresPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	// every state transaction takes the same advisory lock, so a large pool only queues
	poolCfg.MaxConns = cfg.PGMaxConns
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// OpenStore opens the configured state backend. For postgres it connects, applies
// migrations and returns a closer for the pool.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (state.Store, func(), error) {
	if cfg.StateBackend == "memory" {
		logger.Warn("using in-memory state store; all state is lost on exit")
		return state.NewMemStore(), func() {}, nil
	}

	if _, err := RunMigrations(cfg.DSN(), logger); err != nil {
		return nil, nil, err
	}
	pool, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to postgres", "max_conns", cfg.PGMaxConns)
	return state.NewPgStore(pool), pool.Close, nil
}
