package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attaboy/puzzlequest/internal/app"
	"github.com/attaboy/puzzlequest/internal/auth"
	"github.com/attaboy/puzzlequest/internal/guard"
	"github.com/attaboy/puzzlequest/internal/infra"
	"github.com/attaboy/puzzlequest/internal/leaderboard"
	"github.com/attaboy/puzzlequest/internal/projection"
	"github.com/attaboy/puzzlequest/internal/service"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	if err := infra.LoadDotEnv(logger); err != nil {
		return err
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// State store
	store, closeStore, err := infra.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer closeStore()

	clock := clockwork.NewRealClock()

	// Leaderboard and balance projections share one Redis client when configured
	var (
		board leaderboard.Submitter = leaderboard.Noop{}
		cache projection.Store      = projection.NewInMemoryStore()
	)
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		board = leaderboard.NewRedisSubmitter(rdb, cfg.RedisPrefix+cfg.LeaderboardKey)
		cache = projection.NewRedisStore(rdb, cfg.RedisPrefix)
		logger.Info("connected to redis")
	}

	platform := service.NewPlatform(service.Deps{
		Store:       store,
		Clock:       infra.NewLedgerClock(clock),
		Leaderboard: board,
		Breaker:     guard.NewCircuitBreaker(cfg.LeaderboardFailures, cfg.LeaderboardResetTimeout, clock),
		Cache:       cache,
		Logger:      logger,
	})

	// Parse JWT expiry durations
	playerExpiry, adminExpiry, verifierExpiry, err := cfg.Expiries()
	if err != nil {
		return fmt.Errorf("parse JWT expiry: %w", err)
	}
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, playerExpiry, adminExpiry, verifierExpiry)

	// Optional in-process outbox relay
	if cfg.OutboxInProcess {
		producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
		defer producer.Close()

		sched, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		relay := infra.NewOutboxRelay(store, producer, cfg.KafkaTopic, cfg.OutboxBatchSize, logger)
		if _, err := relay.Schedule(ctx, sched, cfg.OutboxInterval); err != nil {
			return fmt.Errorf("schedule outbox relay: %w", err)
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				logger.Warn("scheduler shutdown", "error", err)
			}
		}()
		logger.Info("outbox relay running in-process", "interval", cfg.OutboxInterval)
	}

	router := app.NewRouter(app.RouterDeps{
		Platform:     platform,
		JWTMgr:       jwtMgr,
		Logger:       logger,
		RateLimiter:  guard.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, clock),
		Idempotency:  guard.NewIdempotencyGuard(cfg.IdempotencyTTL, clock),
		CORSOrigins:  cfg.CORSAllowedOrigins,
		InitDefaults: cfg.DefaultPolicies(),
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "state_backend", cfg.StateBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
