package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/attaboy/puzzlequest/internal/infra"
	"github.com/go-co-op/gocron/v2"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox relay failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := infra.LoadDotEnv(logger); err != nil {
		return err
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StateBackend != "postgres" {
		return fmt.Errorf("outbox relay needs STATE_BACKEND=postgres; use OUTBOX_IN_PROCESS with the memory backend")
	}

	store, closeStore, err := infra.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer closeStore()

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if !producer.Enabled() {
		logger.Warn("kafka disabled; relayed events are acknowledged without being published")
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	relay := infra.NewOutboxRelay(store, producer, cfg.KafkaTopic, cfg.OutboxBatchSize, logger)
	if _, err := relay.Schedule(ctx, sched, cfg.OutboxInterval); err != nil {
		return fmt.Errorf("schedule relay: %w", err)
	}

	logger.Info("outbox relay starting", "interval", cfg.OutboxInterval,
		"batch_size", cfg.OutboxBatchSize, "topic", cfg.KafkaTopic)
	sched.Start()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	logger.Info("outbox relay stopped")
	return nil
}
