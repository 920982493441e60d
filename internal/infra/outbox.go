package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
	"github.com/go-co-op/gocron/v2"
)

// Publisher sends one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxRelay drains staged outbox entries from the state store and publishes them.
// Entries are deleted only after a successful publish, so delivery is at-least-once.
type OutboxRelay struct {
	store     state.Store
	producer  Publisher
	logger    *slog.Logger
	topic     string
	batchSize int
}

// NewOutboxRelay creates a relay publishing to topic.
func NewOutboxRelay(store state.Store, producer Publisher, topic string, batchSize int, logger *slog.Logger) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		store:     store,
		producer:  producer,
		logger:    logger,
		topic:     topic,
		batchSize: batchSize,
	}
}

type relayMessage struct {
	EventID       string               `json:"event_id"`
	AggregateType domain.AggregateType `json:"aggregate_type"`
	AggregateID   string               `json:"aggregate_id"`
	EventType     domain.EventType     `json:"event_type"`
	Payload       json.RawMessage      `json:"payload"`
	LedgerTime    uint64               `json:"ledger_time"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// RelayOnce publishes up to one batch in outbox order and returns how many were sent.
// It stops at the first publish failure to preserve ordering.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	kvs, err := r.store.Scan(ctx, state.OutboxPrefix, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("scan outbox: %w", err)
	}

	published := 0
	for _, kv := range kvs {
		var draft domain.OutboxDraft
		if err := json.Unmarshal(kv.Value, &draft); err != nil {
			r.logger.Error("dropping undecodable outbox entry", "key", kv.Key, "error", err)
			if err := r.ack(ctx, kv.Key); err != nil {
				return published, err
			}
			continue
		}

		msg, err := json.Marshal(relayMessage{
			EventID:       draft.EventID.String(),
			AggregateType: draft.AggregateType,
			AggregateID:   draft.AggregateID,
			EventType:     draft.EventType,
			Payload:       draft.Payload,
			LedgerTime:    draft.LedgerTime,
			OccurredAt:    draft.OccurredAt,
		})
		if err != nil {
			return published, fmt.Errorf("encode relay message: %w", err)
		}

		if err := r.producer.Publish(ctx, r.topic, []byte(draft.PartitionKey), msg); err != nil {
			return published, fmt.Errorf("publish %s: %w", draft.EventID, err)
		}
		if err := r.ack(ctx, kv.Key); err != nil {
			return published, err
		}
		published++
	}

	if published > 0 {
		r.logger.Debug("outbox relay batch complete", "published", published)
	}
	return published, nil
}

func (r *OutboxRelay) ack(ctx context.Context, key string) error {
	err := r.store.Update(ctx, func(tx state.Tx) error {
		return tx.Delete(ctx, key)
	})
	if err != nil {
		return fmt.Errorf("ack %s: %w", key, err)
	}
	return nil
}

// Schedule registers the relay as a recurring job. Runs never overlap.
func (r *OutboxRelay) Schedule(ctx context.Context, sched gocron.Scheduler, interval time.Duration) (gocron.Job, error) {
	job, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := r.RelayOnce(ctx); err != nil {
				r.logger.Error("outbox relay error", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("outbox-relay"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule outbox relay: %w", err)
	}
	r.logger.Info("outbox relay scheduled", "interval", interval, "batch_size", r.batchSize, "topic", r.topic)
	return job, nil
}
