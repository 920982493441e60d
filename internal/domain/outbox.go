package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types published through the outbox.
type EventType string

const (
	EventTokensCredited     EventType = "puzzlequest.ledger.credited"
	EventTokensSpent        EventType = "puzzlequest.ledger.spent"
	EventPuzzleVerified     EventType = "puzzlequest.puzzle.verified"
	EventPuzzleRewarded     EventType = "puzzlequest.puzzle.rewarded"
	EventAchievementMinted  EventType = "puzzlequest.achievement.minted"
	EventAchievementMoved   EventType = "puzzlequest.achievement.transferred"
	EventAchievementBurned  EventType = "puzzlequest.achievement.burned"
	EventCompletionRecorded EventType = "puzzlequest.event.completion_recorded"
	EventRewardClaimed      EventType = "puzzlequest.event.reward_claimed"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateAccount     AggregateType = "account"
	AggregatePuzzle      AggregateType = "puzzle"
	AggregateAchievement AggregateType = "achievement"
	AggregateEvent       AggregateType = "event"
)

// OutboxDraft is an event staged in the same transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Payload       json.RawMessage `json:"payload"`
	LedgerTime    uint64          `json:"ledgerTime"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
