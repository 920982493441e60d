package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func newDraft(agg AggregateType, aggID string, evt EventType, partition string, ledgerTime uint64, payload interface{}) OutboxDraft {
	data, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventType:     evt,
		PartitionKey:  partition,
		Payload:       data,
		LedgerTime:    ledgerTime,
		OccurredAt:    time.Now(),
	}
}

// NewLedgerEntryEvent creates the standard account event for a journal entry.
func NewLedgerEntryEvent(entry LedgerEntry) OutboxDraft {
	evt := EventTokensCredited
	if entry.Kind == EntryDebit {
		evt = EventTokensSpent
	}
	return newDraft(AggregateAccount, entry.Account.String(), evt, entry.Account.String(), entry.At, entry)
}

// NewPuzzleEvent creates a verification lifecycle event.
func NewPuzzleEvent(p PuzzleProgress, evt EventType, at uint64) OutboxDraft {
	return newDraft(AggregatePuzzle, fmt.Sprintf("%d", p.PuzzleID), evt, p.Player.String(), at, p)
}

// NewAchievementEvent creates an achievement lifecycle event.
func NewAchievementEvent(a Achievement, evt EventType, at uint64) OutboxDraft {
	return newDraft(AggregateAchievement, fmt.Sprintf("%d", a.TokenID), evt, a.Owner.String(), at, a)
}

// NewCompletionRecordedEvent creates an event-participation event.
func NewCompletionRecordedEvent(p EventProgress, total Amount) OutboxDraft {
	return newDraft(AggregateEvent, fmt.Sprintf("%d", p.EventID), EventCompletionRecorded, p.Player.String(), p.RecordedAt,
		map[string]interface{}{
			"event_id":    p.EventID,
			"player":      p.Player,
			"puzzle_id":   p.PuzzleID,
			"score":       p.Score,
			"total_score": total,
		})
}

// NewRewardClaimedEvent creates an event reward payout event.
func NewRewardClaimedEvent(c EventClaim) OutboxDraft {
	return newDraft(AggregateEvent, fmt.Sprintf("%d", c.EventID), EventRewardClaimed, c.Player.String(), c.ClaimedAt, c)
}
