package event

import (
	"context"
	"fmt"
	"strconv"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Verifiers decides who may record event completions.
type Verifiers interface {
	Authorized(ctx context.Context, tx state.Tx, addr domain.Address) (bool, error)
}

// CreateParams describes a new event.
type CreateParams struct {
	Name               string        `json:"name"`
	StartTime          uint64        `json:"start_time"`
	EndTime            uint64        `json:"end_time"`
	RewardAmount       domain.Amount `json:"reward_amount"`
	BonusMultiplierBps uint32        `json:"bonus_multiplier_bps"`
	NftMetadata        string        `json:"nft_metadata"`
	PuzzleIDs          []uint32      `json:"puzzle_ids"`
}

// Registry stores events and their per-player progress.
type Registry struct {
	verifiers Verifiers
}

// NewRegistry creates an event registry.
func NewRegistry(verifiers Verifiers) *Registry {
	return &Registry{verifiers: verifiers}
}

// Create stores a new event and returns it with its assigned id (ids start at 1).
func (r *Registry) Create(ctx context.Context, tx state.Tx, p CreateParams) (*domain.Event, error) {
	if err := domain.ValidateEventName(p.Name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if p.StartTime > p.EndTime {
		return nil, domain.ErrInvalidTimeWindow(p.StartTime, p.EndTime)
	}
	if err := domain.ValidatePositiveAmount(p.RewardAmount); err != nil {
		return nil, err
	}

	e := domain.Event{
		Name:               p.Name,
		StartTime:          p.StartTime,
		EndTime:            p.EndTime,
		RewardAmount:       p.RewardAmount,
		BonusMultiplierBps: normalizeBps(p.BonusMultiplierBps),
		NftMetadata:        p.NftMetadata,
		PuzzleIDs:          dedupe(p.PuzzleIDs),
	}
	if _, ok := e.Reward(); !ok {
		return nil, domain.ErrOverflow("event reward overflows with bonus multiplier")
	}

	id, err := state.NextSeq(ctx, tx, "event")
	if err != nil {
		return nil, fmt.Errorf("allocate event id: %w", err)
	}
	e.ID = id
	if err := r.save(ctx, tx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Get returns an event or NotFound.
func (r *Registry) Get(ctx context.Context, tx state.Tx, id uint64) (*domain.Event, error) {
	e, found, err := state.GetJSON[domain.Event](ctx, tx, state.EventKey(id))
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !found {
		return nil, domain.ErrNotFound("event", strconv.FormatUint(id, 10))
	}
	return &e, nil
}

func (r *Registry) save(ctx context.Context, tx state.Tx, e *domain.Event) error {
	if err := state.PutJSON(ctx, tx, state.EventKey(e.ID), e); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

// UpdateTimes moves the event window.
func (r *Registry) UpdateTimes(ctx context.Context, tx state.Tx, id, start, end uint64) (*domain.Event, error) {
	if start > end {
		return nil, domain.ErrInvalidTimeWindow(start, end)
	}
	e, err := r.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	e.StartTime, e.EndTime = start, end
	return e, r.save(ctx, tx, e)
}

// UpdateRewards changes the reward amount and bonus multiplier.
func (r *Registry) UpdateRewards(ctx context.Context, tx state.Tx, id uint64, amount domain.Amount, bps uint32) (*domain.Event, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	e, err := r.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	e.RewardAmount = amount
	e.BonusMultiplierBps = normalizeBps(bps)
	if _, ok := e.Reward(); !ok {
		return nil, domain.ErrOverflow("event reward overflows with bonus multiplier")
	}
	return e, r.save(ctx, tx, e)
}

// UpdatePuzzles replaces the event's puzzle subset. Recorded progress is kept.
func (r *Registry) UpdatePuzzles(ctx context.Context, tx state.Tx, id uint64, puzzleIDs []uint32) (*domain.Event, error) {
	e, err := r.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	e.PuzzleIDs = dedupe(puzzleIDs)
	return e, r.save(ctx, tx, e)
}

// SetPaused pauses or resumes an event.
func (r *Registry) SetPaused(ctx context.Context, tx state.Tx, id uint64, paused bool) (*domain.Event, error) {
	e, err := r.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	e.Paused = paused
	return e, r.save(ctx, tx, e)
}

// requireActive fails with EventPaused or EventInactive unless e is active at now.
func requireActive(e *domain.Event, now uint64) error {
	if e.Paused {
		return domain.ErrEventPaused(fmt.Sprintf("event %d is paused", e.ID))
	}
	if !e.ActiveAt(now) {
		return domain.ErrEventInactive(e.ID)
	}
	return nil
}

func normalizeBps(bps uint32) uint32 {
	if bps == 0 {
		return domain.BpsBase
	}
	return bps
}

func dedupe(ids []uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(ids))
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
