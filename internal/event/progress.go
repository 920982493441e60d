package event

import (
	"context"
	"fmt"

	"github.com/attaboy/puzzlequest/internal/achievement"
	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/ledger"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Tracker records event completions and runs the claim lifecycle.
type Tracker struct {
	events       *Registry
	ledger       *ledger.Engine
	achievements *achievement.Registry
}

// NewTracker wires the claim lifecycle to the ledger and achievement registry.
func NewTracker(events *Registry, ledger *ledger.Engine, achievements *achievement.Registry) *Tracker {
	return &Tracker{events: events, ledger: ledger, achievements: achievements}
}

// RecordCompletion stores the user's score for one event puzzle (latest write wins)
// and returns the claim record carrying the recomputed event total.
func (t *Tracker) RecordCompletion(ctx context.Context, tx state.Tx, inv domain.Invocation, submitter domain.Address, eventID uint64, user domain.Address, puzzleID uint32, score domain.Amount) (*domain.EventClaim, error) {
	if err := inv.RequireAuth(submitter); err != nil {
		return nil, err
	}
	ok, err := t.events.verifiers.Authorized(ctx, tx, submitter)
	if err != nil {
		return nil, fmt.Errorf("check verifier: %w", err)
	}
	if !ok {
		return nil, domain.ErrUnauthorized(fmt.Sprintf("%s is not a verifier", submitter))
	}
	if err := domain.ValidateAddress(user); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	e, err := t.events.Get(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	return t.record(ctx, tx, e, user, puzzleID, score, inv.Now())
}

// RecordVerified records a completion the platform verified itself, so no external
// verifier signature is needed. The event must still be active.
func (t *Tracker) RecordVerified(ctx context.Context, tx state.Tx, e *domain.Event, user domain.Address, puzzleID uint32, score domain.Amount, now uint64) (*domain.EventClaim, error) {
	return t.record(ctx, tx, e, user, puzzleID, score, now)
}

func (t *Tracker) record(ctx context.Context, tx state.Tx, e *domain.Event, user domain.Address, puzzleID uint32, score domain.Amount, now uint64) (*domain.EventClaim, error) {
	if err := requireActive(e, now); err != nil {
		return nil, err
	}
	if !e.HasPuzzle(puzzleID) {
		return nil, domain.ErrNotFound("event puzzle", fmt.Sprintf("%d/%d", e.ID, puzzleID))
	}

	progress := domain.EventProgress{EventID: e.ID, Player: user, PuzzleID: puzzleID, Score: score, RecordedAt: now}
	if err := state.PutJSON(ctx, tx, state.EventProgressKey(e.ID, user, puzzleID), progress); err != nil {
		return nil, fmt.Errorf("save event progress: %w", err)
	}

	claim, _, err := t.claim(ctx, tx, e.ID, user)
	if err != nil {
		return nil, err
	}
	total, err := t.total(ctx, tx, e, user)
	if err != nil {
		return nil, err
	}
	claim.TotalScore = total
	if err := t.saveClaim(ctx, tx, claim); err != nil {
		return nil, err
	}

	if err := state.Emit(ctx, tx, domain.NewCompletionRecordedEvent(progress, total)); err != nil {
		return nil, fmt.Errorf("emit completion: %w", err)
	}
	return claim, nil
}

// Claim credits the event reward (reward_amount * bps / 10 000) once per (event, user)
// while the event is active and returns the credited amount.
func (t *Tracker) Claim(ctx context.Context, tx state.Tx, inv domain.Invocation, eventID uint64, user domain.Address) (domain.Amount, error) {
	if err := inv.RequireAuth(user); err != nil {
		return domain.Amount{}, err
	}
	e, err := t.events.Get(ctx, tx, eventID)
	if err != nil {
		return domain.Amount{}, err
	}
	now := inv.Now()
	if err := requireActive(e, now); err != nil {
		return domain.Amount{}, err
	}

	claim, found, err := t.claim(ctx, tx, eventID, user)
	if err != nil {
		return domain.Amount{}, err
	}
	if !found {
		return domain.Amount{}, domain.ErrNotFound("event participation", fmt.Sprintf("%d/%s", eventID, user))
	}
	if claim.Claimed() {
		return domain.Amount{}, domain.ErrAlreadyClaimed()
	}

	reward, ok := e.Reward()
	if !ok {
		return domain.Amount{}, domain.ErrOverflow(fmt.Sprintf("event %d reward overflows", eventID))
	}
	if !reward.IsZero() {
		if _, err := t.ledger.Credit(ctx, tx, user, reward, domain.ReasonEventReward, fmt.Sprintf("event:%d", eventID), now); err != nil {
			return domain.Amount{}, fmt.Errorf("claim event reward: %w", err)
		}
	}

	claim.State = domain.ClaimClaimed
	claim.Reward = reward
	claim.ClaimedAt = now
	if err := t.saveClaim(ctx, tx, claim); err != nil {
		return domain.Amount{}, err
	}
	if err := state.Emit(ctx, tx, domain.NewRewardClaimedEvent(*claim)); err != nil {
		return domain.Amount{}, fmt.Errorf("emit claim: %w", err)
	}
	return reward, nil
}

// MintNft issues the event achievement after a successful claim. It may run after
// the window closes but not while the event is paused. Repeating the call returns the
// achievement already issued for (event, user); once that token is burned the call
// fails with AlreadyMinted.
func (t *Tracker) MintNft(ctx context.Context, tx state.Tx, inv domain.Invocation, eventID uint64, user domain.Address) (*domain.Achievement, error) {
	if err := inv.RequireAuth(user); err != nil {
		return nil, err
	}
	e, err := t.events.Get(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if e.Paused {
		return nil, domain.ErrEventPaused(fmt.Sprintf("event %d is paused", eventID))
	}

	claim, _, err := t.claim(ctx, tx, eventID, user)
	if err != nil {
		return nil, err
	}
	switch claim.State {
	case domain.ClaimClaimed:
	case domain.ClaimNftMinted:
		existing, err := t.achievements.Get(ctx, tx, claim.TokenID)
		if domain.HasCode(err, domain.CodeNotFound) {
			return nil, domain.ErrAlreadyMinted(fmt.Sprintf("event %d achievement for %s was burned", eventID, user))
		}
		if err != nil {
			return nil, err
		}
		return existing, nil
	default:
		return nil, domain.ErrNotVerified(fmt.Sprintf("event %d reward not claimed by %s", eventID, user))
	}

	a, err := t.achievements.MintForEvent(ctx, tx, user, eventID, e.NftMetadata, inv.Now())
	if err != nil {
		return nil, fmt.Errorf("mint event achievement: %w", err)
	}
	claim.State = domain.ClaimNftMinted
	claim.TokenID = a.TokenID
	if err := t.saveClaim(ctx, tx, claim); err != nil {
		return nil, err
	}
	return a, nil
}

// CanAccess is the content-gating predicate: the event exists and is active at now.
func (t *Tracker) CanAccess(ctx context.Context, tx state.Tx, eventID uint64, now uint64) (bool, error) {
	e, found, err := state.GetJSON[domain.Event](ctx, tx, state.EventKey(eventID))
	if err != nil {
		return false, fmt.Errorf("load event: %w", err)
	}
	return found && e.ActiveAt(now), nil
}

// Score returns the user's cumulative score over the event's current puzzle set.
// It is recomputed on read, so puzzles removed by UpdatePuzzles stop counting at once;
// the stored claim total and the leaderboard catch up on the next recorded completion.
func (t *Tracker) Score(ctx context.Context, tx state.Tx, eventID uint64, user domain.Address) (domain.Amount, error) {
	e, found, err := state.GetJSON[domain.Event](ctx, tx, state.EventKey(eventID))
	if err != nil {
		return domain.Amount{}, fmt.Errorf("load event: %w", err)
	}
	if !found {
		return domain.Amount{}, nil
	}
	return t.total(ctx, tx, &e, user)
}

// HasCompleted reports whether a completion was recorded for the triple.
func (t *Tracker) HasCompleted(ctx context.Context, tx state.Tx, eventID uint64, user domain.Address, puzzleID uint32) (bool, error) {
	return state.Has(ctx, tx, state.EventProgressKey(eventID, user, puzzleID))
}

// GetClaim returns the claim record; found is false before any participation.
func (t *Tracker) GetClaim(ctx context.Context, tx state.Tx, eventID uint64, user domain.Address) (domain.EventClaim, bool, error) {
	c, found, err := t.claim(ctx, tx, eventID, user)
	if err != nil {
		return domain.EventClaim{}, false, err
	}
	return *c, found, nil
}

func (t *Tracker) claim(ctx context.Context, tx state.Tx, eventID uint64, user domain.Address) (*domain.EventClaim, bool, error) {
	c, found, err := state.GetJSON[domain.EventClaim](ctx, tx, state.EventClaimKey(eventID, user))
	if err != nil {
		return nil, false, fmt.Errorf("load claim: %w", err)
	}
	if !found {
		c = domain.EventClaim{EventID: eventID, Player: user, State: domain.ClaimUnclaimed}
	}
	return &c, found, nil
}

func (t *Tracker) saveClaim(ctx context.Context, tx state.Tx, c *domain.EventClaim) error {
	if err := state.PutJSON(ctx, tx, state.EventClaimKey(c.EventID, c.Player), c); err != nil {
		return fmt.Errorf("save claim: %w", err)
	}
	return nil
}

// total sums the user's scores over the event's current puzzle set.
func (t *Tracker) total(ctx context.Context, tx state.Tx, e *domain.Event, user domain.Address) (domain.Amount, error) {
	var sum domain.Amount
	for _, pid := range e.PuzzleIDs {
		p, found, err := state.GetJSON[domain.EventProgress](ctx, tx, state.EventProgressKey(e.ID, user, pid))
		if err != nil {
			return domain.Amount{}, fmt.Errorf("load event progress: %w", err)
		}
		if !found {
			continue
		}
		var ok bool
		if sum, ok = sum.Add(p.Score); !ok {
			return domain.Amount{}, domain.ErrOverflow(fmt.Sprintf("event %d score overflows for %s", e.ID, user))
		}
	}
	return sum, nil
}
