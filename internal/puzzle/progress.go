package puzzle

import (
	"context"
	"fmt"
	"math"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/ledger"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Cooldown configures submission rate limiting.
type Cooldown struct {
	Secs   uint64
	Policy domain.CooldownPolicy
}

// SubmitResult is the outcome of one submission.
type SubmitResult struct {
	Verified    bool                  `json:"verified"`
	RateLimited bool                  `json:"rate_limited"`
	RetryAfter  uint64                `json:"retry_after,omitempty"`
	Progress    domain.PuzzleProgress `json:"progress"`
}

// Tracker runs the per (player, puzzle) verification state machine.
type Tracker struct {
	registry *Registry
	ledger   *ledger.Engine
}

// NewTracker creates a tracker crediting rewards through the given ledger.
func NewTracker(registry *Registry, ledger *ledger.Engine) *Tracker {
	return &Tracker{registry: registry, ledger: ledger}
}

// Progress loads the progress record; a missing record is returned Unsubmitted.
func (t *Tracker) Progress(ctx context.Context, tx state.Tx, player domain.Address, puzzleID uint32) (domain.PuzzleProgress, error) {
	p, found, err := state.GetJSON[domain.PuzzleProgress](ctx, tx, state.ProgressKey(player, puzzleID))
	if err != nil {
		return p, fmt.Errorf("load progress: %w", err)
	}
	if !found {
		return domain.PuzzleProgress{Player: player, PuzzleID: puzzleID, State: domain.PuzzleUnsubmitted}, nil
	}
	return p, nil
}

func (t *Tracker) save(ctx context.Context, tx state.Tx, p domain.PuzzleProgress) error {
	if err := state.PutJSON(ctx, tx, state.ProgressKey(p.Player, p.PuzzleID), p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Submit checks a solution against the puzzle fingerprint.
//
// A match moves Unsubmitted/Submitted to Verified. A mismatch counts an attempt and
// leaves the state at Submitted. Verified and Rewarded never regress and their
// counters are not touched. A failed attempt inside the cooldown window is rejected
// with RateLimited, or counted and reported, depending on the cooldown policy.
func (t *Tracker) Submit(ctx context.Context, tx state.Tx, inv domain.Invocation, player domain.Address, puzzleID uint32, solution string, cd Cooldown) (*SubmitResult, error) {
	if err := inv.RequireAuth(player); err != nil {
		return nil, err
	}
	if solution == "" {
		return nil, domain.ErrInvalidSolution("solution is required")
	}

	pz, err := t.registry.Get(ctx, tx, puzzleID)
	if err != nil {
		return nil, err
	}
	progress, err := t.Progress(ctx, tx, player, puzzleID)
	if err != nil {
		return nil, err
	}

	match := Matches(pz.SolutionFingerprint, solution)
	if progress.State.AtLeast(domain.PuzzleVerified) {
		return &SubmitResult{Verified: match, Progress: progress}, nil
	}

	now := inv.Now()
	if wait := retryAfter(progress, cd.Secs, now); wait > 0 {
		if cd.Policy != domain.CooldownCount {
			return nil, domain.ErrRateLimited(wait)
		}
		progress.AttemptCount = saturatingInc(progress.AttemptCount)
		progress.RateLimitedCount = saturatingInc(progress.RateLimitedCount)
		if err := advance(&progress, domain.PuzzleSubmitted); err != nil {
			return nil, err
		}
		if err := t.save(ctx, tx, progress); err != nil {
			return nil, err
		}
		return &SubmitResult{RateLimited: true, RetryAfter: wait, Progress: progress}, nil
	}

	progress.LastAttemptTime = now
	if match {
		if err := advance(&progress, domain.PuzzleVerified); err != nil {
			return nil, err
		}
		progress.VerifiedAt = now
		if err := t.save(ctx, tx, progress); err != nil {
			return nil, err
		}
		if err := state.Emit(ctx, tx, domain.NewPuzzleEvent(progress, domain.EventPuzzleVerified, now)); err != nil {
			return nil, fmt.Errorf("emit verified: %w", err)
		}
		return &SubmitResult{Verified: true, Progress: progress}, nil
	}

	progress.AttemptCount = saturatingInc(progress.AttemptCount)
	if err := advance(&progress, domain.PuzzleSubmitted); err != nil {
		return nil, err
	}
	if err := t.save(ctx, tx, progress); err != nil {
		return nil, err
	}
	return &SubmitResult{Progress: progress}, nil
}

// advance moves p to next. Every state change goes through here; an illegal move
// is an internal fault and aborts the transaction.
func advance(p *domain.PuzzleProgress, next domain.PuzzleState) error {
	if !p.State.CanTransition(next) {
		return domain.ErrInternal(fmt.Sprintf("puzzle %d for %s cannot move from %s to %s", p.PuzzleID, p.Player, p.State, next), nil)
	}
	p.State = next
	return nil
}

// VerifyAndReward credits the puzzle's base reward once and moves Verified to Rewarded.
// A Rewarded puzzle returns true without crediting again.
func (t *Tracker) VerifyAndReward(ctx context.Context, tx state.Tx, inv domain.Invocation, player domain.Address, puzzleID uint32) (bool, *domain.LedgerEntry, error) {
	if err := inv.RequireAuth(player); err != nil {
		return false, nil, err
	}
	pz, err := t.registry.Get(ctx, tx, puzzleID)
	if err != nil {
		return false, nil, err
	}
	progress, err := t.Progress(ctx, tx, player, puzzleID)
	if err != nil {
		return false, nil, err
	}

	switch progress.State {
	case domain.PuzzleRewarded:
		return true, nil, nil
	case domain.PuzzleVerified:
	default:
		return false, nil, domain.ErrNotVerified(fmt.Sprintf("puzzle %d is %s for %s", puzzleID, progress.Status().State, player))
	}

	if err := advance(&progress, domain.PuzzleRewarded); err != nil {
		return false, nil, err
	}
	now := inv.Now()
	entry, err := t.ledger.Credit(ctx, tx, player, pz.BaseReward, domain.ReasonPuzzleReward, fmt.Sprintf("puzzle:%d", puzzleID), now)
	if err != nil {
		return false, nil, fmt.Errorf("reward puzzle: %w", err)
	}

	progress.RewardedAt = now
	if err := t.save(ctx, tx, progress); err != nil {
		return false, nil, err
	}
	if err := state.Emit(ctx, tx, domain.NewPuzzleEvent(progress, domain.EventPuzzleRewarded, now)); err != nil {
		return false, nil, fmt.Errorf("emit rewarded: %w", err)
	}
	return true, entry, nil
}

// Status returns the read-only projection for a known puzzle.
func (t *Tracker) Status(ctx context.Context, tx state.Tx, player domain.Address, puzzleID uint32) (domain.PuzzleStatus, error) {
	if _, err := t.registry.Get(ctx, tx, puzzleID); err != nil {
		return domain.PuzzleStatus{}, err
	}
	progress, err := t.Progress(ctx, tx, player, puzzleID)
	if err != nil {
		return domain.PuzzleStatus{}, err
	}
	return progress.Status(), nil
}

// retryAfter returns the seconds left in the cooldown window, or 0 when a submission
// may be evaluated. Only prior failed attempts start a cooldown.
func retryAfter(p domain.PuzzleProgress, cooldown, now uint64) uint64 {
	if cooldown == 0 || p.AttemptCount == 0 {
		return 0
	}
	if now < p.LastAttemptTime {
		return cooldown
	}
	elapsed := now - p.LastAttemptTime
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

func saturatingInc(n uint32) uint32 {
	if n == math.MaxUint32 {
		return n
	}
	return n + 1
}
