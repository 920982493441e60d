package service

import (
	"context"
	"fmt"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// RecordPuzzleCompletion stores a verifier-reported completion and forwards the
// user's event total to the leaderboard according to the configured policy.
func (p *Platform) RecordPuzzleCompletion(ctx context.Context, inv domain.Invocation, submitter domain.Address, eventID uint64, user domain.Address, puzzleID uint32, score domain.Amount) (*domain.EventClaim, error) {
	var claim *domain.EventClaim
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		claim, err = p.eventProgress.RecordCompletion(ctx, sc.tx, inv, submitter, eventID, user, puzzleID, score)
		if err != nil {
			return err
		}
		return p.submitScore(ctx, sc, user, claim.TotalScore)
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("event completion recorded", "event_id", eventID, "user", user,
		"puzzle_id", puzzleID, "score", score.String(), "total", claim.TotalScore.String())
	return claim, nil
}

// ClaimEventReward pays the event reward once and returns the credited amount.
func (p *Platform) ClaimEventReward(ctx context.Context, inv domain.Invocation, eventID uint64, user domain.Address) (domain.Amount, error) {
	var reward domain.Amount
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		reward, err = p.eventProgress.Claim(ctx, sc.tx, inv, eventID, user)
		if err != nil {
			return err
		}
		sc.touch(user)
		return nil
	})
	if err != nil {
		return domain.Amount{}, err
	}
	p.logger.Info("event reward claimed", "event_id", eventID, "user", user, "reward", reward.String())
	return reward, nil
}

// MintEventNft mints the event achievement after a claim.
func (p *Platform) MintEventNft(ctx context.Context, inv domain.Invocation, eventID uint64, user domain.Address) (*domain.Achievement, error) {
	var out *domain.Achievement
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		out, err = p.eventProgress.MintNft(ctx, sc.tx, inv, eventID, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("event achievement minted", "event_id", eventID, "user", user, "token_id", out.TokenID)
	return out, nil
}

// CanAccessEventContent is the content gate: false while the platform or the
// event is paused, outside the window, or for an unknown event.
func (p *Platform) CanAccessEventContent(ctx context.Context, eventID uint64) (bool, error) {
	now := p.clock.Now()
	var ok bool
	err := p.view(ctx, func(tx state.Tx) error {
		cfg, found, err := state.GetJSON[domain.PlatformConfig](ctx, tx, state.ConfigKey)
		if err != nil {
			return err
		}
		if found && cfg.Paused {
			return nil
		}
		ok, err = p.eventProgress.CanAccess(ctx, tx, eventID, now)
		return err
	})
	return ok, err
}

// IsEventActive reports whether the event currently admits completions and claims.
func (p *Platform) IsEventActive(ctx context.Context, eventID uint64) (bool, error) {
	return p.CanAccessEventContent(ctx, eventID)
}

// GetEvent returns an event definition.
func (p *Platform) GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error) {
	var out *domain.Event
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		out, err = p.events.Get(ctx, tx, eventID)
		return err
	})
	return out, err
}

// GetEventScore returns the user's cumulative event score.
func (p *Platform) GetEventScore(ctx context.Context, eventID uint64, user domain.Address) (domain.Amount, error) {
	var score domain.Amount
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		score, err = p.eventProgress.Score(ctx, tx, eventID, user)
		return err
	})
	return score, err
}

// HasCompletedPuzzle reports whether a completion exists for the triple.
func (p *Platform) HasCompletedPuzzle(ctx context.Context, eventID uint64, user domain.Address, puzzleID uint32) (bool, error) {
	var ok bool
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		ok, err = p.eventProgress.HasCompleted(ctx, tx, eventID, user, puzzleID)
		return err
	})
	return ok, err
}

// GetClaim returns the user's claim record for an event.
func (p *Platform) GetClaim(ctx context.Context, eventID uint64, user domain.Address) (*domain.EventClaim, error) {
	var out domain.EventClaim
	err := p.view(ctx, func(tx state.Tx) error {
		c, found, err := p.eventProgress.GetClaim(ctx, tx, eventID, user)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound("event participation", fmt.Sprintf("%d/%s", eventID, user))
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
