package service

import (
	"context"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/puzzle"
	"github.com/attaboy/puzzlequest/internal/state"
)

// SubmitSolution checks a player's answer. Under the reject cooldown policy a
// submission inside the cooldown fails with RateLimited; under the count policy
// it is persisted and reported in the result.
func (p *Platform) SubmitSolution(ctx context.Context, inv domain.Invocation, player domain.Address, puzzleID uint32, solution string) (*puzzle.SubmitResult, error) {
	var res *puzzle.SubmitResult
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		res, err = p.progress.Submit(ctx, sc.tx, inv, player, puzzleID, solution, cooldownOf(sc.cfg))
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("solution submitted", "player", player, "puzzle_id", puzzleID,
		"verified", res.Verified, "rate_limited", res.RateLimited, "attempts", res.Progress.AttemptCount)
	return res, nil
}

// VerifyAndReward pays the puzzle's base reward once for a verified solution.
func (p *Platform) VerifyAndReward(ctx context.Context, inv domain.Invocation, player domain.Address, puzzleID uint32) (bool, error) {
	var (
		ok    bool
		entry *domain.LedgerEntry
	)
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		ok, entry, err = p.progress.VerifyAndReward(ctx, sc.tx, inv, player, puzzleID)
		if err != nil {
			return err
		}
		sc.touch(player)
		return nil
	})
	if err != nil {
		return false, err
	}
	if entry != nil {
		p.logger.Info("puzzle rewarded", "player", player, "puzzle_id", puzzleID, "amount", entry.Amount.String())
	}
	return ok, nil
}

// GetPuzzleStatus returns the read-only progress projection.
func (p *Platform) GetPuzzleStatus(ctx context.Context, player domain.Address, puzzleID uint32) (domain.PuzzleStatus, error) {
	var st domain.PuzzleStatus
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		st, err = p.progress.Status(ctx, tx, player, puzzleID)
		return err
	})
	return st, err
}

// CompleteOptions selects the optional steps of CompletePuzzle.
type CompleteOptions struct {
	Mint     bool          `json:"mint"`
	Metadata string        `json:"metadata"`
	EventID  uint64        `json:"event_id"`
	Score    domain.Amount `json:"score"`
}

// CompleteResult reports every step CompletePuzzle performed.
type CompleteResult struct {
	Submit      *puzzle.SubmitResult `json:"submit"`
	Rewarded    bool                 `json:"rewarded"`
	Achievement *domain.Achievement  `json:"achievement,omitempty"`
	EventClaim  *domain.EventClaim   `json:"event_claim,omitempty"`
}

// CompletePuzzle runs submit, reward, the optional mint and the optional event
// record in one transaction. A wrong answer stops after the submission; a
// failure in any later step rolls back the whole call.
func (p *Platform) CompletePuzzle(ctx context.Context, inv domain.Invocation, player domain.Address, puzzleID uint32, solution string, opts CompleteOptions) (*CompleteResult, error) {
	var out CompleteResult
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		res, err := p.progress.Submit(ctx, sc.tx, inv, player, puzzleID, solution, cooldownOf(sc.cfg))
		if err != nil {
			return err
		}
		out = CompleteResult{Submit: res}
		if !res.Verified {
			return nil
		}

		out.Rewarded, _, err = p.progress.VerifyAndReward(ctx, sc.tx, inv, player, puzzleID)
		if err != nil {
			return err
		}
		sc.touch(player)

		if opts.Mint {
			out.Achievement, err = p.achievements.Mint(ctx, sc.tx, inv, player, puzzleID, opts.Metadata)
			if err != nil {
				return err
			}
		}
		if opts.EventID != 0 {
			e, err := p.events.Get(ctx, sc.tx, opts.EventID)
			if err != nil {
				return err
			}
			out.EventClaim, err = p.eventProgress.RecordVerified(ctx, sc.tx, e, player, puzzleID, opts.Score, inv.Now())
			if err != nil {
				return err
			}
			return p.submitScore(ctx, sc, player, out.EventClaim.TotalScore)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("puzzle completed", "player", player, "puzzle_id", puzzleID,
		"verified", out.Submit.Verified, "rewarded", out.Rewarded, "event_id", opts.EventID)
	return &out, nil
}

func cooldownOf(cfg domain.PlatformConfig) puzzle.Cooldown {
	return puzzle.Cooldown{Secs: cfg.AttemptCooldownSecs, Policy: cfg.CooldownPolicy}
}
