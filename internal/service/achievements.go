package service

import (
	"context"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// MintAchievement mints the achievement for a rewarded puzzle.
func (p *Platform) MintAchievement(ctx context.Context, inv domain.Invocation, to domain.Address, puzzleID uint32, metadata string) (*domain.Achievement, error) {
	var out *domain.Achievement
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		out, err = p.achievements.Mint(ctx, sc.tx, inv, to, puzzleID, metadata)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("achievement minted", "to", to, "puzzle_id", puzzleID, "token_id", out.TokenID)
	return out, nil
}

// TransferAchievement moves a token between owners. The current owner must sign.
func (p *Platform) TransferAchievement(ctx context.Context, inv domain.Invocation, from, to domain.Address, tokenID uint32) (*domain.Achievement, error) {
	var out *domain.Achievement
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		out, err = p.achievements.Transfer(ctx, sc.tx, inv, from, to, tokenID)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("achievement transferred", "from", from, "to", to, "token_id", tokenID)
	return out, nil
}

// BurnAchievement destroys a token. The owner must sign.
func (p *Platform) BurnAchievement(ctx context.Context, inv domain.Invocation, owner domain.Address, tokenID uint32) error {
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		return p.achievements.Burn(ctx, sc.tx, inv, owner, tokenID)
	})
	if err != nil {
		return err
	}
	p.logger.Info("achievement burned", "owner", owner, "token_id", tokenID)
	return nil
}

// GetAchievement returns a token.
func (p *Platform) GetAchievement(ctx context.Context, tokenID uint32) (*domain.Achievement, error) {
	var out *domain.Achievement
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		out, err = p.achievements.Get(ctx, tx, tokenID)
		return err
	})
	return out, err
}

// OwnerOf returns the owner of a token.
func (p *Platform) OwnerOf(ctx context.Context, tokenID uint32) (domain.Address, error) {
	var owner domain.Address
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		owner, err = p.achievements.OwnerOf(ctx, tx, tokenID)
		return err
	})
	return owner, err
}

// Collection lists the tokens held by owner.
func (p *Platform) Collection(ctx context.Context, owner domain.Address) ([]domain.Achievement, error) {
	var out []domain.Achievement
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		out, err = p.achievements.Collection(ctx, tx, owner)
		return err
	})
	return out, err
}

// TotalSupply returns the number of live tokens.
func (p *Platform) TotalSupply(ctx context.Context) (uint64, error) {
	var n uint64
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		n, err = p.achievements.TotalSupply(ctx, tx)
		return err
	})
	return n, err
}
