package service

import (
	"context"
	"errors"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/ledger"
	"github.com/attaboy/puzzlequest/internal/projection"
	"github.com/attaboy/puzzlequest/internal/state"
)

// SpendTokens debits from for an in-game feature. The owner must sign.
func (p *Platform) SpendTokens(ctx context.Context, inv domain.Invocation, from domain.Address, amount domain.Amount, featureID string) (*domain.LedgerEntry, error) {
	if err := inv.RequireAuth(from); err != nil {
		return nil, err
	}
	var entry *domain.LedgerEntry
	err := p.update(ctx, func(sc *scope) error {
		if err := requireActivePlatform(sc.cfg); err != nil {
			return err
		}
		var err error
		entry, err = p.ledger.Debit(ctx, sc.tx, from, amount, featureID, inv.Now())
		if err != nil {
			return err
		}
		sc.touch(from)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("tokens spent", "from", from, "amount", amount.String(), "feature", featureID)
	return entry, nil
}

// Balance returns the balance of account, served from the projection cache when warm.
func (p *Platform) Balance(ctx context.Context, account domain.Address) (domain.Amount, error) {
	if p.cache != nil {
		cached, err := projection.GetBalance(ctx, p.cache, account)
		if err == nil {
			return cached.Balance, nil
		}
		if !errors.Is(err, projection.ErrMiss) {
			p.logger.Warn("balance projection read failed", "account", account, "error", err)
		}
	}

	var bal domain.Amount
	var seq uint64
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		bal, seq, err = p.ledger.Snapshot(ctx, tx, account)
		return err
	})
	if err != nil {
		return domain.Amount{}, err
	}
	if p.cache != nil {
		// A commit between the read and this write leaves a higher seq in the cache.
		if err := projection.UpdateBalance(ctx, p.cache, projection.BalanceProjection{Account: account, Balance: bal, Seq: seq}); err != nil {
			p.logger.Warn("balance projection write failed", "account", account, "error", err)
		}
	}
	return bal, nil
}

// Audit replays the journal of account against its stored balance.
func (p *Platform) Audit(ctx context.Context, account domain.Address) (*ledger.AuditResult, error) {
	return p.auditor.Audit(ctx, account)
}
