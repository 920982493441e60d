package ledger

import (
	"context"
	"fmt"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Debit spends amount from the account to unlock featureID. A debit beyond the
// balance fails with InsufficientBalance and leaves the balance unchanged.
func (e *Engine) Debit(ctx context.Context, tx state.Tx, from domain.Address, amount domain.Amount, featureID string, at uint64) (*domain.LedgerEntry, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	entry, err := e.PostLedgerEntry(ctx, tx, PostParams{
		Account:   from,
		Kind:      domain.EntryDebit,
		Amount:    amount,
		Reason:    domain.ReasonFeatureSpend,
		Reference: featureID,
		At:        at,
	})
	if err != nil {
		return nil, fmt.Errorf("debit: %w", err)
	}
	return entry, nil
}
