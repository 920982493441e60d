package ledger

import (
	"context"
	"fmt"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Credit adds amount to the account balance. Authorization is the caller's concern:
// only the orchestrator and admin paths reach it.
func (e *Engine) Credit(ctx context.Context, tx state.Tx, to domain.Address, amount domain.Amount, reason, reference string, at uint64) (*domain.LedgerEntry, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	entry, err := e.PostLedgerEntry(ctx, tx, PostParams{
		Account:   to,
		Kind:      domain.EntryCredit,
		Amount:    amount,
		Reason:    reason,
		Reference: reference,
		At:        at,
	})
	if err != nil {
		return nil, fmt.Errorf("credit: %w", err)
	}
	return entry, nil
}
