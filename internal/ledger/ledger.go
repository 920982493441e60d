package ledger

import (
	"context"
	"fmt"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Engine provides the foundational balance operations. Every method runs inside the
// caller's state transaction:
//  1. Balance: lazily-zero read; Snapshot adds the account's last journal seq
//  2. PostLedgerEntry: checked balance update, append-only journal entry, outbox event
//
// Credit and Debit validate their input and delegate to PostLedgerEntry.
type Engine struct{}

// NewEngine creates a ledger engine.
func NewEngine() *Engine {
	return &Engine{}
}

// PostParams describes one balance movement.
type PostParams struct {
	Account   domain.Address
	Kind      domain.EntryKind
	Amount    domain.Amount
	Reason    string
	Reference string
	At        uint64
}

// Balance returns the current balance of account; absent accounts hold zero.
func (e *Engine) Balance(ctx context.Context, tx state.Tx, account domain.Address) (domain.Amount, error) {
	bal, _, err := state.GetJSON[domain.Amount](ctx, tx, state.BalanceKey(account))
	if err != nil {
		return domain.Amount{}, fmt.Errorf("read balance: %w", err)
	}
	return bal, nil
}

// Snapshot returns the balance of account with the journal seq of its latest entry.
// The seq orders reads of the same account; it is zero before the first entry.
func (e *Engine) Snapshot(ctx context.Context, tx state.Tx, account domain.Address) (domain.Amount, uint64, error) {
	bal, err := e.Balance(ctx, tx, account)
	if err != nil {
		return domain.Amount{}, 0, err
	}
	seq, _, err := state.GetJSON[uint64](ctx, tx, state.BalanceSeqKey(account))
	if err != nil {
		return domain.Amount{}, 0, fmt.Errorf("read balance seq: %w", err)
	}
	return bal, seq, nil
}

// PostLedgerEntry atomically applies a movement to the account balance.
//
// Steps:
//  1. Compute the new balance with checked arithmetic
//  2. Write the balance and a journal entry with the post-update snapshot
//  3. Stage the outbox event
//
// All steps run within the caller's transaction; any error aborts it.
func (e *Engine) PostLedgerEntry(ctx context.Context, tx state.Tx, params PostParams) (*domain.LedgerEntry, error) {
	current, err := e.Balance(ctx, tx, params.Account)
	if err != nil {
		return nil, err
	}

	var next domain.Amount
	var ok bool
	switch params.Kind {
	case domain.EntryCredit:
		next, ok = current.Add(params.Amount)
		if !ok {
			return nil, domain.ErrOverflow(fmt.Sprintf("credit of %s to %s overflows balance", params.Amount, params.Account))
		}
	case domain.EntryDebit:
		next, ok = current.Sub(params.Amount)
		if !ok {
			return nil, domain.ErrInsufficientBalance()
		}
	default:
		return nil, fmt.Errorf("unknown entry kind %q", params.Kind)
	}

	if err := state.PutJSON(ctx, tx, state.BalanceKey(params.Account), next); err != nil {
		return nil, fmt.Errorf("write balance: %w", err)
	}

	seq, err := state.NextSeq(ctx, tx, "journal")
	if err != nil {
		return nil, fmt.Errorf("allocate journal seq: %w", err)
	}
	entry := &domain.LedgerEntry{
		Seq:          seq,
		Account:      params.Account,
		Kind:         params.Kind,
		Amount:       params.Amount,
		BalanceAfter: next,
		Reason:       params.Reason,
		Reference:    params.Reference,
		At:           params.At,
	}
	if err := state.PutJSON(ctx, tx, state.JournalKey(seq), entry); err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	if err := state.PutJSON(ctx, tx, state.BalanceSeqKey(params.Account), seq); err != nil {
		return nil, fmt.Errorf("write balance seq: %w", err)
	}

	if err := state.Emit(ctx, tx, domain.NewLedgerEntryEvent(*entry)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, nil
}
