package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// AuditResult holds the outcome of replaying an account's journal.
type AuditResult struct {
	Account    domain.Address   `json:"account"`
	EntryCount int              `json:"entry_count"`
	Balance    domain.Amount    `json:"balance"`
	Replayed   domain.Amount    `json:"replayed"`
	Invariants []InvariantCheck `json:"invariants"`
	AllPassed  bool             `json:"all_passed"`
}

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Auditor replays the journal of an account and validates it against the stored balance.
//
// Invariants:
//  1. Replay never underflows: the running balance stays >= 0 after each entry
//  2. Snapshot chain: each entry's balance_after equals the running replay
//  3. Ledger parity: the replayed total equals the stored balance
type Auditor struct {
	store state.Store
}

// NewAuditor creates an auditor over the given store.
func NewAuditor(store state.Store) *Auditor {
	return &Auditor{store: store}
}

// Audit replays every journal entry of account.
func (a *Auditor) Audit(ctx context.Context, account domain.Address) (*AuditResult, error) {
	kvs, err := a.store.Scan(ctx, "journal:", 0)
	if err != nil {
		return nil, fmt.Errorf("audit scan journal: %w", err)
	}

	var stored domain.Amount
	err = a.store.View(ctx, func(tx state.Tx) error {
		stored, err = NewEngine().Balance(ctx, tx, account)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("audit read balance: %w", err)
	}

	var running domain.Amount
	count := 0
	underflowAt, chainBreakAt := uint64(0), uint64(0)
	for _, kv := range kvs {
		var entry domain.LedgerEntry
		if err := json.Unmarshal(kv.Value, &entry); err != nil {
			return nil, fmt.Errorf("audit decode %s: %w", kv.Key, err)
		}
		if entry.Account != account {
			continue
		}
		count++

		var ok bool
		switch entry.Kind {
		case domain.EntryCredit:
			running, ok = running.Add(entry.Amount)
		case domain.EntryDebit:
			running, ok = running.Sub(entry.Amount)
		}
		if !ok && underflowAt == 0 {
			underflowAt = entry.Seq
		}
		if running.Cmp(entry.BalanceAfter) != 0 && chainBreakAt == 0 {
			chainBreakAt = entry.Seq
		}
	}

	checks := []InvariantCheck{
		{
			Name:   "balance_non_negative",
			Passed: underflowAt == 0,
			Detail: fmt.Sprintf("first underflow at seq %d", underflowAt),
		},
		{
			Name:   "snapshot_chain",
			Passed: chainBreakAt == 0,
			Detail: fmt.Sprintf("first mismatch at seq %d", chainBreakAt),
		},
		{
			Name:   "ledger_parity",
			Passed: running.Cmp(stored) == 0,
			Detail: fmt.Sprintf("stored=%s replayed=%s", stored, running),
		},
	}
	allPassed := true
	for _, c := range checks {
		if !c.Passed {
			allPassed = false
		}
	}

	return &AuditResult{
		Account:    account,
		EntryCount: count,
		Balance:    stored,
		Replayed:   running,
		Invariants: checks,
		AllPassed:  allPassed,
	}, nil
}
