package ledger

import (
	"context"
	"testing"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceOf(t *testing.T, s state.Store, account domain.Address) domain.Amount {
	t.Helper()
	var bal domain.Amount
	require.NoError(t, s.View(context.Background(), func(tx state.Tx) error {
		var err error
		bal, err = NewEngine().Balance(context.Background(), tx, account)
		return err
	}))
	return bal
}

// --- Credit Tests ---

func TestCredit(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		entry, err := e.Credit(ctx, tx, "alice", domain.MustAmount(100), domain.ReasonDistribution, "", 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), entry.Seq)
		assert.Equal(t, "100", entry.BalanceAfter.String())
		return nil
	}))

	assert.Equal(t, "100", balanceOf(t, s, "alice").String())
	assert.True(t, balanceOf(t, s, "bob").IsZero(), "absent accounts read as zero")
}

func TestCreditRejectsZero(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	err := s.Update(ctx, func(tx state.Tx) error {
		_, err := NewEngine().Credit(ctx, tx, "alice", domain.Amount{}, domain.ReasonDistribution, "", 1)
		return err
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeInvalidAmount))
	assert.Equal(t, 0, s.Len())
}

func TestCreditOverflow(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		_, err := e.Credit(ctx, tx, "whale", domain.MaxAmount(), domain.ReasonDistribution, "", 1)
		return err
	}))

	err := s.Update(ctx, func(tx state.Tx) error {
		_, err := e.Credit(ctx, tx, "whale", domain.MustAmount(1), domain.ReasonDistribution, "", 2)
		return err
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeOverflow))
	assert.Equal(t, 0, balanceOf(t, s, "whale").Cmp(domain.MaxAmount()))
}

// --- Debit Tests ---

func TestDebit(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		if _, err := e.Credit(ctx, tx, "alice", domain.MustAmount(50), domain.ReasonDistribution, "", 1); err != nil {
			return err
		}
		entry, err := e.Debit(ctx, tx, "alice", domain.MustAmount(20), "hint-3", 2)
		require.NoError(t, err)
		assert.Equal(t, domain.EntryDebit, entry.Kind)
		assert.Equal(t, "hint-3", entry.Reference)
		return nil
	}))
	assert.Equal(t, "30", balanceOf(t, s, "alice").String())
}

func TestDebitInsufficientBalanceLeavesBalance(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		_, err := e.Credit(ctx, tx, "alice", domain.MustAmount(10), domain.ReasonDistribution, "", 1)
		return err
	}))

	err := s.Update(ctx, func(tx state.Tx) error {
		_, err := e.Debit(ctx, tx, "alice", domain.MustAmount(11), "skin", 2)
		return err
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientBalance))
	assert.Equal(t, "10", balanceOf(t, s, "alice").String())
}

func TestBalanceNeverNegative(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	ops := []struct {
		credit bool
		amount int64
	}{
		{true, 5}, {false, 3}, {false, 3}, {true, 10}, {false, 12}, {false, 1}, {true, 1}, {false, 1},
	}
	for i, op := range ops {
		_ = s.Update(ctx, func(tx state.Tx) error {
			var err error
			if op.credit {
				_, err = e.Credit(ctx, tx, "p", domain.MustAmount(op.amount), domain.ReasonDistribution, "", uint64(i))
			} else {
				_, err = e.Debit(ctx, tx, "p", domain.MustAmount(op.amount), "f", uint64(i))
			}
			return err
		})
	}
	// 5-3 = 2, -3 fails, +10 = 12, -12 = 0, -1 fails, +1 = 1, -1 = 0
	assert.True(t, balanceOf(t, s, "p").IsZero())
}

// --- Journal & Outbox Tests ---

func TestPostLedgerEntryWritesJournalAndOutbox(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		if _, err := e.Credit(ctx, tx, "alice", domain.MustAmount(7), domain.ReasonPuzzleReward, "puzzle:1", 5); err != nil {
			return err
		}
		_, err := e.Debit(ctx, tx, "alice", domain.MustAmount(2), "hint", 6)
		return err
	}))

	journal, err := s.Scan(ctx, "journal:", 0)
	require.NoError(t, err)
	assert.Len(t, journal, 2)

	outbox, err := s.Scan(ctx, state.OutboxPrefix, 0)
	require.NoError(t, err)
	assert.Len(t, outbox, 2)
}

func TestSnapshotTracksLatestJournalSeq(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		if _, err := e.Credit(ctx, tx, "alice", domain.MustAmount(7), domain.ReasonDistribution, "", 1); err != nil {
			return err
		}
		if _, err := e.Credit(ctx, tx, "bob", domain.MustAmount(3), domain.ReasonDistribution, "", 2); err != nil {
			return err
		}
		_, err := e.Debit(ctx, tx, "alice", domain.MustAmount(2), "hint", 3)
		return err
	}))

	require.NoError(t, s.View(ctx, func(tx state.Tx) error {
		bal, seq, err := e.Snapshot(ctx, tx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "5", bal.String())
		assert.Equal(t, uint64(3), seq)

		bal, seq, err = e.Snapshot(ctx, tx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "3", bal.String())
		assert.Equal(t, uint64(2), seq)

		bal, seq, err = e.Snapshot(ctx, tx, "carol")
		require.NoError(t, err)
		assert.True(t, bal.IsZero())
		assert.Zero(t, seq)
		return nil
	}))
}

// --- Audit Tests ---

func TestAuditPasses(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()
	e := NewEngine()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		for _, acct := range []domain.Address{"alice", "bob", "alice"} {
			if _, err := e.Credit(ctx, tx, acct, domain.MustAmount(10), domain.ReasonDistribution, "", 1); err != nil {
				return err
			}
		}
		_, err := e.Debit(ctx, tx, "alice", domain.MustAmount(4), "hint", 2)
		return err
	}))

	result, err := NewAuditor(s).Audit(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, result.AllPassed)
	assert.Equal(t, 3, result.EntryCount)
	assert.Equal(t, "16", result.Balance.String())
	assert.Len(t, result.Invariants, 3)
}

func TestAuditDetectsTamperedBalance(t *testing.T) {
	ctx := context.Background()
	s := state.NewMemStore()

	require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
		if _, err := NewEngine().Credit(ctx, tx, "alice", domain.MustAmount(10), domain.ReasonDistribution, "", 1); err != nil {
			return err
		}
		return state.PutJSON(ctx, tx, state.BalanceKey("alice"), domain.MustAmount(999))
	}))

	result, err := NewAuditor(s).Audit(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, result.AllPassed)
	for _, c := range result.Invariants {
		if c.Name == "ledger_parity" {
			assert.False(t, c.Passed)
		}
	}
}
