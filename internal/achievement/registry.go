package achievement

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

const maxMetadataLen = 2048

// ProgressReader exposes the puzzle state a mint is gated on.
type ProgressReader interface {
	Progress(ctx context.Context, tx state.Tx, player domain.Address, puzzleID uint32) (domain.PuzzleProgress, error)
}

// Registry mints and tracks ownership of achievement records.
type Registry struct {
	progress ProgressReader
}

// NewRegistry creates an achievement registry.
func NewRegistry(progress ProgressReader) *Registry {
	return &Registry{progress: progress}
}

// Mint issues the achievement for a rewarded puzzle. At most one per (owner, puzzle).
func (r *Registry) Mint(ctx context.Context, tx state.Tx, inv domain.Invocation, to domain.Address, puzzleID uint32, metadata string) (*domain.Achievement, error) {
	if err := inv.RequireAuth(to); err != nil {
		return nil, err
	}
	if err := validateMetadata(metadata); err != nil {
		return nil, err
	}

	progress, err := r.progress.Progress(ctx, tx, to, puzzleID)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if progress.State != domain.PuzzleRewarded {
		return nil, domain.ErrNotVerified(fmt.Sprintf("puzzle %d is not rewarded for %s", puzzleID, to))
	}

	mintedKey := state.MintedKey(to, puzzleID)
	minted, err := state.Has(ctx, tx, mintedKey)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if minted {
		return nil, domain.ErrAlreadyMinted(fmt.Sprintf("achievement for puzzle %d already minted to %s", puzzleID, to))
	}

	a, err := r.issue(ctx, tx, domain.Achievement{Owner: to, PuzzleID: puzzleID, Metadata: metadata, MintedAt: inv.Now()})
	if err != nil {
		return nil, err
	}
	if err := state.PutJSON(ctx, tx, mintedKey, a.TokenID); err != nil {
		return nil, fmt.Errorf("mark minted: %w", err)
	}
	return a, nil
}

// MintForEvent issues an event achievement. Callers enforce the claim guard.
func (r *Registry) MintForEvent(ctx context.Context, tx state.Tx, to domain.Address, eventID uint64, metadata string, at uint64) (*domain.Achievement, error) {
	if err := validateMetadata(metadata); err != nil {
		return nil, err
	}
	return r.issue(ctx, tx, domain.Achievement{Owner: to, EventID: eventID, Metadata: metadata, MintedAt: at})
}

func (r *Registry) issue(ctx context.Context, tx state.Tx, a domain.Achievement) (*domain.Achievement, error) {
	seq, err := state.NextSeq(ctx, tx, "token")
	if err != nil {
		return nil, fmt.Errorf("allocate token id: %w", err)
	}
	if seq > math.MaxUint32 {
		return nil, domain.ErrOverflow("token id space exhausted")
	}
	a.TokenID = uint32(seq)

	if err := state.PutJSON(ctx, tx, state.AchievementKey(a.TokenID), a); err != nil {
		return nil, fmt.Errorf("store achievement: %w", err)
	}
	if err := r.addToCollection(ctx, tx, a.Owner, a.TokenID); err != nil {
		return nil, err
	}
	if err := r.adjustSupply(ctx, tx, 1); err != nil {
		return nil, err
	}
	if err := state.Emit(ctx, tx, domain.NewAchievementEvent(a, domain.EventAchievementMinted, a.MintedAt)); err != nil {
		return nil, fmt.Errorf("emit minted: %w", err)
	}
	return &a, nil
}

// Get returns an achievement or NotFound.
func (r *Registry) Get(ctx context.Context, tx state.Tx, tokenID uint32) (*domain.Achievement, error) {
	a, found, err := state.GetJSON[domain.Achievement](ctx, tx, state.AchievementKey(tokenID))
	if err != nil {
		return nil, fmt.Errorf("get achievement: %w", err)
	}
	if !found {
		return nil, domain.ErrNotFound("achievement", strconv.FormatUint(uint64(tokenID), 10))
	}
	return &a, nil
}

// OwnerOf returns the current owner of tokenID.
func (r *Registry) OwnerOf(ctx context.Context, tx state.Tx, tokenID uint32) (domain.Address, error) {
	a, err := r.Get(ctx, tx, tokenID)
	if err != nil {
		return "", err
	}
	return a.Owner, nil
}

// Transfer reassigns ownership. Only the current owner may transfer.
func (r *Registry) Transfer(ctx context.Context, tx state.Tx, inv domain.Invocation, from, to domain.Address, tokenID uint32) (*domain.Achievement, error) {
	if err := inv.RequireAuth(from); err != nil {
		return nil, err
	}
	if err := domain.ValidateAddress(to); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	a, err := r.Get(ctx, tx, tokenID)
	if err != nil {
		return nil, err
	}
	if a.Owner != from {
		return nil, domain.ErrUnauthorized(fmt.Sprintf("%s does not own achievement %d", from, tokenID))
	}
	if from == to {
		return a, nil
	}

	a.Owner = to
	if err := state.PutJSON(ctx, tx, state.AchievementKey(tokenID), a); err != nil {
		return nil, fmt.Errorf("store achievement: %w", err)
	}
	if err := r.removeFromCollection(ctx, tx, from, tokenID); err != nil {
		return nil, err
	}
	if err := r.addToCollection(ctx, tx, to, tokenID); err != nil {
		return nil, err
	}
	if err := state.Emit(ctx, tx, domain.NewAchievementEvent(*a, domain.EventAchievementMoved, inv.Now())); err != nil {
		return nil, fmt.Errorf("emit transferred: %w", err)
	}
	return a, nil
}

// Burn destroys an achievement. The mint guard stays in place, so a burned puzzle
// achievement cannot be minted again.
func (r *Registry) Burn(ctx context.Context, tx state.Tx, inv domain.Invocation, owner domain.Address, tokenID uint32) error {
	if err := inv.RequireAuth(owner); err != nil {
		return err
	}
	a, err := r.Get(ctx, tx, tokenID)
	if err != nil {
		return err
	}
	if a.Owner != owner {
		return domain.ErrUnauthorized(fmt.Sprintf("%s does not own achievement %d", owner, tokenID))
	}
	if err := tx.Delete(ctx, state.AchievementKey(tokenID)); err != nil {
		return fmt.Errorf("delete achievement: %w", err)
	}
	if err := r.removeFromCollection(ctx, tx, owner, tokenID); err != nil {
		return err
	}
	if err := r.adjustSupply(ctx, tx, -1); err != nil {
		return err
	}
	if err := state.Emit(ctx, tx, domain.NewAchievementEvent(*a, domain.EventAchievementBurned, inv.Now())); err != nil {
		return fmt.Errorf("emit burned: %w", err)
	}
	return nil
}

// Collection lists the achievements held by owner in token order.
func (r *Registry) Collection(ctx context.Context, tx state.Tx, owner domain.Address) ([]domain.Achievement, error) {
	ids, _, err := state.GetJSON[[]uint32](ctx, tx, state.CollectionKey(owner))
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	out := make([]domain.Achievement, 0, len(ids))
	for _, id := range ids {
		a, err := r.Get(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

// TotalSupply returns the number of live achievements.
func (r *Registry) TotalSupply(ctx context.Context, tx state.Tx) (uint64, error) {
	n, _, err := state.GetJSON[uint64](ctx, tx, state.SupplyKey)
	if err != nil {
		return 0, fmt.Errorf("load supply: %w", err)
	}
	return n, nil
}

func (r *Registry) adjustSupply(ctx context.Context, tx state.Tx, delta int) error {
	n, err := r.TotalSupply(ctx, tx)
	if err != nil {
		return err
	}
	switch {
	case delta > 0:
		n++
	case n > 0:
		n--
	}
	return state.PutJSON(ctx, tx, state.SupplyKey, n)
}

func (r *Registry) addToCollection(ctx context.Context, tx state.Tx, owner domain.Address, tokenID uint32) error {
	ids, _, err := state.GetJSON[[]uint32](ctx, tx, state.CollectionKey(owner))
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	pos := len(ids)
	for i, id := range ids {
		if id > tokenID {
			pos = i
			break
		}
	}
	ids = append(ids, 0)
	copy(ids[pos+1:], ids[pos:])
	ids[pos] = tokenID
	return state.PutJSON(ctx, tx, state.CollectionKey(owner), ids)
}

func (r *Registry) removeFromCollection(ctx context.Context, tx state.Tx, owner domain.Address, tokenID uint32) error {
	ids, _, err := state.GetJSON[[]uint32](ctx, tx, state.CollectionKey(owner))
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != tokenID {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return tx.Delete(ctx, state.CollectionKey(owner))
	}
	return state.PutJSON(ctx, tx, state.CollectionKey(owner), kept)
}

func validateMetadata(metadata string) error {
	if len(metadata) > maxMetadataLen {
		return domain.ErrValidation(fmt.Sprintf("metadata too long (%d bytes)", len(metadata)))
	}
	return nil
}
