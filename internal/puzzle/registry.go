package puzzle

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Fingerprint derives the stored comparison value of a solution.
func Fingerprint(solution string) string {
	sum := sha256.Sum256([]byte(solution))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether solution hashes to fingerprint, in constant time.
func Matches(fingerprint, solution string) bool {
	return subtle.ConstantTimeCompare([]byte(fingerprint), []byte(Fingerprint(solution))) == 1
}

// Registry stores puzzle definitions.
type Registry struct{}

// NewRegistry creates a puzzle registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Upsert creates or replaces a puzzle definition.
func (r *Registry) Upsert(ctx context.Context, tx state.Tx, id uint32, fingerprint string, baseReward domain.Amount, at uint64) (*domain.Puzzle, error) {
	if id == 0 {
		return nil, domain.ErrValidation("puzzle id must be positive")
	}
	if err := domain.ValidateFingerprint(fingerprint); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePositiveAmount(baseReward); err != nil {
		return nil, err
	}

	p := &domain.Puzzle{
		ID:                  id,
		SolutionFingerprint: fingerprint,
		BaseReward:          baseReward,
		UpdatedAt:           at,
	}
	if err := state.PutJSON(ctx, tx, state.PuzzleKey(id), p); err != nil {
		return nil, fmt.Errorf("upsert puzzle: %w", err)
	}
	return p, nil
}

// Get returns a puzzle or NotFound.
func (r *Registry) Get(ctx context.Context, tx state.Tx, id uint32) (*domain.Puzzle, error) {
	p, found, err := state.GetJSON[domain.Puzzle](ctx, tx, state.PuzzleKey(id))
	if err != nil {
		return nil, fmt.Errorf("get puzzle: %w", err)
	}
	if !found {
		return nil, domain.ErrNotFound("puzzle", strconv.FormatUint(uint64(id), 10))
	}
	return &p, nil
}
