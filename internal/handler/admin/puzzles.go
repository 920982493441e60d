package admin

import (
	"net/http"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/handler"
	"github.com/attaboy/puzzlequest/internal/service"
)

// PuzzleAdminHandler handles puzzle definitions.
type PuzzleAdminHandler struct {
	platform *service.Platform
}

// NewPuzzleAdminHandler creates a new PuzzleAdminHandler.
func NewPuzzleAdminHandler(platform *service.Platform) *PuzzleAdminHandler {
	return &PuzzleAdminHandler{platform: platform}
}

// UpsertPuzzle handles PUT /admin/puzzles/{id}. The body carries either the
// plaintext solution, which is fingerprinted and discarded, or a fingerprint.
func (h *PuzzleAdminHandler) UpsertPuzzle(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	id, err := handler.URLUint32(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		Solution    string        `json:"solution"`
		Fingerprint string        `json:"fingerprint"`
		BaseReward  domain.Amount `json:"base_reward"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	pz, err := h.platform.UpsertPuzzle(r.Context(), h.platform.Invocation(caller), id, input.Solution, input.Fingerprint, input.BaseReward)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, pz)
}

// GetPuzzle handles GET /admin/puzzles/{id}.
func (h *PuzzleAdminHandler) GetPuzzle(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLUint32(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	pz, err := h.platform.GetPuzzle(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, pz)
}
