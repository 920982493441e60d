package handler

import (
	"net/http"

	"github.com/attaboy/puzzlequest/internal/service"
)

// PuzzleHandler handles puzzle submission, reward and status endpoints.
type PuzzleHandler struct {
	platform *service.Platform
}

// NewPuzzleHandler creates a new PuzzleHandler.
func NewPuzzleHandler(platform *service.Platform) *PuzzleHandler {
	return &PuzzleHandler{platform: platform}
}

type submitRequest struct {
	Solution string `json:"solution"`
}

// Submit handles POST /puzzles/{id}/submit.
func (h *PuzzleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint32(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	res, err := h.platform.SubmitSolution(r.Context(), h.platform.Invocation(player), player, id, req.Solution)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// Reward handles POST /puzzles/{id}/reward.
func (h *PuzzleHandler) Reward(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint32(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	ok, err := h.platform.VerifyAndReward(r.Context(), h.platform.Invocation(player), player, id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"rewarded": ok})
}

// Status handles GET /puzzles/{id}/status.
func (h *PuzzleHandler) Status(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint32(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	st, err := h.platform.GetPuzzleStatus(r.Context(), player, id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, st)
}

type completeRequest struct {
	Solution string `json:"solution"`
	service.CompleteOptions
}

// Complete handles POST /puzzles/{id}/complete.
func (h *PuzzleHandler) Complete(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint32(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req completeRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	res, err := h.platform.CompletePuzzle(r.Context(), h.platform.Invocation(player), player, id, req.Solution, req.CompleteOptions)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}
