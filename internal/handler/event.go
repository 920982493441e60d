package handler

import (
	"net/http"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/service"
)

// EventHandler handles event participation endpoints.
type EventHandler struct {
	platform *service.Platform
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(platform *service.Platform) *EventHandler {
	return &EventHandler{platform: platform}
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := URLUint64(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	e, err := h.platform.GetEvent(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	active, err := h.platform.IsEventActive(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"event": e, "active": active})
}

// Access handles GET /events/{id}/access.
func (h *EventHandler) Access(w http.ResponseWriter, r *http.Request) {
	id, err := URLUint64(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	ok, err := h.platform.CanAccessEventContent(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"access": ok})
}

// Score handles GET /events/{id}/score.
func (h *EventHandler) Score(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint64(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	score, err := h.platform.GetEventScore(r.Context(), id, player)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]domain.Amount{"score": score})
}

// Claim handles POST /events/{id}/claim.
func (h *EventHandler) Claim(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint64(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	reward, err := h.platform.ClaimEventReward(r.Context(), h.platform.Invocation(player), id, player)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]domain.Amount{"reward": reward})
}

// MintNft handles POST /events/{id}/nft.
func (h *EventHandler) MintNft(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint64(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	a, err := h.platform.MintEventNft(r.Context(), h.platform.Invocation(player), id, player)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, a)
}

type completionRequest struct {
	User     domain.Address `json:"user"`
	PuzzleID uint32         `json:"puzzle_id"`
	Score    domain.Amount  `json:"score"`
}

// RecordCompletion handles POST /events/{id}/completions (verifier or admin realm).
func (h *EventHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	submitter, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := URLUint64(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req completionRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	claim, err := h.platform.RecordPuzzleCompletion(r.Context(), h.platform.Invocation(submitter), submitter, id, req.User, req.PuzzleID, req.Score)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, claim)
}
