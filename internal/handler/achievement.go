package handler

import (
	"net/http"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/service"
)

// AchievementHandler handles achievement mint, lookup and transfer endpoints.
type AchievementHandler struct {
	platform *service.Platform
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(platform *service.Platform) *AchievementHandler {
	return &AchievementHandler{platform: platform}
}

type mintRequest struct {
	PuzzleID uint32 `json:"puzzle_id"`
	Metadata string `json:"metadata"`
}

// Mint handles POST /achievements.
func (h *AchievementHandler) Mint(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req mintRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	a, err := h.platform.MintAchievement(r.Context(), h.platform.Invocation(player), player, req.PuzzleID, req.Metadata)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, a)
}

// Get handles GET /achievements/{tokenID}.
func (h *AchievementHandler) Get(w http.ResponseWriter, r *http.Request) {
	tokenID, err := URLUint32(r, "tokenID")
	if err != nil {
		RespondError(w, err)
		return
	}
	a, err := h.platform.GetAchievement(r.Context(), tokenID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, a)
}

// Mine handles GET /achievements/me.
func (h *AchievementHandler) Mine(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	coll, err := h.platform.Collection(r.Context(), player)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"achievements": coll})
}

type transferRequest struct {
	To domain.Address `json:"to"`
}

// Transfer handles POST /achievements/{tokenID}/transfer.
func (h *AchievementHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	tokenID, err := URLUint32(r, "tokenID")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	a, err := h.platform.TransferAchievement(r.Context(), h.platform.Invocation(player), player, req.To, tokenID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, a)
}

// Burn handles DELETE /achievements/{tokenID}.
func (h *AchievementHandler) Burn(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	tokenID, err := URLUint32(r, "tokenID")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.platform.BurnAchievement(r.Context(), h.platform.Invocation(player), player, tokenID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
