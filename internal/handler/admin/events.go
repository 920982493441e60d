package admin

import (
	"net/http"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/event"
	"github.com/attaboy/puzzlequest/internal/handler"
	"github.com/attaboy/puzzlequest/internal/service"
)

// EventAdminHandler handles event creation and updates.
type EventAdminHandler struct {
	platform *service.Platform
}

// NewEventAdminHandler creates a new EventAdminHandler.
func NewEventAdminHandler(platform *service.Platform) *EventAdminHandler {
	return &EventAdminHandler{platform: platform}
}

// CreateEvent handles POST /admin/events.
func (h *EventAdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input event.CreateParams
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	e, err := h.platform.CreateEvent(r.Context(), h.platform.Invocation(caller), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, e)
}

// UpdateTimes handles PATCH /admin/events/{id}/times.
func (h *EventAdminHandler) UpdateTimes(w http.ResponseWriter, r *http.Request) {
	var input struct {
		StartTime uint64 `json:"start_time"`
		EndTime   uint64 `json:"end_time"`
	}
	h.update(w, r, &input, func(inv domain.Invocation, id uint64) (*domain.Event, error) {
		return h.platform.UpdateEventTimes(r.Context(), inv, id, input.StartTime, input.EndTime)
	})
}

// UpdateRewards handles PATCH /admin/events/{id}/rewards.
func (h *EventAdminHandler) UpdateRewards(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RewardAmount       domain.Amount `json:"reward_amount"`
		BonusMultiplierBps uint32        `json:"bonus_multiplier_bps"`
	}
	h.update(w, r, &input, func(inv domain.Invocation, id uint64) (*domain.Event, error) {
		return h.platform.UpdateEventRewards(r.Context(), inv, id, input.RewardAmount, input.BonusMultiplierBps)
	})
}

// UpdatePuzzles handles PATCH /admin/events/{id}/puzzles.
func (h *EventAdminHandler) UpdatePuzzles(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PuzzleIDs []uint32 `json:"puzzle_ids"`
	}
	h.update(w, r, &input, func(inv domain.Invocation, id uint64) (*domain.Event, error) {
		return h.platform.UpdateEventPuzzles(r.Context(), inv, id, input.PuzzleIDs)
	})
}

// SetPaused handles PATCH /admin/events/{id}/pause.
func (h *EventAdminHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Paused bool `json:"paused"`
	}
	h.update(w, r, &input, func(inv domain.Invocation, id uint64) (*domain.Event, error) {
		return h.platform.SetEventPaused(r.Context(), inv, id, input.Paused)
	})
}

// update decodes input, then runs apply with the caller's invocation and the event id.
func (h *EventAdminHandler) update(w http.ResponseWriter, r *http.Request, input interface{}, apply func(inv domain.Invocation, id uint64) (*domain.Event, error)) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	id, err := handler.URLUint64(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if err := handler.DecodeJSON(r, input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	e, err := apply(h.platform.Invocation(caller), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, e)
}
