package admin

import (
	"net/http"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/handler"
	"github.com/attaboy/puzzlequest/internal/service"
	"github.com/go-chi/chi/v5"
)

// PlatformAdminHandler handles initialization, platform config, verifiers and
// reward distribution.
type PlatformAdminHandler struct {
	platform *service.Platform
	defaults domain.InitOptions
}

// NewPlatformAdminHandler creates a new PlatformAdminHandler. defaults apply when
// the initialize request carries no body.
func NewPlatformAdminHandler(platform *service.Platform, defaults domain.InitOptions) *PlatformAdminHandler {
	return &PlatformAdminHandler{platform: platform, defaults: defaults}
}

// Initialize handles POST /admin/initialize. The caller becomes the platform admin.
func (h *PlatformAdminHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	opts := h.defaults
	if r.ContentLength > 0 {
		if err := handler.DecodeJSON(r, &opts); err != nil {
			handler.RespondError(w, domain.ErrValidation("invalid request body"))
			return
		}
	}

	cfg, err := h.platform.Initialize(r.Context(), h.platform.Invocation(caller), caller, opts)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, cfg)
}

// GetConfig handles GET /admin/config.
func (h *PlatformAdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.platform.Config(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}

// SetPause handles PATCH /admin/config/pause.
func (h *PlatformAdminHandler) SetPause(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		Paused bool `json:"paused"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cfg, err := h.platform.SetPaused(r.Context(), h.platform.Invocation(caller), input.Paused)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}

// SetLeaderboard handles PATCH /admin/config/leaderboard.
func (h *PlatformAdminHandler) SetLeaderboard(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		Enabled bool                     `json:"enabled"`
		Policy  domain.LeaderboardPolicy `json:"policy"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cfg, err := h.platform.SetLeaderboard(r.Context(), h.platform.Invocation(caller), input.Enabled, input.Policy)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}

// SetCooldown handles PATCH /admin/config/cooldown.
func (h *PlatformAdminHandler) SetCooldown(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		Secs   uint64                `json:"secs"`
		Policy domain.CooldownPolicy `json:"policy"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cfg, err := h.platform.SetCooldown(r.Context(), h.platform.Invocation(caller), input.Secs, input.Policy)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}

// AddVerifier handles POST /admin/verifiers/{addr}.
func (h *PlatformAdminHandler) AddVerifier(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	addr := domain.Address(chi.URLParam(r, "addr"))
	if err := h.platform.AddVerifier(r.Context(), h.platform.Invocation(caller), addr); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveVerifier handles DELETE /admin/verifiers/{addr}.
func (h *PlatformAdminHandler) RemoveVerifier(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	addr := domain.Address(chi.URLParam(r, "addr"))
	if err := h.platform.RemoveVerifier(r.Context(), h.platform.Invocation(caller), addr); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// DistributeReward handles POST /admin/rewards.
func (h *PlatformAdminHandler) DistributeReward(w http.ResponseWriter, r *http.Request) {
	caller, err := handler.Caller(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		To     domain.Address `json:"to"`
		Amount domain.Amount  `json:"amount"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	entry, err := h.platform.DistributeReward(r.Context(), h.platform.Invocation(caller), input.To, input.Amount)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, entry)
}

// Audit handles GET /admin/audit/{addr}.
func (h *PlatformAdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	res, err := h.platform.Audit(r.Context(), domain.Address(chi.URLParam(r, "addr")))
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("audit", err))
		return
	}
	handler.RespondJSON(w, http.StatusOK, res)
}
