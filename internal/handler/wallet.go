package handler

import (
	"net/http"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/service"
)

// WalletHandler handles token balance and spend endpoints.
type WalletHandler struct {
	platform *service.Platform
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(platform *service.Platform) *WalletHandler {
	return &WalletHandler{platform: platform}
}

// balanceResponse is the shape of GET /wallet/balance.
type balanceResponse struct {
	Account domain.Address `json:"account"`
	Balance domain.Amount  `json:"balance"`
}

// GetBalance handles GET /wallet/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	bal, err := h.platform.Balance(r.Context(), player)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, balanceResponse{Account: player, Balance: bal})
}

type spendRequest struct {
	Amount    domain.Amount `json:"amount"`
	FeatureID string        `json:"feature_id"`
}

// Spend handles POST /wallet/spend.
func (h *WalletHandler) Spend(w http.ResponseWriter, r *http.Request) {
	player, err := Caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req spendRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	if req.FeatureID == "" {
		RespondError(w, domain.ErrValidation("feature_id is required"))
		return
	}

	entry, err := h.platform.SpendTokens(r.Context(), h.platform.Invocation(player), player, req.Amount, req.FeatureID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entry)
}
