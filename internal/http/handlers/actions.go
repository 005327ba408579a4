package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solforge-games/solforge-backend/internal/http/response"
	"github.com/solforge-games/solforge-backend/internal/platform/apierr"
	"github.com/solforge-games/solforge-backend/internal/services"
)

type ActionsHandler struct {
	actions services.ActionPolicyService
}

func NewActionsHandler(actions services.ActionPolicyService) *ActionsHandler {
	return &ActionsHandler{actions: actions}
}

// GET /api/characters/xp-actions/list
func (h *ActionsHandler) ListActions(c *gin.Context) {
	response.RespondOK(c, gin.H{"actions": h.actions.ListActions()})
}

// POST /api/characters/award-action
// Credentials ride in headers: either X-Api-Key, or X-Xp-Signature plus
// X-Xp-Timestamp for the HMAC path. The service decides which applies.
func (h *ActionsHandler) AwardAction(c *gin.Context) {
	var req struct {
		AssetID              string  `json:"assetId"`
		ActionKey            string  `json:"actionKey"`
		Quantity             int64   `json:"quantity"`
		DifficultyMultiplier float64 `json:"difficultyMultiplier"`
		PlayerPDA            string  `json:"playerPda"`
		IdempotencyKey       string  `json:"idempotencyKey"`
		SessionID            string  `json:"sessionId"`
		GameMode             string  `json:"gameMode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	timestamp, _ := strconv.ParseInt(strings.TrimSpace(c.GetHeader("X-Xp-Timestamp")), 10, 64)
	result, err := h.actions.AwardAction(c.Request.Context(), services.ActionAward{
		AssetID:        req.AssetID,
		PlayerPDA:      req.PlayerPDA,
		ActionKey:      req.ActionKey,
		Quantity:       req.Quantity,
		Multiplier:     req.DifficultyMultiplier,
		IdempotencyKey: req.IdempotencyKey,
		SessionID:      req.SessionID,
		GameMode:       req.GameMode,
	}, services.ActionCredentials{
		APIKey:    strings.TrimSpace(c.GetHeader("X-Api-Key")),
		Signature: strings.TrimSpace(c.GetHeader("X-Xp-Signature")),
		Timestamp: timestamp,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}
