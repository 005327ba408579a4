package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solforge-games/solforge-backend/internal/data/repos"
	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/http/response"
	"github.com/solforge-games/solforge-backend/internal/platform/apierr"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/services"
)

type CharactersHandler struct {
	characterRepo repos.CharacterRepo
	skillRepo     repos.SkillRecordRepo
	jobRepo       repos.LedgerSyncJobRepo
	experience    services.ExperienceService
}

func NewCharactersHandler(characterRepo repos.CharacterRepo, skillRepo repos.SkillRecordRepo, jobRepo repos.LedgerSyncJobRepo, experience services.ExperienceService) *CharactersHandler {
	return &CharactersHandler{
		characterRepo: characterRepo,
		skillRepo:     skillRepo,
		jobRepo:       jobRepo,
		experience:    experience,
	}
}

// GET /api/characters/:assetId/summary
func (h *CharactersHandler) GetSummary(c *gin.Context) {
	assetID := c.Param("assetId")
	dbc := dbctx.New(c.Request.Context())
	character, err := h.characterRepo.GetByAssetID(dbc, assetID)
	if err != nil {
		response.RespondAPIError(c, apierr.Persistence(err))
		return
	}
	if character == nil {
		response.RespondAPIError(c, apierr.NotFound(fmt.Errorf("character %q not found", assetID)))
		return
	}

	records, err := h.skillRepo.GetAllByCharacter(dbc, character.ID)
	if err != nil {
		response.RespondAPIError(c, apierr.Persistence(err))
		return
	}
	pending := make([]string, 0)
	for _, rec := range records {
		if rec.PendingExternalSync {
			pending = append(pending, rec.Skill.String())
		}
	}

	// A queued or retrying push means the on-chain display may still lag
	// the values below.
	syncQueued, err := h.jobRepo.HasRunnableForCharacter(dbc, character.ID)
	if err != nil {
		response.RespondAPIError(c, apierr.Persistence(err))
		return
	}

	response.RespondOK(c, gin.H{
		"assetId":     character.AssetID,
		"name":        character.Name,
		"ownerPda":    character.OwnerPDA,
		"combatLevel": character.CombatLevel,
		"totalLevel":  character.TotalLevel,
		"pendingSync": pending,
		"syncQueued":  syncQueued,
	})
}

// POST /api/characters/add-skill-xp
// Game-server path: resolves by asset id and optionally enforces the
// claimed owner before awarding.
func (h *CharactersHandler) AddSkillXP(c *gin.Context) {
	var req struct {
		AssetID        string                 `json:"assetId"`
		SkillName      string                 `json:"skillName"`
		XPGain         int64                  `json:"xpGain"`
		PlayerPDA      string                 `json:"playerPda"`
		IdempotencyKey string                 `json:"idempotencyKey"`
		Source         string                 `json:"source"`
		SessionID      string                 `json:"sessionId"`
		GameMode       string                 `json:"gameMode"`
		AdditionalData map[string]interface{} `json:"additionalData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}

	dbc := dbctx.New(c.Request.Context())
	character, err := h.characterRepo.GetByAssetID(dbc, req.AssetID)
	if err != nil {
		response.RespondAPIError(c, apierr.Persistence(err))
		return
	}
	if character == nil {
		response.RespondAPIError(c, apierr.NotFound(fmt.Errorf("character %q not found", req.AssetID)))
		return
	}
	if req.PlayerPDA != "" && character.OwnerPDA != req.PlayerPDA {
		response.RespondAPIError(c, apierr.OwnershipMismatch(fmt.Errorf("player does not own character %s", req.AssetID)))
		return
	}

	result, err := h.experience.AddSkillXP(c.Request.Context(), character.ID, types.Skill(req.SkillName), req.XPGain, services.AwardOptions{
		IdempotencyKey: req.IdempotencyKey,
		Source:         req.Source,
		SessionID:      req.SessionID,
		GameMode:       req.GameMode,
		AdditionalData: req.AdditionalData,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}
