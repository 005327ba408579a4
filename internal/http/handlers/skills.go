package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solforge-games/solforge-backend/internal/data/repos"
	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/http/response"
	"github.com/solforge-games/solforge-backend/internal/platform/apierr"
	"github.com/solforge-games/solforge-backend/internal/platform/ctxutil"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/services"
	"github.com/solforge-games/solforge-backend/internal/xp"
)

type SkillsHandler struct {
	experience    services.ExperienceService
	characterRepo repos.CharacterRepo
}

func NewSkillsHandler(experience services.ExperienceService, characterRepo repos.CharacterRepo) *SkillsHandler {
	return &SkillsHandler{experience: experience, characterRepo: characterRepo}
}

// POST /api/skills/add-experience
// body: { "characterRef": "<uuid or asset id>", "skill": "mining",
//         "experienceGain": 120, "source"?, "sessionId"?, "gameMode"?,
//         "additionalData"? }
func (h *SkillsHandler) AddExperience(c *gin.Context) {
	var req struct {
		CharacterRef   string                 `json:"characterRef"`
		Skill          string                 `json:"skill"`
		ExperienceGain int64                  `json:"experienceGain"`
		Source         string                 `json:"source"`
		SessionID      string                 `json:"sessionId"`
		GameMode       string                 `json:"gameMode"`
		AdditionalData map[string]interface{} `json:"additionalData"`
		IdempotencyKey string                 `json:"idempotencyKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}

	character, err := h.resolveCharacter(c, req.CharacterRef)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.requireOwnership(c, character); err != nil {
		response.RespondAPIError(c, err)
		return
	}

	idemKey := req.IdempotencyKey
	if idemKey == "" {
		idemKey = c.GetHeader("Idempotency-Key")
	}
	result, err := h.experience.AddSkillXP(c.Request.Context(), character.ID, types.Skill(req.Skill), req.ExperienceGain, services.AwardOptions{
		IdempotencyKey: idemKey,
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

// GET /api/characters/:assetId/skills
func (h *SkillsHandler) GetCharacterSkills(c *gin.Context) {
	character, err := h.resolveCharacter(c, c.Param("assetId"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.requireOwnership(c, character); err != nil {
		response.RespondAPIError(c, err)
		return
	}

	states, err := h.experience.GetAllSkillXP(c.Request.Context(), character.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	skills := make(map[string]xp.Progress, len(states))
	for skill, st := range states {
		skills[skill.String()] = xp.ComputeProgress(st.Experience)
	}
	response.RespondOK(c, gin.H{
		"assetId": character.AssetID,
		"skills":  skills,
	})
}

func (h *SkillsHandler) resolveCharacter(c *gin.Context, ref string) (*types.Character, error) {
	if ref == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("missing character reference"))
	}
	dbc := dbctx.New(c.Request.Context())
	if id, err := uuid.Parse(ref); err == nil {
		character, gerr := h.characterRepo.GetByID(dbc, id)
		if gerr != nil {
			return nil, apierr.Persistence(gerr)
		}
		if character != nil {
			return character, nil
		}
	}
	character, err := h.characterRepo.GetByAssetID(dbc, ref)
	if err != nil {
		return nil, apierr.Persistence(err)
	}
	if character == nil {
		return nil, apierr.NotFound(fmt.Errorf("character %q not found", ref))
	}
	return character, nil
}

// Session callers may only touch characters their wallet owns. Game
// servers, admitted by API key, bypass this check.
func (h *SkillsHandler) requireOwnership(c *gin.Context, character *types.Character) error {
	cd := ctxutil.GetCallerData(c.Request.Context())
	if cd == nil {
		return apierr.Unauthorized(fmt.Errorf("missing caller identity"))
	}
	if cd.GameServer {
		return nil
	}
	if cd.Wallet == "" || character.OwnerPDA != cd.Wallet {
		return apierr.OwnershipMismatch(fmt.Errorf("wallet does not own character %s", character.AssetID))
	}
	return nil
}
