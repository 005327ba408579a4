package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/solforge-games/solforge-backend/internal/data/repos"
	"github.com/solforge-games/solforge-backend/internal/platform/apierr"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

const (
	minActionMultiplier = 0.1
	maxActionMultiplier = 10.0

	// Signed requests outside this window are rejected to keep replayed
	// payloads useless.
	signatureMaxSkew = 60 * time.Second
)

// ActionAward is one game-server report of a completed action.
type ActionAward struct {
	AssetID        string  `json:"assetId"`
	PlayerPDA      string  `json:"playerPda"`
	ActionKey      string  `json:"actionKey"`
	Quantity       int64   `json:"quantity"`
	Multiplier     float64 `json:"multiplier"`
	IdempotencyKey string  `json:"idempotencyKey"`
	SessionID      string  `json:"sessionId"`
	GameMode       string  `json:"gameMode"`
}

// ActionCredentials carries whichever proof the caller supplied. A
// matching API key or a valid signature is sufficient on its own.
type ActionCredentials struct {
	APIKey    string
	Signature string
	Timestamp int64
}

// ActionPolicyService translates game actions into experience awards.
// It owns the action catalog, the game-server auth rules, and the
// ownership check between the claimed player and the stored character.
type ActionPolicyService interface {
	AwardAction(ctx context.Context, award ActionAward, creds ActionCredentials) (*AwardResult, error)
	ListActions() []ActionInfo
}

type actionPolicyService struct {
	log           *logger.Logger
	catalog       ActionCatalog
	characterRepo repos.CharacterRepo
	experience    ExperienceService
	apiKey        string
	hmacSecret    []byte
}

func NewActionPolicyService(
	baseLog *logger.Logger,
	catalog ActionCatalog,
	characterRepo repos.CharacterRepo,
	experience ExperienceService,
	apiKey string,
	hmacSecret string,
) ActionPolicyService {
	return &actionPolicyService{
		log:           baseLog.With("service", "ActionPolicyService"),
		catalog:       catalog,
		characterRepo: characterRepo,
		experience:    experience,
		apiKey:        apiKey,
		hmacSecret:    []byte(hmacSecret),
	}
}

func (s *actionPolicyService) ListActions() []ActionInfo {
	return s.catalog.List()
}

func (s *actionPolicyService) AwardAction(ctx context.Context, award ActionAward, creds ActionCredentials) (*AwardResult, error) {
	if award.AssetID == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("assetId is required"))
	}
	if award.Quantity <= 0 {
		return nil, apierr.InvalidInput(fmt.Errorf("quantity must be positive"))
	}
	spec, ok := s.catalog[award.ActionKey]
	if !ok {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown action %q", award.ActionKey))
	}

	if err := s.authenticate(award, creds); err != nil {
		return nil, err
	}

	character, err := s.characterRepo.GetByAssetID(dbctx.New(ctx), award.AssetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load character: %w", err))
	}
	if character == nil {
		return nil, apierr.NotFound(fmt.Errorf("character %s not found", award.AssetID))
	}
	if award.PlayerPDA != "" && character.OwnerPDA != award.PlayerPDA {
		s.log.Warn("Ownership mismatch on action award",
			"asset_id", award.AssetID,
			"claimed_pda", award.PlayerPDA,
		)
		return nil, apierr.OwnershipMismatch(fmt.Errorf("player does not own character %s", award.AssetID))
	}

	gain := ComputeGain(spec.BaseXP, award.Quantity, award.Multiplier)
	return s.experience.AddSkillXP(ctx, character.ID, spec.Skill, gain, AwardOptions{
		IdempotencyKey: award.IdempotencyKey,
		Source:         "action:" + award.ActionKey,
		SessionID:      award.SessionID,
		GameMode:       award.GameMode,
	})
}

// ComputeGain maps an action to an experience amount. The multiplier is
// clamped so event modifiers cannot zero out or explode an award, and
// any completed action is worth at least one point.
func ComputeGain(baseXP, quantity int64, multiplier float64) int64 {
	if multiplier == 0 {
		multiplier = 1
	}
	if multiplier < minActionMultiplier {
		multiplier = minActionMultiplier
	}
	if multiplier > maxActionMultiplier {
		multiplier = maxActionMultiplier
	}
	gain := int64(math.Floor(float64(baseXP) * float64(quantity) * multiplier))
	if gain < 1 {
		gain = 1
	}
	return gain
}

func (s *actionPolicyService) authenticate(award ActionAward, creds ActionCredentials) error {
	if creds.APIKey != "" && s.apiKey != "" {
		if subtle.ConstantTimeCompare([]byte(creds.APIKey), []byte(s.apiKey)) == 1 {
			return nil
		}
		return apierr.Unauthorized(fmt.Errorf("invalid api key"))
	}
	if creds.Signature != "" {
		return s.verifySignature(award, creds)
	}
	return apierr.Unauthorized(fmt.Errorf("missing credentials"))
}

func (s *actionPolicyService) verifySignature(award ActionAward, creds ActionCredentials) error {
	if len(s.hmacSecret) == 0 {
		return apierr.Configuration(fmt.Errorf("signature auth not configured"))
	}
	skew := time.Since(time.Unix(creds.Timestamp, 0))
	if skew < -signatureMaxSkew || skew > signatureMaxSkew {
		return apierr.Unauthorized(fmt.Errorf("signature timestamp outside window"))
	}
	mac := hmac.New(sha256.New, s.hmacSecret)
	mac.Write([]byte(signingPayload(award, creds.Timestamp)))
	want := mac.Sum(nil)
	got, err := hex.DecodeString(strings.TrimSpace(creds.Signature))
	if err != nil || !hmac.Equal(got, want) {
		return apierr.Unauthorized(fmt.Errorf("invalid signature"))
	}
	return nil
}

// signingPayload is the canonical string both sides sign. Field order
// is part of the contract.
func signingPayload(award ActionAward, timestamp int64) string {
	return strings.Join([]string{
		award.AssetID,
		award.ActionKey,
		strconv.FormatInt(award.Quantity, 10),
		strconv.FormatFloat(award.Multiplier, 'f', -1, 64),
		strconv.FormatInt(timestamp, 10),
	}, "|")
}
