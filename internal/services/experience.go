package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/solforge-games/solforge-backend/internal/data/repos"
	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/apierr"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/xp"
)

// AwardResult is the player-facing outcome of one xp grant.
type AwardResult struct {
	CharacterID       uuid.UUID   `json:"characterId"`
	Skill             types.Skill `json:"skill"`
	Experience        int64       `json:"experience"`
	Level             int         `json:"level"`
	LeveledUp         bool        `json:"leveledUp"`
	XPForCurrentLevel int64       `json:"xpForCurrentLevel"`
	XPForNextLevel    int64       `json:"xpForNextLevel"`
	ProgressPct       float64     `json:"progressPct"`
}

// AwardOptions carries the optional request metadata attached to the
// idempotency/audit record. AdditionalData is never interpreted here.
type AwardOptions struct {
	IdempotencyKey string
	Source         string
	SessionID      string
	GameMode       string
	AdditionalData map[string]interface{}
}

// SkillState is one entry in the full per-character skill map.
type SkillState struct {
	Experience int64 `json:"experience"`
	Level      int   `json:"level"`
}

type ExperienceService interface {
	// AddSkillXP is the single mutation path for skill experience:
	// validate, clamp, dedupe on the idempotency key, atomically
	// increment, recompute the level, and hand level-ups to the
	// reconciler without letting its failures fail the award.
	AddSkillXP(ctx context.Context, characterID uuid.UUID, skill types.Skill, experienceGain int64, opts AwardOptions) (*AwardResult, error)

	// GetAllSkillXP returns all seventeen skills, absent ones at
	// {0, 1}. Levels are recomputed from stored experience, never read
	// from the cached column.
	GetAllSkillXP(ctx context.Context, characterID uuid.UUID) (map[types.Skill]SkillState, error)
}

type experienceService struct {
	db         *gorm.DB
	log        *logger.Logger
	skillRepo  repos.SkillRecordRepo
	awardRepo  repos.AwardEventRepo
	reconciler LevelingReconciler
	maxGain    int64
}

func NewExperienceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	skillRepo repos.SkillRecordRepo,
	awardRepo repos.AwardEventRepo,
	reconciler LevelingReconciler,
	maxGain int64,
) ExperienceService {
	return &experienceService{
		db:         db,
		log:        baseLog.With("service", "ExperienceService"),
		skillRepo:  skillRepo,
		awardRepo:  awardRepo,
		reconciler: reconciler,
		maxGain:    maxGain,
	}
}

func (s *experienceService) AddSkillXP(ctx context.Context, characterID uuid.UUID, skill types.Skill, experienceGain int64, opts AwardOptions) (*AwardResult, error) {
	if characterID == uuid.Nil {
		return nil, apierr.InvalidInput(fmt.Errorf("missing character id"))
	}
	if !types.ValidSkill(skill) {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown skill %q", skill))
	}
	if experienceGain <= 0 {
		return nil, apierr.InvalidInput(fmt.Errorf("experience gain must be positive"))
	}
	if s.db == nil {
		return nil, apierr.Configuration(fmt.Errorf("durable store not configured"))
	}

	if experienceGain > s.maxGain {
		s.log.Warn("Experience gain clamped",
			"character_id", characterID,
			"skill", skill,
			"requested", experienceGain,
			"applied", s.maxGain,
		)
		experienceGain = s.maxGain
	}

	var result *AwardResult
	var oldLevel int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.NewTx(ctx, tx)

		if opts.IdempotencyKey != "" {
			ev := &types.AwardEvent{
				ID:             uuid.New(),
				IdempotencyKey: opts.IdempotencyKey,
				CharacterID:    characterID,
				Skill:          skill,
				Amount:         experienceGain,
				Source:         opts.Source,
				SessionID:      opts.SessionID,
				GameMode:       opts.GameMode,
			}
			if len(opts.AdditionalData) > 0 {
				raw, err := json.Marshal(opts.AdditionalData)
				if err == nil {
					ev.AdditionalData = datatypes.JSON(raw)
				}
			}
			if err := s.awardRepo.Insert(dbc, ev); err != nil {
				if errors.Is(err, repos.ErrDuplicateAward) {
					// Already applied: observe current state, change nothing.
					current, gerr := s.skillRepo.GetByCharacterAndSkill(dbc, characterID, skill)
					if gerr != nil {
						return apierr.Persistence(gerr)
					}
					var exp int64
					if current != nil {
						exp = current.Experience
					}
					result = buildAwardResult(characterID, skill, exp, false)
					return nil
				}
				return apierr.Persistence(err)
			}
		}

		row, err := s.skillRepo.IncrementExperience(dbc, characterID, skill, experienceGain)
		if err != nil {
			return apierr.Persistence(err)
		}

		oldLevel = row.Level
		newLevel := xp.XPToLevel(row.Experience)
		if newLevel != oldLevel {
			// Only upward transitions flag an external sync; a recompute
			// that corrects a stale lower stored level is persisted quietly.
			if err := s.skillRepo.UpdateLevel(dbc, row.ID, newLevel, newLevel > oldLevel); err != nil {
				return apierr.Persistence(err)
			}
		}

		result = buildAwardResult(characterID, skill, row.Experience, newLevel > oldLevel)
		return nil
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apierr.Persistence(err)
	}

	if result.LeveledUp && s.reconciler != nil {
		// Committed; everything past this point is best-effort and must
		// never make the caller believe the award failed.
		if rerr := s.reconciler.OnLevelUp(ctx, characterID, skill, oldLevel, result.Level); rerr != nil {
			s.log.Error("Level-up reconciliation failed",
				"character_id", characterID,
				"skill", skill,
				"new_level", result.Level,
				"error", rerr,
			)
		}
	}

	return result, nil
}

func (s *experienceService) GetAllSkillXP(ctx context.Context, characterID uuid.UUID) (map[types.Skill]SkillState, error) {
	if characterID == uuid.Nil {
		return nil, apierr.InvalidInput(fmt.Errorf("missing character id"))
	}
	if s.db == nil {
		return nil, apierr.Configuration(fmt.Errorf("durable store not configured"))
	}

	rows, err := s.skillRepo.GetAllByCharacter(dbctx.New(ctx), characterID)
	if err != nil {
		return nil, apierr.Persistence(err)
	}

	out := make(map[types.Skill]SkillState, len(types.AllSkills))
	for _, skill := range types.AllSkills {
		out[skill] = SkillState{Experience: 0, Level: 1}
	}
	for _, row := range rows {
		out[row.Skill] = SkillState{
			Experience: row.Experience,
			Level:      xp.XPToLevel(row.Experience),
		}
	}
	return out, nil
}

func buildAwardResult(characterID uuid.UUID, skill types.Skill, experience int64, leveledUp bool) *AwardResult {
	p := xp.ComputeProgress(experience)
	return &AwardResult{
		CharacterID:       characterID,
		Skill:             skill,
		Experience:        experience,
		Level:             p.Level,
		LeveledUp:         leveledUp,
		XPForCurrentLevel: p.XPForCurrentLevel,
		XPForNextLevel:    p.XPForNextLevel,
		ProgressPct:       p.ProgressPct,
	}
}
