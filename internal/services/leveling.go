package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	redisclient "github.com/solforge-games/solforge-backend/internal/clients/redis"
	"github.com/solforge-games/solforge-backend/internal/clients/solana"
	"github.com/solforge-games/solforge-backend/internal/data/repos"
	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/xp"
)

// LevelingReconciler keeps the on-chain display ledger eventually
// consistent with the authoritative experience ledger. Invoked only
// after the award transaction has committed; nothing here may fail the
// original award.
type LevelingReconciler interface {
	OnLevelUp(ctx context.Context, characterID uuid.UUID, skill types.Skill, oldLevel, newLevel int) error
}

type levelingReconciler struct {
	db            *gorm.DB
	log           *logger.Logger
	characterRepo repos.CharacterRepo
	skillRepo     repos.SkillRecordRepo
	ledgerSync    LedgerSyncService
	levelUpBus    redisclient.LevelUpBus
}

func NewLevelingReconciler(
	db *gorm.DB,
	baseLog *logger.Logger,
	characterRepo repos.CharacterRepo,
	skillRepo repos.SkillRecordRepo,
	ledgerSync LedgerSyncService,
	levelUpBus redisclient.LevelUpBus,
) LevelingReconciler {
	return &levelingReconciler{
		db:            db,
		log:           baseLog.With("service", "LevelingReconciler"),
		characterRepo: characterRepo,
		skillRepo:     skillRepo,
		ledgerSync:    ledgerSync,
		levelUpBus:    levelUpBus,
	}
}

func (s *levelingReconciler) OnLevelUp(ctx context.Context, characterID uuid.UUID, skill types.Skill, oldLevel, newLevel int) error {
	var (
		character *types.Character
		records   []*types.SkillRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		character, err = s.characterRepo.GetByID(dbctx.New(gctx), characterID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.skillRepo.GetAllByCharacter(dbctx.New(gctx), characterID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load character state: %w", err)
	}
	if character == nil {
		return fmt.Errorf("character %s not found", characterID)
	}

	// Full snapshot: the external ledger stores every skill, so a
	// partial update would silently regress the others.
	levels := make(map[types.Skill]int, len(types.AllSkills))
	for _, sk := range types.AllSkills {
		levels[sk] = 1
	}
	for _, rec := range records {
		levels[rec.Skill] = xp.XPToLevel(rec.Experience)
	}
	// Defensive merge: never let a stale or out-of-order write regress a
	// level another concurrent path already advanced further.
	if levels[skill] < newLevel {
		levels[skill] = newLevel
	}

	combatLevel := xp.CombatLevel(xp.CombatLevels{
		Attack:     levels[types.SkillAttack],
		Strength:   levels[types.SkillStrength],
		Defense:    levels[types.SkillDefense],
		Vitality:   levels[types.SkillVitality],
		Magic:      levels[types.SkillMagic],
		Projectile: levels[types.SkillProjectile],
	})
	allLevels := make([]int, 0, len(types.AllSkills))
	for _, sk := range types.AllSkills {
		allLevels = append(allLevels, levels[sk])
	}
	totalLevel := xp.TotalLevel(allLevels)

	// Persist the merged aggregate first so reads are consistent even
	// before the on-chain push lands.
	if err := s.characterRepo.UpdateAggregate(dbctx.New(ctx), characterID, combatLevel, totalLevel); err != nil {
		return fmt.Errorf("persist aggregate: %w", err)
	}

	skillLevels := make(map[string]int, len(levels))
	for sk, lvl := range levels {
		skillLevels[sk.String()] = lvl
	}
	state := solana.CharacterState{
		AssetID:     character.AssetID,
		Name:        character.Name,
		OwnerPDA:    character.OwnerPDA,
		CombatLevel: combatLevel,
		TotalLevel:  totalLevel,
		SkillLevels: skillLevels,
	}
	if s.ledgerSync != nil {
		if _, err := s.ledgerSync.EnqueuePush(ctx, characterID, skill, state); err != nil {
			s.log.Error("Failed to enqueue ledger push",
				"character_id", characterID,
				"asset_id", character.AssetID,
				"error", err,
			)
		}
	}

	if s.levelUpBus != nil {
		ev := redisclient.LevelUpEvent{
			AssetID:     character.AssetID,
			Skill:       skill.String(),
			OldLevel:    oldLevel,
			NewLevel:    newLevel,
			CombatLevel: combatLevel,
			TotalLevel:  totalLevel,
			OccurredAt:  time.Now().UTC(),
		}
		if err := s.levelUpBus.Publish(ctx, ev); err != nil {
			s.log.Warn("Level-up publish failed", "asset_id", character.AssetID, "error", err)
		}
	}

	return nil
}
