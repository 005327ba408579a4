package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/solforge-games/solforge-backend/internal/domain"
)

func SeedCharacter(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerPDA string) *types.Character {
	tb.Helper()
	c := &types.Character{
		ID:          uuid.New(),
		AssetID:     fmt.Sprintf("asset-%s", uuid.NewString()),
		OwnerPDA:    ownerPDA,
		Name:        "Testborn",
		CombatLevel: 1,
		TotalLevel:  17,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed character: %v", err)
	}
	return c
}

func SeedSkillRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, characterID uuid.UUID, skill types.Skill, experience int64, level int) *types.SkillRecord {
	tb.Helper()
	r := &types.SkillRecord{
		ID:          uuid.New(),
		CharacterID: characterID,
		Skill:       skill,
		Experience:  experience,
		Level:       level,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed skill record: %v", err)
	}
	return r
}
