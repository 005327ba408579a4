package skills

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type SkillRecordRepo interface {
	GetByCharacterAndSkill(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill) (*types.SkillRecord, error)
	GetAllByCharacter(dbc dbctx.Context, characterID uuid.UUID) ([]*types.SkillRecord, error)

	// IncrementExperience applies the atomic upsert-increment and returns
	// the post-increment row. The returned Level column is whatever was
	// stored before this write; the caller recomputes and persists it.
	IncrementExperience(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill, amount int64) (*types.SkillRecord, error)

	UpdateLevel(dbc dbctx.Context, id uuid.UUID, level int, pendingExternalSync bool) error
	ClearPendingSync(dbc dbctx.Context, characterID uuid.UUID) error
}

type skillRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRecordRepo(db *gorm.DB, baseLog *logger.Logger) SkillRecordRepo {
	return &skillRecordRepo{db: db, log: baseLog.With("repo", "SkillRecordRepo")}
}

func (r *skillRecordRepo) GetByCharacterAndSkill(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill) (*types.SkillRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if characterID == uuid.Nil {
		return nil, nil
	}
	var row types.SkillRecord
	err := t.WithContext(dbc.Ctx).
		Where("character_id = ? AND skill = ?", characterID, skill).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *skillRecordRepo) GetAllByCharacter(dbc dbctx.Context, characterID uuid.UUID) ([]*types.SkillRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SkillRecord
	if characterID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("character_id = ?", characterID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillRecordRepo) IncrementExperience(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill, amount int64) (*types.SkillRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.SkillRecord
	// Single-statement increment: concurrent grants to the same skill
	// serialize on the row and both land as a sum, never a lost update.
	err := t.WithContext(dbc.Ctx).Raw(`
		INSERT INTO skill_record (id, character_id, skill, experience, level, pending_external_sync, created_at, updated_at)
		VALUES (uuid_generate_v4(), ?, ?, ?, 1, false, now(), now())
		ON CONFLICT (character_id, skill)
		DO UPDATE SET experience = skill_record.experience + EXCLUDED.experience, updated_at = now()
		RETURNING id, character_id, skill, experience, level, pending_external_sync, created_at, updated_at
	`, characterID, skill, amount).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *skillRecordRepo) UpdateLevel(dbc dbctx.Context, id uuid.UUID, level int, pendingExternalSync bool) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.SkillRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"level":                 level,
			"pending_external_sync": pendingExternalSync,
			"updated_at":            time.Now().UTC(),
		}).Error
}

func (r *skillRecordRepo) ClearPendingSync(dbc dbctx.Context, characterID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.SkillRecord{}).
		Where("character_id = ? AND pending_external_sync = true", characterID).
		Updates(map[string]interface{}{
			"pending_external_sync": false,
			"updated_at":            time.Now().UTC(),
		}).Error
}
