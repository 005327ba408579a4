package characters

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type CharacterRepo interface {
	Create(dbc dbctx.Context, rows []*types.Character) ([]*types.Character, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Character, error)
	GetByAssetID(dbc dbctx.Context, assetID string) (*types.Character, error)
	UpdateAggregate(dbc dbctx.Context, id uuid.UUID, combatLevel, totalLevel int) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type characterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterRepo(db *gorm.DB, baseLog *logger.Logger) CharacterRepo {
	return &characterRepo{db: db, log: baseLog.With("repo", "CharacterRepo")}
}

func (r *characterRepo) Create(dbc dbctx.Context, rows []*types.Character) ([]*types.Character, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Character{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *characterRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Character, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Character
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *characterRepo) GetByAssetID(dbc dbctx.Context, assetID string) (*types.Character, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if assetID == "" {
		return nil, nil
	}
	var row types.Character
	err := t.WithContext(dbc.Ctx).Where("asset_id = ?", assetID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *characterRepo) UpdateAggregate(dbc dbctx.Context, id uuid.UUID, combatLevel, totalLevel int) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"combat_level": combatLevel,
		"total_level":  totalLevel,
	})
}

func (r *characterRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.Character{}).
		Where("id = ?", id).
		Updates(updates).Error
}
