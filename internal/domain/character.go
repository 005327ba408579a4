package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Character mirrors the durable row for one compressed-NFT character.
// CombatLevel/TotalLevel are display aggregates recomputed from the
// skill records on every level change, never treated as ground truth.
type Character struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssetID     string         `gorm:"uniqueIndex;not null;column:asset_id" json:"asset_id"`
	OwnerPDA    string         `gorm:"index;not null;column:owner_pda" json:"owner_pda"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	CombatLevel int            `gorm:"not null;default:1;column:combat_level" json:"combat_level"`
	TotalLevel  int            `gorm:"not null;default:17;column:total_level" json:"total_level"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Character) TableName() string { return "character" }
