package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AwardEvent is the idempotency record for one logical xp grant. The
// unique idempotency key is the dedupe gate: a second insert with the
// same key conflicts and the grant is not re-applied. AdditionalData is
// an opaque passthrough bag kept for diagnostics only.
type AwardEvent struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IdempotencyKey string         `gorm:"uniqueIndex;not null;column:idempotency_key" json:"idempotency_key"`
	CharacterID    uuid.UUID      `gorm:"type:uuid;not null;index;column:character_id" json:"character_id"`
	Skill          Skill          `gorm:"type:text;not null;column:skill" json:"skill"`
	Amount         int64          `gorm:"not null;column:amount" json:"amount"`
	Source         string         `gorm:"column:source" json:"source,omitempty"`
	SessionID      string         `gorm:"column:session_id" json:"session_id,omitempty"`
	GameMode       string         `gorm:"column:game_mode" json:"game_mode,omitempty"`
	AdditionalData datatypes.JSON `gorm:"type:jsonb;column:additional_data" json:"additional_data,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (AwardEvent) TableName() string { return "award_event" }
