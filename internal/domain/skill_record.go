package domain

import (
	"time"

	"github.com/google/uuid"
)

// SkillRecord is the authoritative per-(character, skill) experience
// counter. Experience only ever increases; Level is a cache of
// xp.XPToLevel(Experience) and is recomputed on every mutation.
type SkillRecord struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CharacterID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_record_character_skill;column:character_id" json:"character_id"`
	Skill               Skill     `gorm:"type:text;not null;uniqueIndex:idx_skill_record_character_skill;column:skill" json:"skill"`
	Experience          int64     `gorm:"not null;default:0;column:experience" json:"experience"`
	Level               int       `gorm:"not null;default:1;column:level" json:"level"`
	PendingExternalSync bool      `gorm:"not null;default:false;column:pending_external_sync" json:"pending_external_sync"`
	CreatedAt           time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SkillRecord) TableName() string { return "skill_record" }
