package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SyncJobQueued    = "queued"
	SyncJobRunning   = "running"
	SyncJobSucceeded = "succeeded"
	SyncJobFailed    = "failed"
)

// LedgerSyncJob queues one best-effort push of a character's merged
// state to the on-chain ledger. Payload holds the snapshot assembled by
// the reconciler at enqueue time; the processor refetches the proof,
// never the snapshot.
type LedgerSyncJob struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CharacterID uuid.UUID      `gorm:"type:uuid;not null;index;column:character_id" json:"character_id"`
	Skill       Skill          `gorm:"type:text;not null;column:skill" json:"skill"`
	Status      string         `gorm:"not null;index;column:status" json:"status"`
	Attempts    int            `gorm:"not null;default:0;column:attempts" json:"attempts"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	LockedAt    *time.Time     `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
	LastErrorAt *time.Time     `gorm:"column:last_error_at;index" json:"last_error_at,omitempty"`
	Payload     datatypes.JSON `gorm:"type:jsonb;column:payload" json:"payload"`
	CreatedAt   time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LedgerSyncJob) TableName() string { return "ledger_sync_job" }
