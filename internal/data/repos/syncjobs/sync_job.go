package syncjobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type LedgerSyncJobRepo interface {
	Create(dbc dbctx.Context, jobs []*types.LedgerSyncJob) ([]*types.LedgerSyncJob, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LedgerSyncJob, error)

	// ClaimNextRunnable locks and flips the oldest runnable job to
	// running: queued rows, failed rows under the attempt bound past the
	// retry delay, and running rows whose heartbeat went stale.
	ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.LedgerSyncJob, error)

	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	MarkSucceeded(dbc dbctx.Context, id uuid.UUID) error
	MarkFailed(dbc dbctx.Context, id uuid.UUID, errMsg string) error
	HasRunnableForCharacter(dbc dbctx.Context, characterID uuid.UUID) (bool, error)
}

type ledgerSyncJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLedgerSyncJobRepo(db *gorm.DB, baseLog *logger.Logger) LedgerSyncJobRepo {
	return &ledgerSyncJobRepo{db: db, log: baseLog.With("repo", "LedgerSyncJobRepo")}
}

func (r *ledgerSyncJobRepo) Create(dbc dbctx.Context, jobs []*types.LedgerSyncJob) ([]*types.LedgerSyncJob, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(jobs) == 0 {
		return []*types.LedgerSyncJob{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *ledgerSyncJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LedgerSyncJob, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var job types.LedgerSyncJob
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&job).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ledgerSyncJobRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.LedgerSyncJob, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now()
	retryCutoff := now.Add(-retryDelay)
	staleCutoff := now.Add(-staleRunning)
	var claimed *types.LedgerSyncJob
	err := t.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var job types.LedgerSyncJob
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          status = ?
          OR (
            status = ?
            AND attempts < ?
            AND (last_error_at IS NULL OR last_error_at < ?)
          )
          OR (
            status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, types.SyncJobQueued, types.SyncJobFailed, maxAttempts, retryCutoff, types.SyncJobRunning, staleCutoff).
			Order("created_at ASC").
			Limit(1)
		if err := q.Find(&job).Error; err != nil {
			return err
		}
		if job.ID == uuid.Nil {
			return nil
		}
		nowUTC := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       types.SyncJobRunning,
			"attempts":     gorm.Expr("attempts + 1"),
			"locked_at":    nowUTC,
			"heartbeat_at": nowUTC,
			"updated_at":   nowUTC,
		}
		if err := txx.Model(&types.LedgerSyncJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			return err
		}
		job.Status = types.SyncJobRunning
		job.Attempts++
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *ledgerSyncJobRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.LedgerSyncJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"heartbeat_at": now, "updated_at": now}).Error
}

func (r *ledgerSyncJobRepo) MarkSucceeded(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.LedgerSyncJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     types.SyncJobSucceeded,
			"error":      "",
			"updated_at": now,
		}).Error
}

func (r *ledgerSyncJobRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, errMsg string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.LedgerSyncJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        types.SyncJobFailed,
			"error":         errMsg,
			"last_error_at": now,
			"updated_at":    now,
		}).Error
}

func (r *ledgerSyncJobRepo) HasRunnableForCharacter(dbc dbctx.Context, characterID uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if characterID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.LedgerSyncJob{}).
		Where("character_id = ? AND status IN ?", characterID, []string{types.SyncJobQueued, types.SyncJobRunning}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
