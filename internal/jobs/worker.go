package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solforge-games/solforge-backend/internal/data/repos"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/services"
)

// Worker drains the ledger sync queue when no Temporal cluster is
// configured. Claims go through SKIP LOCKED row locks, so running
// several workers against the same database is safe.
type Worker struct {
	db         *gorm.DB
	log        *logger.Logger
	jobRepo    repos.LedgerSyncJobRepo
	ledgerSync services.LedgerSyncService

	pollInterval      time.Duration
	maxAttempts       int
	retryDelay        time.Duration
	staleRunning      time.Duration
	heartbeatInterval time.Duration
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, jobRepo repos.LedgerSyncJobRepo, ledgerSync services.LedgerSyncService) *Worker {
	return &Worker{
		db:                db,
		log:               baseLog.With("component", "LedgerSyncWorker"),
		jobRepo:           jobRepo,
		ledgerSync:        ledgerSync,
		pollInterval:      1 * time.Second,
		maxAttempts:       5,
		retryDelay:        30 * time.Second,
		staleRunning:      2 * time.Minute,
		heartbeatInterval: 15 * time.Second,
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job, err := w.jobRepo.ClaimNextRunnable(dbctx.New(ctx), w.maxAttempts, w.retryDelay, w.staleRunning)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if job == nil {
					continue
				}
				w.run(ctx, job.ID)
			}
		}
	}()
}

func (w *Worker) run(ctx context.Context, jobID uuid.UUID) {
	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go w.heartbeat(hbCtx, jobID)

	// A panicking push must not take the polling loop down with it; the
	// stale-heartbeat reclaim will retry the job.
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Ledger sync panic", "job_id", jobID, "panic", r)
		}
	}()

	if err := w.ledgerSync.ProcessJob(ctx, jobID); err != nil {
		w.log.Warn("Ledger sync attempt failed", "job_id", jobID, "error", err)
	}
}

func (w *Worker) heartbeat(ctx context.Context, jobID uuid.UUID) {
	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.jobRepo.Heartbeat(dbctx.New(ctx), jobID); err != nil {
				w.log.Warn("Heartbeat failed", "job_id", jobID, "error", err)
			}
		}
	}
}
