package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/solforge-games/solforge-backend/internal/clients/solana"
	"github.com/solforge-games/solforge-backend/internal/data/repos"
	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

// SyncDispatcher hands a queued job to whatever executes it. The
// Temporal-backed dispatcher starts a workflow; when no dispatcher is
// configured the polling worker picks the row up instead.
type SyncDispatcher interface {
	Dispatch(ctx context.Context, jobID uuid.UUID) error
}

// LedgerSyncService owns the queue of on-chain pushes and the push
// itself. EnqueuePush is called inline after a level-up; ProcessJob is
// called by the worker or a Temporal activity.
type LedgerSyncService interface {
	EnqueuePush(ctx context.Context, characterID uuid.UUID, skill types.Skill, state solana.CharacterState) (*types.LedgerSyncJob, error)
	ProcessJob(ctx context.Context, jobID uuid.UUID) error
}

type ledgerSyncService struct {
	db         *gorm.DB
	log        *logger.Logger
	jobRepo    repos.LedgerSyncJobRepo
	skillRepo  repos.SkillRecordRepo
	ledger     solana.LedgerClient
	dispatcher SyncDispatcher
}

func NewLedgerSyncService(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobRepo repos.LedgerSyncJobRepo,
	skillRepo repos.SkillRecordRepo,
	ledger solana.LedgerClient,
	dispatcher SyncDispatcher,
) LedgerSyncService {
	return &ledgerSyncService{
		db:         db,
		log:        baseLog.With("service", "LedgerSyncService"),
		jobRepo:    jobRepo,
		skillRepo:  skillRepo,
		ledger:     ledger,
		dispatcher: dispatcher,
	}
}

func (s *ledgerSyncService) EnqueuePush(ctx context.Context, characterID uuid.UUID, skill types.Skill, state solana.CharacterState) (*types.LedgerSyncJob, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal character state: %w", err)
	}
	job := &types.LedgerSyncJob{
		CharacterID: characterID,
		Skill:       skill,
		Status:      types.SyncJobQueued,
		Payload:     datatypes.JSON(raw),
	}
	created, err := s.jobRepo.Create(dbctx.New(ctx), []*types.LedgerSyncJob{job})
	if err != nil {
		return nil, fmt.Errorf("enqueue ledger sync: %w", err)
	}
	job = created[0]
	s.log.Info("Enqueued ledger sync",
		"job_id", job.ID,
		"character_id", characterID,
		"skill", skill,
	)

	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, job.ID); err != nil {
			// The row stays queued, so the polling worker will still get
			// to it.
			s.log.Warn("Dispatch failed, leaving job for worker", "job_id", job.ID, "error", err)
		}
	}
	return job, nil
}

func (s *ledgerSyncService) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.jobRepo.GetByID(dbctx.New(ctx), jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	if job.Status == types.SyncJobSucceeded {
		return nil
	}
	if s.ledger == nil {
		s.fail(ctx, job.ID, "ledger client not configured")
		return fmt.Errorf("ledger client not configured")
	}

	var state solana.CharacterState
	if err := json.Unmarshal(job.Payload, &state); err != nil {
		s.fail(ctx, job.ID, fmt.Sprintf("bad payload: %v", err))
		return fmt.Errorf("unmarshal payload for job %s: %w", jobID, err)
	}

	if err := s.ledger.PushCharacterState(ctx, state); err != nil {
		s.fail(ctx, job.ID, err.Error())
		return fmt.Errorf("push character state: %w", err)
	}

	if err := s.jobRepo.MarkSucceeded(dbctx.New(ctx), job.ID); err != nil {
		return fmt.Errorf("mark job %s succeeded: %w", jobID, err)
	}
	if err := s.skillRepo.ClearPendingSync(dbctx.New(ctx), job.CharacterID); err != nil {
		s.log.Error("Failed to clear pending sync flags", "character_id", job.CharacterID, "error", err)
	}
	s.log.Info("Ledger push succeeded", "job_id", job.ID, "asset_id", state.AssetID)
	return nil
}

func (s *ledgerSyncService) fail(ctx context.Context, jobID uuid.UUID, msg string) {
	if err := s.jobRepo.MarkFailed(dbctx.New(ctx), jobID, msg); err != nil {
		s.log.Error("Failed to mark job failed", "job_id", jobID, "error", err)
	}
}
