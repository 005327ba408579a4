package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/solforge-games/solforge-backend/internal/jobs"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/services"
	"github.com/solforge-games/solforge-backend/internal/temporalx"
)

type Services struct {
	Catalog    services.ActionCatalog
	Experience services.ExperienceService
	Actions    services.ActionPolicyService
	Reconciler services.LevelingReconciler
	LedgerSync services.LedgerSyncService

	SyncWorker *jobs.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := services.LoadActionCatalog(cfg.ActionCatalogPath)
	if err != nil {
		return Services{}, fmt.Errorf("load action catalog: %w", err)
	}

	dispatcher := temporalx.NewDispatcher(log, c.Temporal)
	ledgerSync := services.NewLedgerSyncService(db, log, r.LedgerSyncJob, r.SkillRecord, c.Ledger, dispatcher)
	reconciler := services.NewLevelingReconciler(db, log, r.Character, r.SkillRecord, ledgerSync, c.LevelUpBus)
	experience := services.NewExperienceService(db, log, r.SkillRecord, r.AwardEvent, reconciler, cfg.MaxGainPerAward)
	actions := services.NewActionPolicyService(log, catalog, r.Character, experience, cfg.GameAPIKey, cfg.XPHMACSecret)

	var worker *jobs.Worker
	if cfg.RunSyncWorker && c.Ledger != nil {
		worker = jobs.NewWorker(db, log, r.LedgerSyncJob, ledgerSync)
	}

	return Services{
		Catalog:    catalog,
		Experience: experience,
		Actions:    actions,
		Reconciler: reconciler,
		LedgerSync: ledgerSync,
		SyncWorker: worker,
	}, nil
}
