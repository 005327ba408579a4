package app

import (
	"gorm.io/gorm"

	"github.com/solforge-games/solforge-backend/internal/data/repos"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type Repos struct {
	Character     repos.CharacterRepo
	SkillRecord   repos.SkillRecordRepo
	AwardEvent    repos.AwardEventRepo
	LedgerSyncJob repos.LedgerSyncJobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Character:     repos.NewCharacterRepo(db, log),
		SkillRecord:   repos.NewSkillRecordRepo(db, log),
		AwardEvent:    repos.NewAwardEventRepo(db, log),
		LedgerSyncJob: repos.NewLedgerSyncJobRepo(db, log),
	}
}
