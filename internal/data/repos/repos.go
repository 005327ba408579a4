package repos

import (
	"gorm.io/gorm"

	"github.com/solforge-games/solforge-backend/internal/data/repos/characters"
	"github.com/solforge-games/solforge-backend/internal/data/repos/skills"
	"github.com/solforge-games/solforge-backend/internal/data/repos/syncjobs"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type CharacterRepo = characters.CharacterRepo
type SkillRecordRepo = skills.SkillRecordRepo
type AwardEventRepo = skills.AwardEventRepo
type LedgerSyncJobRepo = syncjobs.LedgerSyncJobRepo

var ErrDuplicateAward = skills.ErrDuplicateAward

func NewCharacterRepo(db *gorm.DB, log *logger.Logger) CharacterRepo {
	return characters.NewCharacterRepo(db, log)
}

func NewSkillRecordRepo(db *gorm.DB, log *logger.Logger) SkillRecordRepo {
	return skills.NewSkillRecordRepo(db, log)
}

func NewAwardEventRepo(db *gorm.DB, log *logger.Logger) AwardEventRepo {
	return skills.NewAwardEventRepo(db, log)
}

func NewLedgerSyncJobRepo(db *gorm.DB, log *logger.Logger) LedgerSyncJobRepo {
	return syncjobs.NewLedgerSyncJobRepo(db, log)
}
