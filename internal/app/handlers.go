package app

import (
	httpH "github.com/solforge-games/solforge-backend/internal/http/handlers"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Skills     *httpH.SkillsHandler
	Characters *httpH.CharactersHandler
	Actions    *httpH.ActionsHandler
}

func wireHandlers(log *logger.Logger, r Repos, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Skills:     httpH.NewSkillsHandler(s.Experience, r.Character),
		Characters: httpH.NewCharactersHandler(r.Character, r.SkillRecord, r.LedgerSyncJob, s.Experience),
		Actions:    httpH.NewActionsHandler(s.Actions),
	}
}
