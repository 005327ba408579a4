package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/solforge-games/solforge-backend/internal/http"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, tracingOn bool) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:               log,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		SkillsHandler:     handlers.Skills,
		CharactersHandler: handlers.Characters,
		ActionsHandler:    handlers.Actions,
		ServiceName:       cfg.ServiceName,
		TracingOn:         tracingOn,
	})
}
