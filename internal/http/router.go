package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/solforge-games/solforge-backend/internal/http/handlers"
	httpMW "github.com/solforge-games/solforge-backend/internal/http/middleware"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	SkillsHandler     *httpH.SkillsHandler
	CharactersHandler *httpH.CharactersHandler
	ActionsHandler    *httpH.ActionsHandler

	ServiceName string
	TracingOn   bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	if cfg.TracingOn {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Public catalog
		if cfg.ActionsHandler != nil {
			api.GET("/characters/xp-actions/list", cfg.ActionsHandler.ListActions)
		}

		// Game-server award path authenticates inside the service, so
		// either the API key or an HMAC signature admits the call.
		if cfg.ActionsHandler != nil {
			api.POST("/characters/award-action", cfg.ActionsHandler.AwardAction)
		}
	}

	session := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			session.Use(cfg.AuthMiddleware.RequireSession())
		}

		if cfg.SkillsHandler != nil {
			session.POST("/skills/add-experience", cfg.SkillsHandler.AddExperience)
			session.GET("/characters/:assetId/skills", cfg.SkillsHandler.GetCharacterSkills)
		}
		if cfg.CharactersHandler != nil {
			session.GET("/characters/:assetId/summary", cfg.CharactersHandler.GetSummary)
		}
	}

	gameServer := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			gameServer.Use(cfg.AuthMiddleware.RequireGameKey())
		}
		if cfg.CharactersHandler != nil {
			gameServer.POST("/characters/add-skill-xp", cfg.CharactersHandler.AddSkillXP)
		}
	}

	return r
}
