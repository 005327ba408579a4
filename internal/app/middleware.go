package app

import (
	httpMW "github.com/solforge-games/solforge-backend/internal/http/middleware"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey, cfg.GameAPIKey),
	}
}
