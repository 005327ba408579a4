package app

import (
	"github.com/solforge-games/solforge-backend/internal/platform/envutil"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

type Config struct {
	Port string

	JWTSecretKey    string
	GameAPIKey      string
	XPHMACSecret    string
	MaxGainPerAward int64

	ActionCatalogPath string

	// RunSyncWorker keeps the in-process polling worker on even when a
	// Temporal client is configured.
	RunSyncWorker bool

	ServiceName string
	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port: envutil.GetEnv("PORT", "8080", log),

		JWTSecretKey:    envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		GameAPIKey:      envutil.GetEnv("GAME_SERVER_API_KEY", "", log),
		XPHMACSecret:    envutil.GetEnv("XP_SIGNING_SECRET", "", log),
		MaxGainPerAward: envutil.GetEnvAsInt64("XP_MAX_GAIN_PER_AWARD", 10000, log),

		ActionCatalogPath: envutil.GetEnv("XP_ACTION_CATALOG_PATH", "", log),

		RunSyncWorker: envutil.GetEnvAsBool("RUN_SYNC_WORKER", true, log),

		ServiceName: envutil.GetEnv("SERVICE_NAME", "solforge-backend", log),
		Environment: envutil.GetEnv("ENVIRONMENT", "development", log),
		Version:     envutil.GetEnv("SERVICE_VERSION", "dev", log),
	}
}
