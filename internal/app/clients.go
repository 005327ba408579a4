package app

import (
	temporalsdkclient "go.temporal.io/sdk/client"

	redisclient "github.com/solforge-games/solforge-backend/internal/clients/redis"
	"github.com/solforge-games/solforge-backend/internal/clients/solana"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/temporalx"
)

type Clients struct {
	Ledger     solana.LedgerClient
	LevelUpBus redisclient.LevelUpBus
	Temporal   temporalsdkclient.Client
}

// wireClients initializes the optional external collaborators. Each one
// degrades to nil with a warning so the service still runs locally.
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	var c Clients

	ledger, err := solana.NewLedgerClient(log)
	if err != nil {
		log.Warn("Ledger client unavailable; on-chain pushes disabled", "error", err)
	} else {
		c.Ledger = ledger
	}

	bus, err := redisclient.NewLevelUpBus(log)
	if err != nil {
		log.Warn("Redis unavailable; level-up fan-out disabled", "error", err)
	} else {
		c.LevelUpBus = bus
	}

	tc, err := temporalx.NewClient(log)
	if err != nil {
		log.Warn("Temporal unavailable; falling back to polling worker", "error", err)
	} else {
		c.Temporal = tc
	}

	return c
}
