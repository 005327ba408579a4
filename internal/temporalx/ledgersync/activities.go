package ledgersync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/services"
)

type Activities struct {
	Log        *logger.Logger
	LedgerSync services.LedgerSyncService
}

// Push loads the queued job and performs the on-chain write. Failures
// are recorded on the job row and returned so Temporal's retry policy
// drives the next attempt.
func (a *Activities) Push(ctx context.Context, jobID string) error {
	if a == nil || a.LedgerSync == nil {
		return fmt.Errorf("ledgersync: activity not configured")
	}
	id, err := uuid.Parse(strings.TrimSpace(jobID))
	if err != nil || id == uuid.Nil {
		return fmt.Errorf("ledgersync: invalid job id %q", jobID)
	}

	stop := a.startHeartbeat(ctx)
	defer stop()

	return a.LedgerSync.ProcessJob(ctx, id)
}

func (a *Activities) startHeartbeat(ctx context.Context) func() {
	hbCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return cancel
}
