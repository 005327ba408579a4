package temporalx

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/api/enums/v1"

	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/services"
	"github.com/solforge-games/solforge-backend/internal/temporalx/ledgersync"
)

type dispatcher struct {
	log *logger.Logger
	tc  temporalsdkclient.Client
	cfg Config
}

// NewDispatcher adapts a Temporal client to the sync queue. Returns nil
// when the client is nil so wiring can fall through to the polling
// worker.
func NewDispatcher(log *logger.Logger, tc temporalsdkclient.Client) services.SyncDispatcher {
	if tc == nil {
		return nil
	}
	return &dispatcher{log: log.With("component", "TemporalDispatcher"), tc: tc, cfg: LoadConfig()}
}

func (d *dispatcher) Dispatch(ctx context.Context, jobID uuid.UUID) error {
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                       fmt.Sprintf("%s/%s", ledgersync.WorkflowName, jobID),
		TaskQueue:                d.cfg.TaskQueue,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionTimeout: 0,
	}
	_, err := d.tc.ExecuteWorkflow(ctx, opts, ledgersync.WorkflowName)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			// Same job already in flight; nothing to do.
			return nil
		}
		return fmt.Errorf("start %s workflow: %w", ledgersync.WorkflowName, err)
	}
	return nil
}
