package temporalworker

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/services"
	"github.com/solforge-games/solforge-backend/internal/temporalx"
	"github.com/solforge-games/solforge-backend/internal/temporalx/ledgersync"
)

// Runner hosts the Temporal worker that executes ledger sync workflows.
type Runner struct {
	log        *logger.Logger
	tc         temporalsdkclient.Client
	ledgerSync services.LedgerSyncService
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, ledgerSync services.LedgerSyncService) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if ledgerSync == nil {
		return nil, fmt.Errorf("temporal worker missing deps")
	}
	return &Runner{log: log, tc: tc, ledgerSync: ledgerSync}, nil
}

func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}

	cfg := temporalx.LoadConfig()
	if r.log != nil {
		r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)
	}

	w := worker.New(r.tc, cfg.TaskQueue, worker.Options{
		WorkerStopTimeout: 30 * time.Second,
	})
	w.RegisterWorkflowWithOptions(ledgersync.Workflow, workflow.RegisterOptions{Name: ledgersync.WorkflowName})

	acts := &ledgersync.Activities{Log: r.log, LedgerSync: r.ledgerSync}
	w.RegisterActivityWithOptions(acts.Push, activity.RegisterOptions{Name: ledgersync.ActivityPush})

	if err := w.Start(); err != nil {
		return fmt.Errorf("start temporal worker: %w", err)
	}
	if ctx != nil {
		go func() {
			<-ctx.Done()
			w.Stop()
		}()
	}
	if r.log != nil {
		r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)
	}
	return nil
}
