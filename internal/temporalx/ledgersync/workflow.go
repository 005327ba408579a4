package ledgersync

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow pushes one queued character snapshot on-chain. The workflow
// ID is "ledger_sync/<job_id>", so the job ID never travels as an
// argument and duplicate dispatches of the same job collapse into one
// execution.
func Workflow(ctx workflow.Context) error {
	wfID := workflow.GetInfo(ctx).WorkflowExecution.ID
	jobID := strings.TrimPrefix(wfID, WorkflowName+"/")
	if jobID == "" || jobID == wfID {
		return fmt.Errorf("ledgersync: workflow id %q carries no job id", wfID)
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    30 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    10 * time.Minute,
			MaximumAttempts:    5,
		},
	})
	return workflow.ExecuteActivity(ctx, ActivityPush, jobID).Get(ctx, nil)
}
