package ledgersync

const (
	WorkflowName = "ledger_sync"
	ActivityPush = "ledger_sync_push"
)
