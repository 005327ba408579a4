package syncjobs

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/data/repos/testutil"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
)

func TestLedgerSyncJobRepoLifecycle(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.NewTx(ctx, tx)

	repo := NewLedgerSyncJobRepo(gdb, testutil.Logger(t))
	ch := testutil.SeedCharacter(t, ctx, tx, "owner-pda-jobs")

	job := &types.LedgerSyncJob{
		CharacterID: ch.ID,
		Skill:       types.SkillAttack,
		Status:      types.SyncJobQueued,
		Payload:     datatypes.JSON([]byte(`{"combatLevel":3}`)),
	}
	created, err := repo.Create(dbc, []*types.LedgerSyncJob{job})
	if err != nil || len(created) != 1 {
		t.Fatalf("Create: len=%d err=%v", len(created), err)
	}

	runnable, err := repo.HasRunnableForCharacter(dbc, ch.ID)
	if err != nil || !runnable {
		t.Fatalf("HasRunnableForCharacter = %v, %v; want true", runnable, err)
	}

	claimed, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 2*time.Minute)
	if err != nil || claimed == nil {
		t.Fatalf("ClaimNextRunnable: %v, %v", claimed, err)
	}
	if claimed.Status != types.SyncJobRunning || claimed.Attempts != 1 {
		t.Fatalf("claimed status=%s attempts=%d", claimed.Status, claimed.Attempts)
	}

	// nothing else runnable while the claim is fresh
	again, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 2*time.Minute)
	if err != nil || again != nil {
		t.Fatalf("second claim = %v, %v; want nil, nil", again, err)
	}

	if err := repo.Heartbeat(dbc, claimed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	if err := repo.MarkFailed(dbc, claimed.ID, "stale proof"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, err := repo.GetByID(dbc, claimed.ID)
	if err != nil || got == nil || got.Status != types.SyncJobFailed || got.Error != "stale proof" {
		t.Fatalf("after MarkFailed: %+v err=%v", got, err)
	}

	// failed row is not immediately reclaimable inside the retry delay
	if j, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 2*time.Minute); err != nil || j != nil {
		t.Fatalf("claim during retry delay = %v, %v; want nil, nil", j, err)
	}
	// but with a zero retry delay it is
	reclaimed, err := repo.ClaimNextRunnable(dbc, 5, 0, 2*time.Minute)
	if err != nil || reclaimed == nil || reclaimed.ID != claimed.ID {
		t.Fatalf("reclaim after failure: %v err=%v", reclaimed, err)
	}
	if reclaimed.Attempts != 2 {
		t.Fatalf("attempts after reclaim = %d, want 2", reclaimed.Attempts)
	}

	if err := repo.MarkSucceeded(dbc, reclaimed.ID); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}
	got, err = repo.GetByID(dbc, reclaimed.ID)
	if err != nil || got == nil || got.Status != types.SyncJobSucceeded {
		t.Fatalf("after MarkSucceeded: %+v err=%v", got, err)
	}

	runnable, err = repo.HasRunnableForCharacter(dbc, ch.ID)
	if err != nil || runnable {
		t.Fatalf("HasRunnableForCharacter after success = %v, %v; want false", runnable, err)
	}
}
