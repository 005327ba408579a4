package skills

import (
	"context"
	"testing"

	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/data/repos/testutil"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
)

func TestSkillRecordRepoIncrement(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.NewTx(ctx, tx)

	repo := NewSkillRecordRepo(gdb, testutil.Logger(t))
	ch := testutil.SeedCharacter(t, ctx, tx, "owner-pda-1")

	// first increment creates the row with the upsert default baseline
	row, err := repo.IncrementExperience(dbc, ch.ID, types.SkillMining, 120)
	if err != nil {
		t.Fatalf("IncrementExperience(create): %v", err)
	}
	if row.Experience != 120 {
		t.Fatalf("experience = %d, want 120", row.Experience)
	}
	if row.Level != 1 {
		t.Fatalf("stored level on create = %d, want 1", row.Level)
	}

	// second increment sums
	row2, err := repo.IncrementExperience(dbc, ch.ID, types.SkillMining, 80)
	if err != nil {
		t.Fatalf("IncrementExperience(update): %v", err)
	}
	if row2.Experience != 200 {
		t.Fatalf("experience = %d, want 200", row2.Experience)
	}
	if row2.ID != row.ID {
		t.Fatalf("upsert created a second row for the same skill")
	}

	// other skills are untouched
	other, err := repo.GetByCharacterAndSkill(dbc, ch.ID, types.SkillFishing)
	if err != nil || other != nil {
		t.Fatalf("GetByCharacterAndSkill(fishing) = %v, %v; want nil, nil", other, err)
	}

	if err := repo.UpdateLevel(dbc, row.ID, 2, true); err != nil {
		t.Fatalf("UpdateLevel: %v", err)
	}
	got, err := repo.GetByCharacterAndSkill(dbc, ch.ID, types.SkillMining)
	if err != nil || got == nil {
		t.Fatalf("GetByCharacterAndSkill: %v, %v", got, err)
	}
	if got.Level != 2 || !got.PendingExternalSync {
		t.Fatalf("after UpdateLevel: level=%d pending=%v", got.Level, got.PendingExternalSync)
	}

	if err := repo.ClearPendingSync(dbc, ch.ID); err != nil {
		t.Fatalf("ClearPendingSync: %v", err)
	}
	got, err = repo.GetByCharacterAndSkill(dbc, ch.ID, types.SkillMining)
	if err != nil || got == nil || got.PendingExternalSync {
		t.Fatalf("pending flag not cleared: %+v err=%v", got, err)
	}

	all, err := repo.GetAllByCharacter(dbc, ch.ID)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetAllByCharacter: len=%d err=%v", len(all), err)
	}
}

func TestAwardEventRepoIdempotencyGate(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.NewTx(ctx, tx)

	repo := NewAwardEventRepo(gdb, testutil.Logger(t))
	ch := testutil.SeedCharacter(t, ctx, tx, "owner-pda-2")

	ev := &types.AwardEvent{
		IdempotencyKey: "k-" + ch.AssetID,
		CharacterID:    ch.ID,
		Skill:          types.SkillAttack,
		Amount:         100,
		Source:         "test",
	}
	if err := repo.Insert(dbc, ev); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	dup := &types.AwardEvent{
		IdempotencyKey: ev.IdempotencyKey,
		CharacterID:    ch.ID,
		Skill:          types.SkillAttack,
		Amount:         100,
	}
	if err := repo.Insert(dbc, dup); err != ErrDuplicateAward {
		t.Fatalf("duplicate Insert err = %v, want ErrDuplicateAward", err)
	}

	got, err := repo.GetByKey(dbc, ev.IdempotencyKey)
	if err != nil || got == nil || got.Amount != 100 {
		t.Fatalf("GetByKey: %+v err=%v", got, err)
	}
	if missing, err := repo.GetByKey(dbc, "nope"); err != nil || missing != nil {
		t.Fatalf("GetByKey(miss) = %v, %v; want nil, nil", missing, err)
	}
}
