package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	redisclient "github.com/solforge-games/solforge-backend/internal/clients/redis"
	"github.com/solforge-games/solforge-backend/internal/clients/solana"
	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

func newTestLogger() (*logger.Logger, error) { return logger.New("test") }

type fakeSkillRecordRepo struct {
	records    []*types.SkillRecord
	clearedFor []uuid.UUID
}

func (f *fakeSkillRecordRepo) GetByCharacterAndSkill(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill) (*types.SkillRecord, error) {
	for _, r := range f.records {
		if r.CharacterID == characterID && r.Skill == skill {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeSkillRecordRepo) GetAllByCharacter(dbc dbctx.Context, characterID uuid.UUID) ([]*types.SkillRecord, error) {
	return f.records, nil
}

func (f *fakeSkillRecordRepo) IncrementExperience(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill, amount int64) (*types.SkillRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSkillRecordRepo) UpdateLevel(dbc dbctx.Context, id uuid.UUID, level int, pendingExternalSync bool) error {
	return nil
}

func (f *fakeSkillRecordRepo) ClearPendingSync(dbc dbctx.Context, characterID uuid.UUID) error {
	f.clearedFor = append(f.clearedFor, characterID)
	return nil
}

type fakeLedgerSync struct {
	states []solana.CharacterState
	err    error
}

func (f *fakeLedgerSync) EnqueuePush(ctx context.Context, characterID uuid.UUID, skill types.Skill, state solana.CharacterState) (*types.LedgerSyncJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.states = append(f.states, state)
	return &types.LedgerSyncJob{ID: uuid.New(), CharacterID: characterID, Skill: skill}, nil
}

func (f *fakeLedgerSync) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	return nil
}

type fakeLevelUpBus struct {
	events []redisclient.LevelUpEvent
}

func (f *fakeLevelUpBus) Publish(ctx context.Context, ev redisclient.LevelUpEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeLevelUpBus) Close() error { return nil }

func TestOnLevelUpRecomputesAggregates(t *testing.T) {
	charID := uuid.New()
	char := &types.Character{
		ID:       charID,
		AssetID:  "asset-agg",
		OwnerPDA: "owner-pda",
		Name:     "Aggie",
	}
	chars := &fakeCharacterRepo{byAssetID: map[string]*types.Character{char.AssetID: char}}
	// Attack at 13363 xp is level 30; the other combat stats default to 1.
	skillRepo := &fakeSkillRecordRepo{records: []*types.SkillRecord{
		{ID: uuid.New(), CharacterID: charID, Skill: types.SkillAttack, Experience: 13363, Level: 30},
	}}
	queue := &fakeLedgerSync{}
	bus := &fakeLevelUpBus{}

	log, err := newTestLogger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rec := NewLevelingReconciler(nil, log, chars, skillRepo, queue, bus)

	if err := rec.OnLevelUp(context.Background(), charID, types.SkillAttack, 29, 30); err != nil {
		t.Fatalf("OnLevelUp: %v", err)
	}

	// floor(0.25*(1 + 0.5)) + floor-of-styles: 0.325*(30+1) = 10.075.
	if chars.aggCombat != 10 {
		t.Fatalf("combat level = %d, want 10", chars.aggCombat)
	}
	// 16 skills at level 1 plus attack at 30.
	if chars.aggTotal != 46 {
		t.Fatalf("total level = %d, want 46", chars.aggTotal)
	}

	if len(queue.states) != 1 {
		t.Fatalf("enqueued states = %d, want 1", len(queue.states))
	}
	st := queue.states[0]
	if st.AssetID != "asset-agg" || st.CombatLevel != 10 || st.TotalLevel != 46 {
		t.Fatalf("pushed state = %+v", st)
	}
	if st.SkillLevels[types.SkillAttack.String()] != 30 {
		t.Fatalf("pushed attack level = %d, want 30", st.SkillLevels[types.SkillAttack.String()])
	}
	if st.SkillLevels[types.SkillLuck.String()] != 1 {
		t.Fatalf("pushed luck level = %d, want default 1", st.SkillLevels[types.SkillLuck.String()])
	}

	if len(bus.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(bus.events))
	}
	if ev := bus.events[0]; ev.OldLevel != 29 || ev.NewLevel != 30 || ev.Skill != types.SkillAttack.String() {
		t.Fatalf("published event = %+v", ev)
	}
}

func TestOnLevelUpMergesTriggerLevelForward(t *testing.T) {
	charID := uuid.New()
	char := &types.Character{ID: charID, AssetID: "asset-merge", OwnerPDA: "o", Name: "Mergey"}
	chars := &fakeCharacterRepo{byAssetID: map[string]*types.Character{char.AssetID: char}}
	// Row not yet visible at the new level; the trigger argument wins.
	skillRepo := &fakeSkillRecordRepo{records: []*types.SkillRecord{
		{ID: uuid.New(), CharacterID: charID, Skill: types.SkillMining, Experience: 80, Level: 1},
	}}
	queue := &fakeLedgerSync{}

	log, err := newTestLogger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rec := NewLevelingReconciler(nil, log, chars, skillRepo, queue, nil)

	if err := rec.OnLevelUp(context.Background(), charID, types.SkillMining, 1, 2); err != nil {
		t.Fatalf("OnLevelUp: %v", err)
	}
	if got := queue.states[0].SkillLevels[types.SkillMining.String()]; got != 2 {
		t.Fatalf("mining level = %d, want merged-forward 2", got)
	}
}

func TestOnLevelUpSurvivesEnqueueFailure(t *testing.T) {
	charID := uuid.New()
	char := &types.Character{ID: charID, AssetID: "asset-fail", OwnerPDA: "o", Name: "Failsafe"}
	chars := &fakeCharacterRepo{byAssetID: map[string]*types.Character{char.AssetID: char}}
	skillRepo := &fakeSkillRecordRepo{}
	queue := &fakeLedgerSync{err: errors.New("queue down")}

	log, err := newTestLogger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rec := NewLevelingReconciler(nil, log, chars, skillRepo, queue, nil)

	// The aggregate persist already happened; a dead queue is logged,
	// not surfaced.
	if err := rec.OnLevelUp(context.Background(), charID, types.SkillLuck, 1, 2); err != nil {
		t.Fatalf("OnLevelUp: %v", err)
	}
	if chars.aggTotal == 0 {
		t.Fatal("aggregate was not persisted")
	}
}
