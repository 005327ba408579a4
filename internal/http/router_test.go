package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	types "github.com/solforge-games/solforge-backend/internal/domain"
	httpH "github.com/solforge-games/solforge-backend/internal/http/handlers"
	httpMW "github.com/solforge-games/solforge-backend/internal/http/middleware"
	"github.com/solforge-games/solforge-backend/internal/platform/apierr"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
	"github.com/solforge-games/solforge-backend/internal/services"
)

type stubActionService struct{}

func (stubActionService) AwardAction(ctx context.Context, award services.ActionAward, creds services.ActionCredentials) (*services.AwardResult, error) {
	if creds.APIKey == "" && creds.Signature == "" {
		return nil, apierr.Unauthorized(nil)
	}
	return &services.AwardResult{Skill: types.SkillAttack, Experience: 40, Level: 1}, nil
}

func (stubActionService) ListActions() []services.ActionInfo {
	return []services.ActionInfo{{ActionKey: "enemy_kill", Skill: types.SkillAttack, BaseXP: 40}}
}

type stubCharacterRepo struct{}

func (stubCharacterRepo) Create(dbc dbctx.Context, rows []*types.Character) ([]*types.Character, error) {
	return rows, nil
}
func (stubCharacterRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Character, error) {
	return nil, nil
}
func (stubCharacterRepo) GetByAssetID(dbc dbctx.Context, assetID string) (*types.Character, error) {
	return nil, nil
}
func (stubCharacterRepo) UpdateAggregate(dbc dbctx.Context, id uuid.UUID, combatLevel, totalLevel int) error {
	return nil
}
func (stubCharacterRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

type stubSkillRepo struct{}

func (stubSkillRepo) GetByCharacterAndSkill(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill) (*types.SkillRecord, error) {
	return nil, nil
}
func (stubSkillRepo) GetAllByCharacter(dbc dbctx.Context, characterID uuid.UUID) ([]*types.SkillRecord, error) {
	return nil, nil
}
func (stubSkillRepo) IncrementExperience(dbc dbctx.Context, characterID uuid.UUID, skill types.Skill, amount int64) (*types.SkillRecord, error) {
	return &types.SkillRecord{CharacterID: characterID, Skill: skill, Experience: amount, Level: 1}, nil
}
func (stubSkillRepo) UpdateLevel(dbc dbctx.Context, id uuid.UUID, level int, pendingExternalSync bool) error {
	return nil
}
func (stubSkillRepo) ClearPendingSync(dbc dbctx.Context, characterID uuid.UUID) error {
	return nil
}

type stubJobRepo struct{}

func (stubJobRepo) Create(dbc dbctx.Context, jobs []*types.LedgerSyncJob) ([]*types.LedgerSyncJob, error) {
	return jobs, nil
}
func (stubJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LedgerSyncJob, error) {
	return nil, nil
}
func (stubJobRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay, staleRunning time.Duration) (*types.LedgerSyncJob, error) {
	return nil, nil
}
func (stubJobRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error            { return nil }
func (stubJobRepo) MarkSucceeded(dbc dbctx.Context, id uuid.UUID) error        { return nil }
func (stubJobRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, m string) error { return nil }
func (stubJobRepo) HasRunnableForCharacter(dbc dbctx.Context, characterID uuid.UUID) (bool, error) {
	return false, nil
}

type stubExperienceService struct{}

func (stubExperienceService) AddSkillXP(ctx context.Context, characterID uuid.UUID, skill types.Skill, gain int64, opts services.AwardOptions) (*services.AwardResult, error) {
	return &services.AwardResult{CharacterID: characterID, Skill: skill, Experience: gain, Level: 1}, nil
}

func (stubExperienceService) GetAllSkillXP(ctx context.Context, characterID uuid.UUID) (map[types.Skill]services.SkillState, error) {
	return map[types.Skill]services.SkillState{}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewRouter(RouterConfig{
		Log:               log,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, "unit-secret", "unit-game-key"),
		HealthHandler:     httpH.NewHealthHandler(),
		SkillsHandler:     httpH.NewSkillsHandler(stubExperienceService{}, stubCharacterRepo{}),
		CharactersHandler: httpH.NewCharactersHandler(stubCharacterRepo{}, stubSkillRepo{}, stubJobRepo{}, stubExperienceService{}),
		ActionsHandler:    httpH.NewActionsHandler(stubActionService{}),
		ServiceName:       "solforge-test",
	})
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestActionCatalogIsPublic(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/characters/xp-actions/list", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "enemy_kill") {
		t.Fatalf("body missing catalog entry: %s", w.Body.String())
	}
}

func TestAwardActionWithoutCredentials(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/award-action",
		strings.NewReader(`{"assetId":"a","actionKey":"enemy_kill","quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAwardActionWithAPIKeyHeader(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/award-action",
		strings.NewReader(`{"assetId":"a","actionKey":"enemy_kill","quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", "unit-game-key")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
}

func TestSessionRoutesRejectMissingToken(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/skills/add-experience",
		strings.NewReader(`{"characterRef":"x","skill":"mining","experienceGain":10}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGameKeyRouteRejectsBadKey(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/add-skill-xp",
		strings.NewReader(`{"assetId":"a","skillName":"mining","xpGain":10}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", "wrong")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSessionTokenAdmitsWallet(t *testing.T) {
	r := newTestRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"wallet": "owner-pda",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	// The stub repo knows no characters, so a valid token falls
	// through to 404 rather than 401.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/skills/add-experience",
		strings.NewReader(`{"characterRef":"x","skill":"mining","experienceGain":10}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Fatalf("valid token rejected: %s", w.Body.String())
	}
}
