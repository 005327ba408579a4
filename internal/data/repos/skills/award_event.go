package skills

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/solforge-games/solforge-backend/internal/domain"
	"github.com/solforge-games/solforge-backend/internal/platform/dbctx"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

// ErrDuplicateAward reports that an award with the same idempotency key
// was already applied. Callers treat this as "observe, don't reapply".
var ErrDuplicateAward = errors.New("award event already recorded")

type AwardEventRepo interface {
	// Insert records the idempotency row; a unique-key conflict comes
	// back as ErrDuplicateAward, anything else as-is.
	Insert(dbc dbctx.Context, ev *types.AwardEvent) error
	GetByKey(dbc dbctx.Context, idempotencyKey string) (*types.AwardEvent, error)
}

type awardEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAwardEventRepo(db *gorm.DB, baseLog *logger.Logger) AwardEventRepo {
	return &awardEventRepo{db: db, log: baseLog.With("repo", "AwardEventRepo")}
}

func (r *awardEventRepo) Insert(dbc dbctx.Context, ev *types.AwardEvent) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	// Run under a nested transaction (savepoint); a unique violation
	// would otherwise abort the caller's surrounding transaction before
	// it can read the already-applied state.
	err := t.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		return txx.Create(ev).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAward
		}
		return err
	}
	return nil
}

func (r *awardEventRepo) GetByKey(dbc dbctx.Context, idempotencyKey string) (*types.AwardEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if idempotencyKey == "" {
		return nil, nil
	}
	var row types.AwardEvent
	err := t.WithContext(dbc.Ctx).
		Where("idempotency_key = ?", idempotencyKey).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "already exists")
}
