package profiles

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type CreatorRepo interface {
	Create(dbc dbctx.Context, rows []*types.CreatorProfile) ([]*types.CreatorProfile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CreatorProfile, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.CreatorProfile, error)
	GetByStripeAccountID(dbc dbctx.Context, accountID string) (*types.CreatorProfile, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type creatorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreatorRepo(db *gorm.DB, baseLog *logger.Logger) CreatorRepo {
	return &creatorRepo{db: db, log: baseLog.With("repo", "CreatorRepo")}
}

func (r *creatorRepo) Create(dbc dbctx.Context, rows []*types.CreatorProfile) ([]*types.CreatorProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CreatorProfile{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *creatorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CreatorProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.CreatorProfile
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *creatorRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.CreatorProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out types.CreatorProfile
	err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *creatorRepo) GetByStripeAccountID(dbc dbctx.Context, accountID string) (*types.CreatorProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if accountID == "" {
		return nil, nil
	}
	var out types.CreatorProfile
	err := t.WithContext(dbc.Ctx).Where("stripe_account_id = ?", accountID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *creatorRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CreatorProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}
