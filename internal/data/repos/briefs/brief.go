package briefs

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type BriefRepo interface {
	Create(dbc dbctx.Context, rows []*types.Brief) ([]*types.Brief, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Brief, error)
	// GetOwnedByBrand resolves the brief only when the given brand owns it.
	GetOwnedByBrand(dbc dbctx.Context, briefID, brandID uuid.UUID) (*types.Brief, error)
}

type briefRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBriefRepo(db *gorm.DB, baseLog *logger.Logger) BriefRepo {
	return &briefRepo{db: db, log: baseLog.With("repo", "BriefRepo")}
}

func (r *briefRepo) Create(dbc dbctx.Context, rows []*types.Brief) ([]*types.Brief, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Brief{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *briefRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Brief, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Brief
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *briefRepo) GetOwnedByBrand(dbc dbctx.Context, briefID, brandID uuid.UUID) (*types.Brief, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if briefID == uuid.Nil || brandID == uuid.Nil {
		return nil, nil
	}
	var out types.Brief
	err := t.WithContext(dbc.Ctx).Where("id = ? AND brand_id = ?", briefID, brandID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
