package briefs

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type ApplicationRepo interface {
	Create(dbc dbctx.Context, rows []*types.BriefApplication) ([]*types.BriefApplication, error)
	// GetAccepted resolves the accepted application for (brief, creator), nil when absent.
	GetAccepted(dbc dbctx.Context, briefID, creatorID uuid.UUID) (*types.BriefApplication, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) Create(dbc dbctx.Context, rows []*types.BriefApplication) ([]*types.BriefApplication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.BriefApplication{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *applicationRepo) GetAccepted(dbc dbctx.Context, briefID, creatorID uuid.UUID) (*types.BriefApplication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if briefID == uuid.Nil || creatorID == uuid.Nil {
		return nil, nil
	}
	var out types.BriefApplication
	err := t.WithContext(dbc.Ctx).
		Where("brief_id = ? AND creator_id = ? AND status = ?", briefID, creatorID, types.ApplicationStatusAccepted).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
