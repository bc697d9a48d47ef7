package contracts

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type MilestoneRepo interface {
	Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error)
	ListByContract(dbc dbctx.Context, contractID uuid.UUID) ([]*types.Milestone, error)
	// SumAmountByContract totals milestone amounts for the budget invariant.
	SumAmountByContract(dbc dbctx.Context, contractID uuid.UUID) (decimal.Decimal, error)
	// UpdateFieldsIfStatus applies updates only while the row still has the
	// expected status; reports whether a row was changed. This is the
	// forward-only transition guard.
	UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, expected string, updates map[string]interface{}) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

func (r *milestoneRepo) Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Milestone{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *milestoneRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Milestone
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *milestoneRepo) ListByContract(dbc dbctx.Context, contractID uuid.UUID) ([]*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Milestone
	if contractID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("contract_id = ?", contractID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) SumAmountByContract(dbc dbctx.Context, contractID uuid.UUID) (decimal.Decimal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if contractID == uuid.Nil {
		return decimal.Zero, nil
	}
	var raw *string
	err := t.WithContext(dbc.Ctx).
		Model(&types.Milestone{}).
		Select("SUM(amount)").
		Where("contract_id = ?", contractID).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *milestoneRepo) UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, expected string, updates map[string]interface{}) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Milestone{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *milestoneRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Milestone{}).
		Where("id = ?", id).
		Updates(updates).Error
}
