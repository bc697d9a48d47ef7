package contracts

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type ContractRepo interface {
	Create(dbc dbctx.Context, rows []*types.Contract) ([]*types.Contract, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error)
	// GetByIDForUpdate reads the row under a FOR UPDATE lock so concurrent
	// read-modify-write callers serialize. Call inside a transaction.
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error)
	// ListForParties returns contracts where the brand or creator matches.
	// Either id may be uuid.Nil. Status filters when non-empty.
	ListForParties(dbc dbctx.Context, brandID, creatorID uuid.UUID, status string) ([]*types.Contract, error)
	// UpdateFieldsIfStatusIn applies updates only while the row's status is in
	// allowed; reports whether a row was changed.
	UpdateFieldsIfStatusIn(dbc dbctx.Context, id uuid.UUID, allowed []string, updates map[string]interface{}) (bool, error)
}

type contractRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	return &contractRepo{db: db, log: baseLog.With("repo", "ContractRepo")}
}

func (r *contractRepo) Create(dbc dbctx.Context, rows []*types.Contract) ([]*types.Contract, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Contract{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contractRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Contract
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contractRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Contract
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contractRepo) ListForParties(dbc dbctx.Context, brandID, creatorID uuid.UUID, status string) ([]*types.Contract, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Contract
	if brandID == uuid.Nil && creatorID == uuid.Nil {
		return out, nil
	}

	q := t.WithContext(dbc.Ctx).Model(&types.Contract{})
	switch {
	case brandID != uuid.Nil && creatorID != uuid.Nil:
		q = q.Where("brand_id = ? OR creator_id = ?", brandID, creatorID)
	case brandID != uuid.Nil:
		q = q.Where("brand_id = ?", brandID)
	default:
		q = q.Where("creator_id = ?", creatorID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractRepo) UpdateFieldsIfStatusIn(dbc dbctx.Context, id uuid.UUID, allowed []string, updates map[string]interface{}) (bool, error) {
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

	q := t.WithContext(dbc.Ctx).
		Model(&types.Contract{}).
		Where("id = ?", id)
	if len(allowed) == 1 {
		q = q.Where("status = ?", allowed[0])
	} else if len(allowed) > 1 {
		q = q.Where("status IN ?", allowed)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
