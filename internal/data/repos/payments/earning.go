package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

// EarningRepo is append-only. Corrections are recorded as new rows with
// negative amounts, never as updates to existing rows.
type EarningRepo interface {
	Append(dbc dbctx.Context, rows []*types.CreatorEarning) ([]*types.CreatorEarning, error)
	ListByCreator(dbc dbctx.Context, creatorID uuid.UUID, earningType string) ([]*types.CreatorEarning, error)
	SumByCreator(dbc dbctx.Context, creatorID uuid.UUID) (decimal.Decimal, error)
	// SumForEscrow totals the entries tied to one escrow payment. A positive
	// sum means the creator currently stands credited for it; zero means
	// never credited or fully reversed.
	SumForEscrow(dbc dbctx.Context, escrowID uuid.UUID, earningType string) (decimal.Decimal, error)
}

type earningRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEarningRepo(db *gorm.DB, baseLog *logger.Logger) EarningRepo {
	return &earningRepo{db: db, log: baseLog.With("repo", "EarningRepo")}
}

func (r *earningRepo) Append(dbc dbctx.Context, rows []*types.CreatorEarning) ([]*types.CreatorEarning, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CreatorEarning{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *earningRepo) ListByCreator(dbc dbctx.Context, creatorID uuid.UUID, earningType string) ([]*types.CreatorEarning, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CreatorEarning
	if creatorID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).Where("creator_id = ?", creatorID)
	if earningType != "" {
		q = q.Where("type = ?", earningType)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *earningRepo) SumByCreator(dbc dbctx.Context, creatorID uuid.UUID) (decimal.Decimal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if creatorID == uuid.Nil {
		return decimal.Zero, nil
	}
	var raw *string
	err := t.WithContext(dbc.Ctx).
		Model(&types.CreatorEarning{}).
		Select("SUM(amount)").
		Where("creator_id = ?", creatorID).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *earningRepo) SumForEscrow(dbc dbctx.Context, escrowID uuid.UUID, earningType string) (decimal.Decimal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if escrowID == uuid.Nil {
		return decimal.Zero, nil
	}
	var raw *string
	q := t.WithContext(dbc.Ctx).
		Model(&types.CreatorEarning{}).
		Select("SUM(amount)").
		Where("escrow_id = ?", escrowID)
	if earningType != "" {
		q = q.Where("type = ?", earningType)
	}
	if err := q.Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
