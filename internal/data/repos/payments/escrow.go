package payments

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

type EscrowRepo interface {
	Create(dbc dbctx.Context, rows []*types.EscrowPayment) ([]*types.EscrowPayment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.EscrowPayment, error)
	GetByGatewayRef(dbc dbctx.Context, gatewayRef string) (*types.EscrowPayment, error)
	// Delete is the compensating action for a failed hold creation. It only
	// removes rows that never got a gateway reference.
	Delete(dbc dbctx.Context, id uuid.UUID) error
	SetGatewayRef(dbc dbctx.Context, id uuid.UUID, gatewayRef string) error
	// ClaimTransition moves the row from one of the given statuses to the new
	// one in a single conditional UPDATE. The affected-row count is the
	// mutual-exclusion guarantee: of N concurrent claims exactly one wins.
	ClaimTransition(dbc dbctx.Context, id uuid.UUID, from []string, to string, updates map[string]interface{}) (bool, error)
	ListForContracts(dbc dbctx.Context, contractIDs []uuid.UUID, status string) ([]*types.EscrowPayment, error)
	CountByContract(dbc dbctx.Context, contractID uuid.UUID) (int64, error)
}

type escrowRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEscrowRepo(db *gorm.DB, baseLog *logger.Logger) EscrowRepo {
	return &escrowRepo{db: db, log: baseLog.With("repo", "EscrowRepo")}
}

func (r *escrowRepo) Create(dbc dbctx.Context, rows []*types.EscrowPayment) ([]*types.EscrowPayment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.EscrowPayment{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *escrowRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.EscrowPayment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.EscrowPayment
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *escrowRepo) GetByGatewayRef(dbc dbctx.Context, gatewayRef string) (*types.EscrowPayment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if gatewayRef == "" {
		return nil, nil
	}
	var out types.EscrowPayment
	err := t.WithContext(dbc.Ctx).Where("gateway_ref = ?", gatewayRef).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *escrowRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("id = ? AND gateway_ref IS NULL", id).
		Delete(&types.EscrowPayment{}).Error
}

func (r *escrowRepo) SetGatewayRef(dbc dbctx.Context, id uuid.UUID, gatewayRef string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || gatewayRef == "" {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.EscrowPayment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"gateway_ref": gatewayRef,
			"updated_at":  time.Now(),
		}).Error
}

func (r *escrowRepo) ClaimTransition(dbc dbctx.Context, id uuid.UUID, from []string, to string, updates map[string]interface{}) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || to == "" || len(from) == 0 {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	q := t.WithContext(dbc.Ctx).
		Model(&types.EscrowPayment{}).
		Where("id = ?", id)
	if len(from) == 1 {
		q = q.Where("status = ?", from[0])
	} else {
		q = q.Where("status IN ?", from)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *escrowRepo) ListForContracts(dbc dbctx.Context, contractIDs []uuid.UUID, status string) ([]*types.EscrowPayment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.EscrowPayment
	if len(contractIDs) == 0 {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).Where("contract_id IN ?", contractIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *escrowRepo) CountByContract(dbc dbctx.Context, contractID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if contractID == uuid.Nil {
		return 0, nil
	}
	var count int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.EscrowPayment{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error
	return count, err
}
