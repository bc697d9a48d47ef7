package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/collabmarket-backend/internal/data/repos"
	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/collabmarket-backend/internal/pkg/errors"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/requestdata"
)

type CreateContractInput struct {
	BriefID      uuid.UUID       `json:"brief_id"`
	CreatorID    uuid.UUID       `json:"creator_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Terms        map[string]any  `json:"terms"`
	Deliverables datatypes.JSON  `json:"deliverables"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
	StartDate    *time.Time      `json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`
}

type CreateMilestoneInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *time.Time      `json:"due_date"`
}

type UpdateMilestoneInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *time.Time       `json:"due_date"`
	Status      *string          `json:"status"`
}

type ContractService interface {
	CreateContract(ctx context.Context, in CreateContractInput) (*types.Contract, error)
	SignContract(ctx context.Context, contractID uuid.UUID, signature string) (*types.Contract, error)
	GetContract(ctx context.Context, contractID uuid.UUID) (*types.Contract, []*types.Milestone, error)
	ListContracts(ctx context.Context, status string) ([]*types.Contract, error)
	CreateMilestone(ctx context.Context, contractID uuid.UUID, in CreateMilestoneInput) (*types.Milestone, error)
	UpdateMilestone(ctx context.Context, milestoneID uuid.UUID, in UpdateMilestoneInput) (*types.Milestone, error)
}

type contractService struct {
	db           *gorm.DB
	log          *logger.Logger
	contracts    repos.ContractRepo
	milestones   repos.MilestoneRepo
	briefs       repos.BriefRepo
	applications repos.ApplicationRepo

	// activateOnFirstSignature relaxes the default both-parties rule so a
	// single signature moves the contract to active.
	activateOnFirstSignature bool
}

func NewContractService(
	db *gorm.DB,
	baseLog *logger.Logger,
	contracts repos.ContractRepo,
	milestones repos.MilestoneRepo,
	briefRepo repos.BriefRepo,
	applications repos.ApplicationRepo,
	activateOnFirstSignature bool,
) ContractService {
	return &contractService{
		db:                       db,
		log:                      baseLog.With("service", "ContractService"),
		contracts:                contracts,
		milestones:               milestones,
		briefs:                   briefRepo,
		applications:             applications,
		activateOnFirstSignature: activateOnFirstSignature,
	}
}

func (s *contractService) CreateContract(ctx context.Context, in CreateContractInput) (*types.Contract, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalidArgument)
	}
	if in.TotalAmount.IsNegative() || in.TotalAmount.IsZero() {
		return nil, fmt.Errorf("%w: total_amount must be positive", apperr.ErrInvalidArgument)
	}

	dbc := dbctx.Context{Ctx: ctx}
	brief, err := s.briefs.GetOwnedByBrand(dbc, in.BriefID, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load brief: %w", err)
	}
	if brief == nil {
		return nil, fmt.Errorf("%w: brief", apperr.ErrNotFound)
	}
	app, err := s.applications.GetAccepted(dbc, in.BriefID, in.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, fmt.Errorf("%w: accepted application", apperr.ErrNotFound)
	}

	terms := datatypes.JSONMap{}
	for k, v := range in.Terms {
		terms[k] = v
	}
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "usd"
	}
	row := &types.Contract{
		ID:           uuid.New(),
		BriefID:      brief.ID,
		BrandID:      rd.UserID,
		CreatorID:    in.CreatorID,
		Title:        in.Title,
		Description:  in.Description,
		Terms:        terms,
		Deliverables: in.Deliverables,
		TotalAmount:  in.TotalAmount,
		Currency:     currency,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       types.ContractStatusDraft,
	}
	if _, err := s.contracts.Create(dbc, []*types.Contract{row}); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}
	s.log.Info("contract created",
		"contract_id", row.ID.String(),
		"brief_id", brief.ID.String(),
		"total_amount", row.TotalAmount.String())
	return row, nil
}

func (s *contractService) SignContract(ctx context.Context, contractID uuid.UUID, signature string) (*types.Contract, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	if signature == "" {
		return nil, fmt.Errorf("%w: signature is required", apperr.ErrInvalidArgument)
	}

	var out *types.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		// Lock the row for the whole merge. Without it two parties signing at
		// the same time both read the same terms and one signature is lost.
		contract, err := s.contracts.GetByIDForUpdate(dbc, contractID)
		if err != nil {
			return fmt.Errorf("failed to load contract: %w", err)
		}
		if contract == nil {
			return fmt.Errorf("%w: contract", apperr.ErrNotFound)
		}
		if rd.UserID != contract.BrandID && rd.UserID != contract.CreatorID {
			return fmt.Errorf("%w: not a contract party", apperr.ErrUnauthorized)
		}
		if contract.Status != types.ContractStatusDraft && contract.Status != types.ContractStatusPendingSignature {
			return fmt.Errorf("%w: contract is %s", apperr.ErrInvalidState, contract.Status)
		}

		terms := contract.Terms
		if terms == nil {
			terms = datatypes.JSONMap{}
		}
		sigs, _ := terms[types.TermsSignaturesKey].(map[string]interface{})
		if sigs == nil {
			sigs = map[string]interface{}{}
		}
		sigs[rd.UserID.String()] = map[string]interface{}{
			"signature": signature,
			"signed_at": time.Now().UTC().Format(time.RFC3339),
		}
		terms[types.TermsSignaturesKey] = sigs

		status := types.ContractStatusPendingSignature
		if len(sigs) >= 2 || s.activateOnFirstSignature {
			status = types.ContractStatusActive
		}

		updated, err := s.contracts.UpdateFieldsIfStatusIn(dbc, contract.ID,
			[]string{types.ContractStatusDraft, types.ContractStatusPendingSignature},
			map[string]interface{}{
				"terms":  terms,
				"status": status,
			})
		if err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}
		if !updated {
			return fmt.Errorf("%w: contract changed concurrently", apperr.ErrInvalidState)
		}
		contract.Terms = terms
		contract.Status = status
		out = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("contract signed",
		"contract_id", out.ID.String(),
		"status", out.Status,
		"signatures", out.SignatureCount())
	return out, nil
}

func (s *contractService) GetContract(ctx context.Context, contractID uuid.UUID) (*types.Contract, []*types.Milestone, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, nil, apperr.ErrUnauthorized
	}
	dbc := dbctx.Context{Ctx: ctx}
	contract, err := s.contracts.GetByID(dbc, contractID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load contract: %w", err)
	}
	if contract == nil || (rd.UserID != contract.BrandID && rd.UserID != contract.CreatorID) {
		return nil, nil, fmt.Errorf("%w: contract", apperr.ErrNotFound)
	}
	milestones, err := s.milestones.ListByContract(dbc, contract.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return contract, milestones, nil
}

func (s *contractService) ListContracts(ctx context.Context, status string) ([]*types.Contract, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	return s.contracts.ListForParties(dbctx.Context{Ctx: ctx}, rd.UserID, rd.UserID, status)
}

func (s *contractService) CreateMilestone(ctx context.Context, contractID uuid.UUID, in CreateMilestoneInput) (*types.Milestone, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalidArgument)
	}
	if in.Amount.IsNegative() || in.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", apperr.ErrInvalidArgument)
	}

	var out *types.Milestone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		contract, err := s.contracts.GetByID(dbc, contractID)
		if err != nil {
			return fmt.Errorf("failed to load contract: %w", err)
		}
		if contract == nil {
			return fmt.Errorf("%w: contract", apperr.ErrNotFound)
		}
		if rd.UserID != contract.BrandID {
			return fmt.Errorf("%w: only the brand can add milestones", apperr.ErrUnauthorized)
		}

		committed, err := s.milestones.SumAmountByContract(dbc, contract.ID)
		if err != nil {
			return fmt.Errorf("failed to total milestones: %w", err)
		}
		if committed.Add(in.Amount).GreaterThan(contract.TotalAmount) {
			return fmt.Errorf("%w: milestone amounts %s would exceed contract total %s",
				apperr.ErrInvalidState, committed.Add(in.Amount).String(), contract.TotalAmount.String())
		}

		row := &types.Milestone{
			ID:          uuid.New(),
			ContractID:  contract.ID,
			Title:       in.Title,
			Description: in.Description,
			Amount:      in.Amount,
			DueDate:     in.DueDate,
			Status:      types.MilestoneStatusPending,
		}
		if _, err := s.milestones.Create(dbc, []*types.Milestone{row}); err != nil {
			return fmt.Errorf("failed to create milestone: %w", err)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *contractService) UpdateMilestone(ctx context.Context, milestoneID uuid.UUID, in UpdateMilestoneInput) (*types.Milestone, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}

	var out *types.Milestone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		milestone, err := s.milestones.GetByID(dbc, milestoneID)
		if err != nil {
			return fmt.Errorf("failed to load milestone: %w", err)
		}
		if milestone == nil {
			return fmt.Errorf("%w: milestone", apperr.ErrNotFound)
		}
		contract, err := s.contracts.GetByID(dbc, milestone.ContractID)
		if err != nil {
			return fmt.Errorf("failed to load contract: %w", err)
		}
		if contract == nil || (rd.UserID != contract.BrandID && rd.UserID != contract.CreatorID) {
			return fmt.Errorf("%w: milestone", apperr.ErrNotFound)
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.DueDate != nil {
			updates["due_date"] = *in.DueDate
		}
		if in.Amount != nil {
			if in.Amount.IsNegative() || in.Amount.IsZero() {
				return fmt.Errorf("%w: amount must be positive", apperr.ErrInvalidArgument)
			}
			committed, err := s.milestones.SumAmountByContract(dbc, contract.ID)
			if err != nil {
				return fmt.Errorf("failed to total milestones: %w", err)
			}
			next := committed.Sub(milestone.Amount).Add(*in.Amount)
			if next.GreaterThan(contract.TotalAmount) {
				return fmt.Errorf("%w: milestone amounts %s would exceed contract total %s",
					apperr.ErrInvalidState, next.String(), contract.TotalAmount.String())
			}
			updates["amount"] = *in.Amount
		}
		if in.Status != nil && *in.Status != milestone.Status {
			if !types.MilestoneCanTransition(milestone.Status, *in.Status) {
				return fmt.Errorf("%w: milestone cannot move from %s to %s",
					apperr.ErrInvalidState, milestone.Status, *in.Status)
			}
			updates["status"] = *in.Status
		}
		if len(updates) == 0 {
			out = milestone
			return nil
		}

		// Guard on the status read above so two concurrent transitions
		// cannot both apply.
		changed, err := s.milestones.UpdateFieldsIfStatus(dbc, milestone.ID, milestone.Status, updates)
		if err != nil {
			return fmt.Errorf("failed to update milestone: %w", err)
		}
		if !changed {
			return fmt.Errorf("%w: milestone changed concurrently", apperr.ErrInvalidState)
		}
		refreshed, err := s.milestones.GetByID(dbc, milestone.ID)
		if err != nil {
			return fmt.Errorf("failed to reload milestone: %w", err)
		}
		out = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
