package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/collabmarket-backend/internal/data/repos"
	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/collabmarket-backend/internal/pkg/errors"
	"github.com/yungbote/collabmarket-backend/internal/pkg/fees"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/platform/payeecache"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
	"github.com/yungbote/collabmarket-backend/internal/requestdata"
)

const (
	MetadataEscrowID   = "escrow_id"
	MetadataContractID = "contract_id"
)

type CreateEscrowInput struct {
	MilestoneID *uuid.UUID      `json:"milestone_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

type ListEscrowFilter struct {
	ContractID *uuid.UUID
	Status     string
}

type EscrowService interface {
	// CreateEscrowPayment reserves funds at the processor and returns the row
	// plus the client continuation token for the payer to complete the hold.
	CreateEscrowPayment(ctx context.Context, contractID uuid.UUID, in CreateEscrowInput) (*types.EscrowPayment, string, error)
	ReleaseEscrowPayment(ctx context.Context, escrowID uuid.UUID, reason string) (*types.EscrowPayment, error)
	RefundEscrowPayment(ctx context.Context, escrowID uuid.UUID, reason string) (*types.EscrowPayment, error)
	ListEscrowPayments(ctx context.Context, filter ListEscrowFilter) ([]*types.EscrowPayment, error)
}

type escrowService struct {
	db             *gorm.DB
	log            *logger.Logger
	escrows        repos.EscrowRepo
	earnings       repos.EarningRepo
	contracts      repos.ContractRepo
	milestones     repos.MilestoneRepo
	creators       repos.CreatorRepo
	gateway        stripe.Gateway
	payees         *payeecache.Cache
	gatewayTimeout time.Duration
}

func NewEscrowService(
	db *gorm.DB,
	baseLog *logger.Logger,
	escrows repos.EscrowRepo,
	earnings repos.EarningRepo,
	contracts repos.ContractRepo,
	milestones repos.MilestoneRepo,
	creators repos.CreatorRepo,
	gateway stripe.Gateway,
	payees *payeecache.Cache,
	gatewayTimeout time.Duration,
) EscrowService {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}
	return &escrowService{
		db:             db,
		log:            baseLog.With("service", "EscrowService"),
		escrows:        escrows,
		earnings:       earnings,
		contracts:      contracts,
		milestones:     milestones,
		creators:       creators,
		gateway:        gateway,
		payees:         payees,
		gatewayTimeout: gatewayTimeout,
	}
}

func (s *escrowService) CreateEscrowPayment(ctx context.Context, contractID uuid.UUID, in CreateEscrowInput) (*types.EscrowPayment, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, "", apperr.ErrUnauthorized
	}
	if in.Amount.IsNegative() || in.Amount.IsZero() {
		return nil, "", fmt.Errorf("%w: amount must be positive", apperr.ErrInvalidArgument)
	}

	dbc := dbctx.Context{Ctx: ctx}
	contract, err := s.contracts.GetByID(dbc, contractID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load contract: %w", err)
	}
	if contract == nil {
		return nil, "", fmt.Errorf("%w: contract", apperr.ErrNotFound)
	}
	if rd.UserID != contract.BrandID {
		return nil, "", fmt.Errorf("%w: only the brand can fund escrow", apperr.ErrUnauthorized)
	}
	if contract.Status != types.ContractStatusActive {
		return nil, "", fmt.Errorf("%w: contract is %s", apperr.ErrInvalidState, contract.Status)
	}
	if in.MilestoneID != nil {
		milestone, err := s.milestones.GetByID(dbc, *in.MilestoneID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load milestone: %w", err)
		}
		if milestone == nil || milestone.ContractID != contract.ID {
			return nil, "", fmt.Errorf("%w: milestone", apperr.ErrNotFound)
		}
	}

	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = contract.Currency
	}
	row := &types.EscrowPayment{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		MilestoneID: in.MilestoneID,
		Amount:      in.Amount,
		Currency:    currency,
		Status:      types.EscrowStatusHeld,
	}
	// Row first, processor second. If the hold fails the row is removed so a
	// failed attempt leaves no trace; the delete only matches rows without a
	// gateway ref.
	if _, err := s.escrows.Create(dbc, []*types.EscrowPayment{row}); err != nil {
		return nil, "", fmt.Errorf("failed to create escrow row: %w", err)
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	hold, err := s.gateway.CreateHold(gctx, in.Amount, currency, map[string]string{
		MetadataEscrowID:   row.ID.String(),
		MetadataContractID: contract.ID.String(),
	})
	if err != nil {
		if delErr := s.escrows.Delete(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, row.ID); delErr != nil {
			s.log.Error("failed to compensate escrow row after hold failure",
				"escrow_id", row.ID.String(), "error", delErr.Error())
		}
		return nil, "", fmt.Errorf("failed to create hold: %w", err)
	}

	if err := s.escrows.SetGatewayRef(dbc, row.ID, hold.HoldID); err != nil {
		return nil, "", fmt.Errorf("failed to persist gateway ref: %w", err)
	}
	row.GatewayRef = &hold.HoldID
	s.log.Info("escrow hold created",
		"escrow_id", row.ID.String(),
		"contract_id", contract.ID.String(),
		"amount", row.Amount.String())
	return row, hold.ClientSecret, nil
}

func (s *escrowService) ReleaseEscrowPayment(ctx context.Context, escrowID uuid.UUID, reason string) (*types.EscrowPayment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	dbc := dbctx.Context{Ctx: ctx}
	escrow, err := s.escrows.GetByID(dbc, escrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}
	if escrow == nil {
		return nil, fmt.Errorf("%w: escrow payment", apperr.ErrNotFound)
	}
	contract, err := s.contracts.GetByID(dbc, escrow.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	if contract == nil || rd.UserID != contract.BrandID {
		return nil, fmt.Errorf("%w: only the brand can release escrow", apperr.ErrUnauthorized)
	}

	payeeAccount, err := s.resolvePayee(ctx, contract.CreatorID)
	if err != nil {
		return nil, err
	}

	// The claim is the mutual-exclusion point: of N concurrent release
	// requests exactly one flips the row to release_pending. release_failed
	// rows may be reclaimed for another attempt.
	claimed, err := s.escrows.ClaimTransition(dbc, escrow.ID,
		[]string{types.EscrowStatusHeld, types.EscrowStatusReleaseFailed},
		types.EscrowStatusReleasePending, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to claim escrow for release: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: escrow is not releasable (status %s)", apperr.ErrInvalidState, escrow.Status)
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	transfer, err := s.gateway.Transfer(gctx, escrow.Amount, escrow.Currency, payeeAccount, map[string]string{
		MetadataEscrowID:   escrow.ID.String(),
		MetadataContractID: contract.ID.String(),
	})
	if err != nil {
		if stripe.IsAmbiguous(err) {
			// Outcome unknown. The row stays release_pending; the webhook
			// reconciler settles it either way.
			s.log.Warn("transfer outcome ambiguous, leaving escrow pending",
				"escrow_id", escrow.ID.String(), "error", err.Error())
			return nil, fmt.Errorf("transfer not confirmed: %w", err)
		}
		revertCtx := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
		if _, revertErr := s.escrows.ClaimTransition(revertCtx, escrow.ID,
			[]string{types.EscrowStatusReleasePending}, types.EscrowStatusHeld, nil); revertErr != nil {
			s.log.Error("failed to revert escrow claim after transfer failure",
				"escrow_id", escrow.ID.String(), "error", revertErr.Error())
		}
		return nil, fmt.Errorf("failed to transfer funds: %w", err)
	}

	out, err := s.finalizeRelease(context.WithoutCancel(ctx), escrow, contract, transfer.TransferID, reason)
	if err != nil {
		return nil, err
	}
	s.log.Info("escrow released",
		"escrow_id", escrow.ID.String(),
		"transfer_ref", transfer.TransferID,
		"amount", escrow.Amount.String())
	return out, nil
}

func (s *escrowService) finalizeRelease(ctx context.Context, escrow *types.EscrowPayment, contract *types.Contract, transferRef, reason string) (*types.EscrowPayment, error) {
	return finalizeEscrowRelease(ctx, s.db, s.escrows, s.earnings, s.milestones, escrow, contract, transferRef, reason)
}

// finalizeEscrowRelease records a confirmed transfer: released status, the
// commission earning, and the milestone paid flip happen in one DB
// transaction. The reconciler uses the same path when it repairs an ambiguous
// transfer from a webhook.
func finalizeEscrowRelease(
	ctx context.Context,
	db *gorm.DB,
	escrowRepo repos.EscrowRepo,
	earningRepo repos.EarningRepo,
	milestoneRepo repos.MilestoneRepo,
	escrow *types.EscrowPayment,
	contract *types.Contract,
	transferRef, reason string,
) (*types.EscrowPayment, error) {
	var out *types.EscrowPayment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"transfer_ref": transferRef,
			"released_at":  now,
			"failure_code": nil,
		}
		if reason != "" {
			updates["release_reason"] = reason
		}
		done, err := escrowRepo.ClaimTransition(dbc, escrow.ID,
			[]string{types.EscrowStatusReleasePending},
			types.EscrowStatusReleased, updates)
		if err != nil {
			return fmt.Errorf("failed to mark escrow released: %w", err)
		}
		if !done {
			// Someone else (the reconciler) already settled the row.
			refreshed, err := escrowRepo.GetByID(dbc, escrow.ID)
			if err != nil {
				return err
			}
			out = refreshed
			return nil
		}

		credited, err := earningRepo.SumForEscrow(dbc, escrow.ID, fees.EarningTypeCommission)
		if err != nil {
			return fmt.Errorf("failed to check existing earning: %w", err)
		}
		if credited.Sign() <= 0 {
			// The transfer moved the full escrow amount, so the ledger entry
			// carries the full amount. Platform fees apply to performance
			// earnings, not escrowed contract funds.
			escrowID := escrow.ID
			contractID := contract.ID
			entry := &types.CreatorEarning{
				ID:          uuid.New(),
				CreatorID:   contract.CreatorID,
				ContractID:  &contractID,
				EscrowID:    &escrowID,
				Amount:      escrow.Amount,
				Type:        fees.EarningTypeCommission,
				Description: fmt.Sprintf("escrow release for contract %s", contract.Title),
			}
			if _, err := earningRepo.Append(dbc, []*types.CreatorEarning{entry}); err != nil {
				return fmt.Errorf("failed to append earning: %w", err)
			}
		}

		if escrow.MilestoneID != nil {
			if _, err := milestoneRepo.UpdateFieldsIfStatus(dbc, *escrow.MilestoneID,
				types.MilestoneStatusApproved,
				map[string]interface{}{"status": types.MilestoneStatusPaid}); err != nil {
				return fmt.Errorf("failed to mark milestone paid: %w", err)
			}
		}

		refreshed, err := escrowRepo.GetByID(dbc, escrow.ID)
		if err != nil {
			return err
		}
		out = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *escrowService) RefundEscrowPayment(ctx context.Context, escrowID uuid.UUID, reason string) (*types.EscrowPayment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	dbc := dbctx.Context{Ctx: ctx}
	escrow, err := s.escrows.GetByID(dbc, escrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}
	if escrow == nil {
		return nil, fmt.Errorf("%w: escrow payment", apperr.ErrNotFound)
	}
	contract, err := s.contracts.GetByID(dbc, escrow.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	if contract == nil || rd.UserID != contract.BrandID {
		return nil, fmt.Errorf("%w: only the brand can refund escrow", apperr.ErrUnauthorized)
	}
	if escrow.GatewayRef == nil {
		return nil, fmt.Errorf("%w: escrow has no confirmed hold", apperr.ErrInvalidState)
	}

	claimed, err := s.escrows.ClaimTransition(dbc, escrow.ID,
		[]string{types.EscrowStatusHeld},
		types.EscrowStatusRefundPending, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to claim escrow for refund: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: escrow is not refundable (status %s)", apperr.ErrInvalidState, escrow.Status)
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	if err := s.gateway.CancelHold(gctx, *escrow.GatewayRef); err != nil {
		if stripe.IsAmbiguous(err) {
			s.log.Warn("hold cancel outcome ambiguous, leaving escrow pending",
				"escrow_id", escrow.ID.String(), "error", err.Error())
			return nil, fmt.Errorf("refund not confirmed: %w", err)
		}
		revertCtx := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
		if _, revertErr := s.escrows.ClaimTransition(revertCtx, escrow.ID,
			[]string{types.EscrowStatusRefundPending}, types.EscrowStatusHeld, nil); revertErr != nil {
			s.log.Error("failed to revert escrow claim after cancel failure",
				"escrow_id", escrow.ID.String(), "error", revertErr.Error())
		}
		return nil, fmt.Errorf("failed to cancel hold: %w", err)
	}

	finalCtx := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	updates := map[string]interface{}{}
	if reason != "" {
		updates["refund_reason"] = reason
	}
	if _, err := s.escrows.ClaimTransition(finalCtx, escrow.ID,
		[]string{types.EscrowStatusRefundPending},
		types.EscrowStatusRefunded, updates); err != nil {
		return nil, fmt.Errorf("failed to mark escrow refunded: %w", err)
	}
	out, err := s.escrows.GetByID(finalCtx, escrow.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("escrow refunded",
		"escrow_id", escrow.ID.String(),
		"amount", escrow.Amount.String())
	return out, nil
}

func (s *escrowService) ListEscrowPayments(ctx context.Context, filter ListEscrowFilter) ([]*types.EscrowPayment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	dbc := dbctx.Context{Ctx: ctx}
	contracts, err := s.contracts.ListForParties(dbc, rd.UserID, rd.UserID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(contracts))
	for _, c := range contracts {
		if filter.ContractID != nil && c.ID != *filter.ContractID {
			continue
		}
		ids = append(ids, c.ID)
	}
	return s.escrows.ListForContracts(dbc, ids, filter.Status)
}

// resolvePayee returns the creator's gateway account id once the account can
// actually receive transfers. The capability flags are cached; a cold cache
// asks the gateway directly.
func (s *escrowService) resolvePayee(ctx context.Context, creatorUserID uuid.UUID) (string, error) {
	creator, err := s.creators.GetByUserID(dbctx.Context{Ctx: ctx}, creatorUserID)
	if err != nil {
		return "", fmt.Errorf("failed to load creator profile: %w", err)
	}
	if creator == nil || creator.StripeAccountID == nil || *creator.StripeAccountID == "" {
		return "", fmt.Errorf("%w: creator has no payee account", apperr.ErrPayeeNotConfigured)
	}
	accountID := *creator.StripeAccountID

	if st, ok := s.payees.Get(ctx, accountID); ok {
		if !st.PayoutsEnabled {
			return "", fmt.Errorf("%w: payee account cannot receive payouts", apperr.ErrPayeeNotConfigured)
		}
		return accountID, nil
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	st, err := s.gateway.GetPayeeAccountStatus(gctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to check payee account: %w", err)
	}
	s.payees.Set(ctx, st)
	if !st.PayoutsEnabled {
		return "", fmt.Errorf("%w: payee account cannot receive payouts", apperr.ErrPayeeNotConfigured)
	}
	return accountID, nil
}
