package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/collabmarket-backend/internal/data/repos"
	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/fees"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/platform/payeecache"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
)

const reconcilerLockTTL = 30 * time.Second

// ReconcilerService consumes verified gateway events and repairs any local
// state a synchronous call could not settle. Every handler is idempotent:
// webhook deliveries arrive at-least-once and out of order.
type ReconcilerService interface {
	HandleEvent(ctx context.Context, event stripe.Event) error
}

type reconcilerService struct {
	db         *gorm.DB
	log        *logger.Logger
	escrows    repos.EscrowRepo
	earnings   repos.EarningRepo
	contracts  repos.ContractRepo
	milestones repos.MilestoneRepo
	creators   repos.CreatorRepo
	payees     *payeecache.Cache
	locker     *redislock.Client
}

func NewReconcilerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	escrows repos.EscrowRepo,
	earnings repos.EarningRepo,
	contracts repos.ContractRepo,
	milestones repos.MilestoneRepo,
	creators repos.CreatorRepo,
	payees *payeecache.Cache,
	locker *redislock.Client,
) ReconcilerService {
	return &reconcilerService{
		db:         db,
		log:        baseLog.With("service", "ReconcilerService"),
		escrows:    escrows,
		earnings:   earnings,
		contracts:  contracts,
		milestones: milestones,
		creators:   creators,
		payees:     payees,
		locker:     locker,
	}
}

func (s *reconcilerService) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeHoldConfirmed, stripe.EventTypeHoldCanceled,
		stripe.EventTypeTransferSucceeded, stripe.EventTypeTransferFailed:
		escrow, err := s.resolveEscrow(ctx, event)
		if err != nil {
			return err
		}
		if escrow == nil {
			s.log.Warn("gateway event references unknown escrow",
				"event_id", event.ID, "event_type", event.Type, "object_id", event.ObjectID)
			return nil
		}
		unlock := s.lockEscrow(ctx, escrow.ID)
		defer unlock()
		switch event.Type {
		case stripe.EventTypeHoldConfirmed:
			return s.handleHoldConfirmed(ctx, escrow, event)
		case stripe.EventTypeHoldCanceled:
			return s.handleHoldCanceled(ctx, escrow, event)
		case stripe.EventTypeTransferSucceeded:
			return s.handleTransferSucceeded(ctx, escrow, event)
		default:
			return s.handleTransferFailed(ctx, escrow, event)
		}
	case stripe.EventTypeAccountUpdated:
		return s.handleAccountUpdated(ctx, event)
	default:
		s.log.Info("ignoring gateway event", "event_id", event.ID, "event_type", event.Type)
		return nil
	}
}

// lockEscrow serializes reconciler work per escrow row so duplicate webhook
// deliveries never interleave. Lock failure is not fatal: the conditional
// updates underneath remain safe, the lock only avoids wasted work.
func (s *reconcilerService) lockEscrow(ctx context.Context, escrowID uuid.UUID) func() {
	if s.locker == nil {
		return func() {}
	}
	key := fmt.Sprintf("reconcile:escrow:%s", escrowID)
	lock, err := s.locker.Obtain(ctx, key, reconcilerLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		s.log.Warn("could not obtain reconciler lock, proceeding", "escrow_id", escrowID.String())
		return func() {}
	}
	if err != nil {
		s.log.Warn("error obtaining reconciler lock, proceeding",
			"escrow_id", escrowID.String(), "error", err.Error())
		return func() {}
	}
	return func() {
		if rErr := lock.Release(context.WithoutCancel(ctx)); rErr != nil && !errors.Is(rErr, redislock.ErrLockNotHeld) {
			s.log.Warn("failed to release reconciler lock",
				"escrow_id", escrowID.String(), "error", rErr.Error())
		}
	}
}

func (s *reconcilerService) resolveEscrow(ctx context.Context, event stripe.Event) (*types.EscrowPayment, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if event.EscrowID != uuid.Nil {
		escrow, err := s.escrows.GetByID(dbc, event.EscrowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load escrow for event: %w", err)
		}
		if escrow != nil {
			return escrow, nil
		}
	}
	if event.ObjectID != "" {
		escrow, err := s.escrows.GetByGatewayRef(dbc, event.ObjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load escrow by gateway ref: %w", err)
		}
		return escrow, nil
	}
	return nil, nil
}

func (s *reconcilerService) handleHoldConfirmed(ctx context.Context, escrow *types.EscrowPayment, event stripe.Event) error {
	if escrow.GatewayRef != nil && *escrow.GatewayRef != "" {
		// Normal case: the synchronous create already stored the ref.
		return nil
	}
	if event.ObjectID == "" {
		s.log.Warn("hold confirmation without object id", "escrow_id", escrow.ID.String(), "event_id", event.ID)
		return nil
	}
	s.log.Warn("repairing missing gateway ref from webhook",
		"escrow_id", escrow.ID.String(), "gateway_ref", event.ObjectID)
	return s.escrows.SetGatewayRef(dbctx.Context{Ctx: ctx}, escrow.ID, event.ObjectID)
}

func (s *reconcilerService) handleHoldCanceled(ctx context.Context, escrow *types.EscrowPayment, event stripe.Event) error {
	done, err := s.escrows.ClaimTransition(dbctx.Context{Ctx: ctx}, escrow.ID,
		[]string{types.EscrowStatusRefundPending, types.EscrowStatusHeld},
		types.EscrowStatusRefunded, nil)
	if err != nil {
		return fmt.Errorf("failed to settle canceled hold: %w", err)
	}
	if done {
		s.log.Info("escrow refunded via webhook", "escrow_id", escrow.ID.String(), "event_id", event.ID)
	}
	return nil
}

func (s *reconcilerService) handleTransferSucceeded(ctx context.Context, escrow *types.EscrowPayment, event stripe.Event) error {
	if escrow.Status == types.EscrowStatusReleased {
		return nil
	}
	if escrow.Status != types.EscrowStatusReleasePending {
		s.log.Warn("transfer succeeded for escrow not awaiting release",
			"escrow_id", escrow.ID.String(), "status", escrow.Status, "event_id", event.ID)
		return nil
	}
	contract, err := s.contracts.GetByID(dbctx.Context{Ctx: ctx}, escrow.ContractID)
	if err != nil {
		return fmt.Errorf("failed to load contract for repair: %w", err)
	}
	if contract == nil {
		return fmt.Errorf("escrow %s references missing contract %s", escrow.ID, escrow.ContractID)
	}
	if _, err := finalizeEscrowRelease(ctx, s.db, s.escrows, s.earnings, s.milestones,
		escrow, contract, event.ObjectID, "confirmed by gateway event"); err != nil {
		return err
	}
	s.log.Info("escrow release repaired from webhook",
		"escrow_id", escrow.ID.String(), "transfer_ref", event.ObjectID)
	return nil
}

func (s *reconcilerService) handleTransferFailed(ctx context.Context, escrow *types.EscrowPayment, event stripe.Event) error {
	wasReleased := escrow.Status == types.EscrowStatusReleased
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		updates := map[string]interface{}{}
		if event.FailureCode != "" {
			updates["failure_code"] = event.FailureCode
		}
		done, err := s.escrows.ClaimTransition(dbc, escrow.ID,
			[]string{types.EscrowStatusReleasePending, types.EscrowStatusReleased},
			types.EscrowStatusReleaseFailed, updates)
		if err != nil {
			return fmt.Errorf("failed to mark escrow release_failed: %w", err)
		}
		if !done {
			return nil
		}
		s.log.Warn("escrow transfer failed, marked for re-release",
			"escrow_id", escrow.ID.String(),
			"failure_code", event.FailureCode,
			"event_id", event.ID)

		// A transfer that had already been credited gets its commission
		// reversed with a negative entry; the ledger stays append-only.
		if !wasReleased {
			return nil
		}
		credited, err := s.earnings.SumForEscrow(dbc, escrow.ID, fees.EarningTypeCommission)
		if err != nil {
			return fmt.Errorf("failed to check credited earning: %w", err)
		}
		if credited.Sign() <= 0 {
			return nil
		}
		contract, err := s.contracts.GetByID(dbc, escrow.ContractID)
		if err != nil {
			return fmt.Errorf("failed to load contract for reversal: %w", err)
		}
		if contract == nil {
			return fmt.Errorf("escrow %s references missing contract %s", escrow.ID, escrow.ContractID)
		}
		escrowID := escrow.ID
		contractID := contract.ID
		reversal := &types.CreatorEarning{
			ID:          uuid.New(),
			CreatorID:   contract.CreatorID,
			ContractID:  &contractID,
			EscrowID:    &escrowID,
			Amount:      credited.Neg(),
			Type:        fees.EarningTypeCommission,
			Description: fmt.Sprintf("reversal: transfer failed (%s)", event.FailureCode),
		}
		if _, err := s.earnings.Append(dbc, []*types.CreatorEarning{reversal}); err != nil {
			return fmt.Errorf("failed to append reversal earning: %w", err)
		}
		return nil
	})
}

func (s *reconcilerService) handleAccountUpdated(ctx context.Context, event stripe.Event) error {
	if event.Account == nil || event.Account.AccountID == "" {
		s.log.Warn("account update without account payload", "event_id", event.ID)
		return nil
	}
	st := *event.Account
	s.payees.Set(ctx, st)

	dbc := dbctx.Context{Ctx: ctx}
	creator, err := s.creators.GetByStripeAccountID(dbc, st.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load creator for account update: %w", err)
	}
	if creator == nil {
		s.log.Info("account update for unknown payee", "stripe_account", st.AccountID)
		return nil
	}
	if creator.PayoutsEnabled == st.PayoutsEnabled {
		return nil
	}
	if err := s.creators.UpdateFields(dbc, creator.ID, map[string]interface{}{
		"payouts_enabled": st.PayoutsEnabled,
	}); err != nil {
		return fmt.Errorf("failed to update payouts flag: %w", err)
	}
	s.log.Info("payee capability updated",
		"stripe_account", st.AccountID,
		"payouts_enabled", st.PayoutsEnabled)
	return nil
}
