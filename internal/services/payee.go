package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/collabmarket-backend/internal/data/repos"
	types "github.com/yungbote/collabmarket-backend/internal/domain"
	"github.com/yungbote/collabmarket-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/collabmarket-backend/internal/pkg/errors"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
	"github.com/yungbote/collabmarket-backend/internal/platform/payeecache"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
	"github.com/yungbote/collabmarket-backend/internal/requestdata"
)

type PayeeService interface {
	// SetupPayeeAccount registers the calling creator at the payment
	// processor. Calling it again returns the existing account.
	SetupPayeeAccount(ctx context.Context) (*types.CreatorProfile, error)
	GetPayeeStatus(ctx context.Context) (stripe.AccountStatus, error)
}

type payeeService struct {
	db             *gorm.DB
	log            *logger.Logger
	users          repos.UserRepo
	creators       repos.CreatorRepo
	gateway        stripe.Gateway
	payees         *payeecache.Cache
	gatewayTimeout time.Duration
}

func NewPayeeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	creators repos.CreatorRepo,
	gateway stripe.Gateway,
	payees *payeecache.Cache,
	gatewayTimeout time.Duration,
) PayeeService {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}
	return &payeeService{
		db:             db,
		log:            baseLog.With("service", "PayeeService"),
		users:          users,
		creators:       creators,
		gateway:        gateway,
		payees:         payees,
		gatewayTimeout: gatewayTimeout,
	}
}

func (s *payeeService) SetupPayeeAccount(ctx context.Context) (*types.CreatorProfile, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	if rd.Role != types.RoleCreator {
		return nil, fmt.Errorf("%w: only creators register payee accounts", apperr.ErrUnauthorized)
	}
	dbc := dbctx.Context{Ctx: ctx}
	creator, err := s.creators.GetByUserID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator profile: %w", err)
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: creator profile", apperr.ErrNotFound)
	}
	if creator.StripeAccountID != nil && *creator.StripeAccountID != "" {
		return creator, nil
	}

	user, err := s.users.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	account, err := s.gateway.CreatePayeeAccount(gctx, rd.UserID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create payee account: %w", err)
	}

	if err := s.creators.UpdateFields(dbc, creator.ID, map[string]interface{}{
		"stripe_account_id": account.AccountID,
	}); err != nil {
		return nil, fmt.Errorf("failed to store payee account: %w", err)
	}
	creator.StripeAccountID = &account.AccountID
	s.log.Info("payee account created", "stripe_account", account.AccountID)
	return creator, nil
}

func (s *payeeService) GetPayeeStatus(ctx context.Context) (stripe.AccountStatus, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return stripe.AccountStatus{}, apperr.ErrUnauthorized
	}
	dbc := dbctx.Context{Ctx: ctx}
	creator, err := s.creators.GetByUserID(dbc, rd.UserID)
	if err != nil {
		return stripe.AccountStatus{}, fmt.Errorf("failed to load creator profile: %w", err)
	}
	if creator == nil || creator.StripeAccountID == nil || *creator.StripeAccountID == "" {
		return stripe.AccountStatus{}, fmt.Errorf("%w: creator has no payee account", apperr.ErrPayeeNotConfigured)
	}
	accountID := *creator.StripeAccountID

	if st, ok := s.payees.Get(ctx, accountID); ok {
		return *st, nil
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	st, err := s.gateway.GetPayeeAccountStatus(gctx, accountID)
	if err != nil {
		return stripe.AccountStatus{}, fmt.Errorf("failed to fetch payee status: %w", err)
	}
	s.payees.Set(ctx, st)
	if creator.PayoutsEnabled != st.PayoutsEnabled {
		if err := s.creators.UpdateFields(dbc, creator.ID, map[string]interface{}{
			"payouts_enabled": st.PayoutsEnabled,
		}); err != nil {
			s.log.Warn("failed to sync payouts flag", "error", err.Error())
		}
	}
	return st, nil
}
