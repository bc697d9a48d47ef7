package services

import (
	"context"
	"fmt"
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
	"github.com/yungbote/collabmarket-backend/internal/platform/analytics"
	"github.com/yungbote/collabmarket-backend/internal/requestdata"
)

type ProcessEarningInput struct {
	ContentID   uuid.UUID     `json:"content_id"`
	EarningType string        `json:"earning_type"`
	Metrics     *fees.Metrics `json:"metrics"`
	PeriodFrom  *time.Time    `json:"period_from"`
	PeriodTo    *time.Time    `json:"period_to"`
}

type EarningService interface {
	// ProcessCreatorEarning computes a performance payout for the calling
	// creator: rate table gross, platform fee off the top, one net ledger
	// entry. Metrics not supplied inline are fetched from analytics.
	ProcessCreatorEarning(ctx context.Context, in ProcessEarningInput) (*types.CreatorEarning, error)
	ListEarnings(ctx context.Context, earningType string) ([]*types.CreatorEarning, error)
	TotalEarnings(ctx context.Context) (decimal.Decimal, error)
}

type earningService struct {
	db        *gorm.DB
	log       *logger.Logger
	earnings  repos.EarningRepo
	analytics analytics.Client
}

func NewEarningService(
	db *gorm.DB,
	baseLog *logger.Logger,
	earnings repos.EarningRepo,
	analyticsClient analytics.Client,
) EarningService {
	return &earningService{
		db:        db,
		log:       baseLog.With("service", "EarningService"),
		earnings:  earnings,
		analytics: analyticsClient,
	}
}

func (s *earningService) ProcessCreatorEarning(ctx context.Context, in ProcessEarningInput) (*types.CreatorEarning, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	if rd.Role != types.RoleCreator {
		return nil, fmt.Errorf("%w: only creators process earnings", apperr.ErrUnauthorized)
	}
	if in.ContentID == uuid.Nil {
		return nil, fmt.Errorf("%w: content_id is required", apperr.ErrInvalidArgument)
	}

	metrics := in.Metrics
	if metrics == nil {
		from, to := periodOrDefault(in.PeriodFrom, in.PeriodTo)
		fetched, err := s.analytics.PerformanceMetrics(ctx, in.ContentID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch performance metrics: %w", err)
		}
		metrics = &fetched
	}

	gross, err := fees.PerformanceAmount(*metrics, in.EarningType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	net := fees.CreatorNet(gross)
	contentID := in.ContentID
	entry := &types.CreatorEarning{
		ID:          uuid.New(),
		CreatorID:   rd.UserID,
		ContentID:   &contentID,
		Amount:      net,
		Type:        in.EarningType,
		Description: fmt.Sprintf("%s payout for content %s", in.EarningType, in.ContentID),
	}
	if _, err := s.earnings.Append(dbctx.Context{Ctx: ctx}, []*types.CreatorEarning{entry}); err != nil {
		return nil, fmt.Errorf("failed to append earning: %w", err)
	}
	s.log.Info("creator earning processed",
		"earning_id", entry.ID.String(),
		"type", entry.Type,
		"gross", gross.String(),
		"net", net.String())
	return entry, nil
}

func (s *earningService) ListEarnings(ctx context.Context, earningType string) ([]*types.CreatorEarning, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.ErrUnauthorized
	}
	return s.earnings.ListByCreator(dbctx.Context{Ctx: ctx}, rd.UserID, earningType)
}

func (s *earningService) TotalEarnings(ctx context.Context) (decimal.Decimal, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return decimal.Zero, apperr.ErrUnauthorized
	}
	return s.earnings.SumByCreator(dbctx.Context{Ctx: ctx}, rd.UserID)
}

func periodOrDefault(from, to *time.Time) (time.Time, time.Time) {
	end := time.Now().UTC()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, -1, 0)
	if from != nil {
		start = *from
	}
	return start, end
}
