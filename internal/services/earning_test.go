package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	apperr "github.com/yungbote/collabmarket-backend/internal/pkg/errors"
	"github.com/yungbote/collabmarket-backend/internal/pkg/fees"
)

func TestProcessCreatorEarningWithInlineMetrics(t *testing.T) {
	earnings := newFakeEarningRepo()
	analytics := &fakeAnalytics{}
	svc := NewEarningService(testDB(t), testLogger(t), earnings, analytics)
	creatorID := uuid.New()

	entry, err := svc.ProcessCreatorEarning(authedCtx(creatorID, types.RoleCreator), ProcessEarningInput{
		ContentID:   uuid.New(),
		EarningType: fees.EarningTypeCPM,
		Metrics:     &fees.Metrics{Views: 10000},
	})
	if err != nil {
		t.Fatalf("ProcessCreatorEarning: %v", err)
	}
	// 10000 views at 5.00 per 1000 is 50.00 gross, 45.00 net of the 10% fee.
	if want := decimal.RequireFromString("45.00"); !entry.Amount.Equal(want) {
		t.Fatalf("net amount: want=%s got=%s", want, entry.Amount)
	}
	if entry.CreatorID != creatorID || entry.Type != fees.EarningTypeCPM {
		t.Fatalf("entry attribution: got=%+v", entry)
	}
	if analytics.calls != 0 {
		t.Fatalf("analytics calls with inline metrics: want=0 got=%d", analytics.calls)
	}
}

func TestProcessCreatorEarningFetchesMetrics(t *testing.T) {
	earnings := newFakeEarningRepo()
	analytics := &fakeAnalytics{metrics: fees.Metrics{Clicks: 40}}
	svc := NewEarningService(testDB(t), testLogger(t), earnings, analytics)

	entry, err := svc.ProcessCreatorEarning(authedCtx(uuid.New(), types.RoleCreator), ProcessEarningInput{
		ContentID:   uuid.New(),
		EarningType: fees.EarningTypeCPC,
	})
	if err != nil {
		t.Fatalf("ProcessCreatorEarning: %v", err)
	}
	if analytics.calls != 1 {
		t.Fatalf("analytics calls: want=1 got=%d", analytics.calls)
	}
	// 40 clicks at 0.50 is 20.00 gross, 18.00 net.
	if want := decimal.RequireFromString("18.00"); !entry.Amount.Equal(want) {
		t.Fatalf("net amount: want=%s got=%s", want, entry.Amount)
	}
}

func TestProcessCreatorEarningRejectsSettledTypes(t *testing.T) {
	svc := NewEarningService(testDB(t), testLogger(t), newFakeEarningRepo(), &fakeAnalytics{})

	for _, earningType := range []string{fees.EarningTypeCommission, fees.EarningTypePayout} {
		_, err := svc.ProcessCreatorEarning(authedCtx(uuid.New(), types.RoleCreator), ProcessEarningInput{
			ContentID:   uuid.New(),
			EarningType: earningType,
			Metrics:     &fees.Metrics{Views: 100},
		})
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Fatalf("%s: want=%v got=%v", earningType, apperr.ErrInvalidArgument, err)
		}
	}
}

func TestProcessCreatorEarningCreatorOnly(t *testing.T) {
	svc := NewEarningService(testDB(t), testLogger(t), newFakeEarningRepo(), &fakeAnalytics{})

	_, err := svc.ProcessCreatorEarning(authedCtx(uuid.New(), types.RoleBrand), ProcessEarningInput{
		ContentID:   uuid.New(),
		EarningType: fees.EarningTypeCPM,
		Metrics:     &fees.Metrics{Views: 100},
	})
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("brand processing earning: want=%v got=%v", apperr.ErrUnauthorized, err)
	}
}

func TestTotalEarningsSumsLedger(t *testing.T) {
	earnings := newFakeEarningRepo()
	svc := NewEarningService(testDB(t), testLogger(t), earnings, &fakeAnalytics{})
	creatorID := uuid.New()
	escrowID := uuid.New()

	earnings.Append(dbcBG(), []*types.CreatorEarning{
		{ID: uuid.New(), CreatorID: creatorID, EscrowID: &escrowID, Amount: decimal.RequireFromString("90.00"), Type: fees.EarningTypeCommission},
		{ID: uuid.New(), CreatorID: creatorID, EscrowID: &escrowID, Amount: decimal.RequireFromString("-90.00"), Type: fees.EarningTypeCommission},
		{ID: uuid.New(), CreatorID: creatorID, Amount: decimal.RequireFromString("45.00"), Type: fees.EarningTypeCPM},
	})

	total, err := svc.TotalEarnings(authedCtx(creatorID, types.RoleCreator))
	if err != nil {
		t.Fatalf("TotalEarnings: %v", err)
	}
	if want := decimal.RequireFromString("45.00"); !total.Equal(want) {
		t.Fatalf("total: want=%s got=%s", want, total)
	}

	byType, err := svc.ListEarnings(authedCtx(creatorID, types.RoleCreator), fees.EarningTypeCommission)
	if err != nil {
		t.Fatalf("ListEarnings: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("commission entries: want=2 got=%d", len(byType))
	}
}
