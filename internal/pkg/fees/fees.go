package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Earning types shared by the escrow release path and the performance payout path.
const (
	EarningTypeCPM          = "cpm"
	EarningTypeCPC          = "cpc"
	EarningTypeCPV          = "cpv"
	EarningTypeRevenueShare = "revenue_share"
	EarningTypeCommission   = "commission"
	EarningTypePayout       = "payout"
)

// PlatformFeeRate is the flat platform cut applied to every gross amount.
var PlatformFeeRate = decimal.NewFromFloat(0.10)

// Performance rate table. CPM is per 1000 views, CPC per click, CPV per view.
var (
	cpmRatePer1000 = decimal.NewFromFloat(5.00)
	cpcRatePerClick = decimal.NewFromFloat(0.50)
	cpvRatePerView  = decimal.NewFromFloat(0.01)

	revenueShareRate = decimal.NewFromFloat(0.45)
)

// Metrics is the performance snapshot consumed by the rate table.
// Revenue is only meaningful for revenue-share earnings.
type Metrics struct {
	Views    int64           `json:"views"`
	Clicks   int64           `json:"clicks"`
	Shares   int64           `json:"shares"`
	Comments int64           `json:"comments"`
	Likes    int64           `json:"likes"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// PlatformFee returns the platform cut of gross, rounded to cents.
func PlatformFee(gross decimal.Decimal) decimal.Decimal {
	if gross.Sign() <= 0 {
		return decimal.Zero
	}
	return gross.Mul(PlatformFeeRate).Round(2)
}

// CreatorNet returns gross minus the platform fee.
// PlatformFee(gross) + CreatorNet(gross) == gross for all gross >= 0.
func CreatorNet(gross decimal.Decimal) decimal.Decimal {
	if gross.Sign() <= 0 {
		return decimal.Zero
	}
	return gross.Sub(PlatformFee(gross))
}

// PerformanceAmount maps a metrics snapshot to a gross amount for the given
// earning type. Escrow-settled types (commission, payout) have no rate table
// entry and are rejected.
func PerformanceAmount(m Metrics, earningType string) (decimal.Decimal, error) {
	switch earningType {
	case EarningTypeCPM:
		views := decimal.NewFromInt(m.Views)
		return views.Div(decimal.NewFromInt(1000)).Mul(cpmRatePer1000).Round(2), nil
	case EarningTypeCPC:
		return decimal.NewFromInt(m.Clicks).Mul(cpcRatePerClick).Round(2), nil
	case EarningTypeCPV:
		return decimal.NewFromInt(m.Views).Mul(cpvRatePerView).Round(2), nil
	case EarningTypeRevenueShare:
		if m.Revenue.Sign() < 0 {
			return decimal.Zero, fmt.Errorf("negative revenue in metrics")
		}
		return m.Revenue.Mul(revenueShareRate).Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("no rate table for earning type %q", earningType)
	}
}
