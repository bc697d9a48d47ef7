package fees

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFeeAndNetSumToGross(t *testing.T) {
	for _, raw := range []string{"0.01", "0.99", "1.00", "33.33", "100.00", "999.99", "12345.67"} {
		gross := decimal.RequireFromString(raw)
		fee := PlatformFee(gross)
		net := CreatorNet(gross)
		if !fee.Add(net).Equal(gross) {
			t.Fatalf("split of %s: fee=%s net=%s sum=%s", gross, fee, net, fee.Add(net))
		}
		if fee.IsNegative() || net.IsNegative() {
			t.Fatalf("negative component for %s: fee=%s net=%s", gross, fee, net)
		}
	}
}

func TestFeeOnNonPositiveGross(t *testing.T) {
	for _, raw := range []string{"0", "-10.00"} {
		gross := decimal.RequireFromString(raw)
		if !PlatformFee(gross).IsZero() || !CreatorNet(gross).IsZero() {
			t.Fatalf("non-positive gross %s: fee=%s net=%s", gross, PlatformFee(gross), CreatorNet(gross))
		}
	}
}

func TestPerformanceAmountRates(t *testing.T) {
	cases := []struct {
		name        string
		metrics     Metrics
		earningType string
		want        string
	}{
		{"cpm", Metrics{Views: 10000}, EarningTypeCPM, "50.00"},
		{"cpm partial thousand", Metrics{Views: 1500}, EarningTypeCPM, "7.50"},
		{"cpc", Metrics{Clicks: 40}, EarningTypeCPC, "20.00"},
		{"cpv", Metrics{Views: 2500}, EarningTypeCPV, "25.00"},
		{"revenue share", Metrics{Revenue: decimal.RequireFromString("200.00")}, EarningTypeRevenueShare, "90.00"},
	}
	for _, tc := range cases {
		got, err := PerformanceAmount(tc.metrics, tc.earningType)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if want := decimal.RequireFromString(tc.want); !got.Equal(want) {
			t.Fatalf("%s: want=%s got=%s", tc.name, want, got)
		}
	}
}

func TestPerformanceAmountRejectsSettledTypes(t *testing.T) {
	for _, earningType := range []string{EarningTypeCommission, EarningTypePayout, "made_up"} {
		if _, err := PerformanceAmount(Metrics{Views: 100}, earningType); err == nil {
			t.Fatalf("%s: expected error", earningType)
		}
	}
}

func TestPerformanceAmountRejectsNegativeRevenue(t *testing.T) {
	_, err := PerformanceAmount(Metrics{Revenue: decimal.RequireFromString("-1.00")}, EarningTypeRevenueShare)
	if err == nil {
		t.Fatalf("negative revenue: expected error")
	}
}
