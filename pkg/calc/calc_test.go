package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpectedDividends tests income projection across scenarios and tax
func TestExpectedDividends(t *testing.T) {
	stats := DividendStats{Min: 0.5, Avg: 1.0, Max: 1.5}
	projection := ExpectedDividends(100, stats, 4)

	// Pre-tax average: 100 shares * $1 = $100 per payout, $400 annual
	assert.Equal(t, 100.0, projection.PreTax.Avg.PerPayout)
	assert.Equal(t, 400.0, projection.PreTax.Avg.Annual)
	assert.InDelta(t, 400.0/12, projection.PreTax.Avg.Monthly, 1e-9)

	assert.Equal(t, 150.0, projection.PreTax.Hope.PerPayout)
	assert.Equal(t, 50.0, projection.PreTax.Despair.PerPayout)

	// Post-tax applies the 0.85 withholding factor
	assert.InDelta(t, 85.0, projection.PostTax.Avg.PerPayout, 1e-9)
	assert.InDelta(t, 340.0, projection.PostTax.Avg.Annual, 1e-9)
}

// TestExpectedDividends_ZeroInputs tests the zero-estimate guards
func TestExpectedDividends_ZeroInputs(t *testing.T) {
	stats := DividendStats{Min: 0.5, Avg: 1.0, Max: 1.5}

	assert.Equal(t, IncomeEstimate{}, ExpectedDividends(0, stats, 4).PreTax.Avg)
	assert.Equal(t, IncomeEstimate{}, ExpectedDividends(100, stats, 0).PreTax.Avg)
	assert.Equal(t, IncomeEstimate{}, ExpectedDividends(100, DividendStats{}, 4).PreTax.Avg)
}

// TestGoalMonths tests the reinvestment goal projection
func TestGoalMonths(t *testing.T) {
	// 100 shares at $10 = $1000; monthly payout of $1/share grows assets by
	// roughly 10% per month with no price drift, so $2000 is hit fast
	params := GoalParams{
		OwnedShares:      100,
		CurrentPrice:     10,
		TargetAmount:     2000,
		PayoutsPerYear:   12,
		AnnualGrowthRate: 0,
	}
	months := GoalMonths(params, 1.0)
	require.False(t, math.IsInf(months, 1))
	// (1.1)^8 ≈ 2.14, so the target falls in month 8
	assert.Equal(t, 8.0, months)
}

// TestGoalMonths_GrowthOnlyStillCounts tests that price drift contributes
func TestGoalMonths_GrowthOnlyStillCounts(t *testing.T) {
	withGrowth := GoalMonths(GoalParams{
		OwnedShares: 100, CurrentPrice: 10, TargetAmount: 1500,
		PayoutsPerYear: 12, AnnualGrowthRate: 0.10,
	}, 0.1)
	withoutGrowth := GoalMonths(GoalParams{
		OwnedShares: 100, CurrentPrice: 10, TargetAmount: 1500,
		PayoutsPerYear: 12, AnnualGrowthRate: 0,
	}, 0.1)
	assert.Less(t, withGrowth, withoutGrowth)
}

// TestGoalMonths_Guards tests the zero and unreachable sentinels
func TestGoalMonths_Guards(t *testing.T) {
	base := GoalParams{
		OwnedShares: 100, CurrentPrice: 10, TargetAmount: 2000, PayoutsPerYear: 12,
	}

	noShares := base
	noShares.OwnedShares = 0
	assert.Equal(t, 0.0, GoalMonths(noShares, 1))

	alreadyThere := base
	alreadyThere.TargetAmount = 500
	assert.Equal(t, 0.0, GoalMonths(alreadyThere, 1))

	assert.Equal(t, 0.0, GoalMonths(base, 0))

	// A vanishing dividend with no growth never reaches the target
	unreachable := GoalMonths(base, 1e-12)
	assert.True(t, math.IsInf(unreachable, 1))
}

// TestGoalMonthsScenarios tests that hope beats despair
func TestGoalMonthsScenarios(t *testing.T) {
	params := GoalParams{
		OwnedShares: 100, CurrentPrice: 10, TargetAmount: 3000, PayoutsPerYear: 12,
	}
	scenarios := GoalMonthsScenarios(params, DividendStats{Min: 0.2, Avg: 0.5, Max: 1.0})
	assert.Less(t, scenarios.Hope, scenarios.Avg)
	assert.Less(t, scenarios.Avg, scenarios.Despair)
}

// TestRecoveryMonths tests both recovery figures on a simple position
func TestRecoveryMonths(t *testing.T) {
	// $1000 principal, nothing collected yet, $100 per monthly payout
	params := RecoveryParams{
		Quantity:       100,
		AvgPrice:       10,
		CurrentPrice:   10,
		PayoutsPerYear: 12,
	}
	times := RecoveryMonths(params, 1.0)

	// Fixed shares: 1000 / 100 = 10 payouts = 10 months
	assert.InDelta(t, 10.0, times.WithoutReinvest, 1e-9)
	// Reinvesting shortens it: 1000*(1.1^n - 1) crosses 1000 at n = 8
	assert.Equal(t, 8.0, times.WithReinvest)
	assert.Less(t, times.WithReinvest, times.WithoutReinvest)
}

// TestRecoveryMonths_TaxAndAccumulated tests the withholding factor and
// already-collected dividends
func TestRecoveryMonths_TaxAndAccumulated(t *testing.T) {
	params := RecoveryParams{
		Quantity:            100,
		AvgPrice:            10,
		CurrentPrice:        10,
		AccumulatedDividend: 400,
		PayoutsPerYear:      12,
		ApplyTax:            true,
	}
	times := RecoveryMonths(params, 1.0)

	// Remaining 600 at 85 post-tax per payout
	assert.InDelta(t, 600.0/85.0, times.WithoutReinvest, 1e-9)
}

// TestRecoveryMonths_NotApplicable tests the sentinel cases
func TestRecoveryMonths_NotApplicable(t *testing.T) {
	recovered := RecoveryParams{
		Quantity: 100, AvgPrice: 10, CurrentPrice: 10,
		AccumulatedDividend: 2000, PayoutsPerYear: 12,
	}
	times := RecoveryMonths(recovered, 1.0)
	assert.Equal(t, float64(NotApplicable), times.WithReinvest)
	assert.Equal(t, float64(NotApplicable), times.WithoutReinvest)

	noDividend := RecoveryParams{Quantity: 100, AvgPrice: 10, CurrentPrice: 10, PayoutsPerYear: 12}
	assert.Equal(t, float64(NotApplicable), RecoveryMonths(noDividend, 0).WithReinvest)
}

// TestRecoveryMonths_QuarterlyPayouts tests the payout-to-month conversion
func TestRecoveryMonths_QuarterlyPayouts(t *testing.T) {
	params := RecoveryParams{
		Quantity: 100, AvgPrice: 10, CurrentPrice: 10, PayoutsPerYear: 4,
	}
	times := RecoveryMonths(params, 1.0)
	// 10 payouts at quarterly frequency is 30 months
	assert.InDelta(t, 30.0, times.WithoutReinvest, 1e-9)
}
