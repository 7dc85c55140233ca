package calc

import "math"

// maxGoalMonths caps the goal projection at 100 years.
const maxGoalMonths = 1200

// GoalParams describes a reinvestment target: grow the current position to
// TargetAmount by reinvesting every dividend, with the share price drifting
// at AnnualGrowthRate.
type GoalParams struct {
	OwnedShares      float64
	CurrentPrice     float64
	TargetAmount     float64
	PayoutsPerYear   int
	AnnualGrowthRate float64
}

// GoalMonths projects how many months of dividend reinvestment it takes to
// reach the target. It returns 0 when the inputs make the question moot
// (no position, target already met, no dividend) and +Inf when the target
// is not reached within 100 years.
func GoalMonths(params GoalParams, dividendPerShare float64) float64 {
	currentAssets := params.OwnedShares * params.CurrentPrice
	if currentAssets <= 0 ||
		params.TargetAmount <= currentAssets ||
		dividendPerShare <= 0 ||
		params.CurrentPrice <= 0 ||
		params.PayoutsPerYear <= 0 {
		return 0
	}

	monthlyGrowthRate := math.Pow(1+params.AnnualGrowthRate, 1.0/12) - 1
	payoutsPerMonth := float64(params.PayoutsPerYear) / 12

	assets := currentAssets
	months := 0
	for assets < params.TargetAmount {
		if months > maxGoalMonths {
			return math.Inf(1)
		}
		assets *= 1 + monthlyGrowthRate
		shares := assets / params.CurrentPrice
		assets += shares * dividendPerShare * payoutsPerMonth
		months++
	}
	return float64(months)
}

// GoalScenarios projects the goal time for all three dividend scenarios.
type GoalScenarios struct {
	Hope    float64 `json:"hope"`
	Avg     float64 `json:"avg"`
	Despair float64 `json:"despair"`
}

// GoalMonthsScenarios runs GoalMonths against the max, average and minimum
// historical per-share dividend.
func GoalMonthsScenarios(params GoalParams, stats DividendStats) GoalScenarios {
	return GoalScenarios{
		Hope:    GoalMonths(params, stats.Max),
		Avg:     GoalMonths(params, stats.Avg),
		Despair: GoalMonths(params, stats.Min),
	}
}
