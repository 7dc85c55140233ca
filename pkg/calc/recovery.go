package calc

import "math"

// NotApplicable marks a recovery scenario whose inputs make recovery moot:
// no position, no dividend, or principal already recovered.
const NotApplicable = -1

// RecoveryParams describes a position whose principal is being recovered
// through dividends. AccumulatedDividend is what has already been collected.
type RecoveryParams struct {
	Quantity            float64
	AvgPrice            float64 // purchase price per share
	CurrentPrice        float64 // reinvestment price per share
	AccumulatedDividend float64
	PayoutsPerYear      int
	ApplyTax            bool
}

// RecoveryTimes is the months until the remaining principal is recovered,
// with and without reinvesting the collected dividends.
type RecoveryTimes struct {
	WithReinvest    float64 `json:"withReinvest"`
	WithoutReinvest float64 `json:"withoutReinvest"`
}

// RecoveryMonths computes how many months of dividends recover the remaining
// principal. Both figures are NotApplicable when the position, dividend or
// payout frequency is zero or the principal is already recovered; the
// reinvesting figure is +Inf when recovery takes more than 100 years of
// payouts.
func RecoveryMonths(params RecoveryParams, dividendPerShare float64) RecoveryTimes {
	remaining := params.Quantity*params.AvgPrice - params.AccumulatedDividend
	if params.Quantity == 0 || dividendPerShare <= 0 ||
		params.PayoutsPerYear <= 0 || remaining <= 0 {
		return RecoveryTimes{WithReinvest: NotApplicable, WithoutReinvest: NotApplicable}
	}

	perShare := dividendPerShare
	if params.ApplyTax {
		perShare *= withholdingTaxFactor
	}

	monthsPerPayout := 12 / float64(params.PayoutsPerYear)

	// Without reinvestment the share count is constant, so the payout count
	// is a straight division.
	payoutsWithout := remaining / (params.Quantity * perShare)

	// With reinvestment each payout buys more shares at the current price.
	shares := params.Quantity
	recovered := 0.0
	payoutsWith := 0.0
	maxPayouts := float64(params.PayoutsPerYear) * 100
	for recovered < remaining {
		if payoutsWith > maxPayouts {
			payoutsWith = math.Inf(1)
			break
		}
		dividend := shares * perShare
		recovered += dividend
		if params.CurrentPrice > 0 {
			shares += dividend / params.CurrentPrice
		}
		payoutsWith++
	}

	return RecoveryTimes{
		WithReinvest:    payoutsWith * monthsPerPayout,
		WithoutReinvest: payoutsWithout * monthsPerPayout,
	}
}

// RecoveryScenarios holds recovery times for the three dividend scenarios.
type RecoveryScenarios struct {
	Hope    RecoveryTimes `json:"hope"`
	Avg     RecoveryTimes `json:"avg"`
	Despair RecoveryTimes `json:"despair"`
}

// RecoveryMonthsScenarios runs RecoveryMonths against the max, average and
// minimum historical per-share dividend.
func RecoveryMonthsScenarios(params RecoveryParams, stats DividendStats) RecoveryScenarios {
	return RecoveryScenarios{
		Hope:    RecoveryMonths(params, stats.Max),
		Avg:     RecoveryMonths(params, stats.Avg),
		Despair: RecoveryMonths(params, stats.Min),
	}
}
