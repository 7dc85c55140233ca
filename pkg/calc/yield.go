// Package calc provides dividend planning calculators that complement the
// backtest engine: expected income, time-to-goal and principal recovery.
package calc

// withholdingTaxFactor is the flat post-tax factor applied to dividends
// (15% withholding approximation).
const withholdingTaxFactor = 0.85

// DividendStats summarizes a symbol's per-share dividend history. Max feeds
// the optimistic scenario, Min the pessimistic one.
type DividendStats struct {
	Min float64
	Avg float64
	Max float64
}

// IncomeEstimate is the projected dividend income for one scenario.
type IncomeEstimate struct {
	PerPayout float64 `json:"perPayout"`
	Monthly   float64 `json:"monthly"`
	Annual    float64 `json:"annual"`
}

// ScenarioEstimates holds the three dividend scenarios: Hope uses the
// historical maximum per-share dividend, Despair the minimum.
type ScenarioEstimates struct {
	Hope    IncomeEstimate `json:"hope"`
	Avg     IncomeEstimate `json:"avg"`
	Despair IncomeEstimate `json:"despair"`
}

// DividendProjection pairs pre-tax and post-tax scenario estimates.
type DividendProjection struct {
	PreTax  ScenarioEstimates `json:"preTax"`
	PostTax ScenarioEstimates `json:"postTax"`
}

// ExpectedDividends projects dividend income for a share count across the
// three scenarios, before and after withholding tax. Zero quantity, zero
// per-share dividend or zero payout frequency all yield zero estimates.
func ExpectedDividends(quantity float64, stats DividendStats, payoutsPerYear int) DividendProjection {
	estimate := func(perShare, taxRate float64) IncomeEstimate {
		if quantity == 0 || perShare == 0 || payoutsPerYear == 0 {
			return IncomeEstimate{}
		}
		perPayout := quantity * perShare * taxRate
		annual := perPayout * float64(payoutsPerYear)
		return IncomeEstimate{PerPayout: perPayout, Monthly: annual / 12, Annual: annual}
	}
	scenarios := func(taxRate float64) ScenarioEstimates {
		return ScenarioEstimates{
			Hope:    estimate(stats.Max, taxRate),
			Avg:     estimate(stats.Avg, taxRate),
			Despair: estimate(stats.Min, taxRate),
		}
	}
	return DividendProjection{
		PreTax:  scenarios(1.0),
		PostTax: scenarios(withholdingTaxFactor),
	}
}
