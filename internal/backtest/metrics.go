package backtest

import "math"

// CAGRUndefined is the sentinel CAGR for a wiped-out principal or a
// non-positive period.
const CAGRUndefined = -1

// CAGR computes the compound annual growth rate for a total return over a
// number of years. It returns CAGRUndefined when the return wiped out the
// principal (1+totalReturn <= 0) or the period is not positive; callers
// treat that as a defined edge case, not an error.
func CAGR(totalReturn, years float64) float64 {
	if 1+totalReturn <= 0 || years <= 0 {
		return CAGRUndefined
	}
	return math.Pow(1+totalReturn, 1/years) - 1
}

// TotalReturn computes (ending + cash) / initial - 1, or 0 when there was
// no initial investment. cash is the collected dividends for the
// no-reinvest strategy and 0 for the reinvesting one.
func TotalReturn(ending, cash, initial float64) float64 {
	if initial <= 0 {
		return 0
	}
	return (ending + cash) / initial - 1
}
