package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	backtesterrors "github.com/dividendlab/drip-backtest/internal/errors"
	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// flatPrices builds a price map with the given open/close on every listed day.
func flatPrices(open, close float64, days ...string) PriceMap {
	m := make(PriceMap, len(days))
	for _, s := range days {
		d := day(s)
		m[d] = types.PriceRecord{Date: d, Open: open, Close: close}
	}
	return m
}

// TestSimulate_EndToEndScenario walks the canonical scenario: $1000 into a
// $10 stock, a $1 dividend the next day, reinvested after T+2 settlement
func TestSimulate_EndToEndScenario(t *testing.T) {
	prices := flatPrices(10, 10,
		"2020-01-01", "2020-01-02", "2020-01-03", "2020-01-06", "2020-01-07")
	// Settlement lands on Monday Jan 6 (Jan 4-5 is a weekend)
	settle := prices[day("2020-01-06")]
	settle.Open = 20
	prices[day("2020-01-06")] = settle

	result, err := Simulate(SimulationParams{
		Symbol:         "AAA",
		StartDate:      day("2020-01-01"),
		EndDate:        day("2020-01-07"),
		Investment:     1000,
		CommissionRate: 0,
		TaxRate:        1.0,
		Prices:         prices,
		Dividends:      DividendMap{day("2020-01-02"): 1},
		Holidays:       dates.NewHolidaySet(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.InitialShares)

	// Cash trajectory: 100 shares x $1, tax factor 1.0
	require.Len(t, result.DividendPayouts, 1)
	payout := result.DividendPayouts[0]
	assert.Equal(t, day("2020-01-02"), payout.Date)
	assert.Equal(t, 100.0, payout.Amount)
	assert.Equal(t, 100.0, payout.PreTaxAmount)
	assert.Equal(t, "AAA", payout.Ticker)
	assert.Equal(t, 100.0, result.FinalCashCollected)

	// Reinvestment: $100 at the Jan 6 open of $20 buys 5 more shares
	assert.Equal(t, 105.0, result.SharesWithReinvest)
	assert.Equal(t, 100.0, result.SharesWithoutReinvest)
	assert.Empty(t, result.SkippedReinvestments)

	// One history point per trading day, ascending
	require.Len(t, result.HistoryWithReinvest, 5)
	assert.Equal(t, day("2020-01-01"), result.HistoryWithReinvest[0].Date)
	assert.Equal(t, day("2020-01-07"), result.HistoryWithReinvest[4].Date)
	// The share increase is booked on the ex-date (priced at the settlement
	// open), so the trajectory reflects it from Jan 2 on
	assert.Equal(t, 1000.0, result.HistoryWithReinvest[0].Value) // Jan 1: 100 shares x $10
	assert.Equal(t, 1050.0, result.HistoryWithReinvest[1].Value) // Jan 2: 105 shares x $10
	assert.Equal(t, 1050.0, result.HistoryWithReinvest[3].Value) // Jan 6: 105 shares x $10

	assert.Equal(t, 10.0, result.EndPrice)
}

// TestSimulate_MissingStartPrice tests the missing-start-price error
func TestSimulate_MissingStartPrice(t *testing.T) {
	_, err := Simulate(SimulationParams{
		Symbol:    "BBB",
		StartDate: day("2020-01-01"),
		EndDate:   day("2020-01-07"),
		Prices:    flatPrices(10, 10, "2020-01-02"),
		Dividends: DividendMap{},
		Holidays:  dates.NewHolidaySet(nil),
	})

	require.Error(t, err)
	assert.Equal(t, backtesterrors.ErrorCategoryMissingStartPrice, backtesterrors.CategoryOf(err))
	assert.Contains(t, err.Error(), "BBB")
	assert.Contains(t, err.Error(), "2020-01-01")
}

// TestSimulate_ShareConservationWithoutReinvest tests that the no-reinvest
// trajectory never deviates from the initial share count
func TestSimulate_ShareConservationWithoutReinvest(t *testing.T) {
	days := []string{"2020-01-01", "2020-01-02", "2020-01-03", "2020-01-06", "2020-01-07", "2020-01-08"}
	result, err := Simulate(SimulationParams{
		Symbol:     "AAA",
		StartDate:  day("2020-01-01"),
		EndDate:    day("2020-01-08"),
		Investment: 500,
		TaxRate:    0.85,
		Prices:     flatPrices(10, 10, days...),
		Dividends:  DividendMap{day("2020-01-02"): 0.5, day("2020-01-06"): 0.5},
		Holidays:   dates.NewHolidaySet(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, result.InitialShares, result.SharesWithoutReinvest)
	for _, p := range result.HistoryWithoutReinvest {
		assert.Equal(t, result.InitialShares*10, p.Value)
	}
}

// TestSimulate_ReinvestmentMonotonicity tests that the reinvesting share
// count never decreases
func TestSimulate_ReinvestmentMonotonicity(t *testing.T) {
	days := []string{"2020-01-01", "2020-01-02", "2020-01-03", "2020-01-06",
		"2020-01-07", "2020-01-08", "2020-01-09", "2020-01-10"}
	result, err := Simulate(SimulationParams{
		Symbol:     "AAA",
		StartDate:  day("2020-01-01"),
		EndDate:    day("2020-01-10"),
		Investment: 1000,
		TaxRate:    1.0,
		Prices:     flatPrices(10, 10, days...),
		Dividends:  DividendMap{day("2020-01-02"): 1, day("2020-01-07"): 1},
		Holidays:   dates.NewHolidaySet(nil),
	})
	require.NoError(t, err)

	// Values at a flat price are proportional to shares; they must be
	// non-decreasing
	prev := 0.0
	for _, p := range result.HistoryWithReinvest {
		assert.GreaterOrEqual(t, p.Value, prev)
		prev = p.Value
	}
	assert.Greater(t, result.SharesWithReinvest, result.InitialShares)
}

// TestSimulate_SkippedReinvestment tests the tagged outcome when no
// settlement price exists
func TestSimulate_SkippedReinvestment(t *testing.T) {
	// No price records beyond the dividend date: settlement cannot execute
	result, err := Simulate(SimulationParams{
		Symbol:     "AAA",
		StartDate:  day("2020-01-01"),
		EndDate:    day("2020-01-03"),
		Investment: 1000,
		TaxRate:    1.0,
		Prices:     flatPrices(10, 10, "2020-01-01", "2020-01-02", "2020-01-03"),
		Dividends:  DividendMap{day("2020-01-02"): 1},
		Holidays:   dates.NewHolidaySet(nil),
	})
	require.NoError(t, err)

	// No share growth, but the cash ledger still records the payout
	assert.Equal(t, result.InitialShares, result.SharesWithReinvest)
	require.Len(t, result.SkippedReinvestments, 1)
	skip := result.SkippedReinvestments[0]
	assert.Equal(t, day("2020-01-02"), skip.Date)
	assert.Equal(t, day("2020-01-06"), skip.SettlementDate)
	assert.Equal(t, SkipReasonNoSettlementPrice, skip.Reason)
	assert.Len(t, result.DividendPayouts, 1)
}

// TestSimulate_SkippedReinvestment_ZeroOpen tests skipping on a non-positive
// settlement opening price
func TestSimulate_SkippedReinvestment_ZeroOpen(t *testing.T) {
	prices := flatPrices(10, 10, "2020-01-01", "2020-01-02", "2020-01-03", "2020-01-06")
	broken := prices[day("2020-01-06")]
	broken.Open = 0
	prices[day("2020-01-06")] = broken

	result, err := Simulate(SimulationParams{
		Symbol:     "AAA",
		StartDate:  day("2020-01-01"),
		EndDate:    day("2020-01-06"),
		Investment: 1000,
		TaxRate:    1.0,
		Prices:     prices,
		Dividends:  DividendMap{day("2020-01-02"): 1},
		Holidays:   dates.NewHolidaySet(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, result.InitialShares, result.SharesWithReinvest)
	require.Len(t, result.SkippedReinvestments, 1)
	assert.Equal(t, SkipReasonNonPositiveOpening, result.SkippedReinvestments[0].Reason)
}

// TestSimulate_HolidayDelaysSettlement tests that a holiday pushes the
// settlement date out one business day
func TestSimulate_HolidayDelaysSettlement(t *testing.T) {
	prices := flatPrices(10, 10, "2020-01-01", "2020-01-02", "2020-01-03", "2020-01-07")
	settle := prices[day("2020-01-07")]
	settle.Open = 10
	prices[day("2020-01-07")] = settle

	result, err := Simulate(SimulationParams{
		Symbol:     "AAA",
		StartDate:  day("2020-01-01"),
		EndDate:    day("2020-01-07"),
		Investment: 1000,
		TaxRate:    1.0,
		Prices:     prices,
		Dividends:  DividendMap{day("2020-01-02"): 1},
		Holidays:   dates.NewHolidaySet([]dates.Date{day("2020-01-06")}),
	})
	require.NoError(t, err)

	// Settlement moved from Jan 6 (holiday) to Jan 7: $100 at $10 buys 10 shares
	assert.Equal(t, 110.0, result.SharesWithReinvest)
	assert.Empty(t, result.SkippedReinvestments)
}

// TestSimulate_CommissionAndTax tests the commission and tax factors on both
// the initial purchase and the reinvestment
func TestSimulate_CommissionAndTax(t *testing.T) {
	prices := flatPrices(10, 10, "2020-01-01", "2020-01-02", "2020-01-03", "2020-01-06")

	result, err := Simulate(SimulationParams{
		Symbol:         "AAA",
		StartDate:      day("2020-01-01"),
		EndDate:        day("2020-01-06"),
		Investment:     1000,
		CommissionRate: 0.01,
		TaxRate:        0.85,
		Prices:         prices,
		Dividends:      DividendMap{day("2020-01-02"): 1},
		Holidays:       dates.NewHolidaySet(nil),
	})
	require.NoError(t, err)

	initial := 1000 * 0.99 / 10.0
	assert.InDelta(t, initial, result.InitialShares, 1e-9)

	// Reinvested: shares*1 (pre-tax) -> x0.85 -> x0.99 commission -> / $10 open
	expectedGrowth := initial * 1 * 0.85 * 0.99 / 10.0
	assert.InDelta(t, initial+expectedGrowth, result.SharesWithReinvest, 1e-9)

	// Cash ledger is post-tax
	assert.InDelta(t, initial*0.85, result.DividendPayouts[0].Amount, 1e-9)
	assert.InDelta(t, initial, result.DividendPayouts[0].PreTaxAmount, 1e-9)
}

// TestSimulate_CashHistoryCumulative tests that the cash series is a running
// sum aligned to the trading-day axis
func TestSimulate_CashHistoryCumulative(t *testing.T) {
	days := []string{"2020-01-01", "2020-01-02", "2020-01-03", "2020-01-06", "2020-01-07"}
	result, err := Simulate(SimulationParams{
		Symbol:     "AAA",
		StartDate:  day("2020-01-01"),
		EndDate:    day("2020-01-07"),
		Investment: 1000,
		TaxRate:    1.0,
		Prices:     flatPrices(10, 10, days...),
		Dividends:  DividendMap{day("2020-01-02"): 1, day("2020-01-07"): 2},
		Holidays:   dates.NewHolidaySet(nil),
	})
	require.NoError(t, err)

	require.Len(t, result.CashHistory, 5)
	assert.Equal(t, 0.0, result.CashHistory[0].Value)
	assert.Equal(t, 100.0, result.CashHistory[1].Value)
	assert.Equal(t, 100.0, result.CashHistory[3].Value)
	// Jan 7: 100 shares x $2 on top (shares stay fixed on this trajectory)
	assert.Equal(t, 300.0, result.CashHistory[4].Value)
	assert.Equal(t, 300.0, result.FinalCashCollected)
}

// TestSimulate_EmptyHistory tests the no-data-in-period error
func TestSimulate_EmptyHistory(t *testing.T) {
	// An end date before the start date leaves the walk empty even though
	// the start price exists
	_, err := Simulate(SimulationParams{
		Symbol:    "AAA",
		StartDate: day("2020-01-01"),
		EndDate:   day("2019-12-31"), // end before start: loop never runs
		Prices:    flatPrices(10, 10, "2020-01-01"),
		Dividends: DividendMap{},
		Holidays:  dates.NewHolidaySet(nil),
	})

	require.Error(t, err)
	assert.Equal(t, backtesterrors.ErrorCategoryEmptyHistory, backtesterrors.CategoryOf(err))
}
