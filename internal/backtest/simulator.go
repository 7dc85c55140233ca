package backtest

import (
	"github.com/dividendlab/drip-backtest/internal/errors"
	"github.com/dividendlab/drip-backtest/pkg/dates"
)

// settlementDelayDays is the T+2 settlement delay between a dividend's
// ex-date and the business day its reinvestment can execute.
const settlementDelayDays = 2

// SimulationParams are the inputs for one symbol's simulation.
type SimulationParams struct {
	Symbol         string
	StartDate      dates.Date // must have a price record (effective start)
	EndDate        dates.Date
	Investment     float64 // allocation in USD
	CommissionRate float64 // fraction, e.g. 0.0005
	TaxRate        float64 // post-tax factor: 0.85 with tax, 1.0 without
	Prices         PriceMap
	Dividends      DividendMap
	Holidays       dates.HolidaySet
}

// TimePoint is one (date, value) sample of a trajectory.
type TimePoint struct {
	Date  dates.Date `json:"date"`
	Value float64    `json:"value"`
}

// DividendPayout is one ledger entry of a cash dividend.
type DividendPayout struct {
	Date         dates.Date `json:"date"`
	Amount       float64    `json:"amount"` // post-tax
	PreTaxAmount float64    `json:"preTaxAmount"`
	Shares       float64    `json:"shares"`
	PerShare     float64    `json:"perShare"`
	Ticker       string     `json:"ticker"`
}

// ReinvestmentSkip records a dividend whose reinvestment could not execute
// because no viable settlement price existed. The cash is not tracked as
// lost; it is unmaterialized additional shares.
type ReinvestmentSkip struct {
	Date           dates.Date `json:"date"` // ex-dividend date
	SettlementDate dates.Date `json:"settlementDate"`
	Reason         string     `json:"reason"`
}

const (
	SkipReasonNoSettlementPrice  = "no price record at settlement date"
	SkipReasonNonPositiveOpening = "non-positive opening price at settlement date"
)

// SimulationResult holds one symbol's two share-count trajectories and its
// cash-dividend ledger.
type SimulationResult struct {
	InitialShares         float64 `json:"initialShares"`
	SharesWithReinvest    float64 `json:"sharesWithReinvest"`
	SharesWithoutReinvest float64 `json:"sharesWithoutReinvest"`

	HistoryWithReinvest    []TimePoint `json:"historyWithReinvest"`
	HistoryWithoutReinvest []TimePoint `json:"historyWithoutReinvest"`
	CashHistory            []TimePoint `json:"cashHistory"`

	DividendPayouts             []DividendPayout   `json:"dividendPayouts"`
	DividendPayoutsWithReinvest []DividendPayout   `json:"dividendPayoutsWithReinvest"`
	SkippedReinvestments        []ReinvestmentSkip `json:"skippedReinvestments,omitempty"`

	EndPrice           float64 `json:"endPrice"`
	FinalCashCollected float64 `json:"finalCashCollected"`
}

// Simulate walks every calendar day from the effective start date to the
// end date for one symbol, tracking a reinvesting and a non-reinvesting
// share trajectory. Dividends pay out on ex-dates that are trading days;
// reinvestment executes at the opening price two business days later.
func Simulate(params SimulationParams) (*SimulationResult, error) {
	startPrice, ok := params.Prices[params.StartDate]
	if !ok || startPrice.Close == 0 {
		return nil, errors.NewMissingStartPrice(params.Symbol, params.StartDate)
	}

	initialShares := params.Investment * (1 - params.CommissionRate) / startPrice.Close
	result := &SimulationResult{
		InitialShares:         initialShares,
		SharesWithReinvest:    initialShares,
		SharesWithoutReinvest: initialShares,
	}

	for day := params.StartDate; !day.After(params.EndDate); day = day.Add(1) {
		price, trading := params.Prices[day]
		if !trading {
			continue
		}

		if perShare, hasDividend := params.Dividends[day]; hasDividend {
			// Cash dividend on the fixed trajectory.
			cashPreTax := result.SharesWithoutReinvest * perShare
			result.DividendPayouts = append(result.DividendPayouts, DividendPayout{
				Date:         day,
				Amount:       cashPreTax * params.TaxRate,
				PreTaxAmount: cashPreTax,
				Shares:       result.SharesWithoutReinvest,
				PerShare:     perShare,
				Ticker:       params.Symbol,
			})

			// DRIP dividend on the growing trajectory.
			reinvestPreTax := result.SharesWithReinvest * perShare
			reinvestPostTax := reinvestPreTax * params.TaxRate
			result.DividendPayoutsWithReinvest = append(result.DividendPayoutsWithReinvest, DividendPayout{
				Date:         day,
				Amount:       reinvestPostTax,
				PreTaxAmount: reinvestPreTax,
				Shares:       result.SharesWithReinvest,
				PerShare:     perShare,
				Ticker:       params.Symbol,
			})

			settlement := dates.AddBusinessDays(day, settlementDelayDays, params.Holidays)
			if settlePrice, found := params.Prices[settlement]; !found {
				result.SkippedReinvestments = append(result.SkippedReinvestments, ReinvestmentSkip{
					Date: day, SettlementDate: settlement, Reason: SkipReasonNoSettlementPrice,
				})
			} else if settlePrice.Open <= 0 {
				result.SkippedReinvestments = append(result.SkippedReinvestments, ReinvestmentSkip{
					Date: day, SettlementDate: settlement, Reason: SkipReasonNonPositiveOpening,
				})
			} else {
				result.SharesWithReinvest += reinvestPostTax * (1 - params.CommissionRate) / settlePrice.Open
			}
		}

		result.HistoryWithReinvest = append(result.HistoryWithReinvest, TimePoint{
			Date: day, Value: result.SharesWithReinvest * price.Close,
		})
		result.HistoryWithoutReinvest = append(result.HistoryWithoutReinvest, TimePoint{
			Date: day, Value: result.SharesWithoutReinvest * price.Close,
		})
	}

	if len(result.HistoryWithReinvest) == 0 {
		return nil, errors.NewEmptyHistory(params.Symbol)
	}

	// Cumulative post-tax cash aligned to the no-reinvest history dates.
	cashCollected := 0.0
	payoutByDate := make(map[dates.Date]float64, len(result.DividendPayouts))
	for _, p := range result.DividendPayouts {
		payoutByDate[p.Date] += p.Amount
	}
	result.CashHistory = make([]TimePoint, len(result.HistoryWithoutReinvest))
	for i, point := range result.HistoryWithoutReinvest {
		cashCollected += payoutByDate[point.Date]
		result.CashHistory[i] = TimePoint{Date: point.Date, Value: cashCollected}
	}
	result.FinalCashCollected = cashCollected

	// Recover the raw closing price from the value/shares ratio instead of
	// re-reading the price map.
	last := result.HistoryWithReinvest[len(result.HistoryWithReinvest)-1]
	result.EndPrice = last.Value / result.SharesWithReinvest

	return result, nil
}
