package backtest

import (
	"strings"

	"github.com/dividendlab/drip-backtest/internal/errors"
	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

const (
	// exchangeRateSearchDays is how many calendar days past the requested
	// start date the USD/KRW rate lookup scans before giving up.
	exchangeRateSearchDays = 7

	// withholdingTaxFactor is the flat post-tax factor applied to dividends
	// when tax is enabled (15% withholding approximation).
	withholdingTaxFactor = 0.85
)

// Request is one backtest invocation. All data is caller-supplied; the
// engine performs no I/O.
type Request struct {
	Portfolio            []types.PortfolioItem
	ComparisonSymbol     string
	StartDate            dates.Date
	EndDate              dates.Date
	InitialInvestmentKRW float64
	CommissionPercent    float64 // percent, e.g. 0.05 for 0.05%
	ApplyTax             bool
	Data                 *types.MarketData
	Holidays             []dates.Date // overrides Data.Holidays when set
}

// Run resolves the KRW to USD conversion at the start date, simulates every
// referenced symbol (portfolio plus comparison, deduplicated
// case-insensitively) in parallel, and aggregates the results. Per-symbol
// failures are captured on their result slot; only a missing exchange rate
// or the failure of every portfolio symbol is fatal.
func Run(req Request) (*AggregateResult, error) {
	rateByDate := make(map[dates.Date]float64, len(req.Data.ExchangeRates))
	for _, r := range req.Data.ExchangeRates {
		rateByDate[r.Date] = r.Rate
	}

	var startRate float64
	var resolvedStart dates.Date
	found := false
	for i := 0; i < exchangeRateSearchDays; i++ {
		day := req.StartDate.Add(i)
		if rate, ok := rateByDate[day]; ok {
			startRate = rate
			resolvedStart = day
			found = true
			break
		}
	}
	if !found {
		return nil, errors.NewNoExchangeRate(req.StartDate)
	}

	initialInvestmentUSD := req.InitialInvestmentKRW / startRate
	commissionRate := req.CommissionPercent / 100
	taxRate := 1.0
	if req.ApplyTax {
		taxRate = withholdingTaxFactor
	}

	holidayDates := req.Holidays
	if holidayDates == nil {
		holidayDates = req.Data.Holidays
	}
	holidays := dates.NewHolidaySet(holidayDates)

	comparison := strings.ToUpper(req.ComparisonSymbol)
	symbols := referencedSymbols(req.Portfolio, comparison)

	results := make(map[string]*SymbolResult, len(symbols))
	pool := NewWorkerPool(0, len(symbols))
	pool.Start()

	submitted := 0
	for _, symbol := range symbols {
		params, err := prepareSimulation(symbol, comparison, resolvedStart, req, initialInvestmentUSD, commissionRate, taxRate, holidays)
		if err != nil {
			results[symbol] = &SymbolResult{Error: err.Error()}
			continue
		}
		if err := pool.Submit(SimulationJob{Symbol: symbol, Params: params}); err != nil {
			results[symbol] = &SymbolResult{Error: err.Error()}
			continue
		}
		submitted++
	}
	for i := 0; i < submitted; i++ {
		outcome := <-pool.Results()
		if outcome.Err != nil {
			results[outcome.Symbol] = &SymbolResult{Error: outcome.Err.Error()}
		} else {
			results[outcome.Symbol] = &SymbolResult{Simulation: outcome.Result}
		}
	}
	pool.Stop()

	return Aggregate(AggregateParams{
		Portfolio:            req.Portfolio,
		ComparisonSymbol:     req.ComparisonSymbol,
		Results:              results,
		InitialInvestmentUSD: initialInvestmentUSD,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
	})
}

// referencedSymbols returns the distinct upper-cased symbols of the
// portfolio plus the comparison symbol, preserving order.
func referencedSymbols(portfolio []types.PortfolioItem, comparison string) []string {
	seen := make(map[string]bool, len(portfolio)+1)
	symbols := make([]string, 0, len(portfolio)+1)
	add := func(s string) {
		if s == "" || s == noComparison || seen[s] {
			return
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	for _, item := range portfolio {
		add(strings.ToUpper(item.Symbol))
	}
	add(comparison)
	return symbols
}

// prepareSimulation normalizes one symbol's raw data and builds its
// simulation parameters. The effective start date is the later of the
// resolved start date and the symbol's earliest available price.
func prepareSimulation(symbol, comparison string, resolvedStart dates.Date, req Request,
	initialInvestmentUSD, commissionRate, taxRate float64, holidays dates.HolidaySet) (SimulationParams, error) {

	symbolData := req.Data.FindSymbol(symbol)
	if symbolData == nil {
		return SimulationParams{}, errors.NewDataError(symbol, "no historical data available")
	}
	if symbolData.Error != "" {
		return SimulationParams{}, errors.NewDataError(symbol, symbolData.Error)
	}

	priceMap, dividendMap := Normalize(symbolData)

	effectiveStart := resolvedStart
	if earliest, ok := priceMap.EarliestPriceDate(); ok && earliest.After(effectiveStart) {
		effectiveStart = earliest
	}

	// The comparison symbol is always simulated at the full investment,
	// regardless of any portfolio weight it may also carry.
	investment := initialInvestmentUSD
	if symbol != comparison {
		weight := 0.0
		for _, item := range req.Portfolio {
			if strings.ToUpper(item.Symbol) == symbol {
				weight = item.Weight
				break
			}
		}
		investment = initialInvestmentUSD * weight / 100
	}

	return SimulationParams{
		Symbol:         symbol,
		StartDate:      effectiveStart,
		EndDate:        req.EndDate,
		Investment:     investment,
		CommissionRate: commissionRate,
		TaxRate:        taxRate,
		Prices:         priceMap,
		Dividends:      dividendMap,
		Holidays:       holidays,
	}, nil
}
