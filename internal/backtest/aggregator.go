package backtest

import (
	"strings"

	"github.com/dividendlab/drip-backtest/internal/errors"
	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// noComparison is the sentinel the frontend sends when no benchmark is
// selected.
const noComparison = "NONE"

// Summary is the scalar outcome of one strategy over the whole period.
type Summary struct {
	TotalReturn        float64 `json:"totalReturn"`
	CAGR               float64 `json:"cagr"`
	EndingValue        float64 `json:"endingValue"`
	DividendsCollected float64 `json:"dividendsCollected,omitempty"`
}

// Series is a named portfolio-level time series for charting.
type Series struct {
	Name   string      `json:"name"`
	Points []TimePoint `json:"data"`
}

// StrategyResult groups the chartable series and the summary for one
// reinvestment strategy.
type StrategyResult struct {
	Series  []Series `json:"series"`
	Summary Summary  `json:"summary"`
}

// SymbolResult is one symbol's slot in the aggregate: either a completed
// simulation or the error that stopped it.
type SymbolResult struct {
	Simulation *SimulationResult `json:"simulation,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Failed reports whether the symbol's simulation did not complete.
func (r *SymbolResult) Failed() bool { return r == nil || r.Simulation == nil }

// AggregateResult is the combined portfolio outcome handed to the
// presentation layer.
type AggregateResult struct {
	WithReinvest    StrategyResult `json:"withReinvest"`
	WithoutReinvest StrategyResult `json:"withoutReinvest"`

	InitialInvestment float64 `json:"initialInvestment"` // USD
	Years             float64 `json:"years"`

	CashDividends []DividendPayout `json:"cashDividends"`

	Symbols           []string                 `json:"symbols"`
	ComparisonSymbol  string                   `json:"comparisonSymbol,omitempty"`
	IndividualResults map[string]*SymbolResult `json:"individualResults"`
	ComparisonResult  *SymbolResult            `json:"comparisonResult,omitempty"`
	ComparisonSummary *StrategySummaries       `json:"comparisonSummary,omitempty"`
}

// StrategySummaries pairs the two strategy summaries for one simulation,
// used for the comparison symbol's own stats.
type StrategySummaries struct {
	WithReinvest    Summary `json:"withReinvest"`
	WithoutReinvest Summary `json:"withoutReinvest"`
}

// AggregateParams are the inputs to Aggregate.
type AggregateParams struct {
	Portfolio        []types.PortfolioItem
	ComparisonSymbol string
	// Results is keyed by upper-cased symbol.
	Results              map[string]*SymbolResult
	InitialInvestmentUSD float64
	StartDate            dates.Date
	EndDate              dates.Date
}

// Aggregate combines per-symbol simulations into weighted portfolio-level
// series and summary statistics. The first valid portfolio symbol's trading
// days form the date axis; symbols missing a date contribute zero.
func Aggregate(params AggregateParams) (*AggregateResult, error) {
	validSymbols := make([]string, 0, len(params.Portfolio))
	for _, item := range params.Portfolio {
		symbol := strings.ToUpper(item.Symbol)
		if r, ok := params.Results[symbol]; ok && !r.Failed() {
			validSymbols = append(validSymbols, symbol)
		}
	}
	if len(validSymbols) == 0 {
		var first error
		if len(params.Portfolio) > 0 {
			symbol := strings.ToUpper(params.Portfolio[0].Symbol)
			if r, ok := params.Results[symbol]; ok && r.Error != "" {
				first = errors.NewDataError(symbol, r.Error)
			}
		}
		return nil, errors.NewAllSymbolsFailed(first)
	}

	years := dates.YearsBetween(params.StartDate, params.EndDate)
	if years == 0 {
		years = 1
	}

	axis := params.Results[validSymbols[0]].Simulation.HistoryWithReinvest

	sumAcross := func(pick func(*SimulationResult) []TimePoint) []TimePoint {
		// Index each symbol's points by date; missing dates count as zero.
		indexed := make([]map[dates.Date]float64, len(validSymbols))
		for i, symbol := range validSymbols {
			points := pick(params.Results[symbol].Simulation)
			byDate := make(map[dates.Date]float64, len(points))
			for _, p := range points {
				byDate[p.Date] = p.Value
			}
			indexed[i] = byDate
		}
		out := make([]TimePoint, len(axis))
		for i, p := range axis {
			total := 0.0
			for _, byDate := range indexed {
				total += byDate[p.Date]
			}
			out[i] = TimePoint{Date: p.Date, Value: total}
		}
		return out
	}

	withReinvest := sumAcross(func(s *SimulationResult) []TimePoint { return s.HistoryWithReinvest })
	withoutReinvest := sumAcross(func(s *SimulationResult) []TimePoint { return s.HistoryWithoutReinvest })
	cashHistory := sumAcross(func(s *SimulationResult) []TimePoint { return s.CashHistory })

	result := &AggregateResult{
		InitialInvestment: params.InitialInvestmentUSD,
		Years:             years,
	}
	result.WithReinvest.Series = []Series{{Name: "Portfolio", Points: withReinvest}}
	result.WithoutReinvest.Series = []Series{
		{Name: "Portfolio (price only)", Points: withoutReinvest},
		{Name: "Portfolio (cash dividends)", Points: cashHistory},
	}

	endingWithReinvest := lastValue(withReinvest)
	endingWithoutReinvest := lastValue(withoutReinvest)
	cashCollected := lastValue(cashHistory)

	returnWithReinvest := TotalReturn(endingWithReinvest, 0, params.InitialInvestmentUSD)
	returnWithoutReinvest := TotalReturn(endingWithoutReinvest, cashCollected, params.InitialInvestmentUSD)

	result.WithReinvest.Summary = Summary{
		TotalReturn: returnWithReinvest,
		CAGR:        CAGR(returnWithReinvest, years),
		EndingValue: endingWithReinvest,
	}
	result.WithoutReinvest.Summary = Summary{
		TotalReturn:        returnWithoutReinvest,
		CAGR:               CAGR(returnWithoutReinvest, years),
		EndingValue:        endingWithoutReinvest,
		DividendsCollected: cashCollected,
	}

	// Per-symbol breakdown keeps failed slots so callers can show which
	// symbol failed and why.
	result.IndividualResults = make(map[string]*SymbolResult, len(params.Portfolio))
	for _, item := range params.Portfolio {
		symbol := strings.ToUpper(item.Symbol)
		if r, ok := params.Results[symbol]; ok {
			result.IndividualResults[symbol] = r
		}
	}
	result.Symbols = make([]string, len(params.Portfolio))
	for i, item := range params.Portfolio {
		result.Symbols[i] = item.Symbol
	}

	comparison := strings.ToUpper(params.ComparisonSymbol)
	if comparison != "" && comparison != noComparison {
		result.ComparisonSymbol = comparison
		if r, ok := params.Results[comparison]; ok {
			result.ComparisonResult = r
			if !r.Failed() {
				sim := r.Simulation
				result.WithReinvest.Series = append(result.WithReinvest.Series, Series{
					Name: comparison, Points: sim.HistoryWithReinvest,
				})
				result.ComparisonSummary = comparisonSummaries(sim, params.InitialInvestmentUSD, years)
			}
		}
	}

	for _, symbol := range validSymbols {
		result.CashDividends = append(result.CashDividends, params.Results[symbol].Simulation.DividendPayouts...)
	}

	return result, nil
}

// comparisonSummaries computes the comparison symbol's own stats at its
// full (unweighted) allocation; they are never merged into the portfolio.
func comparisonSummaries(sim *SimulationResult, initial, years float64) *StrategySummaries {
	ending := lastValue(sim.HistoryWithReinvest)
	endingFixed := lastValue(sim.HistoryWithoutReinvest)
	withReturn := TotalReturn(ending, 0, initial)
	withoutReturn := TotalReturn(endingFixed, sim.FinalCashCollected, initial)
	return &StrategySummaries{
		WithReinvest: Summary{
			TotalReturn: withReturn,
			CAGR:        CAGR(withReturn, years),
			EndingValue: ending,
		},
		WithoutReinvest: Summary{
			TotalReturn:        withoutReturn,
			CAGR:               CAGR(withoutReturn, years),
			EndingValue:        endingFixed,
			DividendsCollected: sim.FinalCashCollected,
		},
	}
}

func lastValue(points []TimePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}
