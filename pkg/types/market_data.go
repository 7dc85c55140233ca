package types

import (
	"strings"

	"github.com/dividendlab/drip-backtest/pkg/dates"
)

// PriceRecord is one trading day of a symbol's price history.
// Open and Close are adjusted in place for splits before simulation.
type PriceRecord struct {
	Date  dates.Date `json:"date"`
	Open  float64    `json:"open"`
	Close float64    `json:"close"`
}

// DividendRecord is a per-share dividend on an ex-dividend date.
type DividendRecord struct {
	Date   dates.Date `json:"date"`
	Amount float64    `json:"amount"`
}

// SplitRecord is a stock split expressed as "numerator:denominator",
// e.g. "2:1" for two new shares per old share.
type SplitRecord struct {
	Date  dates.Date `json:"date"`
	Ratio string     `json:"ratio"`
}

// SymbolData is the raw history the market-data collaborator returns for
// one symbol. Error carries an upstream fetch failure for that symbol.
type SymbolData struct {
	Symbol    string           `json:"symbol"`
	Prices    []PriceRecord    `json:"prices"`
	Dividends []DividendRecord `json:"dividends"`
	Splits    []SplitRecord    `json:"splits,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ExchangeRate is one USD/KRW quote.
type ExchangeRate struct {
	Date dates.Date `json:"date"`
	Rate float64    `json:"rate"`
}

// PortfolioItem is a symbol with its allocation weight in percent (0-100).
// Weights are caller-supplied and are not normalized to sum to 100.
type PortfolioItem struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// MarketData bundles everything the backtest consumes from upstream:
// per-symbol histories, USD/KRW rates and the non-trading-day calendar.
type MarketData struct {
	TickerData    []SymbolData   `json:"tickerData"`
	ExchangeRates []ExchangeRate `json:"exchangeRates"`
	Holidays      []dates.Date   `json:"holidays,omitempty"`
}

// FindSymbol returns the raw data for symbol (case-insensitive) or nil.
func (m *MarketData) FindSymbol(symbol string) *SymbolData {
	for i := range m.TickerData {
		if strings.EqualFold(m.TickerData[i].Symbol, symbol) {
			return &m.TickerData[i]
		}
	}
	return nil
}
