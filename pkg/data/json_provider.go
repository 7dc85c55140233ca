package data

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dividendlab/drip-backtest/pkg/types"
)

// JSONProvider implements MarketDataProvider for JSON bundle files. A bundle
// is one file carrying every symbol's history plus exchange rates and the
// holiday calendar, the shape the upstream data collector emits.
type JSONProvider struct{}

// NewJSONProvider creates a new JSON bundle provider
func NewJSONProvider() *JSONProvider {
	return &JSONProvider{}
}

// GetName returns the name of the data provider
func (p *JSONProvider) GetName() string {
	return "JSON Provider"
}

// LoadData loads and validates a market data bundle from a JSON file
func (p *JSONProvider) LoadData(source string) (*types.MarketData, error) {
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %s: %w", source, err)
	}

	var bundle types.MarketData
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle %s: %w", source, err)
	}

	if err := p.ValidateData(&bundle); err != nil {
		return nil, fmt.Errorf("invalid bundle %s: %w", source, err)
	}

	return &bundle, nil
}

// ValidateData validates the integrity of a loaded bundle
func (p *JSONProvider) ValidateData(data *types.MarketData) error {
	if data == nil {
		return fmt.Errorf("no data provided")
	}
	if len(data.TickerData) == 0 {
		return fmt.Errorf("bundle contains no symbols")
	}

	for _, symbol := range data.TickerData {
		if symbol.Symbol == "" {
			return fmt.Errorf("bundle contains a symbol entry with no ticker")
		}
		// A symbol may carry an upstream error instead of history; that is
		// a valid per-symbol state, not a malformed bundle.
		if symbol.Error != "" {
			continue
		}
		for i, record := range symbol.Prices {
			if record.Date.IsZero() {
				return fmt.Errorf("%s: price record %d has no date", symbol.Symbol, i)
			}
			if record.Close < 0 || record.Open < 0 {
				return fmt.Errorf("%s: negative price on %s", symbol.Symbol, record.Date)
			}
			if i > 0 && record.Date.Before(symbol.Prices[i-1].Date) {
				return fmt.Errorf("%s: price dates out of order at index %d", symbol.Symbol, i)
			}
		}
		for i, record := range symbol.Dividends {
			if record.Date.IsZero() {
				return fmt.Errorf("%s: dividend record %d has no date", symbol.Symbol, i)
			}
			if record.Amount < 0 {
				return fmt.Errorf("%s: negative dividend on %s", symbol.Symbol, record.Date)
			}
		}
	}

	for i, rate := range data.ExchangeRates {
		if rate.Rate <= 0 {
			return fmt.Errorf("exchange rate %d: rate must be positive, got %v", i, rate.Rate)
		}
	}

	return nil
}
