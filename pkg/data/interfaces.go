package data

import (
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// MarketDataProvider interface for loading market data bundles from various sources
type MarketDataProvider interface {
	// LoadData loads a market data bundle from the specified source
	LoadData(source string) (*types.MarketData, error)

	// ValidateData validates the integrity of the loaded bundle
	ValidateData(data *types.MarketData) error

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache interface for caching loaded bundles
type DataCache interface {
	// Get retrieves a bundle from cache if available
	Get(key string) (*types.MarketData, bool)

	// Set stores a bundle in cache
	Set(key string, data *types.MarketData)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// CSVColumnMapping defines the column positions for the per-symbol CSV files
type CSVColumnMapping struct {
	DateCol    int
	OpenCol    int
	CloseCol   int
	AmountCol  int
	RatioCol   int
	MinColumns int
	DateFormat string
}

// Predefined CSV formats
var (
	PriceCSVFormat = CSVColumnMapping{
		DateCol:    0,
		OpenCol:    1,
		CloseCol:   2,
		MinColumns: 3,
		DateFormat: "2006-01-02",
	}

	DividendCSVFormat = CSVColumnMapping{
		DateCol:    0,
		AmountCol:  1,
		MinColumns: 2,
		DateFormat: "2006-01-02",
	}

	SplitCSVFormat = CSVColumnMapping{
		DateCol:    0,
		RatioCol:   1,
		MinColumns: 2,
		DateFormat: "2006-01-02",
	}

	ExchangeRateCSVFormat = CSVColumnMapping{
		DateCol:    0,
		AmountCol:  1,
		MinColumns: 2,
		DateFormat: "2006-01-02",
	}
)
