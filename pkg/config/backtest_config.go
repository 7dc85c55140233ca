package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// Backtest configuration constants
const (
	// Default parameter values
	DefaultInitialInvestmentKRW = 10_000_000.0
	DefaultCommissionPercent    = 0.0
	DefaultComparisonSymbol     = "None"
	DefaultDataFormat           = "json"

	// Validation bounds
	MaxCommissionPercent = 10.0 // percent
	MaxPortfolioWeight   = 100.0
)

// BacktestConfig holds all configuration for a dividend reinvestment backtest
type BacktestConfig struct {
	DataFile   string `json:"data_file"`
	DataFormat string `json:"data_format"` // "json" or "csv"

	Portfolio        []types.PortfolioItem `json:"portfolio"`
	ComparisonSymbol string                `json:"comparison_symbol"`

	StartDate dates.Date `json:"start_date"`
	EndDate   dates.Date `json:"end_date"`

	InitialInvestmentKRW float64 `json:"initial_investment_krw"`
	CommissionPercent    float64 `json:"commission_percent"`
	ApplyTax             bool    `json:"apply_tax"`

	// Extra non-trading days on top of weekends, e.g. exchange holidays
	Holidays []dates.Date `json:"holidays,omitempty"`

	// Report output
	OutputDir   string `json:"output_dir,omitempty"`
	ExcelReport bool   `json:"excel_report,omitempty"`
}

// NewDefaultBacktestConfig returns a configuration with default values
func NewDefaultBacktestConfig() *BacktestConfig {
	return &BacktestConfig{
		DataFormat:           DefaultDataFormat,
		ComparisonSymbol:     DefaultComparisonSymbol,
		InitialInvestmentKRW: DefaultInitialInvestmentKRW,
		CommissionPercent:    DefaultCommissionPercent,
	}
}

// LoadBacktestConfig loads configuration from a JSON file on top of the
// defaults and validates the result
func LoadBacktestConfig(configFile string) (*BacktestConfig, error) {
	cfg := NewDefaultBacktestConfig()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a JSON file
func loadFromFile(configFile string, cfg *BacktestConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for problems that would make the
// backtest meaningless
func (c *BacktestConfig) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file is required")
	}
	switch strings.ToLower(c.DataFormat) {
	case "json", "csv":
	default:
		return fmt.Errorf("data_format must be \"json\" or \"csv\", got %q", c.DataFormat)
	}

	if len(c.Portfolio) == 0 {
		return fmt.Errorf("portfolio must contain at least one symbol")
	}
	for i, item := range c.Portfolio {
		if strings.TrimSpace(item.Symbol) == "" {
			return fmt.Errorf("portfolio item %d has no symbol", i)
		}
		if item.Weight < 0 || item.Weight > MaxPortfolioWeight {
			return fmt.Errorf("portfolio item %s: weight must be between 0 and %v, got %v",
				item.Symbol, MaxPortfolioWeight, item.Weight)
		}
	}

	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("end_date %s is before start_date %s", c.EndDate, c.StartDate)
	}

	if c.InitialInvestmentKRW <= 0 {
		return fmt.Errorf("initial_investment_krw must be positive, got %v", c.InitialInvestmentKRW)
	}
	if c.CommissionPercent < 0 || c.CommissionPercent > MaxCommissionPercent {
		return fmt.Errorf("commission_percent must be between 0 and %v, got %v",
			MaxCommissionPercent, c.CommissionPercent)
	}

	return nil
}

// HasComparison reports whether a benchmark symbol is configured.
func (c *BacktestConfig) HasComparison() bool {
	s := strings.ToUpper(strings.TrimSpace(c.ComparisonSymbol))
	return s != "" && s != "NONE"
}
