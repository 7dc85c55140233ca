package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

func validConfig() *BacktestConfig {
	cfg := NewDefaultBacktestConfig()
	cfg.DataFile = "data/bundle.json"
	cfg.Portfolio = []types.PortfolioItem{{Symbol: "SCHD", Weight: 60}, {Symbol: "O", Weight: 40}}
	cfg.StartDate = dates.MustParse("2018-01-02")
	cfg.EndDate = dates.MustParse("2023-12-29")
	return cfg
}

// TestLoadBacktestConfig tests loading a config file over the defaults
func TestLoadBacktestConfig(t *testing.T) {
	content := `{
		"data_file": "data/bundle.json",
		"portfolio": [{"symbol": "SCHD", "weight": 100}],
		"comparison_symbol": "SPY",
		"start_date": "2018-01-02",
		"end_date": "2023-12-29",
		"initial_investment_krw": 50000000,
		"commission_percent": 0.05,
		"apply_tax": true
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadBacktestConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "SPY", cfg.ComparisonSymbol)
	assert.Equal(t, 50_000_000.0, cfg.InitialInvestmentKRW)
	assert.Equal(t, 0.05, cfg.CommissionPercent)
	assert.True(t, cfg.ApplyTax)
	// Defaults survive for fields the file does not set
	assert.Equal(t, DefaultDataFormat, cfg.DataFormat)
	assert.True(t, cfg.HasComparison())
}

// TestLoadBacktestConfig_MissingFile tests the error for a bad path
func TestLoadBacktestConfig_MissingFile(t *testing.T) {
	_, err := LoadBacktestConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

// TestBacktestConfig_Validate tests the validation rules
func TestBacktestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BacktestConfig)
		wantErr string
	}{
		{"valid", func(c *BacktestConfig) {}, ""},
		{"missing data file", func(c *BacktestConfig) { c.DataFile = "" }, "data_file"},
		{"bad data format", func(c *BacktestConfig) { c.DataFormat = "xml" }, "data_format"},
		{"empty portfolio", func(c *BacktestConfig) { c.Portfolio = nil }, "at least one symbol"},
		{"blank symbol", func(c *BacktestConfig) { c.Portfolio[0].Symbol = " " }, "no symbol"},
		{"negative weight", func(c *BacktestConfig) { c.Portfolio[0].Weight = -1 }, "weight"},
		{"weight above 100", func(c *BacktestConfig) { c.Portfolio[0].Weight = 150 }, "weight"},
		{"missing dates", func(c *BacktestConfig) { c.StartDate = dates.Date{} }, "start_date"},
		{"inverted dates", func(c *BacktestConfig) { c.EndDate = dates.MustParse("2017-01-01") }, "before start_date"},
		{"zero investment", func(c *BacktestConfig) { c.InitialInvestmentKRW = 0 }, "initial_investment_krw"},
		{"commission too high", func(c *BacktestConfig) { c.CommissionPercent = 50 }, "commission_percent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

// TestHasComparison tests the benchmark sentinel handling
func TestHasComparison(t *testing.T) {
	cfg := validConfig()
	for _, s := range []string{"", "None", "NONE", "none", "  "} {
		cfg.ComparisonSymbol = s
		assert.False(t, cfg.HasComparison(), "symbol %q", s)
	}
	cfg.ComparisonSymbol = "SPY"
	assert.True(t, cfg.HasComparison())
}
