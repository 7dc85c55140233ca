package reporting

import (
	"github.com/dividendlab/drip-backtest/internal/backtest"
)

// Package reporting provides output generation for backtest results

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputResults(results *backtest.AggregateResult)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteSeriesCSV(results *backtest.AggregateResult, path string) error
	WriteReportXLSX(results *backtest.AggregateResult, path string) error
	WriteResultJSON(results *backtest.AggregateResult, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbols []string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle       int
	CurrencyStyle     int
	PercentStyle      int
	BaseStyle         int
	RedPercentStyle   int
	GreenPercentStyle int
	SummaryStyle      int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}
