package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/dividendlab/drip-backtest/internal/backtest"
	"github.com/dividendlab/drip-backtest/internal/errors"
	"github.com/dividendlab/drip-backtest/internal/logger"
	"github.com/dividendlab/drip-backtest/internal/monitoring"
	"github.com/dividendlab/drip-backtest/pkg/config"
	"github.com/dividendlab/drip-backtest/pkg/reporting"
)

// outputResults prints the console report and writes the requested files
func outputResults(results *backtest.AggregateResult, cfg *config.BacktestConfig, flags *BacktestFlags) {
	reporting.OutputConsole(results)

	if *flags.ConsoleOnly {
		return
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = reporting.DefaultOutputDir(results.Symbols)
	}

	if *flags.CSV {
		path := filepath.Join(outputDir, "series.csv")
		if err := reporting.WriteSeriesCSV(results, path); err != nil {
			log.Printf("⚠️  Could not write %s: %v", path, err)
		} else {
			fmt.Printf("📄 Series written to %s\n", path)
		}
	}

	if *flags.Excel || cfg.ExcelReport {
		path := filepath.Join(outputDir, "report.xlsx")
		if err := reporting.WriteReportXLSX(results, path); err != nil {
			log.Printf("⚠️  Could not write %s: %v", path, err)
		} else {
			fmt.Printf("📊 Excel report written to %s\n", path)
		}
	}

	if *flags.JSON {
		path := filepath.Join(outputDir, "result.json")
		if err := reporting.WriteResultJSON(results, path); err != nil {
			log.Printf("⚠️  Could not write %s: %v", path, err)
		} else {
			fmt.Printf("📄 Result JSON written to %s\n", path)
		}
	}
}

// recordResultMetrics feeds the simulation outcome into Prometheus
func recordResultMetrics(results *backtest.AggregateResult) {
	for symbol, slot := range results.IndividualResults {
		if slot.Failed() {
			monitoring.RecordSymbolError(errorCategoryLabel(slot.Error))
			continue
		}
		for range slot.Simulation.DividendPayouts {
			monitoring.RecordDividendPayout(symbol)
		}
		for _, skip := range slot.Simulation.SkippedReinvestments {
			monitoring.RecordSkippedReinvestment(symbol, skip.Reason)
		}
	}
}

// errorCategoryLabel extracts the "[CATEGORY]" prefix that per-symbol error
// messages carry, for use as a metric label.
func errorCategoryLabel(message string) string {
	if strings.HasPrefix(message, "[") {
		if end := strings.Index(message, "]"); end > 1 {
			return message[1:end]
		}
	}
	return string(errors.ErrorCategoryData)
}

// logRunOutcome writes the headline figures and failures to the session log
func logRunOutcome(sessionLog *logger.Logger, results *backtest.AggregateResult) {
	summary := results.WithReinvest.Summary
	sessionLog.LogRunSummary(
		results.InitialInvestment,
		summary.EndingValue,
		summary.TotalReturn,
		summary.CAGR,
		results.Years,
	)
	for symbol, slot := range results.IndividualResults {
		if slot.Failed() {
			sessionLog.LogSymbolFailure(symbol, slot.Error)
		}
	}
}
