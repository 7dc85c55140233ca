package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dividendlab/drip-backtest/internal/backtest"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteSeriesCSV writes the portfolio-level time series to a CSV file, one
// column per series on the shared date axis
func (r *DefaultCSVReporter) WriteSeriesCSV(results *backtest.AggregateResult, path string) error {
	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// If the user requests an Excel file, delegate to the Excel writer
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteReportXLSX(results, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	allSeries := append([]backtest.Series{}, results.WithReinvest.Series...)
	allSeries = append(allSeries, results.WithoutReinvest.Series...)
	if len(allSeries) == 0 {
		return nil
	}

	header := []string{"Date"}
	for _, series := range allSeries {
		header = append(header, series.Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	// Secondary series can start later than the axis; missing dates stay
	// blank rather than zero so charts do not show a false dip.
	indexed := make([]map[string]float64, len(allSeries))
	for i, series := range allSeries {
		byDate := make(map[string]float64, len(series.Points))
		for _, point := range series.Points {
			byDate[point.Date.String()] = point.Value
		}
		indexed[i] = byDate
	}

	for _, axisPoint := range allSeries[0].Points {
		date := axisPoint.Date.String()
		row := []string{date}
		for _, byDate := range indexed {
			if value, ok := byDate[date]; ok {
				row = append(row, fmt.Sprintf("%.4f", value))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("SUMMARY: initial=$%.2f; ending_reinvest=$%.2f; ending_cash_out=$%.2f; dividends=$%.2f",
		results.InitialInvestment,
		results.WithReinvest.Summary.EndingValue,
		results.WithoutReinvest.Summary.EndingValue,
		results.WithoutReinvest.Summary.DividendsCollected)

	summaryRow := make([]string, len(header))
	summaryRow[len(header)-1] = summary
	return w.Write(summaryRow)
}

// Package-level convenience function
func WriteSeriesCSV(results *backtest.AggregateResult, path string) error {
	reporter := NewDefaultCSVReporter()
	return reporter.WriteSeriesCSV(results, path)
}
