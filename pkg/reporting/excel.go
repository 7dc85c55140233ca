package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/dividendlab/drip-backtest/internal/backtest"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteReportXLSX writes the full backtest report workbook
func (r *DefaultExcelReporter) WriteReportXLSX(results *backtest.AggregateResult, path string) error {
	// Ensure directory exists before creating file
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const seriesSheet = "Series"
	const dividendsSheet = "Dividends"

	// Replace default sheet and create additional sheets
	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(seriesSheet)
	fx.NewSheet(dividendsSheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, summarySheet, results, styles); err != nil {
		return err
	}
	if err := r.writeSeriesSheet(fx, seriesSheet, results, styles); err != nil {
		return err
	}
	if err := r.writeDividendsSheet(fx, dividendsSheet, results, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates all Excel styles
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	lightBorders := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	// Header style - Dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Currency style (right aligned, $ format)
	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Percentage style (right aligned, % format)
	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Red percentage style for losses
	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Green percentage style for gains
	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Base style (light borders)
	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	// Summary style (bold on light gray)
	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"F2F2F2"},
			Pattern: 1,
		},
		Border: lightBorders,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

// writeSummarySheet writes the headline figures and per-symbol breakdown
func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, results *backtest.AggregateResult, styles ExcelStyles) error {
	headers := []interface{}{"Metric", "Reinvest", "Cash Out"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	with := results.WithReinvest.Summary
	without := results.WithoutReinvest.Summary
	rows := []struct {
		label      string
		with       interface{}
		without    interface{}
		valueStyle int
	}{
		{"Initial Investment", results.InitialInvestment, results.InitialInvestment, styles.CurrencyStyle},
		{"Ending Value", with.EndingValue, without.EndingValue, styles.CurrencyStyle},
		{"Cash Dividends", 0.0, without.DividendsCollected, styles.CurrencyStyle},
		{"Total Return", with.TotalReturn, without.TotalReturn, styles.PercentStyle},
		{"CAGR", with.CAGR, without.CAGR, styles.PercentStyle},
		{"Years", results.Years, results.Years, styles.BaseStyle},
	}

	for i, row := range rows {
		rowNum := i + 2
		labelCell, _ := excelize.CoordinatesToCellName(1, rowNum)
		fx.SetCellValue(sheet, labelCell, row.label)
		fx.SetCellStyle(sheet, labelCell, labelCell, styles.SummaryStyle)

		style := row.valueStyle
		if row.label == "Total Return" || row.label == "CAGR" {
			style = returnStyle(with.TotalReturn, styles)
		}
		for col, value := range []interface{}{row.with, row.without} {
			cell, _ := excelize.CoordinatesToCellName(col+2, rowNum)
			fx.SetCellValue(sheet, cell, value)
			fx.SetCellStyle(sheet, cell, cell, style)
		}
	}

	// Per-symbol breakdown below the headline block
	startRow := len(rows) + 4
	symbolHeaders := []interface{}{"Symbol", "Initial Shares", "Final Shares", "End Price", "Status"}
	for i, h := range symbolHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, startRow)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	rowNum := startRow + 1
	for _, symbol := range sortedSymbols(results) {
		slot := results.IndividualResults[symbol]
		values := make([]interface{}, 5)
		values[0] = symbol
		if slot.Failed() {
			values[1], values[2], values[3] = "-", "-", "-"
			values[4] = slot.Error
		} else {
			sim := slot.Simulation
			values[1] = sim.InitialShares
			values[2] = sim.SharesWithReinvest
			values[3] = sim.EndPrice
			values[4] = "OK"
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			fx.SetCellValue(sheet, cell, value)
			fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
		}
		rowNum++
	}

	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "E", 15)
	return nil
}

// writeSeriesSheet writes every portfolio-level time series as columns
func (r *DefaultExcelReporter) writeSeriesSheet(fx *excelize.File, sheet string, results *backtest.AggregateResult, styles ExcelStyles) error {
	allSeries := append([]backtest.Series{}, results.WithReinvest.Series...)
	allSeries = append(allSeries, results.WithoutReinvest.Series...)
	if len(allSeries) == 0 {
		return nil
	}

	fx.SetCellValue(sheet, "A1", "Date")
	fx.SetCellStyle(sheet, "A1", "A1", styles.HeaderStyle)
	for i, series := range allSeries {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		fx.SetCellValue(sheet, cell, series.Name)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	// The first series carries the date axis; other series may be shorter
	// (the comparison symbol can start later), so index them by date.
	for rowIdx, point := range allSeries[0].Points {
		rowNum := rowIdx + 2
		dateCell, _ := excelize.CoordinatesToCellName(1, rowNum)
		fx.SetCellValue(sheet, dateCell, point.Date.String())
		fx.SetCellStyle(sheet, dateCell, dateCell, styles.BaseStyle)
	}
	for colIdx, series := range allSeries {
		byDate := make(map[string]float64, len(series.Points))
		for _, point := range series.Points {
			byDate[point.Date.String()] = point.Value
		}
		for rowIdx, axisPoint := range allSeries[0].Points {
			cell, _ := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
			if value, ok := byDate[axisPoint.Date.String()]; ok {
				fx.SetCellValue(sheet, cell, value)
			}
			fx.SetCellStyle(sheet, cell, cell, styles.CurrencyStyle)
		}
	}

	fx.SetColWidth(sheet, "A", "A", 12)
	return nil
}

// writeDividendsSheet writes the combined dividend payout ledger
func (r *DefaultExcelReporter) writeDividendsSheet(fx *excelize.File, sheet string, results *backtest.AggregateResult, styles ExcelStyles) error {
	headers := []interface{}{"Date", "Symbol", "Per Share", "Shares", "Gross", "Net"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	payouts := append([]backtest.DividendPayout{}, results.CashDividends...)
	sort.Slice(payouts, func(i, j int) bool {
		if payouts[i].Date != payouts[j].Date {
			return payouts[i].Date.Before(payouts[j].Date)
		}
		return payouts[i].Ticker < payouts[j].Ticker
	})

	total := 0.0
	for i, payout := range payouts {
		rowNum := i + 2
		values := []interface{}{
			payout.Date.String(),
			payout.Ticker,
			payout.PerShare,
			payout.Shares,
			payout.PreTaxAmount,
			payout.Amount,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			fx.SetCellValue(sheet, cell, value)
			style := styles.BaseStyle
			if col >= 2 {
				style = styles.CurrencyStyle
			}
			fx.SetCellStyle(sheet, cell, cell, style)
		}
		total += payout.Amount
	}

	// Total row
	rowNum := len(payouts) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, rowNum)
	fx.SetCellValue(sheet, labelCell, "TOTAL")
	fx.SetCellStyle(sheet, labelCell, labelCell, styles.SummaryStyle)
	totalCell, _ := excelize.CoordinatesToCellName(6, rowNum)
	fx.SetCellValue(sheet, totalCell, total)
	fx.SetCellStyle(sheet, totalCell, totalCell, styles.SummaryStyle)

	fx.SetColWidth(sheet, "A", "A", 12)
	fx.SetColWidth(sheet, "B", "F", 12)
	return nil
}

// returnStyle picks green for gains and red for losses.
func returnStyle(totalReturn float64, styles ExcelStyles) int {
	if totalReturn < 0 {
		return styles.RedPercentStyle
	}
	return styles.GreenPercentStyle
}

// sortedSymbols returns the per-symbol result keys in stable order.
func sortedSymbols(results *backtest.AggregateResult) []string {
	symbols := make([]string, 0, len(results.IndividualResults))
	for symbol := range results.IndividualResults {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Package-level convenience function
func WriteReportXLSX(results *backtest.AggregateResult, path string) error {
	reporter := NewDefaultExcelReporter()
	return reporter.WriteReportXLSX(results, path)
}
