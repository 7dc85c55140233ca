package reporting

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dividendlab/drip-backtest/internal/backtest"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// OutputResults prints backtest results to console
func (r *DefaultConsoleReporter) OutputResults(results *backtest.AggregateResult) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("📊 BACKTEST RESULTS")
	fmt.Println(strings.Repeat("=", 50))

	fmt.Printf("💵 Initial Investment: $%.2f\n", results.InitialInvestment)
	fmt.Printf("📅 Period:             %.1f years\n", results.Years)
	fmt.Printf("🧾 Dividend Payouts:   %d\n", len(results.CashDividends))

	r.printStrategyTable(results)
	r.printSymbolTable(results)
	r.printComparison(results)
}

// printStrategyTable renders the two strategies side by side
func (r *DefaultConsoleReporter) printStrategyTable(results *backtest.AggregateResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("STRATEGY COMPARISON")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"", "Reinvest", "Cash Out"})
	with := results.WithReinvest.Summary
	without := results.WithoutReinvest.Summary
	t.AppendRows([]table.Row{
		{"💰 Ending Value", fmt.Sprintf("$%.2f", with.EndingValue), fmt.Sprintf("$%.2f", without.EndingValue)},
		{"📈 Total Return", fmt.Sprintf("%.2f%%", with.TotalReturn*100), fmt.Sprintf("%.2f%%", without.TotalReturn*100)},
		{"📊 CAGR", formatCAGR(with.CAGR), formatCAGR(without.CAGR)},
		{"💸 Cash Dividends", "-", fmt.Sprintf("$%.2f", without.DividendsCollected)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 14, Align: text.AlignRight},
		{Number: 3, WidthMin: 14, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}

// printSymbolTable renders the per-symbol breakdown including failures
func (r *DefaultConsoleReporter) printSymbolTable(results *backtest.AggregateResult) {
	if len(results.IndividualResults) == 0 {
		return
	}

	symbols := make([]string, 0, len(results.IndividualResults))
	for symbol := range results.IndividualResults {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("SYMBOL BREAKDOWN")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Shares", "End Price", "Payouts", "Status"})

	for _, symbol := range symbols {
		slot := results.IndividualResults[symbol]
		if slot.Failed() {
			t.AppendRow(table.Row{symbol, "-", "-", "-", "❌ " + slot.Error})
			continue
		}
		sim := slot.Simulation
		t.AppendRow(table.Row{
			symbol,
			fmt.Sprintf("%.4f", sim.SharesWithReinvest),
			fmt.Sprintf("$%.2f", sim.EndPrice),
			len(sim.DividendPayouts),
			"✅",
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 8, Align: text.AlignLeft},
		{Number: 5, WidthMax: 45, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// printComparison renders the benchmark summary when one was simulated
func (r *DefaultConsoleReporter) printComparison(results *backtest.AggregateResult) {
	if results.ComparisonSymbol == "" {
		return
	}
	if results.ComparisonResult != nil && results.ComparisonResult.Failed() {
		fmt.Printf("⚠️ Benchmark %s failed to simulate: %s\n\n",
			results.ComparisonSymbol, results.ComparisonResult.Error)
		return
	}
	if results.ComparisonSummary == nil {
		return
	}

	summary := results.ComparisonSummary.WithReinvest
	fmt.Printf("🏁 Benchmark %s:       $%.2f (%.2f%% return, CAGR %s)\n\n",
		results.ComparisonSymbol, summary.EndingValue, summary.TotalReturn*100,
		formatCAGR(summary.CAGR))
}

// formatCAGR renders the CAGR figure, mapping the undefined sentinel to N/A.
func formatCAGR(cagr float64) string {
	if cagr == backtest.CAGRUndefined {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", cagr*100)
}

// Package-level convenience function
func OutputConsole(results *backtest.AggregateResult) {
	reporter := NewDefaultConsoleReporter()
	reporter.OutputResults(results)
}
