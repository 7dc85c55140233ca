package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/dividendlab/drip-backtest/pkg/config"
	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// BacktestFlags holds all command line flags for the backtest command
type BacktestFlags struct {
	// Configuration
	ConfigFile *string
	DataFile   *string
	DataFormat *string

	// Portfolio
	Portfolio  *string
	Comparison *string

	// Period
	StartDate *string
	EndDate   *string

	// Account settings
	Investment *float64
	Commission *float64
	ApplyTax   *bool

	// Output options
	OutputDir   *string
	ConsoleOnly *bool
	Excel       *bool
	JSON        *bool
	CSV         *bool
	EnvFile     *string

	// Monitoring
	MetricsAddr *string

	// Help and version
	ShowVersion *bool
	ShowHelp    *bool
}

// NewBacktestFlags creates and registers all command line flags
func NewBacktestFlags() *BacktestFlags {
	flags := &BacktestFlags{
		// Configuration
		ConfigFile: flag.String("config", "", "Path to backtest configuration file"),
		DataFile:   flag.String("data", "", "Path to market data bundle (JSON file or CSV directory)"),
		DataFormat: flag.String("data-format", config.DefaultDataFormat, "Data format (json, csv)"),

		// Portfolio
		Portfolio:  flag.String("portfolio", "", "Portfolio as SYMBOL:WEIGHT pairs (e.g., SCHD:60,O:40)"),
		Comparison: flag.String("comparison", config.DefaultComparisonSymbol, "Benchmark symbol (None to disable)"),

		// Period
		StartDate: flag.String("start", "", "Backtest start date (YYYY-MM-DD)"),
		EndDate:   flag.String("end", "", "Backtest end date (YYYY-MM-DD)"),

		// Account settings
		Investment: flag.Float64("investment", config.DefaultInitialInvestmentKRW, "Initial investment in KRW"),
		Commission: flag.Float64("commission", config.DefaultCommissionPercent, "Trading commission in percent (0.05 = 0.05%)"),
		ApplyTax:   flag.Bool("tax", false, "Apply 15% dividend withholding tax"),

		// Output options
		OutputDir:   flag.String("output", "", "Output directory (default: results/<SYMBOLS>)"),
		ConsoleOnly: flag.Bool("console-only", false, "Console output only (no files)"),
		Excel:       flag.Bool("excel", false, "Write Excel report"),
		JSON:        flag.Bool("json", false, "Write full result JSON"),
		CSV:         flag.Bool("csv", true, "Write series CSV"),
		EnvFile:     flag.String("env", ".env", "Environment file path"),

		// Monitoring
		MetricsAddr: flag.String("metrics-addr", "", "Address to serve Prometheus metrics on (e.g., :9090)"),

		// Help and version
		ShowVersion: flag.Bool("version", false, "Show version information"),
		ShowHelp:    flag.Bool("help", false, "Show detailed help"),
	}

	return flags
}

// PrintUsageExamples prints usage examples for the backtest command
func PrintUsageExamples() {
	examples := []struct {
		command     string
		description string
	}{
		{
			"drip-backtest -data data/bundle.json -portfolio SCHD:100 -start 2018-01-02 -end 2023-12-29",
			"Backtest a single dividend ETF over six years",
		},
		{
			"drip-backtest -config configs/dividend_portfolio.json",
			"Load the full backtest setup from a configuration file",
		},
		{
			"drip-backtest -data data/bundle.json -portfolio SCHD:60,O:40 -comparison SPY -start 2019-01-02 -end 2023-12-29",
			"Backtest a weighted two-symbol portfolio against SPY",
		},
		{
			"drip-backtest -data data/csv -data-format csv -portfolio JEPI:100 -start 2021-01-04 -end 2023-12-29 -tax",
			"Load CSV data and apply dividend withholding tax",
		},
		{
			"drip-backtest -data data/bundle.json -portfolio SCHD:100 -start 2018-01-02 -end 2023-12-29 -investment 50000000 -commission 0.05",
			"Custom investment amount and commission",
		},
		{
			"drip-backtest -data data/bundle.json -portfolio SCHD:100 -start 2018-01-02 -end 2023-12-29 -excel -json",
			"Write Excel and JSON reports alongside the CSV",
		},
	}

	fmt.Printf("\n📚 USAGE EXAMPLES:\n")
	fmt.Printf("%s\n", strings.Repeat("-", 60))

	for _, example := range examples {
		fmt.Printf("\n• %s\n", example.description)
		fmt.Printf("  %s\n", example.command)
	}
}

// PrintFlagGroups prints flags organized by category for better readability
func PrintFlagGroups() {
	fmt.Printf(`
📊 CONFIGURATION FLAGS:
  -config FILE          Load configuration from JSON file
  -data PATH            Market data bundle (JSON file or CSV directory)
  -data-format FORMAT   Data format: json, csv (default: json)

💼 PORTFOLIO FLAGS:
  -portfolio PAIRS      SYMBOL:WEIGHT pairs (e.g., SCHD:60,O:40)
  -comparison SYMBOL    Benchmark symbol, None to disable (default: None)

📅 PERIOD FLAGS:
  -start DATE           Backtest start date (YYYY-MM-DD)
  -end DATE             Backtest end date (YYYY-MM-DD)

💰 ACCOUNT FLAGS:
  -investment AMOUNT    Initial investment in KRW (default: 10000000)
  -commission PCT       Trading commission in percent (default: 0)
  -tax                  Apply 15%% dividend withholding tax

📁 OUTPUT FLAGS:
  -output DIR           Output directory (default: results/<SYMBOLS>)
  -console-only         Console output only, no file output
  -excel                Write Excel report
  -json                 Write full result JSON
  -csv                  Write series CSV (default: true)
  -env FILE             Environment file path (default: .env)

📡 MONITORING FLAGS:
  -metrics-addr ADDR    Serve Prometheus metrics (e.g., :9090)

❓ HELP FLAGS:
  -version              Show version information
  -help                 Show this help message
`)
}

// ValidateBacktestFlags performs validation on flag combinations. Flags that
// the config file can supply are only checked when no config file is given.
func ValidateBacktestFlags(flags *BacktestFlags) error {
	if *flags.Commission < 0 || *flags.Commission > config.MaxCommissionPercent {
		return fmt.Errorf("commission must be between 0 and %v percent, got: %.4f",
			config.MaxCommissionPercent, *flags.Commission)
	}
	if *flags.Investment <= 0 {
		return fmt.Errorf("investment must be positive, got: %.2f", *flags.Investment)
	}

	if *flags.ConfigFile != "" {
		return nil
	}

	if *flags.DataFile == "" {
		return fmt.Errorf("either -config or -data is required")
	}
	if *flags.Portfolio == "" {
		return fmt.Errorf("portfolio is required (e.g., -portfolio SCHD:60,O:40)")
	}
	if *flags.StartDate == "" || *flags.EndDate == "" {
		return fmt.Errorf("both -start and -end are required")
	}
	if _, err := dates.Parse(*flags.StartDate); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if _, err := dates.Parse(*flags.EndDate); err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if _, err := ParsePortfolio(*flags.Portfolio); err != nil {
		return err
	}

	return nil
}

// ResolveConfigPath resolves the configuration file path with smart defaults
func ResolveConfigPath(configFile string) string {
	if configFile == "" {
		return ""
	}

	// If no path separators, assume it's in the configs/ directory
	if !strings.ContainsAny(configFile, "/\\") {
		if !strings.HasSuffix(configFile, ".json") {
			configFile += ".json"
		}
		return "configs/" + configFile
	}
	return configFile
}

// ParsePortfolio parses SYMBOL:WEIGHT pairs into portfolio items. A pair
// without a weight gets an equal share of the remaining allocation.
func ParsePortfolio(spec string) ([]types.PortfolioItem, error) {
	parts := strings.Split(spec, ",")
	items := make([]types.PortfolioItem, 0, len(parts))
	weighted := make([]bool, 0, len(parts))
	allocated := 0.0
	unweighted := 0

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		symbol, weightStr, hasWeight := strings.Cut(part, ":")
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			return nil, fmt.Errorf("portfolio entry %q has no symbol", part)
		}
		item := types.PortfolioItem{Symbol: strings.ToUpper(symbol)}
		if hasWeight {
			weight, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
			if err != nil {
				return nil, fmt.Errorf("portfolio entry %q has an invalid weight: %v", part, err)
			}
			if weight < 0 || weight > 100 {
				return nil, fmt.Errorf("portfolio entry %q: weight must be between 0 and 100", part)
			}
			item.Weight = weight
			allocated += weight
		} else {
			unweighted++
		}
		items = append(items, item)
		weighted = append(weighted, hasWeight)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("portfolio is empty")
	}

	// Spread the remaining allocation across entries without a weight
	if unweighted > 0 {
		remaining := 100 - allocated
		if remaining < 0 {
			remaining = 0
		}
		share := remaining / float64(unweighted)
		for i := range items {
			if !weighted[i] {
				items[i].Weight = share
			}
		}
	}

	return items, nil
}
