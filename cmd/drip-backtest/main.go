package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dividendlab/drip-backtest/internal/backtest"
	"github.com/dividendlab/drip-backtest/internal/logger"
	"github.com/dividendlab/drip-backtest/internal/monitoring"
	"github.com/dividendlab/drip-backtest/pkg/config"
	"github.com/dividendlab/drip-backtest/pkg/data"
	"github.com/dividendlab/drip-backtest/pkg/dates"
)

const (
	AppName    = "DRIP Backtest"
	AppVersion = "1.0.0"
)

func main() {
	// Create and parse command line flags
	flags := NewBacktestFlags()
	flag.Parse()

	// Version and help
	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}
	if *flags.ShowHelp {
		printUsageHelp()
		return
	}

	// Validate flags before proceeding
	if err := ValidateBacktestFlags(flags); err != nil {
		log.Fatalf("❌ Flag validation error: %v", err)
	}

	// Header
	printHeader()

	// Load environment
	loadEnvironment(*flags.EnvFile)

	// Load configuration
	cfg, err := loadConfiguration(flags)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	// Serve Prometheus metrics and the health endpoint when requested
	health := monitoring.NewHealthChecker()
	if *flags.MetricsAddr != "" {
		startMetricsServer(*flags.MetricsAddr, health)
	}

	// Session log, named after the portfolio
	sessionLog, err := logger.NewLogger(portfolioName(cfg))
	if err != nil {
		log.Fatalf("❌ Logger error: %v", err)
	}
	defer sessionLog.Close()

	// Load market data
	provider := newProvider(cfg.DataFormat)
	bundle, err := provider.LoadData(cfg.DataFile)
	if err != nil {
		sessionLog.LogError("data load", err)
		log.Fatalf("❌ Data error: %v", err)
	}

	// Run the backtest
	started := time.Now()
	results, err := backtest.Run(backtest.Request{
		Portfolio:            cfg.Portfolio,
		ComparisonSymbol:     cfg.ComparisonSymbol,
		StartDate:            cfg.StartDate,
		EndDate:              cfg.EndDate,
		InitialInvestmentKRW: cfg.InitialInvestmentKRW,
		CommissionPercent:    cfg.CommissionPercent,
		ApplyTax:             cfg.ApplyTax,
		Data:                 bundle,
		Holidays:             cfg.Holidays,
	})
	elapsed := time.Since(started)

	if err != nil {
		monitoring.RecordRun("failed", elapsed)
		health.RecordRun("failed")
		health.RecordError(err.Error())
		sessionLog.LogError("backtest", err)
		log.Fatalf("❌ Backtest error: %v", err)
	}
	monitoring.RecordRun("success", elapsed)
	health.RecordRun("success")
	recordResultMetrics(results)

	sessionLog.Info("Backtest finished in %s", elapsed.Round(time.Millisecond))
	logRunOutcome(sessionLog, results)

	// Output
	outputResults(results, cfg, flags)
}

func printHeader() {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(AppName), AppVersion)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func printUsageHelp() {
	fmt.Printf("%s v%s - Dividend Reinvestment Backtesting\n\n", AppName, AppVersion)
	fmt.Printf("USAGE:\n  %s [OPTIONS]\n\n", filepath.Base(flag.CommandLine.Name()))

	PrintUsageExamples()
	PrintFlagGroups()

	fmt.Printf("\nFor more information, see the README or documentation.\n")
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", envFile, err)
	}
}

// loadConfiguration builds the backtest configuration from a config file or
// from flags. Flags fill in whatever the file leaves unset.
func loadConfiguration(flags *BacktestFlags) (*config.BacktestConfig, error) {
	if *flags.ConfigFile != "" {
		configFile := ResolveConfigPath(*flags.ConfigFile)
		return config.LoadBacktestConfig(configFile)
	}

	cfg := config.NewDefaultBacktestConfig()
	cfg.DataFile = *flags.DataFile
	cfg.DataFormat = *flags.DataFormat
	cfg.ComparisonSymbol = *flags.Comparison
	cfg.InitialInvestmentKRW = *flags.Investment
	cfg.CommissionPercent = *flags.Commission
	cfg.ApplyTax = *flags.ApplyTax
	cfg.OutputDir = *flags.OutputDir
	cfg.ExcelReport = *flags.Excel

	portfolio, err := ParsePortfolio(*flags.Portfolio)
	if err != nil {
		return nil, err
	}
	cfg.Portfolio = portfolio

	// Dates were syntax-checked during flag validation
	cfg.StartDate = dates.MustParse(*flags.StartDate)
	cfg.EndDate = dates.MustParse(*flags.EndDate)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProvider picks the data provider for the configured format and wraps
// it with the in-memory cache.
func newProvider(format string) data.MarketDataProvider {
	switch strings.ToLower(format) {
	case "csv":
		return data.NewCachedProvider(data.NewCSVProvider())
	default:
		return data.NewCachedProvider(data.NewJSONProvider())
	}
}

func portfolioName(cfg *config.BacktestConfig) string {
	symbols := make([]string, len(cfg.Portfolio))
	for i, item := range cfg.Portfolio {
		symbols[i] = strings.ToUpper(item.Symbol)
	}
	return strings.Join(symbols, "_")
}

func startMetricsServer(addr string, health *monitoring.HealthChecker) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)
	go func() {
		log.Printf("📡 Serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("⚠️  Metrics server stopped: %v", err)
		}
	}()
}
