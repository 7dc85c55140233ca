package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// CSVProvider implements MarketDataProvider for a directory of CSV files.
//
// Expected layout under the source directory:
//
//	<source>/exchange_rates.csv        date,rate
//	<source>/holidays.csv              date            (optional)
//	<source>/<SYMBOL>/prices.csv       date,open,close
//	<source>/<SYMBOL>/dividends.csv    date,amount     (optional)
//	<source>/<SYMBOL>/splits.csv       date,ratio      (optional)
type CSVProvider struct {
	priceFormat    CSVColumnMapping
	dividendFormat CSVColumnMapping
	splitFormat    CSVColumnMapping
	rateFormat     CSVColumnMapping
}

// NewCSVProvider creates a new CSV data provider with default formats
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{
		priceFormat:    PriceCSVFormat,
		dividendFormat: DividendCSVFormat,
		splitFormat:    SplitCSVFormat,
		rateFormat:     ExchangeRateCSVFormat,
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads a market data bundle from a directory of CSV files
func (p *CSVProvider) LoadData(source string) (*types.MarketData, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", source, err)
	}

	bundle := &types.MarketData{}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		symbol := strings.ToUpper(entry.Name())
		symbolData, err := p.loadSymbol(filepath.Join(source, entry.Name()), symbol)
		if err != nil {
			// Per-symbol load failures are captured on the symbol, matching
			// how upstream fetch errors arrive in JSON bundles.
			log.Printf("⚠️ Failed to load %s: %v", symbol, err)
			bundle.TickerData = append(bundle.TickerData, types.SymbolData{
				Symbol: symbol,
				Error:  err.Error(),
			})
			continue
		}
		bundle.TickerData = append(bundle.TickerData, symbolData)
	}
	sort.Slice(bundle.TickerData, func(i, j int) bool {
		return bundle.TickerData[i].Symbol < bundle.TickerData[j].Symbol
	})

	bundle.ExchangeRates, err = p.loadExchangeRates(filepath.Join(source, "exchange_rates.csv"))
	if err != nil {
		return nil, err
	}
	bundle.Holidays, err = p.loadHolidays(filepath.Join(source, "holidays.csv"))
	if err != nil {
		return nil, err
	}

	if err := p.ValidateData(bundle); err != nil {
		return nil, fmt.Errorf("invalid data in %s: %w", source, err)
	}
	return bundle, nil
}

// loadSymbol reads one symbol's directory. Prices are required; dividends
// and splits are optional files.
func (p *CSVProvider) loadSymbol(dir, symbol string) (types.SymbolData, error) {
	data := types.SymbolData{Symbol: symbol}

	priceRows, err := p.readRows(filepath.Join(dir, "prices.csv"), p.priceFormat, false)
	if err != nil {
		return data, err
	}
	for _, row := range priceRows {
		open, ok1 := parseFloatField(row.fields, p.priceFormat.OpenCol, "open", row.line)
		close, ok2 := parseFloatField(row.fields, p.priceFormat.CloseCol, "close", row.line)
		if !ok1 || !ok2 {
			continue
		}
		data.Prices = append(data.Prices, types.PriceRecord{Date: row.date, Open: open, Close: close})
	}
	sort.Slice(data.Prices, func(i, j int) bool { return data.Prices[i].Date.Before(data.Prices[j].Date) })

	dividendRows, err := p.readRows(filepath.Join(dir, "dividends.csv"), p.dividendFormat, true)
	if err != nil {
		return data, err
	}
	for _, row := range dividendRows {
		amount, ok := parseFloatField(row.fields, p.dividendFormat.AmountCol, "amount", row.line)
		if !ok {
			continue
		}
		data.Dividends = append(data.Dividends, types.DividendRecord{Date: row.date, Amount: amount})
	}

	splitRows, err := p.readRows(filepath.Join(dir, "splits.csv"), p.splitFormat, true)
	if err != nil {
		return data, err
	}
	for _, row := range splitRows {
		data.Splits = append(data.Splits, types.SplitRecord{Date: row.date, Ratio: row.fields[p.splitFormat.RatioCol]})
	}

	return data, nil
}

// loadExchangeRates reads the date,rate file at the bundle root.
func (p *CSVProvider) loadExchangeRates(filename string) ([]types.ExchangeRate, error) {
	rows, err := p.readRows(filename, p.rateFormat, true)
	if err != nil {
		return nil, err
	}
	var rates []types.ExchangeRate
	for _, row := range rows {
		rate, ok := parseFloatField(row.fields, p.rateFormat.AmountCol, "rate", row.line)
		if !ok {
			continue
		}
		rates = append(rates, types.ExchangeRate{Date: row.date, Rate: rate})
	}
	return rates, nil
}

// loadHolidays reads the optional single-column holiday calendar.
func (p *CSVProvider) loadHolidays(filename string) ([]dates.Date, error) {
	format := CSVColumnMapping{DateCol: 0, MinColumns: 1, DateFormat: dates.Format}
	rows, err := p.readRows(filename, format, true)
	if err != nil {
		return nil, err
	}
	var holidays []dates.Date
	for _, row := range rows {
		holidays = append(holidays, row.date)
	}
	return holidays, nil
}

// csvRow is one parsed data row with its already-validated date.
type csvRow struct {
	date   dates.Date
	fields []string
	line   int
}

// readRows opens a CSV file, skips the header, and returns rows whose date
// column parses. Rows with too few columns or a bad date are skipped with a
// warning. When optional is set, a missing file yields no rows.
func (p *CSVProvider) readRows(filename string, format CSVColumnMapping, optional bool) ([]csvRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var rows []csvRow
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %v", lineNum, err)
		}
		lineNum++

		if len(record) < format.MinColumns {
			log.Printf("⚠️ Insufficient columns at line %d (expected %d, got %d), skipping", lineNum, format.MinColumns, len(record))
			continue
		}

		date, err := dates.Parse(record[format.DateCol])
		if err != nil {
			log.Printf("⚠️ Invalid date '%s' at line %d, skipping: %v", record[format.DateCol], lineNum, err)
			continue
		}

		rows = append(rows, csvRow{date: date, fields: record, line: lineNum})
	}
	return rows, nil
}

func parseFloatField(fields []string, col int, name string, line int) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(fields[col]), 64)
	if err != nil {
		log.Printf("⚠️ Invalid %s '%s' at line %d, skipping: %v", name, fields[col], line, err)
		return 0, false
	}
	return value, true
}

// ValidateData validates the integrity of a loaded bundle
func (p *CSVProvider) ValidateData(data *types.MarketData) error {
	if data == nil || len(data.TickerData) == 0 {
		return fmt.Errorf("no symbol data found")
	}
	for _, symbol := range data.TickerData {
		if symbol.Error != "" {
			continue
		}
		for i, record := range symbol.Prices {
			if record.Open < 0 || record.Close < 0 {
				return fmt.Errorf("%s: negative price on %s", symbol.Symbol, record.Date)
			}
			if i > 0 && record.Date.Before(symbol.Prices[i-1].Date) {
				return fmt.Errorf("%s: price dates out of order at index %d", symbol.Symbol, i)
			}
		}
	}
	return nil
}
