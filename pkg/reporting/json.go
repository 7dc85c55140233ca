package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dividendlab/drip-backtest/internal/backtest"
)

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// FormatResult formats the full aggregate result as indented JSON bytes
func (f *DefaultJSONFormatter) FormatResult(results *backtest.AggregateResult) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}

// PrintResult prints the aggregate result as JSON to console
func (f *DefaultJSONFormatter) PrintResult(results *backtest.AggregateResult) {
	data, _ := f.FormatResult(results)
	fmt.Println(string(data))
}

// WriteResultJSON writes the aggregate result to a JSON file
func WriteResultJSON(results *backtest.AggregateResult, path string) error {
	formatter := NewDefaultJSONFormatter()
	data, err := formatter.FormatResult(results)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}
