package errors

import (
	"errors"
	"fmt"

	"github.com/dividendlab/drip-backtest/pkg/dates"
)

// ErrorCategory classifies backtest failures.
type ErrorCategory string

const (
	// Per-symbol errors: captured on that symbol's result slot, siblings
	// keep running.
	ErrorCategoryMissingStartPrice ErrorCategory = "MISSING_START_PRICE"
	ErrorCategoryEmptyHistory      ErrorCategory = "EMPTY_HISTORY"
	ErrorCategoryData              ErrorCategory = "DATA"

	// Fatal errors: the whole backtest cannot proceed.
	ErrorCategoryNoExchangeRate   ErrorCategory = "NO_EXCHANGE_RATE"
	ErrorCategoryAllSymbolsFailed ErrorCategory = "ALL_SYMBOLS_FAILED"
)

// BacktestError is a categorized backtest failure with the symbol and date
// it concerns, where applicable.
type BacktestError struct {
	Category   ErrorCategory
	Symbol     string
	Date       dates.Date
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *BacktestError) Error() string {
	msg := fmt.Sprintf("[%s]", e.Category)
	if e.Symbol != "" {
		msg += fmt.Sprintf(" %s:", e.Symbol)
	}
	msg += " " + e.Message
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *BacktestError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether the error aborts the whole backtest rather than
// a single symbol's simulation.
func (e *BacktestError) IsFatal() bool {
	return e.Category == ErrorCategoryNoExchangeRate ||
		e.Category == ErrorCategoryAllSymbolsFailed
}

// CategoryOf returns the category of err, or empty when err is not a
// BacktestError.
func CategoryOf(err error) ErrorCategory {
	var be *BacktestError
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}

// NewMissingStartPrice reports that a symbol has no price record at its
// effective start date.
func NewMissingStartPrice(symbol string, date dates.Date) *BacktestError {
	return &BacktestError{
		Category: ErrorCategoryMissingStartPrice,
		Symbol:   symbol,
		Date:     date,
		Message:  fmt.Sprintf("no price data at start date %s", date),
	}
}

// NewEmptyHistory reports that a simulation produced no data points in the
// requested period.
func NewEmptyHistory(symbol string) *BacktestError {
	return &BacktestError{
		Category: ErrorCategoryEmptyHistory,
		Symbol:   symbol,
		Message:  "no valid data in the selected period",
	}
}

// NewDataError wraps an upstream data failure for a symbol.
func NewDataError(symbol, message string) *BacktestError {
	return &BacktestError{
		Category: ErrorCategoryData,
		Symbol:   symbol,
		Message:  message,
	}
}

// NewNoExchangeRate reports that no USD/KRW rate exists within the search
// window after the requested start date.
func NewNoExchangeRate(start dates.Date) *BacktestError {
	return &BacktestError{
		Category: ErrorCategoryNoExchangeRate,
		Date:     start,
		Message:  fmt.Sprintf("no exchange rate found near start date %s", start),
	}
}

// NewAllSymbolsFailed reports that every portfolio symbol failed. The first
// symbol's underlying error is surfaced when available.
func NewAllSymbolsFailed(first error) *BacktestError {
	msg := "all portfolio symbols failed to simulate"
	if first != nil {
		msg = first.Error()
	}
	return &BacktestError{
		Category:   ErrorCategoryAllSymbolsFailed,
		Message:    msg,
		Underlying: first,
	}
}
