package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

func day(s string) dates.Date { return dates.MustParse(s) }

// TestNormalize_SplitAdjustment tests that a 2:1 split halves every record
// strictly before the split date and leaves the rest untouched
func TestNormalize_SplitAdjustment(t *testing.T) {
	raw := &types.SymbolData{
		Symbol: "AAA",
		Prices: []types.PriceRecord{
			{Date: day("2020-01-02"), Open: 100, Close: 102},
			{Date: day("2020-01-03"), Open: 104, Close: 106},
			{Date: day("2020-01-06"), Open: 53, Close: 54}, // split date
			{Date: day("2020-01-07"), Open: 55, Close: 56},
		},
		Dividends: []types.DividendRecord{
			{Date: day("2020-01-03"), Amount: 2},
			{Date: day("2020-01-07"), Amount: 1},
		},
		Splits: []types.SplitRecord{{Date: day("2020-01-06"), Ratio: "2:1"}},
	}

	prices, dividends := Normalize(raw)

	assert.Equal(t, 50.0, prices[day("2020-01-02")].Open)
	assert.Equal(t, 51.0, prices[day("2020-01-02")].Close)
	assert.Equal(t, 52.0, prices[day("2020-01-03")].Open)
	assert.Equal(t, 53.0, prices[day("2020-01-06")].Open) // on split date: untouched
	assert.Equal(t, 55.0, prices[day("2020-01-07")].Open)

	assert.Equal(t, 1.0, dividends[day("2020-01-03")])
	assert.Equal(t, 1.0, dividends[day("2020-01-07")])

	// Input slices must not be mutated
	assert.Equal(t, 100.0, raw.Prices[0].Open)
	assert.Equal(t, 2.0, raw.Dividends[0].Amount)
}

// TestNormalize_InvalidSplitRatio tests that unparseable or zero-denominator
// ratios are skipped without affecting any record
func TestNormalize_InvalidSplitRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio string
	}{
		{name: "Zero denominator", ratio: "2:0"},
		{name: "Missing denominator", ratio: "2:"},
		{name: "No separator", ratio: "2"},
		{name: "Garbage", ratio: "a:b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &types.SymbolData{
				Symbol: "AAA",
				Prices: []types.PriceRecord{{Date: day("2020-01-02"), Open: 100, Close: 100}},
				Splits: []types.SplitRecord{{Date: day("2020-06-01"), Ratio: tt.ratio}},
			}
			prices, _ := Normalize(raw)
			assert.Equal(t, 100.0, prices[day("2020-01-02")].Open)
		})
	}
}

// TestNormalize_MultipleSplits tests that splits arriving out of order are
// applied ascending by date, compounding the adjustment
func TestNormalize_MultipleSplits(t *testing.T) {
	raw := &types.SymbolData{
		Symbol: "AAA",
		Prices: []types.PriceRecord{{Date: day("2020-01-02"), Open: 120, Close: 120}},
		Splits: []types.SplitRecord{
			{Date: day("2021-01-04"), Ratio: "3:1"}, // listed first but later
			{Date: day("2020-06-01"), Ratio: "2:1"},
		},
	}

	prices, _ := Normalize(raw)

	// Record before both splits is divided by both ratios: 120 / 2 / 3 = 20
	assert.InDelta(t, 20.0, prices[day("2020-01-02")].Open, 1e-9)
}

// TestNormalize_DuplicateDates tests that the last-seen record wins
func TestNormalize_DuplicateDates(t *testing.T) {
	raw := &types.SymbolData{
		Symbol: "AAA",
		Prices: []types.PriceRecord{
			{Date: day("2020-01-02"), Open: 10, Close: 10},
			{Date: day("2020-01-02"), Open: 11, Close: 12},
		},
		Dividends: []types.DividendRecord{
			{Date: day("2020-01-02"), Amount: 1},
			{Date: day("2020-01-02"), Amount: 2},
		},
	}

	prices, dividends := Normalize(raw)

	assert.Len(t, prices, 1)
	assert.Equal(t, 12.0, prices[day("2020-01-02")].Close)
	assert.Equal(t, 2.0, dividends[day("2020-01-02")])
}

// TestPriceMap_EarliestPriceDate tests the earliest-date lookup
func TestPriceMap_EarliestPriceDate(t *testing.T) {
	m := PriceMap{
		day("2020-03-02"): {Date: day("2020-03-02")},
		day("2020-01-02"): {Date: day("2020-01-02")},
		day("2020-02-03"): {Date: day("2020-02-03")},
	}

	earliest, ok := m.EarliestPriceDate()
	assert.True(t, ok)
	assert.Equal(t, day("2020-01-02"), earliest)

	_, ok = PriceMap{}.EarliestPriceDate()
	assert.False(t, ok)
}
