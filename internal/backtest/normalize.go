package backtest

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// PriceMap is a symbol's split-adjusted price history keyed by calendar date.
type PriceMap map[dates.Date]types.PriceRecord

// DividendMap is a symbol's split-adjusted per-share dividends keyed by
// ex-dividend date.
type DividendMap map[dates.Date]float64

// Normalize converts one symbol's raw records into date-keyed lookup maps,
// applying retroactive split adjustment: every price and dividend strictly
// before a split date is divided by the split ratio. Splits are applied in
// ascending date order. Duplicate dates keep the last-seen record.
func Normalize(symbolData *types.SymbolData) (PriceMap, DividendMap) {
	prices := make([]types.PriceRecord, len(symbolData.Prices))
	copy(prices, symbolData.Prices)
	dividends := make([]types.DividendRecord, len(symbolData.Dividends))
	copy(dividends, symbolData.Dividends)

	splits := make([]types.SplitRecord, len(symbolData.Splits))
	copy(splits, symbolData.Splits)
	sort.Slice(splits, func(i, j int) bool { return splits[i].Date.Before(splits[j].Date) })

	for _, split := range splits {
		ratio, ok := parseSplitRatio(split.Ratio)
		if !ok {
			continue
		}
		for i := range prices {
			if prices[i].Date.Before(split.Date) {
				prices[i].Open /= ratio
				prices[i].Close /= ratio
			}
		}
		for i := range dividends {
			if dividends[i].Date.Before(split.Date) {
				dividends[i].Amount /= ratio
			}
		}
	}

	priceMap := make(PriceMap, len(prices))
	for _, p := range prices {
		priceMap[p.Date] = p
	}
	dividendMap := make(DividendMap, len(dividends))
	for _, d := range dividends {
		dividendMap[d.Date] = d.Amount
	}
	return priceMap, dividendMap
}

// parseSplitRatio parses "N:D" into N/D. A missing, unparseable or zero
// denominator invalidates the split.
func parseSplitRatio(s string) (float64, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, false
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

// EarliestPriceDate returns the earliest date present in the price map and
// whether the map holds any record at all.
func (m PriceMap) EarliestPriceDate() (dates.Date, bool) {
	var earliest dates.Date
	found := false
	for d := range m {
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	return earliest, found
}
