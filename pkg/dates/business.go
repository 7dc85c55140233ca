package dates

import "time"

// HolidaySet is a lookup of non-trading dates supplied by the holiday
// collaborator. It only affects business-day arithmetic; trading-day
// membership is decided by price data, not by this set.
type HolidaySet map[Date]bool

// NewHolidaySet builds a HolidaySet from a list of dates.
func NewHolidaySet(days []Date) HolidaySet {
	set := make(HolidaySet, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

// IsBusinessDay reports whether d is neither a weekend nor a holiday.
func (h HolidaySet) IsBusinessDay(d Date) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !h[d]
}

// AddBusinessDays returns the date n business days after d, skipping
// Saturdays, Sundays and holidays. With n == 0 it rolls d forward to the
// first business day on or after d.
func AddBusinessDays(d Date, n int, holidays HolidaySet) Date {
	if n == 0 {
		for !holidays.IsBusinessDay(d) {
			d = d.Add(1)
		}
		return d
	}
	added := 0
	for added < n {
		d = d.Add(1)
		if holidays.IsBusinessDay(d) {
			added++
		}
	}
	return d
}
