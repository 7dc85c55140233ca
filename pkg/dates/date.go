package dates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format is the canonical ISO-8601 string representation of a Date.
const Format = "2006-01-02"

// Date represents a calendar date with day granularity and no timezone.
// Using it as a map key avoids the off-by-one-day errors that come from
// keying time series by time.Time values in mixed timezones.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns a normalized Date for the given year, month and day.
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// FromTime converts a time.Time to a Date using its UTC calendar day.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// Parse parses a Date from a string. It accepts plain "2006-01-02" strings
// as well as full ISO timestamps, whose date part is taken as-is.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse(Format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want %q): %w", s, Format, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// hard-coded constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// time returns the canonical time.Time for the date (midnight UTC).
func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date in its canonical ISO form.
func (d Date) String() string { return d.time().Format(Format) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Add returns the date i calendar days after d (i may be negative).
func (d Date) Add(i int) Date { return New(d.Year, d.Month, d.Day+i) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// DaysBetween returns the number of calendar days from d to x.
// Negative when x is before d.
func DaysBetween(d, x Date) int {
	return int(x.time().Sub(d.time()) / (24 * time.Hour))
}

// YearsBetween returns the fractional number of years from d to x using the
// mean Gregorian year length.
func YearsBetween(d, x Date) float64 {
	return float64(DaysBetween(d, x)) / 365.25
}

// MarshalJSON encodes the date as its canonical string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a date from a JSON string, accepting the same
// formats as Parse.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
