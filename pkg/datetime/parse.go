// Package datetime provides date and time utility functions.
package datetime

import (
	"strings"
	"time"

	"github.com/iwvelando/loan-engine/pkg/constants"
)

const (
	// DateLayout is the format expected in requests and config files and is
	// also the output date format.
	DateLayout = constants.DateLayout

	hoursPerDay = 24
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses an ISO date. A full RFC 3339 timestamp is accepted and
// truncated to its calendar date.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// Date strips the clock and location from t.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a date in DateLayout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysInMonth returns the actual calendar length of the month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths offsets t by the given number of months, clamping the day to the
// end of the target month (31 January + 1 month = 28/29 February).
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := t.Day()
	if last := DaysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the actual number of elapsed days from start to end.
// The result is negative when end precedes start.
func DaysBetween(start, end time.Time) int {
	return int(Date(end).Sub(Date(start)).Hours() / hoursPerDay)
}

// MonthsAndDays decomposes the span from start to end into whole calendar
// months plus residual days. Month steps are taken from start so that month
// end clamping does not drift. Spans where end is not after start are zero.
func MonthsAndDays(start, end time.Time) (int, int) {
	start, end = Date(start), Date(end)
	if !end.After(start) {
		return 0, 0
	}
	months := (end.Year()-start.Year())*constants.MonthsPerYear + int(end.Month()-start.Month())
	for months > 0 && AddMonths(start, months).After(end) {
		months--
	}
	return months, DaysBetween(AddMonths(start, months), end)
}

// MonthsCeil returns the number of months needed to cover start to end,
// counting a part month as a whole one.
func MonthsCeil(start, end time.Time) int {
	months, days := MonthsAndDays(start, end)
	if days > 0 {
		months++
	}
	return months
}

// DateBeforeDate returns true if first is strictly before second.
func DateBeforeDate(first, second time.Time) bool {
	return Date(first).Before(Date(second))
}
