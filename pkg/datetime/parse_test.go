package datetime

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	return MustParseTime(DateLayout, s)
}

func TestMustParseTime(t *testing.T) {
	got := MustParseTime(DateLayout, "2025-03-15")
	if got.Year() != 2025 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("MustParseTime() = %v", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid date")
		}
	}()
	MustParseTime(DateLayout, "not-a-date")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"ISO date", "2025-01-31", "2025-01-31", false},
		{"Padded ISO date", "  2025-01-31 ", "2025-01-31", false},
		{"RFC3339 timestamp", "2025-06-01T13:45:00Z", "2025-06-01", false},
		{"Month only", "2025-06", "", true},
		{"Garbage", "yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && Format(got) != tt.expected {
				t.Errorf("ParseDate(%q) = %s, expected %s", tt.input, Format(got), tt.expected)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"2025-01-10", 31},
		{"2025-02-10", 28},
		{"2024-02-10", 29},
		{"2025-04-30", 30},
	}
	for _, tt := range tests {
		if got := DaysInMonth(date(tt.input)); got != tt.expected {
			t.Errorf("DaysInMonth(%s) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		months   int
		expected string
	}{
		{"Simple offset", "2025-01-15", 1, "2025-02-15"},
		{"Clamp to February", "2025-01-31", 1, "2025-02-28"},
		{"Clamp to leap February", "2024-01-31", 1, "2024-02-29"},
		{"Year rollover", "2025-11-30", 3, "2026-02-28"},
		{"Long offset restores day", "2025-01-31", 2, "2025-03-31"},
		{"Negative offset", "2025-03-31", -1, "2025-02-28"},
		{"Zero offset", "2025-05-05", 0, "2025-05-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(AddMonths(date(tt.start), tt.months))
			if got != tt.expected {
				t.Errorf("AddMonths(%s, %d) = %s, expected %s", tt.start, tt.months, got, tt.expected)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(date("2025-01-01"), date("2025-01-31")); got != 30 {
		t.Errorf("DaysBetween() = %d, expected 30", got)
	}
	if got := DaysBetween(date("2024-01-01"), date("2025-01-01")); got != 366 {
		t.Errorf("DaysBetween() across leap year = %d, expected 366", got)
	}
	if got := DaysBetween(date("2025-02-01"), date("2025-01-01")); got != -31 {
		t.Errorf("DaysBetween() reversed = %d, expected -31", got)
	}
}

func TestMonthsAndDays(t *testing.T) {
	tests := []struct {
		name         string
		start, end   string
		months, days int
	}{
		{name: "Exact month", start: "2025-01-01", end: "2025-02-01", months: 1, days: 0},
		{name: "Exact year", start: "2025-01-01", end: "2026-01-01", months: 12, days: 0},
		{name: "Month end clamp", start: "2025-01-31", end: "2025-02-28", months: 1, days: 0},
		{name: "Part month", start: "2025-01-15", end: "2025-02-01", months: 0, days: 17},
		{name: "Months and days", start: "2025-01-10", end: "2025-04-20", months: 3, days: 10},
		{name: "End before day of month", start: "2025-01-20", end: "2025-03-10", months: 1, days: 18},
		{name: "Empty span", start: "2025-01-10", end: "2025-01-10", months: 0, days: 0},
		{name: "Reversed span", start: "2025-02-10", end: "2025-01-10", months: 0, days: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, days := MonthsAndDays(date(tt.start), date(tt.end))
			if months != tt.months || days != tt.days {
				t.Errorf("MonthsAndDays(%s, %s) = (%d, %d), expected (%d, %d)",
					tt.start, tt.end, months, days, tt.months, tt.days)
			}
		})
	}
}

func TestMonthsCeil(t *testing.T) {
	if got := MonthsCeil(date("2025-01-01"), date("2026-01-01")); got != 12 {
		t.Errorf("MonthsCeil() = %d, expected 12", got)
	}
	if got := MonthsCeil(date("2025-01-01"), date("2026-01-02")); got != 13 {
		t.Errorf("MonthsCeil() = %d, expected 13", got)
	}
}

func TestDateBeforeDate(t *testing.T) {
	if !DateBeforeDate(date("2025-01-01"), date("2025-01-02")) {
		t.Error("expected earlier date to be before")
	}
	if DateBeforeDate(date("2025-01-02"), date("2025-01-02")) {
		t.Error("expected equal dates not to be before")
	}
}
