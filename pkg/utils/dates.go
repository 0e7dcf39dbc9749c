package utils

import (
	"fmt"
	"time"
)

// DateLayout is the canonical stay-date format used in requests, rows and storage.
const DateLayout = time.DateOnly

// MonthLayout is the canonical month key ("2024-07").
const MonthLayout = "2006-01"

// Date returns the calendar date as midnight UTC. Calendar dates are compared as
// UTC midnights so the zone of the clock never shifts a day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseMonth parses a MonthLayout string ("2024-07").
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.ParseInLocation(MonthLayout, s, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// FormatMonth renders a year and month as MonthLayout.
func FormatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// CheckOutDate offsets the check-in date by nights. Zero and negative offsets are
// plain date arithmetic.
func CheckOutDate(checkIn time.Time, nights int) time.Time {
	return checkIn.AddDate(0, 0, nights)
}

// CheckOut is CheckOutDate over DateLayout strings.
func CheckOut(checkIn string, nights int) (string, error) {
	t, err := ParseDate(checkIn)
	if err != nil {
		return "", err
	}
	return FormatDate(CheckOutDate(t, nights)), nil
}

// LastDayOfMonth returns the number of the last day of the month.
func LastDayOfMonth(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// MonthDates lists every calendar date of the month in ascending order.
func MonthDates(year int, month time.Month) []time.Time {
	last := LastDayOfMonth(year, month)
	dates := make([]time.Time, 0, last)
	for day := 1; day <= last; day++ {
		dates = append(dates, Date(year, month, day))
	}
	return dates
}

// Today returns the current calendar date in loc (time.Local when loc is nil).
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return Date(local.Year(), local.Month(), local.Day())
}

// HasElapsed reports whether the calendar date is strictly before today in loc.
// Today itself has not elapsed.
func HasElapsed(date time.Time, now time.Time, loc *time.Location) bool {
	d := Date(date.Year(), date.Month(), date.Day())
	return d.Before(Today(now, loc))
}

// ExpectedDays is the number of stay dates a month should hold for a retrieval made
// on today: the whole month for any other month, and the remaining days including
// today for the month in progress.
func ExpectedDays(year int, month time.Month, today time.Time) int {
	days := LastDayOfMonth(year, month)
	if today.Year() == year && today.Month() == month {
		return days - today.Day() + 1
	}
	return days
}
