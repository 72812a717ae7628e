package models

import (
	"time"
)

// DateLayout is the wire format of every date the engine reads.
const DateLayout = "2006-01-02"

// MonthLayout is the format of month keys such as "2026-10".
const MonthLayout = "2006-01"

// DateOnly trims a timestamp down to its calendar date.
func DateOnly(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// ParseDate parses a calendar date in UTC. Invalid input yields the zero time.
func ParseDate(s string) time.Time {
	d, err := time.Parse(DateLayout, DateOnly(s))
	if err != nil {
		return time.Time{}
	}
	return d
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	return MonthEnd(t).Day()
}

// MonthKey formats the month containing t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseMonth parses a YYYY-MM key. ok is false for anything else.
func ParseMonth(s string) (time.Time, bool) {
	m, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return m, true
}

// DaysBetween returns the whole days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
