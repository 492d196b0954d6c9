package utils

import (
	"strings"
	"time"
)

const (
	layoutDate  = "2006-01-02"
	layoutTime  = "15:04"
	layoutMonth = "2006-01"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ParseMonth parses YYYY-MM in local timezone.
func ParseMonth(s string) (time.Time, error) {
	return time.ParseInLocation(layoutMonth, strings.TrimSpace(s), time.Local)
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// FormatTimeHM formats time to HH:MM in local timezone.
func FormatTimeHM(t time.Time) string {
	return t.In(time.Local).Format(layoutTime)
}

// FormatMonth formats time to YYYY-MM in local timezone.
func FormatMonth(t time.Time) string {
	return t.In(time.Local).Format(layoutMonth)
}
