package utils

import (
	"log"
	"time"
)

const DefaultDateFormat = "2006-01-02"

// ParseDate parses an ISO date string ("2006-01-02").
// An empty string is treated as an absent optional date and returns zero
// time silently; anything else that fails to parse logs and returns zero
// time so a single bad record cannot take down a whole projection.
func ParseDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}
	t, err := time.Parse(DefaultDateFormat, dateStr)
	if err != nil {
		log.Printf("Error parsing date '%s' with format '%s': %v. Returning zero time.", dateStr, DefaultDateFormat, err)
		return time.Time{}
	}
	return t
}

// FormatDate renders a time as an ISO date string.
func FormatDate(t time.Time) string {
	return t.Format(DefaultDateFormat)
}

// DateOf truncates a time to its civil date at midnight UTC. All schedule
// arithmetic works on these day-granular values.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
