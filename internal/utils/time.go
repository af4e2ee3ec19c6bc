package utils

import (
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// ParseDate parses YYYY-MM-DD in the server's local timezone, matching how
// booking start times are stored.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// Weekday returns the 0=Sunday..6=Saturday index for a date.
func Weekday(t time.Time) int {
	return int(t.Weekday())
}
