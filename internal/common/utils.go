package common

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for cache keys, upstream queries and JSON output.
const DateLayout = "2006-01-02"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns the current calendar day in local time.
func Today() time.Time {
	return DayStart(time.Now())
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as a local calendar day.
// An empty string yields today.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return Today(), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; use YYYY-MM-DD", s)
	}
	return t, nil
}

// DaysEnding returns n consecutive calendar days, oldest first, ending on end.
func DaysEnding(end time.Time, n int) []time.Time {
	end = DayStart(end)
	days := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, end.AddDate(0, 0, -i))
	}
	return days
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
