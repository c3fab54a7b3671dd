// Package timeutil provides calendar-day helpers for attendance dates.
// All centers are in India, so the default zone is IST (UTC+5:30, no DST).
package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-day layout used on the wire and as storage key.
const DateLayout = "2006-01-02"

// MonthLayout is the calendar-month key layout.
const MonthLayout = "2006-01"

// IST is the Indian Standard Time zone.
var IST = time.FixedZone("Asia/Kolkata", 5*60*60+30*60)

// LoadLocation resolves a zone name, falling back to IST.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return IST
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return IST
	}
	return loc
}

// Clock returns the current time. Swapped in tests.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// Today returns the calendar day of now in loc, as midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into a calendar day (midnight UTC).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDate drops the clock part, keeping the calendar day as written.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthKey returns YYYY-MM for the given day.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthLabel returns a display label such as "Jan 2024".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// IsAfterDay reports whether day a falls strictly after day b.
func IsAfterDay(a, b time.Time) bool {
	return NormalizeDate(a).After(NormalizeDate(b))
}
