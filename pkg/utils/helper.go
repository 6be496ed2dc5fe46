package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// location decides which calendar day "today" is; set once at start-up
var location = time.UTC

// SetLocation sets the zone the library runs its calendar in
func SetLocation(loc *time.Location) {
	if loc != nil {
		location = loc
	}
}

// Now returns the current time in the library's zone
func Now() time.Time {
	return time.Now().In(location)
}

// Today returns the library's current calendar date as a plain date
func Today() time.Time {
	return TruncateDate(Now())
}

// TruncateDate keeps the calendar date of t as seen in t's own zone and
// returns it as midnight UTC, the form booking dates are stored in
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RoundMoney rounds to two decimals
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// StringPtr returns nil for empty strings
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the zero value for nil pointers
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
