package util

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDay is returned when a day filter is not formatted as YYYY-MM-DD.
var ErrInvalidDay = errors.New("day must be formatted as YYYY-MM-DD")

// DayRange returns the half-open UTC interval [start, end) covering day.
func DayRange(day string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(day), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDay
	}
	return start, start.AddDate(0, 0, 1), nil
}

// ContainsFold reports whether substr occurs in s ignoring case.
// An empty substr matches everything.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
