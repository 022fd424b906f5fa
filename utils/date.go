package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// All lifecycle arithmetic works on UTC calendar days. Truncating both sides
// before diffing keeps every caller on the same day boundary regardless of
// the wall-clock time they were invoked at.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return TruncateToDay(time.Now())
}

// DiffDays returns end - start in whole days, negative when end is in the past.
func DiffDays(end, start time.Time) int {
	return int(TruncateToDay(end).Sub(TruncateToDay(start)).Hours() / 24)
}

// AddDays is day arithmetic without DST surprises; inputs are truncated first.
func AddDays(t time.Time, days int) time.Time {
	return TruncateToDay(t).AddDate(0, 0, days)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func MustParseDate(dateStr string) time.Time {
	t, _ := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	return t
}

func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, nil
	}

	// Accept full timestamps too and truncate them to the day.
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return TruncateToDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("failed to parse date: %v", s)
}
