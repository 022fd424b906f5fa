package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiffDays(t *testing.T) {
	today := MustParseDate("2026-03-15")

	tests := []struct {
		name     string
		end      time.Time
		expected int
	}{
		{
			name:     "Same day",
			end:      MustParseDate("2026-03-15"),
			expected: 0,
		},
		{
			name:     "Tomorrow",
			end:      MustParseDate("2026-03-16"),
			expected: 1,
		},
		{
			name:     "Yesterday",
			end:      MustParseDate("2026-03-14"),
			expected: -1,
		},
		{
			name:     "30 days out",
			end:      MustParseDate("2026-04-14"),
			expected: 30,
		},
		{
			name:     "Across a leap day",
			end:      MustParseDate("2028-03-01"),
			expected: 717,
		},
		{
			name:     "End carries a wall-clock time",
			end:      time.Date(2026, 3, 16, 23, 59, 0, 0, time.UTC),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DiffDays(tt.end, today))
		})
	}
}

func TestAddDays(t *testing.T) {
	start := MustParseDate("2026-01-01")
	assert.Equal(t, MustParseDate("2027-01-01"), AddDays(start, 365))

	// 2028 is a leap year; 365 days from mid-2027 lands a day "early".
	assert.Equal(t, MustParseDate("2028-06-30"), AddDays(MustParseDate("2027-07-01"), 365))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-15")
	assert.NoError(t, err)
	assert.Equal(t, MustParseDate("2026-03-15"), got)

	got, err = ParseDate("2026-03-15T10:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, MustParseDate("2026-03-15"), got)

	_, err = ParseDate("")
	assert.Error(t, err)

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)
}
