package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func fixedClock() time.Time {
	return testNow
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"iso date", "2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)},
		{"iso datetime", "2025-01-15 10:30:00", time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)},
		{"us slash date", "01/15/2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)},
		{"day first when month invalid", "25/01/2025", time.Date(2025, 1, 25, 0, 0, 0, 0, time.Local)},
		{"iso t separator", "2025-01-15T10:30:00", time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)},
		{"slash year first", "2025/01/15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)},
		{"month name", "Jan 15, 2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(parseDate(tt.input, fixedClock)))
		})
	}

	t.Run("blank falls back to clock", func(t *testing.T) {
		assert.True(t, testNow.Equal(parseDate("", fixedClock)))
	})

	t.Run("unparsable falls back to clock", func(t *testing.T) {
		assert.True(t, testNow.Equal(parseDate("not a date", fixedClock)))
	})
}

func TestParsePayPalDate(t *testing.T) {
	t.Run("day month year", func(t *testing.T) {
		got := parsePayPalDate("15/01/2025", "", fixedClock)
		assert.True(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local).Equal(got))
	})

	t.Run("with time column", func(t *testing.T) {
		got := parsePayPalDate("15/01/2025", "14:30:45", fixedClock)
		assert.True(t, time.Date(2025, 1, 15, 14, 30, 45, 0, time.Local).Equal(got))
	})

	t.Run("partial time column", func(t *testing.T) {
		got := parsePayPalDate("15/01/2025", "14:30", fixedClock)
		assert.True(t, time.Date(2025, 1, 15, 14, 30, 0, 0, time.Local).Equal(got))
	})

	t.Run("blank date falls back to clock", func(t *testing.T) {
		assert.True(t, testNow.Equal(parsePayPalDate("", "10:00:00", fixedClock)))
	})

	t.Run("malformed date falls back to clock", func(t *testing.T) {
		assert.True(t, testNow.Equal(parsePayPalDate("2025-01-15", "", fixedClock)))
	})

	t.Run("month out of range falls back to clock", func(t *testing.T) {
		assert.True(t, testNow.Equal(parsePayPalDate("15/13/2025", "", fixedClock)))
	})
}
