package importer

import (
	"strconv"
	"strings"
	"time"
)

// Clock supplies the current time. The pipeline uses it both for the
// unparsable-date fallback and for run bookkeeping, so tests can pin a fixed
// timestamp instead of relying on time.Now.
type Clock func() time.Time

// dateFormats are tried in order before falling back to lenient parsing.
var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// lenientFormats approximate permissive general parsing for exports that use
// odd but recognizable date shapes.
var lenientFormats = []string{
	time.RFC3339,
	time.RFC1123,
	time.RFC822,
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04",
}

// parseDate turns a raw date value into a timestamp. Rows are never dropped
// for an unparsable but present date: when every format fails, the clock's
// current time is substituted and the row proceeds to validation.
func parseDate(raw string, clock Clock) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return clock()
	}

	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, raw, time.Local); err == nil {
			return t
		}
	}
	for _, format := range lenientFormats {
		if t, err := time.ParseInLocation(format, raw, time.Local); err == nil {
			return t
		}
	}

	return clock()
}

// parsePayPalDate interprets PayPal's DD/MM/YYYY date column plus the
// optional separate HH:MM:SS time column.
func parsePayPalDate(dateStr, timeStr string, clock Clock) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return clock()
	}

	parts := strings.Split(dateStr, "/")
	if len(parts) != 3 {
		return clock()
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return clock()
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return clock()
	}

	var hours, minutes, seconds int
	if timeStr = strings.TrimSpace(timeStr); timeStr != "" {
		timeParts := strings.Split(timeStr, ":")
		if len(timeParts) > 0 {
			hours, _ = strconv.Atoi(timeParts[0])
		}
		if len(timeParts) > 1 {
			minutes, _ = strconv.Atoi(timeParts[1])
		}
		if len(timeParts) > 2 {
			seconds, _ = strconv.Atoi(timeParts[2])
		}
	}

	return time.Date(year, time.Month(month), day, hours, minutes, seconds, 0, time.Local)
}
