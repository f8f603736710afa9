package importer

import (
	"math"
	"strconv"
	"strings"
)

// parseAmount extracts a non-negative amount from a raw CSV value. Currency
// symbols and thousands commas are stripped, parenthesized values (the refund
// convention) are read as negative and then made absolute. Unparsable input
// yields 0; validation rejects the row downstream instead of this stage
// erroring out.
func parseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}

	replacer := strings.NewReplacer("$", "", ",", "", "£", "", "€", "", "¥", "")
	cleaned = strings.TrimSpace(replacer.Replace(cleaned))

	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return math.Abs(value)
}

// parsePayPalAmount handles PayPal's locale-ambiguous separators: a "." or
// "," followed by exactly three digits and then a non-digit or end of string
// is a thousands separator and is dropped; any remaining comma is the decimal
// point. "1.234,56" parses as 1234.56 and "1,234.50" as 1234.50.
func parsePayPalAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}

	cleaned = stripThousandsSeparators(cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	var b strings.Builder
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return math.Abs(value)
}

func stripThousandsSeparators(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if (r == '.' || r == ',') && isThousandsSeparatorAt(runes, i) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isThousandsSeparatorAt reports whether the separator at index i is followed
// by exactly three digits and then a non-digit or the end of the string.
func isThousandsSeparatorAt(runes []rune, i int) bool {
	if i+3 >= len(runes) {
		return false
	}
	for j := i + 1; j <= i+3; j++ {
		if runes[j] < '0' || runes[j] > '9' {
			return false
		}
	}
	if i+4 == len(runes) {
		return true // exactly three digits then end of string
	}
	next := runes[i+4]
	return next < '0' || next > '9'
}
