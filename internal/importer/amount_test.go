package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"plain number", "25.50", 25.50},
		{"integer", "100", 100},
		{"dollar sign", "$25.50", 25.50},
		{"pound sign", "£10.00", 10},
		{"euro sign", "€15.75", 15.75},
		{"yen sign", "¥500", 500},
		{"thousands separator", "1,234.50", 1234.50},
		{"symbol and separator", "$1,000,000.99", 1000000.99},
		{"parentheses negative becomes positive", "(25.50)", 25.50},
		{"minus sign becomes positive", "-25.50", 25.50},
		{"whitespace", "  25.50  ", 25.50},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"partially numeric", "12abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, parseAmount(tt.input), 0.001)
		})
	}
}

func TestParsePayPalAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"us format", "1,234.50", 1234.50},
		{"european format", "1.234,56", 1234.56},
		{"european thousands only", "1.234", 1234},
		{"comma decimal", "25,50", 25.50},
		{"plain decimal", "25.50", 25.50},
		{"currency symbol", "€1.234,56", 1234.56},
		{"small amount", "5,00", 5},
		{"negative", "-10,00", 10},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, parsePayPalAmount(tt.input), 0.001)
		})
	}
}
