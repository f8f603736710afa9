// Package importer implements the CSV donation ingestion pipeline: parsing,
// per-provider normalization, validation, duplicate detection and run
// aggregation.
package importer

import "strings"

// Provider identifies the payment platform whose CSV export format a file
// uses. Each provider has its own Normalizer mapping raw columns onto the
// canonical donation shape.
type Provider string

const (
	ProviderGeneric Provider = "generic"
	ProviderPayPal  Provider = "paypal"
	ProviderStripe  Provider = "stripe"
	ProviderSquare  Provider = "square"
)

// ParseProvider maps a provider tag to a known Provider. Unrecognized values
// fall back to generic.
func ParseProvider(s string) Provider {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderPayPal:
		return ProviderPayPal
	case ProviderStripe:
		return ProviderStripe
	case ProviderSquare:
		return ProviderSquare
	default:
		return ProviderGeneric
	}
}

// KnownProvider reports whether the tag names a supported provider exactly.
// The HTTP layer uses this to reject typos instead of silently importing a
// Stripe file through the generic adapter.
func KnownProvider(s string) bool {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGeneric, ProviderPayPal, ProviderStripe, ProviderSquare:
		return true
	}
	return false
}

// DisplayName returns the human-readable platform label stored on donations.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderPayPal:
		return "PayPal"
	case ProviderStripe:
		return "Stripe"
	case ProviderSquare:
		return "Square"
	default:
		return "Manual"
	}
}

// Normalizer transforms one raw CSV row into the canonical donation shape.
//
// Implementations:
//   - genericNormalizer - plain email/amount/date exports
//   - paypalNormalizer  - PayPal activity exports (locale-ambiguous amounts,
//     DD/MM/YYYY dates, separate time column)
//   - stripeNormalizer  - Stripe charge exports (amounts in minor units)
//   - squareNormalizer  - Square transaction exports
//
// Adding a new provider:
//  1. Add the Provider constant and alias tables in normalize.go
//  2. Implement Normalizer
//  3. Wire it into normalizerFor
type Normalizer interface {
	Normalize(row Row) CanonicalRow
}

func normalizerFor(p Provider, clock Clock, defaultCurrency string) Normalizer {
	switch p {
	case ProviderPayPal:
		return &paypalNormalizer{clock: clock, defaultCurrency: defaultCurrency}
	case ProviderStripe:
		return &stripeNormalizer{clock: clock}
	case ProviderSquare:
		return &squareNormalizer{clock: clock, defaultCurrency: defaultCurrency}
	default:
		return &genericNormalizer{clock: clock, defaultCurrency: defaultCurrency}
	}
}
