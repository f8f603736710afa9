package importer

import (
	"strings"
	"time"
)

// CanonicalRow is the normalized donation shape every provider maps into
// before validation. HasAmount and HasDate record whether the source column
// carried a value at all, so validation can distinguish "missing" from
// "present but zero/defaulted".
type CanonicalRow struct {
	Email         string
	Username      string
	Amount        float64
	HasAmount     bool
	DonationDate  time.Time
	HasDate       bool
	TransactionID string
	Platform      string
	Currency      string

	// Type carries PayPal's transaction type column; the validator filters
	// out everything that is not a subscription payment.
	Type string
}

// usernameFromEmail derives a display name from the email local part.
func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return ""
}

type genericNormalizer struct {
	clock           Clock
	defaultCurrency string
}

func (n *genericNormalizer) Normalize(row Row) CanonicalRow {
	email := row.Get("email")
	username := row.Get("username", "name")
	if username == "" {
		username = usernameFromEmail(email)
	}

	rawAmount := row.Get("amount")
	rawDate := row.Get("date", "donation_date")

	platform := row.Get("platform")
	if platform == "" {
		platform = ProviderGeneric.DisplayName()
	}
	currency := row.Get("currency")
	if currency == "" {
		currency = n.defaultCurrency
	}

	return CanonicalRow{
		Email:         email,
		Username:      username,
		Amount:        parseAmount(rawAmount),
		HasAmount:     rawAmount != "",
		DonationDate:  parseDate(rawDate, n.clock),
		HasDate:       rawDate != "",
		TransactionID: row.Get("transaction_id", "id"),
		Platform:      platform,
		Currency:      currency,
	}
}

type paypalNormalizer struct {
	clock           Clock
	defaultCurrency string
}

func (n *paypalNormalizer) Normalize(row Row) CanonicalRow {
	email := row.Get("from_email_address")
	username := row.Get("name")
	if username == "" {
		username = usernameFromEmail(email)
	}

	rawAmount := row.Get("gross", "amount")
	rawDate := row.Get("date")

	currency := row.Get("currency")
	if currency == "" {
		currency = n.defaultCurrency
	}

	return CanonicalRow{
		Email:         email,
		Username:      username,
		Amount:        parsePayPalAmount(rawAmount),
		HasAmount:     rawAmount != "",
		DonationDate:  parsePayPalDate(rawDate, row.Get("time"), n.clock),
		HasDate:       rawDate != "",
		TransactionID: row.Get("transaction_id", "txn_id"),
		Platform:      ProviderPayPal.DisplayName(),
		Currency:      currency,
		Type:          row.Get("type"),
	}
}

type stripeNormalizer struct {
	clock Clock
}

func (n *stripeNormalizer) Normalize(row Row) CanonicalRow {
	email := row.Get("customer_email", "email")
	username := row.Get("customer_name")
	if username == "" {
		username = usernameFromEmail(email)
	}

	rawAmount := row.Get("amount")
	rawDate := row.Get("created", "date")

	currency := row.Get("currency")
	if currency == "" {
		currency = "usd" // Stripe exports use lowercase ISO codes
	}

	return CanonicalRow{
		Email:     email,
		Username:  username,
		Amount:    parseAmount(rawAmount) / 100, // Stripe amounts are minor units
		HasAmount: rawAmount != "",

		DonationDate:  parseDate(rawDate, n.clock),
		HasDate:       rawDate != "",
		TransactionID: row.Get("id", "charge_id"),
		Platform:      ProviderStripe.DisplayName(),
		Currency:      currency,
	}
}

type squareNormalizer struct {
	clock           Clock
	defaultCurrency string
}

func (n *squareNormalizer) Normalize(row Row) CanonicalRow {
	email := row.Get("buyer_email_address", "email")
	username := row.Get("buyer_name")
	if username == "" {
		username = usernameFromEmail(email)
	}

	rawAmount := row.Get("total_money", "amount")
	rawDate := row.Get("created_at", "date")

	currency := row.Get("currency")
	if currency == "" {
		currency = n.defaultCurrency
	}

	return CanonicalRow{
		Email:         email,
		Username:      username,
		Amount:        parseAmount(rawAmount),
		HasAmount:     rawAmount != "",
		DonationDate:  parseDate(rawDate, n.clock),
		HasDate:       rawDate != "",
		TransactionID: row.Get("id", "transaction_id"),
		Platform:      ProviderSquare.DisplayName(),
		Currency:      currency,
	}
}

// Compile-time interface checks
var (
	_ Normalizer = (*genericNormalizer)(nil)
	_ Normalizer = (*paypalNormalizer)(nil)
	_ Normalizer = (*stripeNormalizer)(nil)
	_ Normalizer = (*squareNormalizer)(nil)
)
