package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// paypalSubscriptionType is the only PayPal transaction type that is
// imported; everything else (refunds, one-off payments, fees) is skipped.
const paypalSubscriptionType = "Subscription Payment"

var emailPattern = regexp.MustCompile(`^[\w+\-.]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]+$`)

// validateRow checks a normalized row. On failure it returns a human-readable
// reason (without the row-number prefix, which the pipeline adds) and false.
// Validation failures never abort a run; the row is counted failed and
// processing continues.
func validateRow(c CanonicalRow, provider Provider) (string, bool) {
	if provider == ProviderPayPal && c.Type != paypalSubscriptionType {
		return fmt.Sprintf("Skipping non-subscription payment (%s)", c.Type), false
	}

	var missing []string
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if !c.HasAmount {
		missing = append(missing, "amount")
	}
	if !c.HasDate {
		missing = append(missing, "donation_date")
	}
	if len(missing) > 0 {
		return "Missing required fields: " + strings.Join(missing, ", "), false
	}

	if !emailPattern.MatchString(c.Email) {
		return fmt.Sprintf("Invalid email format: %s", c.Email), false
	}

	if c.Amount <= 0 {
		return fmt.Sprintf("Amount must be positive: %.2f", c.Amount), false
	}

	return "", true
}
