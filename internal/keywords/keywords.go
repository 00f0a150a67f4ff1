// Package keywords holds the phrase sets used to read transaction intent out
// of statement rows and alert messages.
package keywords

import "regexp"

var (
	// Received marks money arriving. Bare "credit" is left out so that
	// "credit card" does not read as income.
	Received = regexp.MustCompile(`(?i)\b(?:received|credited|deposited|deposit|refund|refunded|inward|cr)\b`)

	// Spent marks money leaving.
	Spent = regexp.MustCompile(`(?i)\b(?:spent|paid|debited|deducted|dr|purchase|purchased|payment made|withdrawn|withdrawal)\b`)

	// Transfer marks movement between the user's own accounts or to a person.
	Transfer = regexp.MustCompile(`(?i)\b(?:transfer|transferred|trf|tfr|fund transfer|self transfer|own account|sent to|moved to)\b`)

	// Settlement marks a credit card bill being paid off.
	Settlement = regexp.MustCompile(`(?i)\b(?:credit card (?:bill )?payment|cc (?:bill )?payment|card bill|(?:payment )?towards (?:your )?(?:credit )?card|credit card bill)\b`)

	// OTP marks verification-code messages.
	OTP = regexp.MustCompile(`(?i)\b(?:otp|one time password|verification code|passcode|security code)\b`)

	// BalanceClause matches a trailing balance report such as
	// "Avl Bal INR 10,000.00 Cr." through the end of the text.
	BalanceClause = regexp.MustCompile(`(?i)\b(?:(?:avl|avail|available|clr|closing|net|total)\.?\s*bal(?:ance)?\b|bal(?:ance)?\s*(?:is\s*)?[:\-]?\s*(?:rs\.?|inr|₹)).*$`)

	// Junk marks promotions, reminders and notices about money that has not
	// moved yet.
	Junk = regexp.MustCompile(`(?i)\b(?:offer|cashback upto|cashback up to|pre-approved|preapproved|eligible for|apply now|will be debited|will be deducted|due on|due date|is due|scheduled|reminder|upcoming|statement is ready|statement is generated|statement generated|e-statement|minimum amount due|total amount due)\b`)
)

// receivedTypes are type-column values that mean a credit on their own.
var receivedTypes = map[string]bool{
	"CR":      true,
	"C":       true,
	"CREDIT":  true,
	"DEPOSIT": true,
	"INCOME":  true,
}

// IsReceivedType reports whether a dr/cr type cell (already upper-cased and
// trimmed) denotes incoming money.
func IsReceivedType(t string) bool {
	return receivedTypes[t]
}

// IsReceived reports whether text reads as money received.
func IsReceived(text string) bool { return Received.MatchString(text) }

// IsSpent reports whether text reads as money spent.
func IsSpent(text string) bool { return Spent.MatchString(text) }

// IsTransfer reports whether text reads as an internal transfer.
func IsTransfer(text string) bool { return Transfer.MatchString(text) }

// IsSettlement reports whether text reads as a credit card bill payment.
func IsSettlement(text string) bool { return Settlement.MatchString(text) }

// IsNoise reports whether text is an OTP, promotion or reminder rather than a
// record of money that already moved.
func IsNoise(text string) bool {
	return OTP.MatchString(text) || Junk.MatchString(text)
}

// StripBalance cuts a balance clause off text so that its amount and its
// dr/cr marker are not read as part of the transaction.
func StripBalance(text string) string {
	if loc := BalanceClause.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}

var incomeTypes = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`(?i)\b(?:salary|payroll|wages|sal)\b`), "Salary"},
	{regexp.MustCompile(`(?i)\binterest\b|\bint\.? (?:pd|paid|cr)\b`), "Interest"},
	{regexp.MustCompile(`(?i)\bdividend`), "Dividend"},
	{regexp.MustCompile(`(?i)\b(?:refund|refunded|reversal|cashback)\b`), "Refund"},
}

// IncomeType names the kind of income described by text, "Other" when no
// kind is recognised.
func IncomeType(text string) string {
	for _, it := range incomeTypes {
		if it.pattern.MatchString(text) {
			return it.name
		}
	}
	return "Other"
}
