// Package fallback extracts entries line by line from text that has no
// tabular structure, such as pasted bank SMS alerts.
package fallback

import (
	"errors"
	"regexp"
	"strings"

	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/keywords"
	"github.com/insightdelivered/txn-ingest/internal/models"
	"github.com/insightdelivered/txn-ingest/internal/normalize"
)

const (
	minLineLength  = 10
	maxMerchantLen = 30
)

// Rejection reasons.
const (
	ReasonTooShort    = "too short"
	ReasonOTP         = "verification code"
	ReasonJunk        = "promotion or reminder"
	ReasonNoAmount    = "no amount"
	ReasonNoDirection = "no direction"
	ReasonBadDate     = "invalid date"
)

// RejectError reports a line that produced no entry.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string {
	return "line rejected: " + e.Reason
}

func reject(reason string) error {
	return &RejectError{Reason: reason}
}

var (
	amountPattern = regexp.MustCompile(`(?i)(?:\brs\.?|\binr|₹|\bamt\b|\bvpa\b|\bvoucher\b|\bamount\b)\s*(?:of\s+)?[:.]?\s*(?:rs\.?|inr|₹)?\s*(\d[\d,]*(?:\.\d+)?)`)

	// Counterparty anchors. The name runs from the anchor to the first
	// terminator word.
	payeeAnchor  = regexp.MustCompile(`(?i)\b(?:to|at|towards|spent on|payment for)\s+|\binfo:\s*`)
	payerAnchor  = regexp.MustCompile(`(?i)\b(?:from|by)\s+`)
	counterparty = regexp.MustCompile(`(?i)^(.+?)(?:\s+(?:via|on|ref|txn|link|date|avl|bal|not you|remaining)\b|$)`)

	// ownAccount matches a counterparty that is the user's own account or card.
	ownAccount = regexp.MustCompile(`(?i)^(?:your\s+)?(?:(?:credit|debit)\s+)?(?:a/c|acct|account|card)\b`)

	edgeNoise = regexp.MustCompile(`^[^\p{L}\p{N}]+|[^\p{L}\p{N}]+$`)

	accountHint = regexp.MustCompile(`(?i)\b(?:a/c|acct|account|card)(?:\s+(?:no\.?|number))?(?:\s+ending(?:\s+(?:in|with))?)?\s*[:\-]?\s*((?:[x*]+)?\d{3,6})\b`)
)

// Parser holds the category resolver used for extracted merchants.
type Parser struct {
	resolver *category.Resolver
}

// New returns a Parser resolving categories with r.
func New(r *category.Resolver) *Parser {
	return &Parser{resolver: r}
}

type direction int

const (
	dirNone direction = iota
	dirSettlement
	dirTransfer
	dirReceived
	dirSpent
)

// directionOf walks the signals in priority order: a card settlement beats
// a transfer, which beats received, which beats spent.
func directionOf(line string) direction {
	switch {
	case keywords.IsSettlement(line):
		return dirSettlement
	case keywords.IsTransfer(line):
		return dirTransfer
	case keywords.IsReceived(line):
		return dirReceived
	case keywords.IsSpent(line):
		return dirSpent
	}
	return dirNone
}

// ParseLine extracts one entry from a single line. today (YYYY-MM-DD) is
// the date used when the line carries none; a line whose date is not on the
// calendar is rejected. Account entries are never produced. A non-nil error is always a *RejectError.
func (p *Parser) ParseLine(line, today string) (models.Entry, error) {
	line = strings.TrimSpace(line)

	switch {
	case len([]rune(line)) < minLineLength:
		return nil, reject(ReasonTooShort)
	case keywords.OTP.MatchString(line):
		return nil, reject(ReasonOTP)
	case keywords.Junk.MatchString(line):
		return nil, reject(ReasonJunk)
	}

	// A balance clause carries its own amount and dr/cr marker.
	body := keywords.StripBalance(line)

	amount, ok := extractAmount(body)
	if !ok {
		return nil, reject(ReasonNoAmount)
	}

	dir := directionOf(body)
	if dir == dirNone {
		return nil, reject(ReasonNoDirection)
	}

	date, ok := normalize.Date(line)
	if !ok {
		if normalize.HasImpossibleDate(line) {
			return nil, reject(ReasonBadDate)
		}
		date = today
	}

	merchant := extractMerchant(body, dir == dirReceived)
	meta := models.Meta{AccountName: extractAccount(line)}

	switch dir {
	case dirSettlement:
		t := models.NewTransfer(amount, merchant, models.SubCategoryBillPayment, date)
		t.Meta = meta
		return t, nil
	case dirTransfer:
		t := models.NewTransfer(amount, merchant, models.SubCategoryTransfer, date)
		t.Meta = meta
		return t, nil
	}

	cat, sub := p.resolve(merchant, body)
	if dir == dirReceived {
		return &models.Income{
			Meta:        meta,
			Amount:      amount,
			Merchant:    merchant,
			IncomeType:  keywords.IncomeType(body),
			Category:    cat,
			SubCategory: sub,
			Date:        date,
		}, nil
	}
	return &models.Expense{
		Meta:        meta,
		Amount:      amount,
		Merchant:    merchant,
		Category:    cat,
		SubCategory: sub,
		Date:        date,
	}, nil
}

// Parse runs ParseLine over every non-blank line of text, keeping input
// order. Each entry carries its source line as RawContent.
func (p *Parser) Parse(text, today string) ([]models.Entry, []models.SkipRecord) {
	var (
		entries []models.Entry
		skipped []models.SkipRecord
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		e, err := p.ParseLine(line, today)
		if err != nil {
			skipped = append(skipped, models.SkipRecord{Line: i + 1, Text: line, Reason: reasonOf(err)})
			continue
		}
		e.Base().RawContent = line
		entries = append(entries, e)
	}
	return entries, skipped
}

func reasonOf(err error) string {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason
	}
	return err.Error()
}

func extractAmount(line string) (int64, bool) {
	m := amountPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	d, err := normalize.ParseNumber(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	amount := normalize.RoundAmount(d)
	return amount, amount > 0
}

// extractMerchant reads the counterparty. Incoming money names it after
// "from" or "by"; everything else after "to", "at" and similar. A name that
// is the user's own account or card is passed over for the next anchor.
func extractMerchant(line string, incoming bool) string {
	order := []*regexp.Regexp{payeeAnchor, payerAnchor}
	if incoming {
		order = []*regexp.Regexp{payerAnchor, payeeAnchor}
	}
	for _, re := range order {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			m := counterparty.FindStringSubmatch(line[loc[1]:])
			if m == nil || ownAccount.MatchString(m[1]) {
				continue
			}
			if name := cleanMerchant(m[1]); name != "" {
				return name
			}
		}
	}
	return models.UnknownMerchant
}

func cleanMerchant(s string) string {
	s = edgeNoise.ReplaceAllString(s, "")
	if r := []rune(s); len(r) > maxMerchantLen {
		s = edgeNoise.ReplaceAllString(string(r[:maxMerchantLen]), "")
	}
	return strings.TrimSpace(s)
}

func extractAccount(line string) string {
	m := accountHint.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// resolve categorises by merchant first and by the whole line when the
// merchant alone says nothing.
func (p *Parser) resolve(merchant, line string) (models.Category, string) {
	if merchant != models.UnknownMerchant {
		cat, sub := p.resolver.Resolve(merchant)
		if cat != models.CategoryUncategorized || sub != models.SubCategoryGeneral {
			return cat, sub
		}
	}
	return p.resolver.Resolve(line)
}
