// Package classify turns one tabular row into at most one entry.
package classify

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/keywords"
	"github.com/insightdelivered/txn-ingest/internal/models"
	"github.com/insightdelivered/txn-ingest/internal/normalize"
	"github.com/insightdelivered/txn-ingest/internal/schema"
)

// Skip reasons.
const (
	ReasonEmptyRow    = "empty row"
	ReasonNoAmount    = "no amount"
	ReasonZeroAmount  = "zero amount"
	ReasonInvalidDate = "invalid date"
	ReasonNoDate      = "no date"
)

// SkipError reports a row that produced no entry. It is never fatal.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "row skipped: " + e.Reason
}

func skip(reason string) error {
	return &SkipError{Reason: reason}
}

var (
	accountType   = regexp.MustCompile(`ACCOUNT|ASSET|LIABILITY|INVESTMENT|SAVINGS|CARD|LOAN`)
	liabilityType = regexp.MustCompile(`LIABILITY|DEBT|LOAN|CARD|CREDIT`)
)

// debitTypes are type-column values that pin a row to money going out.
var debitTypes = map[string]bool{
	"DR":         true,
	"D":          true,
	"DEBIT":      true,
	"WITHDRAWAL": true,
	"EXPENSE":    true,
}

// Classifier applies the row rules with a shared category resolver.
type Classifier struct {
	resolver *category.Resolver
}

// New returns a Classifier resolving categories with r.
func New(r *category.Resolver) *Classifier {
	return &Classifier{resolver: r}
}

// row gives bounds-checked access to the cells of one record.
type row struct {
	cells []string
	cols  schema.Columns
}

func (r row) get(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Classify reads one data row. fallbackDate (YYYY-MM-DD) is used only when
// the layout has no date column. A non-nil error is always a *SkipError.
func (c *Classifier) Classify(cells []string, cols schema.Columns, fallbackDate string) (models.Entry, error) {
	r := row{cells: cells, cols: cols}
	if isEmpty(cells) {
		return nil, skip(ReasonEmptyRow)
	}

	date, err := r.date(fallbackDate)
	if err != nil {
		return nil, err
	}

	typeText := strings.ToUpper(r.get(cols.Type))
	if accountType.MatchString(typeText) || cols.Balance >= 0 {
		return c.account(r, typeText, date)
	}
	return c.transaction(r, typeText, date)
}

func isEmpty(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r row) date(fallback string) (string, error) {
	if r.cols.Date < 0 {
		if fallback == "" {
			return "", skip(ReasonNoDate)
		}
		return fallback, nil
	}
	d, ok := normalize.Date(r.get(r.cols.Date))
	if !ok {
		return "", skip(ReasonInvalidDate)
	}
	return d, nil
}

func (c *Classifier) account(r row, typeText, date string) (models.Entry, error) {
	valueCol := r.cols.Balance
	if valueCol < 0 {
		valueCol = r.cols.Amount
	}
	value, err := normalize.Amount(r.get(valueCol))
	if err != nil {
		return nil, skip(ReasonNoAmount)
	}

	liability := liabilityType.MatchString(typeText) ||
		strings.Contains(r.cols.BalanceHeader, "OUTSTANDING")

	wealthType := models.WealthInvestment
	if liability {
		wealthType = models.WealthLiability
	}

	name := r.get(r.cols.Merchant)
	if name == "" {
		name = r.get(r.cols.Account)
	}
	if name == "" {
		name = "Account"
	}

	return &models.Account{
		Meta:           models.Meta{AccountName: r.get(r.cols.Account)},
		Value:          value,
		Name:           name,
		WealthType:     wealthType,
		WealthCategory: wealthCategory(typeText, liability),
		Date:           date,
	}, nil
}

// wealthCategory names the kind of account from its type text.
func wealthCategory(typeText string, liability bool) string {
	switch {
	case strings.Contains(typeText, "LOAN"):
		return "Loan"
	case strings.Contains(typeText, "CARD"):
		return "Credit Card"
	case liability:
		return "Other Liability"
	case strings.Contains(typeText, "FIXED") || strings.Contains(typeText, "FD"):
		return "Fixed Deposit"
	case strings.Contains(typeText, "SAVINGS"):
		return "Savings Account"
	case strings.Contains(typeText, "INVEST"), strings.Contains(typeText, "MUTUAL"),
		strings.Contains(typeText, "STOCK"), strings.Contains(typeText, "ASSET"):
		return "Investments"
	default:
		return "Bank Account"
	}
}

func (c *Classifier) transaction(r row, typeText, date string) (models.Entry, error) {
	desc := r.get(r.cols.Merchant)

	amount, income, err := r.amount(typeText, desc)
	if err != nil {
		return nil, err
	}

	merchant := desc
	if merchant == "" {
		merchant = models.UnknownMerchant
	}
	meta := models.Meta{AccountName: r.get(r.cols.Account)}

	signal := desc + " " + typeText
	switch {
	case keywords.IsSettlement(signal):
		t := models.NewTransfer(amount, merchant, models.SubCategoryBillPayment, date)
		t.Meta = meta
		return t, nil
	case keywords.IsTransfer(signal):
		t := models.NewTransfer(amount, merchant, models.SubCategoryTransfer, date)
		t.Meta = meta
		return t, nil
	}

	cat, sub := c.resolve(r.get(r.cols.Category), desc)
	if income {
		return &models.Income{
			Meta:        meta,
			Amount:      amount,
			Merchant:    merchant,
			IncomeType:  keywords.IncomeType(desc),
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

// amount picks the money column and the direction. With debit and credit
// columns a positive credit wins over a debit. A negative credit is money
// going out and counts as a debit when the debit cell is empty. Otherwise
// the single amount column is income only when the type or description
// says so.
func (r row) amount(typeText, desc string) (int64, bool, error) {
	if r.cols.Debit >= 0 || r.cols.Credit >= 0 {
		credit, creditNegative, hasCredit := nonZero(r.get(r.cols.Credit))
		if hasCredit && !creditNegative {
			return credit, true, nil
		}
		if v, _, ok := nonZero(r.get(r.cols.Debit)); ok {
			return v, false, nil
		}
		if hasCredit {
			return credit, false, nil
		}
		if r.cols.Amount < 0 {
			return 0, false, skip(ReasonNoAmount)
		}
	}

	v, err := normalize.Amount(r.get(r.cols.Amount))
	if err != nil {
		return 0, false, skip(ReasonNoAmount)
	}
	if v == 0 {
		return 0, false, skip(ReasonZeroAmount)
	}

	typ := strings.TrimSpace(typeText)
	if debitTypes[typ] {
		return v, false, nil
	}
	income := keywords.IsReceivedType(typ) || keywords.IsReceived(typ) || keywords.IsReceived(desc)
	return v, income, nil
}

// nonZero parses a money cell into its rounded magnitude and sign. ok is
// false for an empty or unparseable cell and for one that rounds to zero.
func nonZero(cell string) (v int64, negative, ok bool) {
	if strings.TrimSpace(cell) == "" {
		return 0, false, false
	}
	d, err := normalize.ParseNumber(cell)
	if err != nil {
		return 0, false, false
	}
	v = normalize.RoundAmount(d)
	return v, d.IsNegative(), v != 0
}

// resolve prefers an explicit category cell and falls back to the
// description when the cell says nothing useful.
func (c *Classifier) resolve(categoryCell, desc string) (models.Category, string) {
	if categoryCell != "" {
		cat, sub := c.resolver.Resolve(categoryCell)
		if cat != models.CategoryUncategorized || sub != models.SubCategoryGeneral {
			return cat, sub
		}
	}
	return c.resolver.Resolve(desc)
}
