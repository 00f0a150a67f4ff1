// Package schema works out which column of a statement holds which field,
// either from a header row or, failing that, from the shape of the first
// data row.
package schema

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/txn-ingest/internal/normalize"
)

// headerScanLimit bounds how far down a header row is looked for.
const headerScanLimit = 20

// Columns maps each role to a column index, -1 when the role is absent.
type Columns struct {
	Date     int
	Merchant int
	Amount   int
	Balance  int
	Debit    int
	Credit   int
	Type     int
	Category int
	Account  int

	// BalanceHeader is the upper-cased header text of the balance column.
	BalanceHeader string
}

// NoColumns returns a Columns value with every role absent.
func NoColumns() Columns {
	return Columns{
		Date: -1, Merchant: -1, Amount: -1, Balance: -1,
		Debit: -1, Credit: -1, Type: -1, Category: -1, Account: -1,
	}
}

// HasAmount reports whether any money-bearing column was found.
func (c Columns) HasAmount() bool {
	return c.Amount >= 0 || c.Debit >= 0 || c.Credit >= 0 || c.Balance >= 0
}

// Schema is the layout of one document.
type Schema struct {
	Columns   Columns
	HasHeader bool
	// DataStart is the index of the first data row.
	DataStart int
}

var (
	headerHasDate     = regexp.MustCompile(`DATE`)
	headerHasMoney    = regexp.MustCompile(`AMOUNT|DEBIT|CREDIT`)
	headerHasAccount  = regexp.MustCompile(`ACCOUNT`)
	headerAccountInfo = regexp.MustCompile(`BAL|NAME|TYPE`)
	headerHasPayee    = regexp.MustCompile(`PAYEE|MERCHANT|DESC|PARTICULAR|NARRA`)

	parenSuffix = regexp.MustCompile(`\s*\(.*?\)\s*$`)
)

// IsHeader reports whether row reads like a header: a date column next to
// an amount, debit or credit column; an account column next to a balance,
// name or type column; or any payee or description column.
func IsHeader(row []string) bool {
	text := strings.ToUpper(strings.Join(row, " "))
	switch {
	case headerHasDate.MatchString(text) && headerHasMoney.MatchString(text):
		return true
	case headerHasAccount.MatchString(text) && headerAccountInfo.MatchString(text):
		return true
	case headerHasPayee.MatchString(text):
		return true
	}
	return false
}

// FindHeader returns the index of the first header row, or -1.
func FindHeader(rows [][]string) int {
	for i, row := range rows {
		if i >= headerScanLimit {
			break
		}
		if IsHeader(row) {
			return i
		}
	}
	return -1
}

type role struct {
	exact    bool
	keywords []string
	exclude  []string
	set      func(*Columns, int)
}

// roles are claimed in order so that one column never serves two roles.
var roles = []role{
	{exact: true, keywords: []string{"DEBIT", "DR", "WITHDRAWAL", "WITHDRAWALS", "PAID OUT", "MONEY OUT", "DEBIT AMOUNT", "WITHDRAWAL AMT"},
		set: func(c *Columns, i int) { c.Debit = i }},
	{exact: true, keywords: []string{"CREDIT", "CR", "DEPOSIT", "DEPOSITS", "PAID IN", "MONEY IN", "CREDIT AMOUNT", "DEPOSIT AMT"},
		set: func(c *Columns, i int) { c.Credit = i }},
	{keywords: []string{"DATE", "POSTED", "VALUE DT", "TXN DT"},
		set: func(c *Columns, i int) { c.Date = i }},
	{keywords: []string{"BALANCE", "BAL", "OUTSTANDING"},
		set: func(c *Columns, i int) { c.Balance = i }},
	{keywords: []string{"TYPE", "DR/CR", "CR/DR"},
		set: func(c *Columns, i int) { c.Type = i }},
	{keywords: []string{"CATEGORY", "TAG"},
		set: func(c *Columns, i int) { c.Category = i }},
	{keywords: []string{"ACCOUNT", "A/C", "ACCT"},
		set: func(c *Columns, i int) { c.Account = i }},
	{keywords: []string{"PAYEE", "MERCHANT", "DESC", "PARTICULAR", "NARRA", "DETAIL", "REMARK", "MEMO", "NAME"},
		set: func(c *Columns, i int) { c.Merchant = i }},
	{keywords: []string{"AMOUNT", "AMT", "VALUE", "SUM", "TOTAL"}, exclude: []string{"DATE", "DT"},
		set: func(c *Columns, i int) { c.Amount = i }},
}

// FromHeader resolves column roles from a header row.
func FromHeader(header []string) Columns {
	cols := NoColumns()

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToUpper(strings.TrimSpace(h))
	}
	claimed := make([]bool, len(header))

	for _, r := range roles {
		for i, name := range names {
			if claimed[i] || name == "" {
				continue
			}
			if r.matches(name) {
				r.set(&cols, i)
				claimed[i] = true
				break
			}
		}
	}

	if cols.Balance >= 0 {
		cols.BalanceHeader = names[cols.Balance]
	}
	return cols
}

func (r role) matches(name string) bool {
	if r.exact {
		bare := strings.TrimRight(parenSuffix.ReplaceAllString(name, ""), ". ")
		for _, k := range r.keywords {
			if bare == k {
				return true
			}
		}
		return false
	}
	for _, k := range r.exclude {
		if strings.Contains(name, k) {
			return false
		}
	}
	for _, k := range r.keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// Guess infers roles from a single data row when no header exists: the
// first date-like cell is the date, the first plain number is the amount
// and the first remaining cell of three or more characters is the
// description. It fails unless both date and amount are found.
func Guess(row []string) (Columns, bool) {
	cols := NoColumns()

	for i, cell := range row {
		if normalize.IsDateLike(cell) {
			cols.Date = i
			break
		}
	}
	for i, cell := range row {
		if i != cols.Date && normalize.IsPlainNumber(cell) {
			cols.Amount = i
			break
		}
	}
	if cols.Date < 0 || cols.Amount < 0 {
		return cols, false
	}
	for i, cell := range row {
		if i == cols.Date || i == cols.Amount {
			continue
		}
		if len([]rune(cell)) >= 3 && !normalize.IsPlainNumber(cell) {
			cols.Merchant = i
			break
		}
	}
	return cols, true
}

// Infer finds the layout of rows. The first header row, within the scan
// limit, that has at least two cells and names a money column wins;
// otherwise the first row is sniffed.
func Infer(rows [][]string) (Schema, bool) {
	if len(rows) == 0 {
		return Schema{Columns: NoColumns()}, false
	}

	limit := min(len(rows), headerScanLimit)
	for start := 0; start < limit; {
		i := FindHeader(rows[start:limit])
		if i < 0 {
			break
		}
		i += start
		if len(rows[i]) >= 2 {
			if cols := FromHeader(rows[i]); cols.HasAmount() {
				return Schema{Columns: cols, HasHeader: true, DataStart: i + 1}, true
			}
		}
		start = i + 1
	}

	cols, ok := Guess(rows[0])
	if !ok {
		return Schema{Columns: cols}, false
	}
	return Schema{Columns: cols, DataStart: 0}, true
}
