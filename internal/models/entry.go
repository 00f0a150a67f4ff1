package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrAmountRange is returned when a decoded amount does not fit an int64.
var ErrAmountRange = errors.New("amount out of range")

// EntryType is the discriminant of a classified record.
type EntryType string

const (
	EntryExpense  EntryType = "Expense"
	EntryIncome   EntryType = "Income"
	EntryTransfer EntryType = "Transfer"
	EntryAccount  EntryType = "Account"
)

// Category is the top level of the budget taxonomy.
type Category string

const (
	CategoryNeeds         Category = "Needs"
	CategoryWants         Category = "Wants"
	CategorySavings       Category = "Savings"
	CategoryUncategorized Category = "Uncategorized"
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryNeeds, CategoryWants, CategorySavings, CategoryUncategorized:
		return true
	}
	return false
}

// WealthType tells whether an account balance is an asset or a debt.
type WealthType string

const (
	WealthInvestment WealthType = "Investment"
	WealthLiability  WealthType = "Liability"
)

// Transfer subcategories.
const (
	SubCategoryTransfer    = "Transfer"
	SubCategoryBillPayment = "Bill Payment"
	SubCategoryGeneral     = "General"
)

// UnknownMerchant stands in when no counterparty can be read.
const UnknownMerchant = "Unknown Merchant"

// Meta holds the optional fields every entry variant carries.
type Meta struct {
	RawContent  string `json:"rawContent,omitempty"`
	AccountName string `json:"accountName,omitempty"`
}

// Entry is one classified record. It is implemented by *Expense, *Income,
// *Transfer and *Account only; consumers switch on the concrete type.
type Entry interface {
	Type() EntryType
	EntryDate() string
	Base() *Meta
	isEntry()
}

// Expense is money that left the user's hands for a real purchase.
type Expense struct {
	Meta
	Amount      int64    `json:"amount"`
	Merchant    string   `json:"merchant"`
	Category    Category `json:"category"`
	SubCategory string   `json:"subCategory"`
	Date        string   `json:"date"`
}

// Income is money received from an outside source.
type Income struct {
	Meta
	Amount      int64    `json:"amount"`
	Merchant    string   `json:"merchant"`
	IncomeType  string   `json:"incomeType"`
	Category    Category `json:"category"`
	SubCategory string   `json:"subCategory"`
	Date        string   `json:"date"`
}

// Transfer is an internal movement of money, including credit card bill
// settlements. Category is always Uncategorized.
type Transfer struct {
	Meta
	Amount      int64    `json:"amount"`
	Merchant    string   `json:"merchant"`
	Category    Category `json:"category"`
	SubCategory string   `json:"subCategory"`
	Date        string   `json:"date"`
}

// Account is a balance snapshot of a financial account.
type Account struct {
	Meta
	Value          int64      `json:"value"`
	Name           string     `json:"name"`
	WealthType     WealthType `json:"wealthType"`
	WealthCategory string     `json:"wealthCategory"`
	Date           string     `json:"date"`
}

func (*Expense) Type() EntryType  { return EntryExpense }
func (*Income) Type() EntryType   { return EntryIncome }
func (*Transfer) Type() EntryType { return EntryTransfer }
func (*Account) Type() EntryType  { return EntryAccount }

func (e *Expense) EntryDate() string  { return e.Date }
func (e *Income) EntryDate() string   { return e.Date }
func (e *Transfer) EntryDate() string { return e.Date }
func (e *Account) EntryDate() string  { return e.Date }

func (e *Expense) Base() *Meta  { return &e.Meta }
func (e *Income) Base() *Meta   { return &e.Meta }
func (e *Transfer) Base() *Meta { return &e.Meta }
func (e *Account) Base() *Meta  { return &e.Meta }

func (*Expense) isEntry()  {}
func (*Income) isEntry()   {}
func (*Transfer) isEntry() {}
func (*Account) isEntry()  {}

// NewTransfer builds a Transfer, pinning the category to Uncategorized.
func NewTransfer(amount int64, merchant, subCategory, date string) *Transfer {
	return &Transfer{
		Amount:      amount,
		Merchant:    merchant,
		Category:    CategoryUncategorized,
		SubCategory: subCategory,
		Date:        date,
	}
}

// MarshalJSON writes the entry with its entryType discriminant.
func (e *Expense) MarshalJSON() ([]byte, error) {
	type plain Expense
	return json.Marshal(struct {
		EntryType EntryType `json:"entryType"`
		*plain
	}{EntryExpense, (*plain)(e)})
}

func (e *Income) MarshalJSON() ([]byte, error) {
	type plain Income
	return json.Marshal(struct {
		EntryType EntryType `json:"entryType"`
		*plain
	}{EntryIncome, (*plain)(e)})
}

func (e *Transfer) MarshalJSON() ([]byte, error) {
	type plain Transfer
	return json.Marshal(struct {
		EntryType EntryType `json:"entryType"`
		*plain
	}{EntryTransfer, (*plain)(e)})
}

func (e *Account) MarshalJSON() ([]byte, error) {
	type plain Account
	return json.Marshal(struct {
		EntryType EntryType `json:"entryType"`
		*plain
	}{EntryAccount, (*plain)(e)})
}

// wireEntry is the loose shape accepted when decoding entries produced
// elsewhere (for example by the online classifier). Amounts may arrive as
// fractional numbers and are left to the caller to normalize.
type wireEntry struct {
	EntryType      EntryType `json:"entryType"`
	Amount         float64   `json:"amount"`
	Value          float64   `json:"value"`
	Merchant       string    `json:"merchant"`
	Source         string    `json:"source"`
	Name           string    `json:"name"`
	Category       Category  `json:"category"`
	SubCategory    string    `json:"subCategory"`
	IncomeType     string    `json:"incomeType"`
	WealthType     string    `json:"wealthType"`
	WealthCategory string    `json:"wealthCategory"`
	Date           string    `json:"date"`
	AccountName    string    `json:"accountName"`
	RawContent     string    `json:"rawContent"`
}

// DecodeEntry decodes one JSON object into its concrete Entry type.
// Fractional amounts are kept as their rounded magnitude.
func DecodeEntry(data []byte) (Entry, error) {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	meta := Meta{RawContent: w.RawContent, AccountName: w.AccountName}
	merchant := w.Merchant
	if merchant == "" {
		merchant = w.Source
	}

	raw := w.Amount
	if w.EntryType == EntryAccount && w.Value != 0 {
		raw = w.Value
	}
	amount, err := roundMagnitude(raw)
	if err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}

	switch w.EntryType {
	case EntryExpense:
		return &Expense{Meta: meta, Amount: amount, Merchant: merchant,
			Category: w.Category, SubCategory: w.SubCategory, Date: w.Date}, nil
	case EntryIncome:
		return &Income{Meta: meta, Amount: amount, Merchant: merchant,
			IncomeType: w.IncomeType, Category: w.Category, SubCategory: w.SubCategory, Date: w.Date}, nil
	case EntryTransfer, "BillPayment", "Bill Payment":
		sub := w.SubCategory
		if w.EntryType != EntryTransfer {
			sub = SubCategoryBillPayment
		}
		if sub == "" {
			sub = SubCategoryTransfer
		}
		t := NewTransfer(amount, merchant, sub, w.Date)
		t.Meta = meta
		return t, nil
	case EntryAccount:
		name := w.Name
		if name == "" {
			name = merchant
		}
		return &Account{Meta: meta, Value: amount, Name: name,
			WealthType: WealthType(w.WealthType), WealthCategory: w.WealthCategory, Date: w.Date}, nil
	default:
		return nil, fmt.Errorf("decode entry: unknown entryType %q", w.EntryType)
	}
}

// DecodeEntries decodes a JSON array of entries, preserving order.
func DecodeEntries(data []byte) ([]Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for i, r := range raw {
		e, err := DecodeEntry(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// roundMagnitude rounds |f| half away from zero. float64(math.MaxInt64) is
// 2^63, the first magnitude an int64 cannot hold.
func roundMagnitude(f float64) (int64, error) {
	m := math.Round(math.Abs(f))
	if math.IsNaN(m) || m >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("%w: %g", ErrAmountRange, f)
	}
	return int64(m), nil
}
