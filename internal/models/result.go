package models

// Mode records which path produced a ParseResult.
type Mode string

const (
	ModeEmpty   Mode = "empty"
	ModeTabular Mode = "tabular"
	ModeText    Mode = "text"
)

// SkipRecord captures a row or line the engine could not turn into an entry.
type SkipRecord struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// ParseResult is everything one ingest call produced, in input order.
type ParseResult struct {
	Mode    Mode         `json:"mode"`
	Entries []Entry      `json:"entries"`
	Skipped []SkipRecord `json:"skipped,omitempty"`
}

// Totals sums entry amounts per entry type.
type Totals struct {
	Expense  int64 `json:"expense"`
	Income   int64 `json:"income"`
	Transfer int64 `json:"transfer"`
	Accounts int   `json:"accounts"`
}

// Totals walks the entries once and sums them by kind.
func (r *ParseResult) Totals() Totals {
	var t Totals
	for _, e := range r.Entries {
		switch v := e.(type) {
		case *Expense:
			t.Expense += v.Amount
		case *Income:
			t.Income += v.Amount
		case *Transfer:
			t.Transfer += v.Amount
		case *Account:
			t.Accounts++
		}
	}
	return t
}
