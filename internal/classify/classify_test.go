package classify

import (
	"errors"
	"testing"

	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/models"
	"github.com/insightdelivered/txn-ingest/internal/schema"
)

func newClassifier() *Classifier {
	return New(category.NewDefault())
}

func TestClassifyDebitCredit(t *testing.T) {
	c := newClassifier()
	cols := schema.FromHeader([]string{"Date", "Description", "Debit", "Credit"})

	t.Run("debit is expense", func(t *testing.T) {
		e, err := c.Classify([]string{"2025-01-05", "Swiggy Order", "450", ""}, cols, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		exp, ok := e.(*models.Expense)
		if !ok {
			t.Fatalf("got %T, want *models.Expense", e)
		}
		if exp.Amount != 450 || exp.Merchant != "Swiggy Order" || exp.Date != "2025-01-05" {
			t.Errorf("expense: got %+v", exp)
		}
		if exp.Category != models.CategoryWants || exp.SubCategory != "Dining" {
			t.Errorf("category: got (%s, %s), want (Wants, Dining)", exp.Category, exp.SubCategory)
		}
	})

	t.Run("credit is income", func(t *testing.T) {
		e, err := c.Classify([]string{"2025-01-06", "Salary Credit", "", "50000"}, cols, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		inc, ok := e.(*models.Income)
		if !ok {
			t.Fatalf("got %T, want *models.Income", e)
		}
		if inc.Amount != 50000 || inc.IncomeType != "Salary" {
			t.Errorf("income: got %+v", inc)
		}
	})

	t.Run("credit wins when both set", func(t *testing.T) {
		e, err := c.Classify([]string{"2025-01-07", "Adjustment", "100", "250"}, cols, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		inc, ok := e.(*models.Income)
		if !ok {
			t.Fatalf("got %T, want *models.Income", e)
		}
		if inc.Amount != 250 {
			t.Errorf("amount: got %d, want 250", inc.Amount)
		}
	})

	t.Run("negative credit is not income", func(t *testing.T) {
		tests := []struct {
			name   string
			cells  []string
			amount int64
		}{
			{"alone", []string{"2025-01-08", "Reversal Swiggy", "", "-300"}, 300},
			{"debit wins", []string{"2025-01-08", "Reversal Swiggy", "120", "-300"}, 120},
			{"parenthesised", []string{"2025-01-08", "Reversal Swiggy", "", "(75.50)"}, 76},
		}
		for _, tt := range tests {
			e, err := c.Classify(tt.cells, cols, "")
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tt.name, err)
			}
			exp, ok := e.(*models.Expense)
			if !ok {
				t.Fatalf("%s: got %T, want *models.Expense", tt.name, e)
			}
			if exp.Amount != tt.amount {
				t.Errorf("%s: amount got %d, want %d", tt.name, exp.Amount, tt.amount)
			}
		}
	})

	t.Run("negative debit rounds to magnitude", func(t *testing.T) {
		e, err := c.Classify([]string{"05/01/2025", "Cafe Coffee Day", "-1,250.60", ""}, cols, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := e.(*models.Expense).Amount; got != 1251 {
			t.Errorf("amount: got %d, want 1251", got)
		}
	})
}

func TestClassifySingleAmount(t *testing.T) {
	c := newClassifier()
	cols := schema.FromHeader([]string{"Date", "Narration", "Amount", "Type"})

	tests := []struct {
		name     string
		row      []string
		wantType models.EntryType
		wantSub  string
	}{
		{"no signal defaults to expense", []string{"2025-01-05", "Uber trip", "210", ""}, models.EntryExpense, "Transport"},
		{"negative sign is not a signal", []string{"2025-01-05", "Uber trip", "-210", ""}, models.EntryExpense, "Transport"},
		{"cr type", []string{"2025-01-05", "NEFT from ACME", "5000", "CR"}, models.EntryIncome, "General"},
		{"received in description", []string{"2025-01-05", "Refund received from Amazon", "499", ""}, models.EntryIncome, "Shopping"},
		{"dr type beats description", []string{"2025-01-05", "Refund received reversal fee", "50", "DR"}, models.EntryExpense, "General"},
		{"settlement override", []string{"2025-01-08", "Credit Card Payment", "15000", "DR"}, models.EntryTransfer, "Bill Payment"},
		{"transfer override", []string{"2025-01-09", "Self transfer to savings", "2000", ""}, models.EntryTransfer, "Transfer"},
		{"transfer override beats income", []string{"2025-01-09", "Fund transfer from Ravi", "2000", "CR"}, models.EntryTransfer, "Transfer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := c.Classify(tt.row, cols, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Type() != tt.wantType {
				t.Fatalf("type: got %s, want %s", e.Type(), tt.wantType)
			}
			var sub string
			switch v := e.(type) {
			case *models.Expense:
				sub = v.SubCategory
			case *models.Income:
				sub = v.SubCategory
			case *models.Transfer:
				sub = v.SubCategory
				if v.Category != models.CategoryUncategorized {
					t.Errorf("transfer category: got %s, want Uncategorized", v.Category)
				}
			}
			if sub != tt.wantSub {
				t.Errorf("subCategory: got %q, want %q", sub, tt.wantSub)
			}
		})
	}
}

func TestClassifyAccountRows(t *testing.T) {
	c := newClassifier()

	t.Run("outstanding loan", func(t *testing.T) {
		cols := schema.FromHeader([]string{"Date", "Account Name", "Type", "Outstanding Balance"})
		e, err := c.Classify([]string{"2025-01-01", "Home Loan", "Loan", "25,00,000"}, cols, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		acc, ok := e.(*models.Account)
		if !ok {
			t.Fatalf("got %T, want *models.Account", e)
		}
		if acc.WealthType != models.WealthLiability || acc.WealthCategory != "Loan" {
			t.Errorf("wealth: got (%s, %s), want (Liability, Loan)", acc.WealthType, acc.WealthCategory)
		}
		if acc.Value != 2500000 || acc.Name != "Home Loan" {
			t.Errorf("account: got %+v", acc)
		}
	})

	t.Run("savings by type", func(t *testing.T) {
		cols := schema.FromHeader([]string{"Date", "Account", "Type", "Amount"})
		e, err := c.Classify([]string{"2025-01-01", "HDFC Savings", "Savings", "-84,210.50"}, cols, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		acc, ok := e.(*models.Account)
		if !ok {
			t.Fatalf("got %T, want *models.Account", e)
		}
		if acc.WealthType != models.WealthInvestment || acc.WealthCategory != "Savings Account" || acc.Value != 84211 {
			t.Errorf("account: got %+v", acc)
		}
	})

	t.Run("credit card", func(t *testing.T) {
		cols := schema.FromHeader([]string{"Account Name", "Type", "Balance"})
		e, err := c.Classify([]string{"Visa Platinum", "Credit Card", "12000"}, cols, "2025-02-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		acc := e.(*models.Account)
		if acc.WealthType != models.WealthLiability || acc.WealthCategory != "Credit Card" || acc.Date != "2025-02-01" {
			t.Errorf("account: got %+v", acc)
		}
	})
}

func TestClassifySkips(t *testing.T) {
	c := newClassifier()
	cols := schema.FromHeader([]string{"Date", "Description", "Amount"})

	tests := []struct {
		name     string
		row      []string
		fallback string
		reason   string
	}{
		{"bad date", []string{"31/02/2025", "Swiggy", "450"}, "", ReasonInvalidDate},
		{"no amount", []string{"2025-01-05", "Swiggy", "n/a"}, "", ReasonNoAmount},
		{"zero amount", []string{"2025-01-05", "Swiggy", "0.00"}, "", ReasonZeroAmount},
		{"empty", []string{"", " ", ""}, "", ReasonEmptyRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Classify(tt.row, cols, tt.fallback)
			var se *SkipError
			if !errors.As(err, &se) {
				t.Fatalf("got %v, want *SkipError", err)
			}
			if se.Reason != tt.reason {
				t.Errorf("reason: got %q, want %q", se.Reason, tt.reason)
			}
		})
	}

	t.Run("no date column uses fallback", func(t *testing.T) {
		noDate := schema.FromHeader([]string{"Payee", "Amount"})
		e, err := c.Classify([]string{"Netflix", "649"}, noDate, "2025-03-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.EntryDate() != "2025-03-01" {
			t.Errorf("date: got %q, want %q", e.EntryDate(), "2025-03-01")
		}
		if _, err := c.Classify([]string{"Netflix", "649"}, noDate, ""); err == nil {
			t.Error("expected skip without a fallback date")
		}
	})
}

func TestClassifyCategoryColumn(t *testing.T) {
	c := newClassifier()
	cols := schema.FromHeader([]string{"Date", "Description", "Category", "Amount", "Account"})

	e, err := c.Classify([]string{"2025-01-05", "XYZ Traders", "Groceries", "820", "HDFC XX1234"}, cols, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exp := e.(*models.Expense)
	if exp.Category != models.CategoryNeeds || exp.SubCategory != "Groceries" {
		t.Errorf("category: got (%s, %s), want (Needs, Groceries)", exp.Category, exp.SubCategory)
	}
	if exp.AccountName != "HDFC XX1234" {
		t.Errorf("accountName: got %q", exp.AccountName)
	}

	// An unhelpful category cell falls back to the description.
	e, err = c.Classify([]string{"2025-01-05", "Starbucks", "Misc", "300", ""}, cols, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := e.(*models.Expense).SubCategory; got != "Dining" {
		t.Errorf("subCategory: got %q, want Dining", got)
	}
}
