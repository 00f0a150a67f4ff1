package category

import "github.com/insightdelivered/txn-ingest/internal/models"

// Group is one category and its canonical subcategories, in display order.
type Group struct {
	Category      models.Category `json:"category"`
	SubCategories []string        `json:"subCategories"`
}

// Taxonomy is the ordered category table. Order matters: matching walks it
// from the first group to the last.
type Taxonomy []Group

// DefaultTaxonomy returns the built-in table.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{Category: models.CategoryNeeds, SubCategories: []string{
			"Rent/Mortgage", "Utilities", "Groceries", "Transport", "Fuel",
			"Insurance", "Healthcare", "Education", "Phone & Internet",
			"Loan EMI", "Childcare",
		}},
		{Category: models.CategoryWants, SubCategories: []string{
			"Dining", "Shopping", "Entertainment", "Travel", "Subscriptions",
			"Personal Care", "Gifts", "Hobbies",
		}},
		{Category: models.CategorySavings, SubCategories: []string{
			"Investments", "Emergency Fund", "Retirement", "Mutual Funds",
			"Fixed Deposit", "Stocks",
		}},
		{Category: models.CategoryUncategorized, SubCategories: []string{
			models.SubCategoryGeneral, models.SubCategoryBillPayment, models.SubCategoryTransfer,
		}},
	}
}

// SubCategories returns the list for c, or nil when c is not in the table.
func (t Taxonomy) SubCategories(c models.Category) []string {
	for _, g := range t {
		if g.Category == c {
			return g.SubCategories
		}
	}
	return nil
}

// Contains reports whether sub is listed under c.
func (t Taxonomy) Contains(c models.Category, sub string) bool {
	for _, s := range t.SubCategories(c) {
		if s == sub {
			return true
		}
	}
	return false
}
