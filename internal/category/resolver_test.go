package category

import (
	"sync"
	"testing"

	"github.com/insightdelivered/txn-ingest/internal/models"
)

func TestResolve(t *testing.T) {
	r := NewDefault()

	tests := []struct {
		text        string
		category    models.Category
		subCategory string
	}{
		// settlement short-circuits everything
		{"Credit Card Payment - Thank You", models.CategoryUncategorized, "Bill Payment"},
		{"Payment towards your card ending 4321", models.CategoryUncategorized, "Bill Payment"},

		// taxonomy, forward containment
		{"Groceries", models.CategoryNeeds, "Groceries"},
		{"monthly utilities", models.CategoryNeeds, "Utilities"},
		{"FUEL", models.CategoryNeeds, "Fuel"},
		{"Mutual Funds", models.CategorySavings, "Mutual Funds"},

		// taxonomy, short input inside a term
		{"Gift", models.CategoryWants, "Gifts"},
		{"Mortgage", models.CategoryNeeds, "Rent/Mortgage"},
		{"loan", models.CategoryNeeds, "Loan EMI"},

		// keyword rules
		{"Swiggy Order", models.CategoryWants, "Dining"},
		{"Starbucks", models.CategoryWants, "Dining"},
		{"UBER EATS 1234", models.CategoryWants, "Dining"},
		{"Uber trip", models.CategoryNeeds, "Transport"},
		{"Amazon Prime renewal", models.CategoryWants, "Subscriptions"},
		{"AMAZON.IN order", models.CategoryWants, "Shopping"},
		{"BESCOM bill", models.CategoryNeeds, "Utilities"},
		{"HPCL petrol pump", models.CategoryNeeds, "Fuel"},
		{"Instamart", models.CategoryNeeds, "Groceries"},
		{"SIP Axis Bluechip", models.CategorySavings, "Mutual Funds"},
		{"Zerodha Broking", models.CategorySavings, "Stocks"},
		{"House rent January", models.CategoryNeeds, "Rent/Mortgage"},

		// defaults
		{"XYZ Traders", models.CategoryUncategorized, "General"},
		{"", models.CategoryUncategorized, "General"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c, sub := r.Resolve(tt.text)
			if c != tt.category || sub != tt.subCategory {
				t.Errorf("Resolve(%q): got (%s, %s), want (%s, %s)", tt.text, c, sub, tt.category, tt.subCategory)
			}
		})
	}
}

func TestResolveIsStable(t *testing.T) {
	r := NewDefault()
	inputs := []string{"Swiggy Order", "Gift", "XYZ Traders", "Credit card bill payment", "Netflix"}

	want := make(map[string]string, len(inputs))
	for _, in := range inputs {
		c, sub := r.Resolve(in)
		want[in] = string(c) + "/" + sub
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				for _, in := range inputs {
					c, sub := r.Resolve(in)
					if got := string(c) + "/" + sub; got != want[in] {
						t.Errorf("Resolve(%q) drifted: got %s, want %s", in, got, want[in])
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestTaxonomyOrderWins(t *testing.T) {
	tax := Taxonomy{
		{Category: models.CategoryWants, SubCategories: []string{"Coffee"}},
		{Category: models.CategoryNeeds, SubCategories: []string{"Coffee Beans"}},
	}
	m := NewTaxonomyMatcher(tax)

	c, sub, ok := m.Match("coffee beans 1kg")
	if !ok || c != models.CategoryWants || sub != "Coffee" {
		t.Errorf("Match: got (%s, %s, %v), want (Wants, Coffee, true)", c, sub, ok)
	}
}

func TestTaxonomyMatcherShortInputBounds(t *testing.T) {
	m := NewTaxonomyMatcher(DefaultTaxonomy())

	tests := []struct {
		text string
		ok   bool
	}{
		{"tr", false},                     // too short
		{"travel", true},                  // forward
		{"trav", true},                    // reverse
		{"ance", false},                   // not at a word start
		{"emergency savings plan", false}, // too long for reverse, no forward hit
	}

	for _, tt := range tests {
		if _, _, ok := m.Match(tt.text); ok != tt.ok {
			t.Errorf("Match(%q): got %v, want %v", tt.text, ok, tt.ok)
		}
	}
}

func TestCustomMatchers(t *testing.T) {
	always := MatcherFunc(func(string) (models.Category, string, bool) {
		return models.CategorySavings, "Emergency Fund", true
	})
	r := NewWithMatchers(SettlementMatcher, always)

	if c, sub := r.Resolve("Credit card bill payment"); sub != "Bill Payment" || c != models.CategoryUncategorized {
		t.Errorf("settlement layer: got (%s, %s)", c, sub)
	}
	if c, sub := r.Resolve("anything"); sub != "Emergency Fund" || c != models.CategorySavings {
		t.Errorf("custom layer: got (%s, %s)", c, sub)
	}
}

func TestTaxonomyContains(t *testing.T) {
	tax := DefaultTaxonomy()
	if !tax.Contains(models.CategoryWants, "Dining") {
		t.Error("expected Wants to contain Dining")
	}
	if tax.Contains(models.CategoryNeeds, "Dining") {
		t.Error("Needs should not contain Dining")
	}
	if tax.SubCategories("Other") != nil {
		t.Error("unknown category should have no subcategories")
	}
}
