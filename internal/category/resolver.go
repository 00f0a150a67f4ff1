// Package category maps merchant and description text to a budget category
// and subcategory.
//
// Resolution runs an ordered list of matchers and the first one that
// recognises the text wins:
//
//  1. credit card settlement phrases -> (Uncategorized, Bill Payment)
//  2. the taxonomy table, by case-insensitive containment
//  3. keyword rules for well known merchants and bill types
//
// Text nothing recognises resolves to (Uncategorized, General). Every
// matcher is a pure function of its input, so a Resolver may be shared
// between goroutines.
package category

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/insightdelivered/txn-ingest/internal/keywords"
	"github.com/insightdelivered/txn-ingest/internal/models"
)

// Short inputs, measured in runes, may also match inside a taxonomy term.
const (
	reverseMinRunes = 3
	reverseMaxRunes = 15
)

// Matcher is one layer of the resolver.
type Matcher interface {
	Match(text string) (models.Category, string, bool)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(text string) (models.Category, string, bool)

// Match calls f.
func (f MatcherFunc) Match(text string) (models.Category, string, bool) {
	return f(text)
}

// SettlementMatcher recognises credit card bill payments.
var SettlementMatcher = MatcherFunc(func(text string) (models.Category, string, bool) {
	if keywords.IsSettlement(text) {
		return models.CategoryUncategorized, models.SubCategoryBillPayment, true
	}
	return "", "", false
})

type term struct {
	category models.Category
	name     string
	folded   string
}

// TaxonomyMatcher matches text against the subcategory names of a taxonomy.
type TaxonomyMatcher struct {
	terms []term
}

// NewTaxonomyMatcher flattens t, keeping its order.
func NewTaxonomyMatcher(t Taxonomy) *TaxonomyMatcher {
	fold := cases.Fold()
	m := &TaxonomyMatcher{}
	for _, g := range t {
		for _, sub := range g.SubCategories {
			m.terms = append(m.terms, term{category: g.Category, name: sub, folded: fold.String(sub)})
		}
	}
	return m
}

// Match reports the first term found inside text, or, when text is short,
// the first term that has a word starting with text.
func (m *TaxonomyMatcher) Match(text string) (models.Category, string, bool) {
	// Casers keep state and are not safe for concurrent use.
	folded := strings.TrimSpace(cases.Fold().String(text))
	if folded == "" {
		return "", "", false
	}

	for _, t := range m.terms {
		if strings.Contains(folded, t.folded) {
			return t.category, t.name, true
		}
	}

	n := utf8.RuneCountInString(folded)
	if n < reverseMinRunes || n > reverseMaxRunes {
		return "", "", false
	}
	for _, t := range m.terms {
		if wordPrefix(t.folded, folded) {
			return t.category, t.name, true
		}
	}
	return "", "", false
}

// wordPrefix reports whether needle occurs in s starting at a word boundary.
func wordPrefix(s, needle string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return false
		}
		at := from + i
		if at == 0 || !isWordByte(s[at-1]) {
			return true
		}
		from = at + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}

// RuleMatcher applies keyword rules in order.
type RuleMatcher struct {
	Rules []Rule
}

// Match returns the category of the first rule whose pattern matches.
func (m RuleMatcher) Match(text string) (models.Category, string, bool) {
	for _, r := range m.Rules {
		if r.Pattern.MatchString(text) {
			return r.Category, r.SubCategory, true
		}
	}
	return "", "", false
}

// Resolver runs its matchers in order.
type Resolver struct {
	matchers []Matcher
}

// New builds the standard resolver over taxonomy t.
func New(t Taxonomy) *Resolver {
	return NewWithMatchers(
		SettlementMatcher,
		NewTaxonomyMatcher(t),
		RuleMatcher{Rules: DefaultRules()},
	)
}

// NewDefault builds the standard resolver over the built-in taxonomy.
func NewDefault() *Resolver {
	return New(DefaultTaxonomy())
}

// NewWithMatchers builds a resolver from explicit layers.
func NewWithMatchers(matchers ...Matcher) *Resolver {
	return &Resolver{matchers: matchers}
}

// Resolve returns the category and subcategory for text. It never fails:
// unrecognised text is (Uncategorized, General).
func (r *Resolver) Resolve(text string) (models.Category, string) {
	for _, m := range r.matchers {
		if c, sub, ok := m.Match(text); ok {
			return c, sub
		}
	}
	return models.CategoryUncategorized, models.SubCategoryGeneral
}
