// Package remote classifies free text through an online language model and
// brings the reply back into the same entry shapes the local engine emits.
package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/models"
	"github.com/insightdelivered/txn-ingest/internal/normalize"
)

// Client turns statement text into entries via a Generator.
type Client struct {
	gen      Generator
	retry    RetryConfig
	taxonomy category.Taxonomy
	log      zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetryConfig overrides DefaultRetryConfig.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(c *Client) { c.retry = cfg }
}

// WithTaxonomy sets the table model subcategories are checked against.
// DefaultTaxonomy is used otherwise.
func WithTaxonomy(t category.Taxonomy) ClientOption {
	return func(c *Client) { c.taxonomy = t }
}

// WithClientLogger sets the logger used for dropped entries and retries.
func WithClientLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

func NewClient(gen Generator, opts ...ClientOption) *Client {
	c := &Client{gen: gen, retry: DefaultRetryConfig, taxonomy: category.DefaultTaxonomy(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify sends text to the model and returns the normalized entries.
func (c *Client) Classify(ctx context.Context, text, currency string) ([]models.Entry, error) {
	if c == nil || c.gen == nil {
		return nil, &Error{Code: ErrNotConfigured, Message: "no generator configured"}
	}
	prompt := BuildPrompt(text, currency)

	raw, err := WithRetry(ctx, c.retry, func(ctx context.Context) (string, error) {
		out, err := c.gen.Generate(ctx, prompt)
		if err != nil {
			c.log.Warn().Err(err).Msg("remote classify attempt failed")
		}
		return out, err
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &Error{Code: ErrEmptyResponse, Message: "empty response from model"}
	}

	entries, err := models.DecodeEntries([]byte(cleanModelJSON(raw)))
	if err != nil {
		return nil, &Error{Code: ErrBadResponse, Message: "decode model reply", Cause: err}
	}
	return c.normalizeEntries(entries), nil
}

// normalizeEntries applies the local engine's invariants to model output:
// dates become YYYY-MM-DD, undated entries are dropped, categories outside
// the taxonomy fall back to Uncategorized, subcategories the taxonomy does
// not list under their category become General, transfers are never
// categorized.
func (c *Client) normalizeEntries(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for i, e := range entries {
		date, ok := normalize.Date(e.EntryDate())
		if !ok {
			c.log.Debug().Int("index", i).Str("date", e.EntryDate()).Msg("remote entry dropped")
			continue
		}

		switch v := e.(type) {
		case *models.Expense:
			v.Date = date
			v.Merchant = merchantOr(v.Merchant)
			v.Category, v.SubCategory = c.validCategory(v.Category, v.SubCategory)
		case *models.Income:
			v.Date = date
			v.Merchant = merchantOr(v.Merchant)
			v.Category, v.SubCategory = c.validCategory(v.Category, v.SubCategory)
			if v.IncomeType == "" {
				v.IncomeType = "Other"
			}
		case *models.Transfer:
			v.Date = date
			v.Merchant = merchantOr(v.Merchant)
			v.Category = models.CategoryUncategorized
		case *models.Account:
			v.Date = date
			if v.WealthType != models.WealthLiability {
				v.WealthType = models.WealthInvestment
			}
		}
		out = append(out, e)
	}
	return out
}

func merchantOr(m string) string {
	if m = strings.TrimSpace(m); m == "" {
		return models.UnknownMerchant
	}
	return m
}

func (c *Client) validCategory(cat models.Category, sub string) (models.Category, string) {
	if !cat.Valid() {
		return models.CategoryUncategorized, models.SubCategoryGeneral
	}
	if !c.taxonomy.Contains(cat, sub) {
		sub = models.SubCategoryGeneral
	}
	return cat, sub
}

// BuildPrompt renders the classification instructions for text.
func BuildPrompt(text, currency string) string {
	if currency == "" {
		currency = "INR"
	}
	var b strings.Builder
	b.WriteString("You are a financial transaction parser for bank statements, card statements and bank SMS alerts.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Parse ALL transactions and account balances in the input below.\n")
	fmt.Fprintf(&b, "- Amounts are in %s. Output whole-unit integers, rounded half away from zero, always positive.\n", currency)
	b.WriteString("- Output STRICT JSON only: a JSON array of objects.\n\n")
	b.WriteString("Each object has an \"entryType\" of \"Expense\", \"Income\", \"Transfer\" or \"Account\".\n")
	b.WriteString("- Expense: amount, merchant, category, subCategory, date\n")
	b.WriteString("- Income: amount, merchant, incomeType (Salary, Interest, Dividend, Refund, Other), category, subCategory, date\n")
	b.WriteString("- Transfer: amount, merchant, subCategory (\"Transfer\" or \"Bill Payment\"), date\n")
	b.WriteString("- Account: value, name, wealthType (Investment or Liability), wealthCategory, date\n")
	b.WriteString("- Optional on every object: accountName\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- category is one of Needs, Wants, Savings, Uncategorized.\n")
	b.WriteString("- Credit card bill payments and moves between own accounts are Transfers, never Expenses.\n")
	b.WriteString("- Ignore OTPs, promotions and reminders.\n")
	b.WriteString("- Dates are \"YYYY-MM-DD\".\n")
	b.WriteString("Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n\n")
	b.WriteString("Input:\n")
	b.WriteString(text)
	return b.String()
}

// cleanModelJSON strips Markdown fences and any prose around the array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}
