// Package ingest is the single entry point that turns raw statement text
// into classified entries.
//
// Parse first treats the input as a delimited table: it tokenizes it, finds
// the column layout and classifies every data row. When no layout can be
// found, or the table yields nothing, every line is read on its own by the
// unstructured fallback parser. Both paths produce the same entry types, in
// input order.
//
// An Engine holds no mutable state and may be shared between goroutines.
package ingest

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/classify"
	"github.com/insightdelivered/txn-ingest/internal/fallback"
	"github.com/insightdelivered/txn-ingest/internal/lexer"
	"github.com/insightdelivered/txn-ingest/internal/models"
	"github.com/insightdelivered/txn-ingest/internal/normalize"
	"github.com/insightdelivered/txn-ingest/internal/schema"
)

// Engine parses statement text.
type Engine struct {
	resolver   *category.Resolver
	classifier *classify.Classifier
	fallback   *fallback.Parser
	log        zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver replaces the built-in category resolver.
func WithResolver(r *category.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithLogger sets the logger used for skip diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New builds an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = category.NewDefault()
	}
	e.classifier = classify.New(e.resolver)
	e.fallback = fallback.New(e.resolver)
	return e
}

// Resolver returns the category resolver the engine classifies with.
func (e *Engine) Resolver() *category.Resolver {
	return e.resolver
}

// Parse extracts every entry it can from text. today supplies the date of
// entries whose source carries none. Parse never fails; rows and lines it
// cannot use are reported in the result's Skipped list.
func (e *Engine) Parse(text string, today time.Time) *models.ParseResult {
	if strings.TrimSpace(text) == "" {
		return &models.ParseResult{Mode: models.ModeEmpty, Entries: []models.Entry{}}
	}
	fallbackDate := normalize.Format(today)

	table := lexer.Tokenize(text)
	if s, ok := schema.Infer(table.Rows); ok {
		result := e.parseTable(table, s, fallbackDate)
		if len(result.Entries) > 0 {
			return result
		}
		e.log.Debug().
			Int("rows", len(table.Rows)).
			Int("skipped", len(result.Skipped)).
			Msg("table produced no entries, reading lines instead")
	} else {
		e.log.Debug().Int("rows", len(table.Rows)).Msg("no column layout found, reading lines instead")
	}

	entries, skipped := e.fallback.Parse(text, fallbackDate)
	for _, s := range skipped {
		e.log.Debug().Int("line", s.Line).Str("reason", s.Reason).Msg("line skipped")
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return &models.ParseResult{Mode: models.ModeText, Entries: entries, Skipped: skipped}
}

func (e *Engine) parseTable(table *lexer.Table, s schema.Schema, fallbackDate string) *models.ParseResult {
	result := &models.ParseResult{Mode: models.ModeTabular, Entries: []models.Entry{}}

	for i := s.DataStart; i < len(table.Rows); i++ {
		row := table.Rows[i]
		raw := table.Join(row)

		entry, err := e.classifier.Classify(row, s.Columns, fallbackDate)
		if err != nil {
			reason := err.Error()
			var se *classify.SkipError
			if errors.As(err, &se) {
				reason = se.Reason
			}
			e.log.Debug().Int("row", i+1).Str("reason", reason).Msg("row skipped")
			result.Skipped = append(result.Skipped, models.SkipRecord{Line: i + 1, Text: raw, Reason: reason})
			continue
		}
		entry.Base().RawContent = raw
		result.Entries = append(result.Entries, entry)
	}
	return result
}
