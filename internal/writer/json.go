package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/txn-ingest/internal/models"
)

// JSONWriter writes a parse result as an indented JSON document.
type JSONWriter struct {
	// EntriesOnly drops mode, skipped rows and totals and writes the bare
	// entry array, the same shape the remote classifier returns.
	EntriesOnly bool
}

type jsonDocument struct {
	Source  string              `json:"source,omitempty"`
	Mode    models.Mode         `json:"mode"`
	Count   int                 `json:"count"`
	Totals  models.Totals       `json:"totals"`
	Entries []models.Entry      `json:"entries"`
	Skipped []models.SkipRecord `json:"skipped,omitempty"`
}

// Write encodes result to out. source names the input it came from.
func (w *JSONWriter) Write(out io.Writer, source string, result *models.ParseResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	entries := result.Entries
	if entries == nil {
		entries = []models.Entry{}
	}

	var v any = jsonDocument{
		Source:  source,
		Mode:    result.Mode,
		Count:   len(entries),
		Totals:  result.Totals(),
		Entries: entries,
		Skipped: result.Skipped,
	}
	if w.EntriesOnly {
		v = entries
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
