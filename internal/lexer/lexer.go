// Package lexer splits raw statement text into rows of cells.
package lexer

import "strings"

// Table is tokenized input: one global delimiter and the non-empty rows.
type Table struct {
	Delimiter rune
	Rows      [][]string
}

// DetectDelimiter picks the delimiter from the first non-empty line. Commas
// are the default; a semicolon wins when it outnumbers commas and a tab wins
// when it outnumbers both.
func DetectDelimiter(text string) rune {
	line := firstLine(text)

	commas := strings.Count(line, ",")
	semis := strings.Count(line, ";")
	tabs := strings.Count(line, "\t")

	switch {
	case tabs > commas && tabs > semis:
		return '\t'
	case semis > commas:
		return ';'
	default:
		return ','
	}
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

// Tokenize reads every row of text with the detected delimiter. Cells are
// trimmed and rows with no content are dropped. A quote at the start of a
// field opens quoted mode, where the delimiter and newlines are literal and
// "" is an escaped quote. The next lone quote closes it and anything after
// that is kept as-is up to the next delimiter. An unterminated quote runs to
// the end of the input. Tokenize never fails.
func Tokenize(text string) *Table {
	delim := DetectDelimiter(text)
	table := &Table{Delimiter: delim}

	var (
		record   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool
	)
	endField := func() {
		record = append(record, field.String())
		field.Reset()
		quoted = false
	}
	endRow := func() {
		endField()
		if row := clean(record); row != nil {
			table.Rows = append(table.Rows, row)
		}
		record = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteRune(c)
			continue
		}

		switch {
		case c == delim:
			endField()
		case c == '\n':
			endRow()
		case c == '\r' && i+1 < len(runes) && runes[i+1] == '\n':
			// the \n ends the row
		case c == '"' && !quoted && strings.TrimSpace(field.String()) == "":
			field.Reset()
			inQuotes = true
			quoted = true
		default:
			field.WriteRune(c)
		}
	}
	if len(record) > 0 || field.Len() > 0 {
		endRow()
	}
	return table
}

// clean trims every cell and returns nil when nothing is left.
func clean(record []string) []string {
	row := make([]string, len(record))
	empty := true
	for i, cell := range record {
		row[i] = strings.TrimSpace(cell)
		if row[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil
	}
	return row
}

// Join renders a row back into a single line with the table's delimiter.
func (t *Table) Join(row []string) string {
	return strings.Join(row, string(t.Delimiter))
}
