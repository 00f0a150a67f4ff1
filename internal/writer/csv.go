package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/txn-ingest/internal/models"
)

// CSVHeader is the column layout shared by every entry type. Columns that do
// not apply to a type are left empty.
var CSVHeader = []string{
	"entryType", "date", "amount", "merchant", "category", "subCategory",
	"incomeType", "wealthType", "wealthCategory", "accountName", "rawContent",
}

// CSVWriter writes entries to CSV format.
type CSVWriter struct {
	IncludeHeader bool
	IncludeRaw    bool
}

// WriteToFile writes the entries to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, entries []models.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, entries)
}

// Write writes entries in CSV format to out.
func (w *CSVWriter) Write(out io.Writer, entries []models.Entry) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		if err := writer.Write(w.columns(CSVHeader)); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, e := range entries {
		if err := writer.Write(w.columns(Row(e))); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (w *CSVWriter) columns(row []string) []string {
	if w.IncludeRaw {
		return row
	}
	return row[:len(row)-1]
}

// Row flattens an entry into the CSVHeader layout.
func Row(e models.Entry) []string {
	row := make([]string, len(CSVHeader))
	row[0] = string(e.Type())
	row[1] = e.EntryDate()
	row[9] = e.Base().AccountName
	row[10] = e.Base().RawContent

	switch v := e.(type) {
	case *models.Expense:
		row[2] = formatAmount(v.Amount)
		row[3] = v.Merchant
		row[4] = string(v.Category)
		row[5] = v.SubCategory
	case *models.Income:
		row[2] = formatAmount(v.Amount)
		row[3] = v.Merchant
		row[4] = string(v.Category)
		row[5] = v.SubCategory
		row[6] = v.IncomeType
	case *models.Transfer:
		row[2] = formatAmount(v.Amount)
		row[3] = v.Merchant
		row[4] = string(v.Category)
		row[5] = v.SubCategory
	case *models.Account:
		row[2] = formatAmount(v.Value)
		row[3] = v.Name
		row[7] = string(v.WealthType)
		row[8] = v.WealthCategory
	}
	return row
}

func formatAmount(amount int64) string {
	return strconv.FormatInt(amount, 10)
}
