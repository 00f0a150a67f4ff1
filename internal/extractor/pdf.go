package extractor

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// PDFText returns the text of a PDF statement, pages joined by a blank line
// and table cells separated by tabs. The structured library is tried first,
// then the raw content-stream decoder, then the external pdftotext command
// (poppler-utils) if installed.
func PDFText(data []byte) (string, error) {
	pages, libErr := extractWithLibrary(bytes.NewReader(data), int64(len(data)))
	if libErr == nil && isReadableText(pages) {
		return strings.Join(pages, "\n\n"), nil
	}

	if rawPages := rawStreamText(data); isReadableText(rawPages) {
		return strings.Join(rawPages, "\n\n"), nil
	}

	popplerPages, popplerErr := extractWithPdftotext(data)
	if popplerErr == nil && isReadableText(popplerPages) {
		return strings.Join(popplerPages, "\n\n"), nil
	}

	if libErr != nil {
		return "", fmt.Errorf("pdf text extraction failed: %w", libErr)
	}
	return "", fmt.Errorf("no readable text in pdf: the file may be scanned or use custom font encodings")
}

// textQuality returns the share of characters that are plain ASCII letters,
// digits, whitespace, common punctuation or currency signs.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)) {
				readable++
				continue
			}
			switch r {
			case '£', '€', '₹', '¥':
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually every statement or bank alert.
var commonWords = []string{
	"bank", "account", "a/c", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "txn", "paid",
	"opening", "closing", "transfer", "upi", "inr", "rs.", "card",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, over 60% readable and at
// least one statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

// extractWithPdftotext pipes the document through pdftotext -layout.
func extractWithPdftotext(data []byte) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := exec.Command("pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	// pdftotext separates pages with form feeds.
	var pages []string
	for _, page := range strings.Split(string(out), "\f") {
		if page = layoutToTabs(page); page != "" {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}

// layoutGap is the padding pdftotext -layout puts between columns.
var layoutGap = regexp.MustCompile(`[ \t]{2,}|\t`)

// layoutToTabs turns the column padding of a -layout page into tabs.
func layoutToTabs(page string) string {
	lines := strings.Split(page, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, layoutGap.ReplaceAllString(line, "\t"))
		}
	}
	return strings.Join(out, "\n")
}

// extractWithLibrary tries the ledongthuc/pdf extraction paths in order of
// layout fidelity. The library panics on some malformed files.
func extractWithLibrary(ra io.ReaderAt, size int64) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	r, openErr := pdf.NewReader(ra, size)
	if openErr != nil {
		return nil, openErr
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	pages = extractByContent(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	if plain := extractByReaderPlainText(r); isReadableText([]string{plain}) {
		return []string{plain}, nil
	}
	return pages, nil
}

// extractByRow keeps the library's own row grouping; words are placed with
// joinRow so column gaps become tabs.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			items := make([]textItem, 0, len(row.Content))
			for _, word := range row.Content {
				items = append(items, textItem{x: word.X, w: word.W, s: word.S})
			}
			if line := joinRow(items); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// textItem is one run of text at horizontal position x. w is its width when
// the library reports one.
type textItem struct {
	x, w float64
	s    string
}

// Horizontal gaps, in points, that separate words and table columns.
const (
	wordGap   = 2.0
	columnGap = 15.0
)

// extractByContent groups text runs by Y coordinate and sorts each row by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, w: t.W, s: t.S})
		}

		// PDF Y grows bottom to top.
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			if line := joinRow(rowMap[y]); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// joinRow orders a row by x and joins it. A gap wider than columnGap
// becomes a tab so the lexer sees table cells; a smaller gap between runs
// that carry a width becomes a space.
func joinRow(items []textItem) string {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].x < items[b].x
	})

	var b strings.Builder
	var prev textItem
	for j, item := range items {
		if j > 0 {
			switch gap := item.x - (prev.x + prev.w); {
			case gap > columnGap:
				b.WriteByte('\t')
			case prev.w > 0 && gap > wordGap &&
				!strings.HasSuffix(prev.s, " ") && !strings.HasPrefix(item.s, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(item.s)
		prev = item
	}
	return strings.TrimSpace(b.String())
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
