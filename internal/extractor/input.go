// Package extractor turns statement files into the plain text the ingest
// engine reads.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	pdfMagic = []byte("%PDF-")
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// ReadFile reads a statement from disk. "-" reads standard input.
func ReadFile(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(path, data)
}

// Decode returns the text of an uploaded or read statement. PDFs are
// recognised by extension or magic bytes. Other input is treated as text: a
// UTF-8 byte order mark is dropped and bytes that are not valid UTF-8 are
// read as ISO-8859-1, which older bank exports still use.
func Decode(name string, data []byte) (string, error) {
	if IsPDF(name, data) {
		return PDFText(data)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return normalizeNewlines(string(data)), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return normalizeNewlines(string(decoded)), nil
}

// IsPDF reports whether the input is a PDF document.
func IsPDF(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, pdfMagic)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
