package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

var (
	streamKeyword    = []byte("stream")
	endstreamKeyword = []byte("endstream")

	textObject = regexp.MustCompile(`(?s)\bBT\b(.*?)\bET\b`)

	// One text operator per match, in stream order:
	//   1 <hex> Tj   2,3 (literal) Tj or '   4 [array] TJ
	//   5,6 tx ty Td/TD   7 ty of a Tm matrix   T*
	textOperator = regexp.MustCompile(`<([0-9A-Fa-f\s]*)>\s*Tj` +
		`|\(((?:\\.|[^\\)])*)\)\s*(Tj|')` +
		`|\[((?:\\.|[^\]\\])*)\]\s*TJ` +
		`|(-?[\d.]+)\s+(-?[\d.]+)\s+T[dD]\b` +
		`|-?[\d.]+\s+(-?[\d.]+)\s+Tm\b` +
		`|\bT\*`)

	arrayElement = regexp.MustCompile(`<([0-9A-Fa-f\s]*)>|\(((?:\\.|[^\\)])*)\)|(-?[\d.]+)`)
)

// kerningSpace is the TJ adjustment, in thousandths of an em, that reads
// as a word break.
const kerningSpace = -250

// rawStreamText reads text straight out of the content streams of a PDF,
// decoding glyph codes through any ToUnicode maps the file carries. It is
// used when the pdf library cannot map the fonts. Page boundaries are not
// recovered, so the result is a single page.
func rawStreamText(data []byte) []string {
	streams := pdfStreams(data)
	if len(streams) == 0 {
		return nil
	}

	glyphs := newGlyphMap()
	for _, s := range streams {
		if program := string(s); isToUnicode(program) {
			glyphs.parse(program)
		}
	}

	var texts []string
	for _, s := range streams {
		if text := contentText(string(s), glyphs); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil
	}
	return []string{strings.Join(texts, "\n")}
}

// pdfStreams returns the body of every stream object, inflated when it is
// Flate encoded.
func pdfStreams(data []byte) [][]byte {
	var streams [][]byte
	for offset := 0; offset < len(data); {
		i := bytes.Index(data[offset:], streamKeyword)
		if i < 0 {
			break
		}
		start := offset + i + len(streamKeyword)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		end := bytes.Index(data[start:], endstreamKeyword)
		if end < 0 {
			break
		}
		if body := data[start : start+end]; len(body) > 0 {
			streams = append(streams, inflate(body))
		}
		offset = start + end + len(endstreamKeyword)
	}
	return streams
}

// inflate returns body decompressed, or body itself when it is not zlib data.
func inflate(body []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return out
}

// contentText lays out the text objects of one content stream. A move to a
// new baseline starts a new line; a move along the same baseline becomes a
// tab so table cells survive.
func contentText(content string, glyphs *glyphMap) string {
	if !strings.Contains(content, "Tj") && !strings.Contains(content, "TJ") {
		return ""
	}

	objects := textObject.FindAllStringSubmatch(content, -1)
	if len(objects) == 0 {
		objects = [][]string{{content, content}}
	}

	var (
		lines []string
		line  strings.Builder
		lastY = "none"
	)
	flush := func() {
		if text := strings.TrimSpace(line.String()); text != "" {
			lines = append(lines, text)
		}
		line.Reset()
	}
	cell := func() {
		if line.Len() > 0 {
			line.WriteByte('\t')
		}
	}

	for _, obj := range objects {
		for _, op := range textOperator.FindAllStringSubmatch(obj[1], -1) {
			switch {
			case op[1] != "" || strings.HasPrefix(op[0], "<"):
				line.WriteString(decodeHex(op[1], glyphs))
			case op[3] == "'":
				flush()
				line.WriteString(decodeLiteral(op[2], glyphs))
			case op[3] == "Tj":
				line.WriteString(decodeLiteral(op[2], glyphs))
			case op[4] != "" || strings.HasPrefix(op[0], "["):
				line.WriteString(decodeArray(op[4], glyphs))
			case op[5] != "":
				if ty, _ := strconv.ParseFloat(op[6], 64); ty != 0 {
					flush()
				} else if tx, _ := strconv.ParseFloat(op[5], 64); tx > 0 {
					cell()
				}
			case op[7] != "":
				if op[7] == lastY {
					cell()
				} else {
					flush()
				}
				lastY = op[7]
			default: // T*
				flush()
			}
		}
		flush()
	}
	return strings.Join(lines, "\n")
}

func decodeArray(array string, glyphs *glyphMap) string {
	var b strings.Builder
	for _, el := range arrayElement.FindAllStringSubmatch(array, -1) {
		switch {
		case strings.HasPrefix(el[0], "<"):
			b.WriteString(decodeHex(el[1], glyphs))
		case strings.HasPrefix(el[0], "("):
			b.WriteString(decodeLiteral(el[2], glyphs))
		default:
			if n, err := strconv.ParseFloat(el[3], 64); err == nil && n < kerningSpace {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func decodeHex(h string, glyphs *glyphMap) string {
	h = strings.Join(strings.Fields(h), "")
	if len(h)%2 != 0 {
		h += "0"
	}
	raw, err := hex.DecodeString(h)
	if err != nil || len(raw) == 0 {
		return ""
	}
	if !glyphs.empty() {
		if text := glyphs.decode(raw); text != "" {
			return text
		}
	}
	// Two-byte strings without a map are usually UTF-16BE.
	if len(raw)%2 == 0 && raw[0] == 0 {
		return printable(utf16Text(h, 0))
	}
	return singleByte(raw)
}

func decodeLiteral(s string, glyphs *glyphMap) string {
	raw := unescapeLiteral(s)
	if !glyphs.empty() {
		if text := glyphs.decode(raw); text != "" && mostlyPrintable(text) {
			return text
		}
	}
	return singleByte(raw)
}

// singleByte reads bytes in the WinAnsi encoding most simple fonts use.
func singleByte(raw []byte) string {
	text, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return printable(string(text))
}

// unescapeLiteral resolves the backslash escapes of a PDF literal string.
func unescapeLiteral(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\n':
			// line continuation
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(c - '0')
			for n := 1; n < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			out = append(out, byte(v))
		default:
			out = append(out, c)
		}
	}
	return out
}

func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' {
			return r
		}
		return -1
	}, s)
}

func mostlyPrintable(s string) bool {
	total, ok := 0, 0
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			ok++
		}
	}
	return total > 0 && ok*2 > total
}
