package extractor

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// glyphMap holds the ToUnicode mappings of a document: font character
// codes, upper-case hex, to the text they stand for. Type0 fonts on bank
// statements often carry nothing else the pdf library can use.
type glyphMap struct {
	codes map[string]string
	width int // bytes per code, taken from the first mapping
}

func newGlyphMap() *glyphMap {
	return &glyphMap{codes: make(map[string]string)}
}

var (
	bfcharBlock  = regexp.MustCompile(`(?s)beginbfchar(.*?)endbfchar`)
	bfrangeBlock = regexp.MustCompile(`(?s)beginbfrange(.*?)endbfrange`)
	hexToken     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)

	// <lo> <hi> <dst> or <lo> <hi> [<dst1> <dst2> ...]
	rangeEntry = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*(?:<([0-9A-Fa-f]+)>|\[([^\]]*)\])`)
)

// maxRangeSpan bounds one bfrange entry.
const maxRangeSpan = 0xFFFF

func isToUnicode(program string) bool {
	return strings.Contains(program, "beginbfchar") || strings.Contains(program, "beginbfrange")
}

// parse adds the bfchar and bfrange mappings of a CMap program.
func (g *glyphMap) parse(program string) {
	for _, block := range bfcharBlock.FindAllStringSubmatch(program, -1) {
		tokens := hexToken.FindAllStringSubmatch(block[1], -1)
		for i := 0; i+1 < len(tokens); i += 2 {
			g.add(tokens[i][1], utf16Text(tokens[i+1][1], 0))
		}
	}

	for _, block := range bfrangeBlock.FindAllStringSubmatch(program, -1) {
		for _, m := range rangeEntry.FindAllStringSubmatch(block[1], -1) {
			lo, errLo := strconv.ParseUint(m[1], 16, 32)
			hi, errHi := strconv.ParseUint(m[2], 16, 32)
			if errLo != nil || errHi != nil || hi < lo || hi-lo > maxRangeSpan {
				continue
			}
			digits := len(m[1])

			if m[3] != "" {
				for code := lo; code <= hi; code++ {
					g.add(codeKey(code, digits), utf16Text(m[3], uint16(code-lo)))
				}
				continue
			}
			for i, dst := range hexToken.FindAllStringSubmatch(m[4], -1) {
				if code := lo + uint64(i); code <= hi {
					g.add(codeKey(code, digits), utf16Text(dst[1], 0))
				}
			}
		}
	}
}

func (g *glyphMap) add(code, text string) {
	if text == "" {
		return
	}
	code = strings.ToUpper(code)
	if g.width == 0 {
		g.width = max(len(code)/2, 1)
	}
	g.codes[code] = text
}

func (g *glyphMap) empty() bool {
	return len(g.codes) == 0
}

// decode maps raw string bytes through the table. Codes of the table's
// width are tried first, then single bytes; unmapped bytes are dropped
// except printable ASCII in a one-byte table.
func (g *glyphMap) decode(raw []byte) string {
	var b strings.Builder
	for i := 0; i < len(raw); {
		n := min(g.width, len(raw)-i)
		if text, ok := g.codes[byteKey(raw[i:i+n])]; ok {
			b.WriteString(text)
			i += n
			continue
		}
		if text, ok := g.codes[byteKey(raw[i:i+1])]; ok {
			b.WriteString(text)
			i++
			continue
		}
		if g.width == 1 && raw[i] >= 0x20 && raw[i] < 0x7F {
			b.WriteByte(raw[i])
		}
		i += n
	}
	return b.String()
}

func byteKey(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

func codeKey(code uint64, digits int) string {
	key := strings.ToUpper(strconv.FormatUint(code, 16))
	if len(key) < digits {
		key = strings.Repeat("0", digits-len(key)) + key
	}
	return key
}

// utf16Text reads a hex string as UTF-16BE, adding offset to its last code
// unit as bfrange destinations require.
func utf16Text(h string, offset uint16) string {
	if len(h)%2 != 0 {
		h = "0" + h
	}
	raw, err := hex.DecodeString(h)
	if err != nil || len(raw) == 0 {
		return ""
	}
	if len(raw) == 1 {
		return string(rune(raw[0]) + rune(offset))
	}

	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
	}
	units[len(units)-1] += offset
	return string(utf16.Decode(units))
}
