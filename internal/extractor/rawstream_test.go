package extractor

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"
	"time"

	"github.com/insightdelivered/txn-ingest/internal/ingest"
	"github.com/insightdelivered/txn-ingest/internal/models"
)

// buildPDF wraps each stream body in a bare object. There is no xref table,
// so the pdf library rejects the file and only the raw decoder can read it.
func buildPDF(streams ...[]byte) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	for i, s := range streams {
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n", i+1, len(s))
		b.Write(s)
		b.WriteString("\nendstream\nendobj\n")
	}
	b.WriteString("%%EOF\n")
	return b.Bytes()
}

func deflate(t *testing.T, s string) []byte {
	t.Helper()
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}

const tableContent = `BT
/F1 10 Tf
1 0 0 1 40 700 Tm
(Date) Tj
1 0 0 1 120 700 Tm
(Description) Tj
1 0 0 1 300 700 Tm
(Amount) Tj
1 0 0 1 40 686 Tm
(05/01/2025) Tj
1 0 0 1 120 686 Tm
[(Swiggy) -300 (Order)] TJ
1 0 0 1 300 686 Tm
(450.00) Tj
ET`

func TestRawStreamTextLiteralTable(t *testing.T) {
	got := rawStreamText(buildPDF([]byte(tableContent)))
	want := "Date\tDescription\tAmount\n05/01/2025\tSwiggy Order\t450.00"
	if len(got) != 1 || got[0] != want {
		t.Errorf("rawStreamText() = %q, want [%q]", got, want)
	}
}

func TestRawStreamTextToUnicode(t *testing.T) {
	cmap := `/CIDInit /ProcSet findresource begin
begincmap
2 beginbfchar
<0001> <0053>
<0002> <0077>
endbfchar
1 beginbfrange
<0010> <0019> <0030>
endbfrange
endcmap`
	content := "BT\n1 0 0 1 40 700 Tm\n<00010002> Tj\n0 -14 Td\n<0011 0012> Tj\nET"

	got := rawStreamText(buildPDF([]byte(cmap), deflate(t, content)))
	want := "Sw\n12"
	if len(got) != 1 || got[0] != want {
		t.Errorf("rawStreamText() = %q, want [%q]", got, want)
	}
}

func TestGlyphMapRangeArray(t *testing.T) {
	g := newGlyphMap()
	g.parse("beginbfrange\n<03> <05> [<0041> <0042> <D83DDE00>]\nendbfrange")

	tests := []struct {
		raw  []byte
		want string
	}{
		{[]byte{0x03, 0x04}, "AB"},
		{[]byte{0x05}, "\U0001F600"},
		{[]byte{'x'}, "x"},
		{[]byte{0x01}, ""},
	}
	for _, tt := range tests {
		if got := g.decode(tt.raw); got != tt.want {
			t.Errorf("decode(%x) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestUnescapeLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Rs\. 1\,200`, "Rs. 1,200"},
		{`a\(b\)c`, "a(b)c"},
		{`\243 5`, "\xa3 5"},
		{`tab\there`, "tab\there"},
		{`back\\slash`, `back\slash`},
	}
	for _, tt := range tests {
		if got := string(unescapeLiteral(tt.in)); got != tt.want {
			t.Errorf("unescapeLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPDFTextFeedsEngine(t *testing.T) {
	text, err := PDFText(buildPDF([]byte(tableContent)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := ingest.New().Parse(text, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	if res.Mode != models.ModeTabular || len(res.Entries) != 1 {
		t.Fatalf("got mode=%s entries=%d skipped=%+v", res.Mode, len(res.Entries), res.Skipped)
	}
	exp, ok := res.Entries[0].(*models.Expense)
	if !ok {
		t.Fatalf("got %T, want *models.Expense", res.Entries[0])
	}
	if exp.Amount != 450 || exp.Merchant != "Swiggy Order" || exp.SubCategory != "Dining" || exp.Date != "2025-01-05" {
		t.Errorf("got %+v", *exp)
	}
}

func TestLayoutTextFeedsEngine(t *testing.T) {
	page := "Date          Description                    Amount\n" +
		"05 Jan 2025   TESCO STORES 3021              12.50\n" +
		"06 Jan 2025   SALARY CREDITED ACME LTD       2,000.00\n"

	res := ingest.New().Parse(layoutToTabs(page), time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	if res.Mode != models.ModeTabular || len(res.Entries) != 2 {
		t.Fatalf("got mode=%s entries=%d skipped=%+v", res.Mode, len(res.Entries), res.Skipped)
	}
	exp, ok := res.Entries[0].(*models.Expense)
	if !ok || exp.Amount != 13 || exp.Merchant != "TESCO STORES 3021" || exp.SubCategory != "Groceries" {
		t.Errorf("first entry: got %#v", res.Entries[0])
	}
	inc, ok := res.Entries[1].(*models.Income)
	if !ok || inc.Amount != 2000 || inc.IncomeType != "Salary" || inc.Date != "2025-01-06" {
		t.Errorf("second entry: got %#v", res.Entries[1])
	}
}
