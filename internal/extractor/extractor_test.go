package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("Date,Amount\n2025-01-05,10"), "Date,Amount\n2025-01-05,10"},
		{"bom", append([]byte{0xEF, 0xBB, 0xBF}, "Date,Amount"...), "Date,Amount"},
		{"crlf", []byte("a\r\nb\rc"), "a\nb\nc"},
		{"latin1", []byte("Caf\xe9 Paris,\xa35"), "Café Paris,£5"},
		{"rupee", []byte("Rs.500 or ₹500"), "Rs.500 or ₹500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode("statement.csv", tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"statement.pdf", "", true},
		{"STATEMENT.PDF", "", true},
		{"upload", "%PDF-1.7\n...", true},
		{"statement.csv", "Date,Amount", false},
		{"sms.txt", "PDF attached", false},
	}
	for _, tt := range tests {
		if got := IsPDF(tt.name, []byte(tt.data)); got != tt.want {
			t.Errorf("IsPDF(%q, %q) = %v, want %v", tt.name, tt.data, got, tt.want)
		}
	}
}

func TestPDFTextRejectsGarbage(t *testing.T) {
	if _, err := Decode("broken.pdf", []byte("%PDF-1.4 not really a pdf")); err == nil {
		t.Error("expected error for a malformed pdf")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sms.txt")
	if err := os.WriteFile(path, []byte("Rs.500 debited from A/c XX1234 at Swiggy on 05-01-2025"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "Rs.500 debited") {
		t.Errorf("ReadFile() = %q", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsReadableText(t *testing.T) {
	statement := "Statement of account\n05/01/2025 Swiggy order 1,250.60 debit\nClosing balance 9,000.00"
	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{"statement", []string{statement}, true},
		{"too short", []string{"bank 10.00"}, false},
		{"no statement words", []string{strings.Repeat("lorem ipsum dolor sit amet ", 5)}, false},
		{"binary garbage", []string{strings.Repeat("\x01\x02ÿþ", 40) + " bank"}, false},
	}
	for _, tt := range tests {
		if got := isReadableText(tt.pages); got != tt.want {
			t.Errorf("%s: isReadableText() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestJoinRow(t *testing.T) {
	items := []textItem{
		{x: 120, s: "1,250.60"},
		{x: 10, s: "05/01/2025"},
		{x: 60, s: "Swiggy"},
		{x: 66, s: " order"},
	}
	want := "05/01/2025\tSwiggy order\t1,250.60"
	if got := joinRow(items); got != want {
		t.Errorf("joinRow() = %q, want %q", got, want)
	}
}

func TestJoinRowWithWidths(t *testing.T) {
	items := []textItem{
		{x: 10, w: 48, s: "05/01/2025"},
		{x: 80, w: 30, s: "TESCO"},
		{x: 113, w: 34, s: "STORES"},
		{x: 260, w: 25, s: "12.50"},
	}
	want := "05/01/2025\tTESCO STORES\t12.50"
	if got := joinRow(items); got != want {
		t.Errorf("joinRow() = %q, want %q", got, want)
	}
}

func TestLayoutToTabs(t *testing.T) {
	page := "   Date          Description                 Paid out     Paid in\n" +
		"\n" +
		"   05 Jan 2025   TESCO STORES 3021           12.50\n" +
		"   06 Jan 2025   ACME LTD SALARY                          2,000.00   \n"
	want := "Date\tDescription\tPaid out\tPaid in\n" +
		"05 Jan 2025\tTESCO STORES 3021\t12.50\n" +
		"06 Jan 2025\tACME LTD SALARY\t2,000.00"
	if got := layoutToTabs(page); got != want {
		t.Errorf("layoutToTabs() =\n%q\nwant\n%q", got, want)
	}
}
