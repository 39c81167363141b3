package pdfdoc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/docshift/docshift/model"
)

// writePDF builds a small real PDF on disk so Read exercises the actual
// parser rather than canned bytes.
func writePDF(t *testing.T, pages []string) string {
	t.Helper()
	gen := fpdf.New("P", "mm", "A4", "")
	gen.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		gen.AddPage()
		gen.MultiCell(0, 6, text, "", "L", false)
	}
	path := filepath.Join(t.TempDir(), "sample.pdf")
	if err := gen.OutputFileAndClose(path); err != nil {
		t.Fatalf("writing fixture PDF: %v", err)
	}
	return path
}

func TestReadSinglePage(t *testing.T) {
	path := writePDF(t, []string{"Hello from page one"})

	doc, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Metadata.SourceFormat != "pdf" {
		t.Errorf("SourceFormat = %q, want %q", doc.Metadata.SourceFormat, "pdf")
	}
	text := doc.PlainText()
	if !strings.Contains(text, "Hello from page one") {
		t.Errorf("PlainText() = %q, want it to contain the page text", text)
	}
	for _, b := range doc.Blocks {
		if b.Type() == model.BlockTypePageBreak {
			t.Error("single-page document should not contain a page break")
		}
	}
}

func TestReadPageBreaks(t *testing.T) {
	path := writePDF(t, []string{"first page", "second page", "third page"})

	doc, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var breaks []int
	for _, b := range doc.Blocks {
		if pb, ok := b.(model.PageBreak); ok {
			breaks = append(breaks, pb.Page)
		}
	}
	if len(breaks) != 2 {
		t.Fatalf("got %d page breaks, want 2", len(breaks))
	}
	if breaks[0] != 2 || breaks[1] != 3 {
		t.Errorf("page break numbers = %v, want [2 3]", breaks)
	}

	text := doc.PlainText()
	for _, want := range []string{"first page", "second page", "third page"} {
		if !strings.Contains(text, want) {
			t.Errorf("PlainText() missing %q", want)
		}
	}
}

func TestReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 but nothing else"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); !errors.Is(err, ErrMalformedPDF) {
		t.Errorf("Read malformed file: err = %v, want ErrMalformedPDF", err)
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("one\n\n  two  \n\n\n\nthree\n\n")
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, got[i], want[i])
		}
	}
}
