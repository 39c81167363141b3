package writer

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/docshift/docshift/model"
)

const (
	pdfBodySize    = 11.0
	pdfLineHeight  = 6.0
	pdfListIndent  = 6.0
	pdfHeadingLead = 2.0
)

// pdfHeadingSize maps a heading level to a point size, largest for
// level 1.
func pdfHeadingSize(level int) float64 {
	size := 22 - 2*level
	if size < 12 {
		size = 12
	}
	return float64(size)
}

// PDF writes the document as a PDF using the built-in Helvetica font.
// Headings render bold with a size stepping down by level, and page
// break blocks start a new page.
func PDF(doc *model.Document, path string) error {
	if err := checkEncoding(doc); err != nil {
		return err
	}

	gen := fpdf.New("P", "mm", "A4", "")
	gen.SetTitle(doc.Metadata.Title, true)
	gen.SetAuthor(doc.Metadata.Author, true)
	gen.AddPage()
	tr := gen.UnicodeTranslatorFromDescriptor("")

	listIndex := 0
	for _, b := range doc.Blocks {
		if _, ok := b.(model.ListItem); !ok {
			listIndex = 0
		}
		switch blk := b.(type) {
		case model.Heading:
			gen.SetFont("Helvetica", "B", pdfHeadingSize(blk.Level))
			gen.MultiCell(0, pdfLineHeight+pdfHeadingLead, tr(blk.Text), "", "L", false)
			gen.Ln(pdfHeadingLead)
		case model.ListItem:
			listIndex++
			marker := "- "
			if blk.Ordered {
				marker = fmt.Sprintf("%d. ", listIndex)
			}
			gen.SetFont("Helvetica", "", pdfBodySize)
			gen.SetX(gen.GetX() + pdfListIndent)
			// MultiCell returns the cursor to the left margin.
			gen.MultiCell(0, pdfLineHeight, tr(marker+blk.Text), "", "L", false)
		case model.Table:
			gen.SetFont("Helvetica", "", pdfBodySize)
			for _, row := range blk.Rows {
				gen.MultiCell(0, pdfLineHeight, tr(strings.Join(row, "   ")), "", "L", false)
			}
			gen.Ln(pdfLineHeight / 2)
		case model.PageBreak:
			gen.AddPage()
		default:
			gen.SetFont("Helvetica", "", pdfBodySize)
			gen.MultiCell(0, pdfLineHeight, tr(b.PlainText()), "", "L", false)
			gen.Ln(pdfLineHeight / 2)
		}
	}

	if err := gen.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
