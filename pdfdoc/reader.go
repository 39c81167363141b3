// Package pdfdoc extracts the embedded text layer of PDF files.
//
// Only text that is actually present in the content streams is read.
// Scanned, image-only PDFs come back empty and are expected to go
// through OCR instead.
package pdfdoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docshift/docshift/model"
)

// ErrMalformedPDF is returned when the file cannot be parsed as a PDF.
var ErrMalformedPDF = errors.New("pdfdoc: malformed PDF")

// Read extracts the text layer of the PDF at path. Each page becomes a
// run of paragraph blocks, and pages after the first are preceded by a
// page break block carrying the page number.
func Read(path string) (doc *model.Document, err error) {
	// The underlying parser panics on some malformed files rather
	// than returning an error, so the whole read is fenced.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrMalformedPDF, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPDF, err)
	}
	defer f.Close()

	doc = model.NewDocument()
	doc.Metadata.SourceFormat = "pdf"
	doc.Metadata.SourcePath = path

	fonts := make(map[string]*pdf.Font)
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		text, pageErr := readPage(r, i, fonts)
		if pageErr != nil {
			doc.Warn("unsupported-feature", fmt.Sprintf("page %d: %v", i, pageErr))
			continue
		}
		if i > 1 {
			doc.Append(model.PageBreak{Page: i})
		}
		for _, para := range splitParagraphs(text) {
			doc.Append(model.Paragraph{Text: para})
		}
	}
	return doc, nil
}

// readPage extracts one page with its own panic fence, so a single bad
// content stream does not take down the whole document.
func readPage(r *pdf.Reader, n int, fonts map[string]*pdf.Font) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("recovered: %v", rec)
		}
	}()

	p := r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; !ok {
			f := p.Font(name)
			fonts[name] = &f
		}
	}
	return p.GetPlainText(fonts)
}

func splitParagraphs(text string) []string {
	var out []string
	for _, chunk := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
