// Package docx parses DOCX (Office Open XML) documents into the intermediate
// block model.
//
// The package reads the ZIP container directly with encoding/xml: headings
// are recognized through word/styles.xml style definitions, list items
// through word/numbering.xml, and explicit page breaks become PageBreak
// blocks. Embedded drawings and OLE objects are skipped with a warning
// rather than failing the read.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/docshift/docshift/model"
)

// ErrNotWordDocument reports that the archive lacks the required
// word/document.xml part.
var ErrNotWordDocument = errors.New("docx: missing word/document.xml")

// Reader provides access to DOCX document content.
type Reader struct {
	styles    *styleTable
	numbering *numberingTable
	props     *corePropertiesXML
	doc       *model.Document
}

// Open opens and parses a DOCX file.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("docx: opening ZIP archive: %w", err)
	}
	defer zr.Close()

	r, err := parse(&zr.Reader)
	if err != nil {
		return nil, err
	}
	r.doc.Metadata.SourcePath = filename
	return r, nil
}

// OpenReader parses a DOCX document from an io.ReaderAt.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("docx: opening ZIP archive: %w", err)
	}
	return parse(zr)
}

// Document returns the parsed intermediate document.
func (r *Reader) Document() *model.Document { return r.doc }

func parse(zr *zip.Reader) (*Reader, error) {
	r := &Reader{doc: model.NewDocument()}

	// Optional parts first; their absence is not an error.
	var styles stylesXML
	if err := unmarshalPart(zr, "word/styles.xml", &styles); err == nil {
		r.styles = newStyleTable(&styles)
	} else {
		r.styles = newStyleTable(nil)
	}

	var numbering numberingXML
	if err := unmarshalPart(zr, "word/numbering.xml", &numbering); err == nil {
		r.numbering = newNumberingTable(&numbering)
	} else {
		r.numbering = newNumberingTable(nil)
	}

	var props corePropertiesXML
	if err := unmarshalPart(zr, "docProps/core.xml", &props); err == nil {
		r.props = &props
		r.doc.Metadata.Title = props.Title
		r.doc.Metadata.Author = props.Creator
	}

	docFile := findPart(zr, "word/document.xml")
	if docFile == nil {
		return nil, ErrNotWordDocument
	}
	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("docx: opening document part: %w", err)
	}
	defer rc.Close()

	if err := r.parseBody(rc); err != nil {
		return nil, fmt.Errorf("docx: parsing document: %w", err)
	}
	return r, nil
}

// parseBody streams word/document.xml, decoding paragraphs and tables as
// they appear so body order is preserved.
func (r *Reader) parseBody(src io.Reader) error {
	dec := xml.NewDecoder(src)
	page := 1
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "p":
			var p paragraphXML
			if err := dec.DecodeElement(&p, &start); err != nil {
				return err
			}
			r.emitParagraph(&p, &page)
		case "tbl":
			var t tableXML
			if err := dec.DecodeElement(&t, &start); err != nil {
				return err
			}
			r.emitTable(&t)
		}
	}
}

// emitParagraph converts one parsed paragraph into a block.
func (r *Reader) emitParagraph(p *paragraphXML, page *int) {
	text, pageBreaks := r.runText(p)

	for i := 0; i < pageBreaks; i++ {
		*page++
		r.doc.Append(model.PageBreak{Page: *page})
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if lvl := r.paragraphHeadingLevel(p); lvl > 0 {
		if lvl > 6 {
			lvl = 6
		}
		r.doc.Append(model.Heading{Level: lvl, Text: text})
		return
	}

	if p.Properties.NumPr.NumID.Val != "" {
		ordered := r.numbering.ordered(p.Properties.NumPr.NumID.Val)
		r.doc.Append(model.ListItem{Text: text, Ordered: ordered})
		return
	}

	r.doc.Append(model.Paragraph{Text: text})
}

// paragraphHeadingLevel resolves a heading level from the paragraph style,
// falling back to the outline level property.
func (r *Reader) paragraphHeadingLevel(p *paragraphXML) int {
	if lvl := r.styles.level(p.Properties.Style.Val); lvl > 0 {
		return lvl
	}
	if v := p.Properties.OutlineLvl.Val; v != "" {
		// Outline levels are 0-based.
		var lvl int
		if _, err := fmt.Sscanf(v, "%d", &lvl); err == nil && lvl >= 0 && lvl < 9 {
			return lvl + 1
		}
	}
	return 0
}

// runText assembles the text of a paragraph's runs, counting page breaks and
// recording warnings for embedded content that is skipped.
func (r *Reader) runText(p *paragraphXML) (string, int) {
	var b strings.Builder
	pageBreaks := 0

	appendRun := func(run *runXML) {
		for range run.Tabs {
			b.WriteByte('\t')
		}
		for _, br := range run.Breaks {
			if br.Type == "page" {
				pageBreaks++
			} else {
				b.WriteByte('\n')
			}
		}
		for _, t := range run.Text {
			b.WriteString(t.Value)
		}
		if len(run.Drawing) > 0 {
			r.doc.Warn("unsupported-feature", "embedded drawing skipped")
		}
		if len(run.Objects) > 0 {
			r.doc.Warn("unsupported-feature", "embedded OLE object skipped")
		}
	}

	for i := range p.Runs {
		appendRun(&p.Runs[i])
	}
	for i := range p.Hyperlinks {
		for j := range p.Hyperlinks[i].Runs {
			appendRun(&p.Hyperlinks[i].Runs[j])
		}
	}
	return b.String(), pageBreaks
}

// emitTable converts a parsed table into a table block.
func (r *Reader) emitTable(t *tableXML) {
	var tbl model.Table
	for _, row := range t.Rows {
		var cells []string
		for _, cell := range row.Cells {
			var parts []string
			for i := range cell.Paragraphs {
				text, _ := r.runText(&cell.Paragraphs[i])
				if text = strings.TrimSpace(text); text != "" {
					parts = append(parts, text)
				}
			}
			cells = append(cells, strings.Join(parts, "\n"))
		}
		if len(cells) > 0 {
			tbl.Rows = append(tbl.Rows, cells)
		}
	}
	if len(tbl.Rows) > 0 {
		r.doc.Append(tbl)
	}
}

// findPart returns the named archive entry, or nil.
func findPart(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// unmarshalPart decodes the named archive entry into dst.
func unmarshalPart(zr *zip.Reader, name string, dst any) error {
	f := findPart(zr, name)
	if f == nil {
		return fmt.Errorf("docx: part %s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, dst)
}
