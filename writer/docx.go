package writer

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/docshift/docshift/model"
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
</Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`

// docxStyles defines the six heading styles referenced by heading
// paragraphs.
var docxStyles = func() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&sb, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/></w:style>`, i, i)
	}
	sb.WriteString(`</w:styles>`)
	return sb.String()
}()

// docxNumbering defines numbering 1 (bullet) and 2 (decimal) for list
// item paragraphs.
const docxNumbering = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:abstractNum w:abstractNumId="1"><w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="&#8226;"/></w:lvl></w:abstractNum>
<w:abstractNum w:abstractNumId="2"><w:lvl w:ilvl="0"><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/></w:lvl></w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="1"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="2"/></w:num>
</w:numbering>`

// DOCX writes the document as a minimal Office Open XML word
// processing package: heading paragraphs reference HeadingN styles,
// list items the bullet or decimal numbering, tables become w:tbl
// elements and page breaks explicit w:br elements.
func DOCX(doc *model.Document, path string) error {
	if err := checkEncoding(doc); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/numbering.xml", docxNumbering},
		{"word/document.xml", docxDocument(doc)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("creating part %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return fmt.Errorf("writing part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

func docxDocument(doc *model.Document) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, b := range doc.Blocks {
		switch blk := b.(type) {
		case model.Heading:
			level := blk.Level
			if level > 6 {
				level = 6
			}
			fmt.Fprintf(&sb, `<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr>%s</w:p>`, level, docxRun(blk.Text))
		case model.ListItem:
			numID := 1
			if blk.Ordered {
				numID = 2
			}
			fmt.Fprintf(&sb, `<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="%d"/></w:numPr></w:pPr>%s</w:p>`, numID, docxRun(blk.Text))
		case model.Table:
			sb.WriteString(`<w:tbl>`)
			for _, row := range blk.Rows {
				sb.WriteString(`<w:tr>`)
				for _, cell := range row {
					fmt.Fprintf(&sb, `<w:tc><w:p>%s</w:p></w:tc>`, docxRun(cell))
				}
				sb.WriteString(`</w:tr>`)
			}
			sb.WriteString(`</w:tbl>`)
		case model.PageBreak:
			sb.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		default:
			fmt.Fprintf(&sb, `<w:p>%s</w:p>`, docxRun(b.PlainText()))
		}
	}

	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func docxRun(text string) string {
	return `<w:r><w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r>`
}

func escapeXML(text string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(text))
	return sb.String()
}
