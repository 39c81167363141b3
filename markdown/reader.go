// Package markdown parses Markdown documents into the intermediate block
// model.
//
// Markdown is first rendered to HTML with goldmark, then the HTML is walked
// with the same element rules as the HTML reader. This keeps heading levels,
// list structure, and tables consistent between the two input formats.
package markdown

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/docshift/docshift/htmldoc"
	"github.com/docshift/docshift/model"
)

// converter renders CommonMark plus the GFM table and strikethrough
// extensions, matching the "extra" extensions the conversion sources use.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// Read parses the Markdown file at path into a document.
func Read(path string) (*model.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("markdown: reading file: %w", err)
	}

	doc, err := Parse(src)
	if err != nil {
		return nil, err
	}
	doc.Metadata.SourcePath = path
	return doc, nil
}

// Parse converts Markdown source into a document.
func Parse(src []byte) (*model.Document, error) {
	var buf bytes.Buffer
	if err := converter.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown: converting to HTML: %w", err)
	}

	r, err := htmldoc.OpenReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("markdown: parsing rendered HTML: %w", err)
	}

	doc := model.NewDocument()
	doc.Append(r.Blocks()...)
	return doc, nil
}
