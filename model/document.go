package model

import "strings"

// Metadata carries document-level information recorded by the reader that
// produced the Document.
type Metadata struct {
	// SourceFormat is the canonical name of the input format ("markdown",
	// "pdf", "image", ...).
	SourceFormat string
	// SourcePath is the path the document was read from.
	SourcePath string
	// Title, if the source format carries one (HTML <title>, EPUB OPF, DOCX
	// core properties).
	Title string
	// Author, if the source format carries one.
	Author string
	// Language is the OCR language hint used, for documents produced by OCR.
	Language string
	// OCREngine names the OCR engine that recognized the text, if any.
	OCREngine string
	// OCRConfidence is the engine-reported confidence (0-100), if any.
	OCRConfidence float64
}

// Warning records a non-fatal problem encountered while reading a document.
// Warnings indicate content that was skipped or degraded rather than causing
// the whole read to fail.
type Warning struct {
	// Code is a short stable identifier, e.g. "unsupported-feature".
	Code string
	// Message is a human-readable description.
	Message string
}

func (w Warning) String() string {
	if w.Code == "" {
		return w.Message
	}
	return w.Code + ": " + w.Message
}

// Document is an ordered sequence of content blocks representing one parsed
// source file, independent of its original format. A Document belongs to the
// conversion that created it and is never shared across conversions.
type Document struct {
	Metadata Metadata
	Blocks   []Block
	Warnings []Warning
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Append adds blocks to the end of the document, preserving order.
func (d *Document) Append(blocks ...Block) {
	d.Blocks = append(d.Blocks, blocks...)
}

// Warn records a non-fatal warning on the document.
func (d *Document) Warn(code, message string) {
	d.Warnings = append(d.Warnings, Warning{Code: code, Message: message})
}

// BlockCount returns the number of content blocks.
func (d *Document) BlockCount() int { return len(d.Blocks) }

// IsEmpty reports whether the document contains no blocks.
func (d *Document) IsEmpty() bool { return len(d.Blocks) == 0 }

// PlainText returns all block text joined by single newlines, with page
// breaks contributing nothing.
func (d *Document) PlainText() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Type() == BlockTypePageBreak {
			continue
		}
		parts = append(parts, b.PlainText())
	}
	return strings.Join(parts, "\n")
}

// Headings returns all heading blocks in document order.
func (d *Document) Headings() []Heading {
	var hs []Heading
	for _, b := range d.Blocks {
		if h, ok := b.(Heading); ok {
			hs = append(hs, h)
		}
	}
	return hs
}

// FormatWarnings renders warnings as a single semicolon-separated string for
// logging.
func FormatWarnings(ws []Warning) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
