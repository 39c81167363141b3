// Package textdoc parses plain-text files into the intermediate block model.
//
// Files are decoded as UTF-8 when valid, otherwise through a fallback chain
// of common legacy encodings (Windows-1252, then ISO 8859-1). Paragraphs are
// split on blank lines.
package textdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/docshift/docshift/model"
)

// ErrBinaryContent reports that the file does not look like text in any
// supported encoding.
var ErrBinaryContent = errors.New("textdoc: content is not text")

// Read parses the text file at path into a document.
func Read(path string) (*model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("textdoc: reading file: %w", err)
	}

	text, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("textdoc: %s: %w", path, err)
	}

	doc := model.NewDocument()
	doc.Metadata.SourcePath = path
	for _, para := range splitParagraphs(text) {
		doc.Append(model.Paragraph{Text: para})
	}
	return doc, nil
}

// Decode converts raw file bytes to a string, trying UTF-8 first and then
// the legacy encoding fallbacks. It fails with ErrBinaryContent when the
// bytes do not plausibly represent text.
func Decode(raw []byte) (string, error) {
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", ErrBinaryContent
	}

	if utf8.Valid(raw) {
		s := string(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")))
		if !plausibleText(s) {
			return "", ErrBinaryContent
		}
		return s, nil
	}

	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, err := cm.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		s := string(decoded)
		if plausibleText(s) {
			return s, nil
		}
	}

	return "", ErrBinaryContent
}

// plausibleText reports whether s is mostly printable characters. Control
// characters other than tab, newline, and carriage return count against it.
func plausibleText(s string) bool {
	if s == "" {
		return true
	}
	control := 0
	total := 0
	for _, r := range s {
		total++
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if r < 0x20 || r == utf8.RuneError {
			control++
		}
	}
	return control*10 < total
}

// splitParagraphs splits text on blank lines, normalizing line endings and
// dropping empty paragraphs.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paras []string
	for _, chunk := range strings.Split(text, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			paras = append(paras, chunk)
		}
	}
	return paras
}
