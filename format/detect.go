// Package format provides file format identification for the conversion
// pipeline.
package format

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ID is the canonical identifier for a supported document format.
type ID int

const (
	// Unknown indicates an unrecognized format.
	Unknown ID = iota
	// Text indicates a plain-text document.
	Text
	// Markdown indicates a Markdown document.
	Markdown
	// HTML indicates an HTML document.
	HTML
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// PDF indicates a PDF document.
	PDF
	// RTF indicates a Rich Text Format document.
	RTF
	// EPUB indicates an EPUB eBook.
	EPUB
	// Image indicates a raster image to be run through OCR.
	Image
)

// String returns the canonical lowercase name of the format.
func (id ID) String() string {
	switch id {
	case Text:
		return "text"
	case Markdown:
		return "markdown"
	case HTML:
		return "html"
	case DOCX:
		return "docx"
	case PDF:
		return "pdf"
	case RTF:
		return "rtf"
	case EPUB:
		return "epub"
	case Image:
		return "image"
	default:
		return "unknown"
	}
}

// Extension returns the typical file extension for the format.
func (id ID) Extension() string {
	switch id {
	case Text:
		return ".txt"
	case Markdown:
		return ".md"
	case HTML:
		return ".html"
	case DOCX:
		return ".docx"
	case PDF:
		return ".pdf"
	case RTF:
		return ".rtf"
	case EPUB:
		return ".epub"
	default:
		return ""
	}
}

// Parse resolves a format name as used in configuration and CLI flags.
// It accepts canonical names and common aliases ("md", "txt", "htm").
func Parse(name string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "txt", "plain":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "docx":
		return DOCX, nil
	case "pdf":
		return PDF, nil
	case "rtf":
		return RTF, nil
	case "epub":
		return EPUB, nil
	case "image":
		return Image, nil
	default:
		return Unknown, fmt.Errorf("format: unknown format name %q", name)
	}
}

// extensions maps lowercase file extensions to format identifiers.
var extensions = map[string]ID{
	".txt":      Text,
	".md":       Markdown,
	".markdown": Markdown,
	".htm":      HTML,
	".html":     HTML,
	".docx":     DOCX,
	".pdf":      PDF,
	".rtf":      RTF,
	".epub":     EPUB,
	".png":      Image,
	".jpg":      Image,
	".jpeg":     Image,
	".tiff":     Image,
	".tif":      Image,
	".bmp":      Image,
	".gif":      Image,
	".webp":     Image,
}

// previewLen bounds the content preview included in UnsupportedError.
const previewLen = 32

// sniffLen is how many leading bytes content detection inspects.
const sniffLen = 512

// UnsupportedError reports that a file could not be matched to any supported
// format by extension or by content.
type UnsupportedError struct {
	Path      string
	Extension string
	Preview   []byte
}

func (e *UnsupportedError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("format: unsupported format for %s: extension %s, content starts %q",
		e.Path, ext, e.Preview)
}

// DetectExtension determines file format from the filename extension alone.
// Matching is case-insensitive. It returns Unknown when the extension is
// absent or unrecognized.
func DetectExtension(filename string) ID {
	if id, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return id
	}
	return Unknown
}

// Detect determines the format of the file at path. The file extension is the
// primary signal; when it is absent or unrecognized the first bytes of the
// file are matched against known magic markers. Detect is a pure function of
// the file's name and content.
func Detect(path string) (ID, error) {
	if id := DetectExtension(path); id != Unknown {
		return id, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Unknown, fmt.Errorf("format: opening %s: %w", path, err)
	}
	defer f.Close()

	magic := make([]byte, sniffLen)
	n, err := f.Read(magic)
	if err != nil && err != io.EOF {
		return Unknown, fmt.Errorf("format: reading %s: %w", path, err)
	}
	magic = magic[:n]

	if id := DetectMagic(magic); id != Unknown {
		if id == DOCX {
			// ZIP container: inspect the archive to tell OOXML from EPUB.
			return detectZIP(path)
		}
		return id, nil
	}

	preview := magic
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	return Unknown, &UnsupportedError{
		Path:      path,
		Extension: filepath.Ext(path),
		Preview:   append([]byte(nil), preview...),
	}
}

// DetectMagic checks leading file bytes against known magic markers. ZIP
// archives are reported as DOCX; callers that need to distinguish ZIP-based
// formats should inspect the archive contents. Returns Unknown if no marker
// matches.
func DetectMagic(data []byte) ID {
	if len(data) < 4 {
		return Unknown
	}

	// PDF magic: %PDF-
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return PDF
	}

	// ZIP magic: PK\x03\x04 (DOCX and EPUB are ZIP archives)
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return DOCX
	}

	// RTF magic: {\rtf
	if bytes.HasPrefix(data, []byte(`{\rtf`)) {
		return RTF
	}

	if id := detectImageMagic(data); id != Unknown {
		return id
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

// detectImageMagic matches common raster image signatures.
func detectImageMagic(data []byte) ID {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return Image
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return Image // JPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return Image
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return Image // TIFF
	case bytes.HasPrefix(data, []byte("BM")):
		return Image // BMP
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return Image
	default:
		return Unknown
	}
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if start >= len(data) {
		return false
	}
	data = data[start:]

	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML.
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

// detectZIP inspects a ZIP archive to determine whether it is a DOCX package
// or an EPUB container.
func detectZIP(path string) (ID, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Unknown, fmt.Errorf("format: opening ZIP archive %s: %w", path, err)
	}
	defer zr.Close()

	// EPUB carries a mimetype entry declaring the container type.
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data := make([]byte, 256)
		n, _ := rc.Read(data)
		rc.Close()
		if strings.Contains(string(data[:n]), "application/epub+zip") {
			return EPUB, nil
		}
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX, nil
		}
	}

	return Unknown, &UnsupportedError{
		Path:      path,
		Extension: filepath.Ext(path),
		Preview:   []byte("PK\x03\x04"),
	}
}
