// Package epubdoc reads EPUB 2 and EPUB 3 books.
//
// The reader resolves META-INF/container.xml to the package document,
// walks the spine in reading order, and parses each chapter's XHTML
// through the htmldoc package. DRM-protected books are rejected.
package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/docshift/docshift/htmldoc"
	"github.com/docshift/docshift/model"
)

var (
	ErrInvalidArchive = errors.New("epubdoc: invalid or corrupted archive")
	ErrMissingContent = errors.New("epubdoc: referenced content file not found")
	ErrDRMProtected   = errors.New("epubdoc: DRM-protected content cannot be processed")
)

// chapter is one spine item with its raw XHTML.
type chapter struct {
	id      string
	href    string
	content []byte
}

// Reader provides access to the content of one EPUB file.
type Reader struct {
	closer   io.Closer
	pkg      *pkgDocument
	baseDir  string
	chapters []chapter
}

// Open opens the EPUB at path.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	r := &Reader{closer: zr}
	if err := r.init(&zr.Reader); err != nil {
		zr.Close()
		return nil, err
	}
	return r, nil
}

// OpenReader opens an EPUB from an io.ReaderAt.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	r := &Reader{}
	if err := r.init(zr); err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the underlying archive.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *Reader) init(zr *zip.Reader) error {
	// The mimetype entry is recommended but not required; books
	// without one are still accepted.
	if err := checkForDRM(zr); err != nil {
		return err
	}

	opfPath, err := parseContainer(zr)
	if err != nil {
		return err
	}

	pkg, baseDir, err := parseOPF(zr, opfPath)
	if err != nil {
		return err
	}
	r.pkg = pkg
	r.baseDir = baseDir

	return r.loadChapters(zr)
}

// loadChapters reads every linear spine item, skipping navigation
// documents and missing files.
func (r *Reader) loadChapters(zr *zip.Reader) error {
	for _, ref := range r.pkg.spine {
		item, ok := r.pkg.manifest[ref.idRef]
		if !ok || !ref.linear {
			continue
		}
		if item.isNav() {
			continue
		}

		href := r.resolveHref(item.href)
		content, err := readArchiveFile(zr, href)
		if err != nil {
			continue
		}
		r.chapters = append(r.chapters, chapter{id: item.id, href: href, content: content})
	}

	if len(r.chapters) == 0 {
		return ErrEmptySpine
	}
	return nil
}

func (r *Reader) resolveHref(href string) string {
	if decoded, err := url.QueryUnescape(href); err == nil {
		href = decoded
	}
	if r.baseDir == "" {
		return href
	}
	return path.Join(r.baseDir, href)
}

func readArchiveFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, ErrMissingContent
}

// ChapterCount reports the number of readable spine items.
func (r *Reader) ChapterCount() int {
	return len(r.chapters)
}

// Title returns the book title from the package metadata.
func (r *Reader) Title() string {
	return r.pkg.meta.title
}

// Document converts the whole book. The book title becomes a top-level
// heading, the authors a byline paragraph, and the chapters follow in
// spine order.
func (r *Reader) Document() (*model.Document, error) {
	doc := model.NewDocument()
	doc.Metadata.SourceFormat = "epub"
	doc.Metadata.Title = r.pkg.meta.title
	doc.Metadata.Author = strings.Join(r.pkg.meta.creators, ", ")
	doc.Metadata.Language = r.pkg.meta.language

	if r.pkg.meta.title != "" {
		doc.Append(model.Heading{Level: 1, Text: r.pkg.meta.title})
	}
	if len(r.pkg.meta.creators) > 0 {
		doc.Append(model.Paragraph{Text: "By: " + strings.Join(r.pkg.meta.creators, ", ")})
	}

	for _, ch := range r.chapters {
		hr, err := htmldoc.OpenReader(bytes.NewReader(ch.content))
		if err != nil {
			doc.Warn("unsupported-feature", fmt.Sprintf("chapter %s: %v", ch.href, err))
			continue
		}
		chDoc := hr.Document()
		doc.Blocks = append(doc.Blocks, chDoc.Blocks...)
	}
	return doc, nil
}
