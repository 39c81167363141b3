package docshift

import (
	"context"

	"github.com/docshift/docshift/docx"
	"github.com/docshift/docshift/epubdoc"
	"github.com/docshift/docshift/format"
	"github.com/docshift/docshift/htmldoc"
	"github.com/docshift/docshift/imagedoc"
	"github.com/docshift/docshift/markdown"
	"github.com/docshift/docshift/model"
	"github.com/docshift/docshift/ocr"
	"github.com/docshift/docshift/pdfdoc"
	"github.com/docshift/docshift/rtfdoc"
	"github.com/docshift/docshift/textdoc"
	"github.com/docshift/docshift/writer"
)

// ReaderFunc parses one input file into the intermediate document.
// lang is the OCR language hint; non-OCR readers ignore it.
type ReaderFunc func(ctx context.Context, path, lang string) (*model.Document, error)

// WriterFunc serializes a document to the output path.
type WriterFunc func(doc *model.Document, path string) error

// Registry maps formats to reader and writer capabilities. It is
// built once at startup and treated as read-only afterwards.
type Registry struct {
	readers map[format.ID]ReaderFunc
	writers map[format.ID]WriterFunc
}

// Reader looks up the reader for a format.
func (r *Registry) Reader(id format.ID) (ReaderFunc, bool) {
	fn, ok := r.readers[id]
	return fn, ok
}

// Writer looks up the writer for a format.
func (r *Registry) Writer(id format.ID) (WriterFunc, bool) {
	fn, ok := r.writers[id]
	return fn, ok
}

// ReadFormats lists the formats with a registered reader.
func (r *Registry) ReadFormats() []format.ID {
	return formatKeys(r.readers)
}

// WriteFormats lists the formats with a registered writer.
func (r *Registry) WriteFormats() []format.ID {
	return formatKeys(r.writers)
}

func formatKeys[V any](m map[format.ID]V) []format.ID {
	out := make([]format.ID, 0, len(m))
	for id := format.Text; id <= format.Image; id++ {
		if _, ok := m[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// NewRegistry wires the full reader and writer sets. Image reading
// goes through the given OCR chain.
func NewRegistry(chain *ocr.Chain) *Registry {
	imageReader := imagedoc.NewReader(chain)

	return &Registry{
		readers: map[format.ID]ReaderFunc{
			format.Text: func(ctx context.Context, path, lang string) (*model.Document, error) {
				return textdoc.Read(path)
			},
			format.Markdown: func(ctx context.Context, path, lang string) (*model.Document, error) {
				return markdown.Read(path)
			},
			format.HTML: func(ctx context.Context, path, lang string) (*model.Document, error) {
				r, err := htmldoc.Open(path)
				if err != nil {
					return nil, err
				}
				return r.Document(), nil
			},
			format.DOCX: func(ctx context.Context, path, lang string) (*model.Document, error) {
				r, err := docx.Open(path)
				if err != nil {
					return nil, err
				}
				return r.Document(), nil
			},
			format.PDF: func(ctx context.Context, path, lang string) (*model.Document, error) {
				return pdfdoc.Read(path)
			},
			format.RTF: func(ctx context.Context, path, lang string) (*model.Document, error) {
				return rtfdoc.Read(path)
			},
			format.EPUB: func(ctx context.Context, path, lang string) (*model.Document, error) {
				r, err := epubdoc.Open(path)
				if err != nil {
					return nil, err
				}
				defer r.Close()
				return r.Document()
			},
			format.Image: imageReader.Read,
		},
		writers: map[format.ID]WriterFunc{
			format.Text:     writer.Text,
			format.Markdown: writer.Markdown,
			format.HTML:     writer.HTML,
			format.DOCX:     writer.DOCX,
			format.PDF:      writer.PDF,
			format.RTF:      writer.RTF,
			format.EPUB:     writer.EPUB,
		},
	}
}
