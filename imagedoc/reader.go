// Package imagedoc turns images of rendered text into documents by
// running them through an OCR engine chain.
package imagedoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/docshift/docshift/model"
	"github.com/docshift/docshift/ocr"
)

// ErrNotImage is returned when the file is not a decodable image.
var ErrNotImage = errors.New("imagedoc: not a decodable image")

// Reader extracts text from image files through an OCR chain.
type Reader struct {
	chain *ocr.Chain
}

// NewReader wraps an OCR chain as an image reader.
func NewReader(chain *ocr.Chain) *Reader {
	return &Reader{chain: chain}
}

// Read runs OCR on the image at path. Each recognized line becomes one
// paragraph block in top-to-bottom order. The document metadata
// records which engine produced the text and its confidence.
func (r *Reader) Read(ctx context.Context, path, lang string) (*model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imagedoc: reading %s: %w", path, err)
	}

	// Reject non-images before spending an OCR call (or cloud quota)
	// on them.
	if _, _, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	res, engine, err := r.chain.Extract(ctx, raw, lang)
	if err != nil {
		return nil, err
	}

	doc := model.NewDocument()
	doc.Metadata.SourceFormat = "image"
	doc.Metadata.SourcePath = path
	doc.Metadata.Language = lang
	doc.Metadata.OCREngine = engine
	doc.Metadata.OCRConfidence = res.Confidence

	lines := res.Lines
	if len(lines) == 0 {
		lines = []string{res.Text}
	}
	for _, line := range lines {
		doc.Append(model.Paragraph{Text: line})
	}
	return doc, nil
}
