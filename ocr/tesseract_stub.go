//go:build !ocr

package ocr

import (
	"context"
	"errors"
)

// ErrTesseractNotEnabled is returned by the stub local engine. Rebuild
// with -tags ocr to compile in gosseract support.
var ErrTesseractNotEnabled = errors.New("ocr: tesseract support not compiled in; rebuild with -tags ocr")

// Tesseract is the stub local engine used when the "ocr" build tag is
// not set. It reports itself unavailable, so a chain containing it
// falls through to the cloud engines.
type Tesseract struct{}

// NewTesseract returns the stub local engine.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

func (t *Tesseract) Name() string    { return "local" }
func (t *Tesseract) Priority() int   { return PriorityLocal }
func (t *Tesseract) Available() bool { return false }

func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (*Result, error) {
	return nil, ErrTesseractNotEnabled
}
