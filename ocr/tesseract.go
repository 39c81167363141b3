//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs OCR through the locally installed tesseract binary
// via gosseract. Compiled in only with the "ocr" build tag, since
// gosseract needs cgo and the Tesseract development headers. Install
// the engine itself with e.g.:
//
//	apt-get install tesseract-ocr
//	brew install tesseract
type Tesseract struct{}

// NewTesseract returns the local Tesseract engine.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

func (t *Tesseract) Name() string  { return "local" }
func (t *Tesseract) Priority() int { return PriorityLocal }

// Available reports whether the tesseract binary is on PATH. Checked
// per run; the binary may be installed or removed between calls.
func (t *Tesseract) Available() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// Recognize runs Tesseract on the encoded image. A fresh client is
// created per call so concurrent recognitions do not share state.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if lang != "" {
		if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
			return nil, fmt.Errorf("tesseract: setting language %q: %w", lang, err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("tesseract: setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: recognizing: %w", err)
	}
	text = strings.TrimSpace(text)

	res := &Result{Text: text}
	res.Lines, res.Confidence = tesseractLines(client, text)
	return res, nil
}

// tesseractLines pulls line boxes with confidences; when boxes are not
// available the text is split on newlines and confidence is unknown.
func tesseractLines(client *gosseract.Client, text string) ([]string, float64) {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil || len(boxes) == 0 {
		return splitLines(text), 0
	}

	var lines []string
	var sum float64
	for _, b := range boxes {
		if line := strings.TrimSpace(b.Word); line != "" {
			lines = append(lines, line)
		}
		sum += b.Confidence
	}
	return lines, sum / float64(len(boxes))
}
