// Package ocr extracts text from images through a priority-ordered
// chain of recognition engines.
//
// The local Tesseract engine is tried first when compiled in (build
// with -tags ocr) and installed. Cloud engines (Google Vision, AWS
// Textract, Azure Computer Vision) participate when credentials are
// configured. The first engine that produces non-empty text at or
// above the confidence threshold wins; results are cached by image
// fingerprint.
package ocr

import (
	"context"
	"strings"
)

// Engine priorities, lower runs first.
const (
	PriorityLocal  = 1
	PriorityGoogle = 2
	PriorityAWS    = 3
	PriorityAzure  = 4
)

// Result is the normalized output of one recognition call.
type Result struct {
	// Text is the full recognized text.
	Text string
	// Lines holds the recognized text split into lines in
	// top-to-bottom order.
	Lines []string
	// Confidence is the engine's reported confidence on a 0-100
	// scale. Engines that do not report confidence use a fixed
	// default.
	Confidence float64
}

// Engine is one OCR backend. Availability is checked every time the
// chain runs, not once at startup, so engines that depend on a local
// binary or credentials can come and go between calls.
type Engine interface {
	// Name identifies the engine in results and diagnostics.
	Name() string
	// Priority orders engines within a chain; lower runs first.
	Priority() int
	// Available reports whether the engine can be used right now.
	Available() bool
	// Recognize runs OCR on the encoded image. lang is a Tesseract
	// style language hint such as "eng".
	Recognize(ctx context.Context, image []byte, lang string) (*Result, error)
}

// splitLines breaks recognized text into trimmed non-empty lines, for
// engines that only return a single text blob.
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
