// Package docshift converts documents between text, markup, office,
// ebook and image formats through a shared block-level representation.
//
// A Converter detects the input format, parses it into a
// model.Document, and renders that document in the requested target
// format. Image inputs go through an OCR engine chain when OCR is
// enabled.
package docshift

import (
	"context"
	"log/slog"
	"time"

	"github.com/docshift/docshift/format"
	"github.com/docshift/docshift/ocr"
)

// Converter is the conversion entry point. It is safe for concurrent
// use; per-conversion state never escapes a single call.
type Converter struct {
	registry  *Registry
	engines   []ocr.Engine
	cache     *ocr.Cache
	threshold float64
	language  string

	timeout     time.Duration
	maxFileSize int64
	workers     int

	log      *slog.Logger
	progress ProgressFunc
}

// New builds a Converter. Without options it uses a local Tesseract
// engine, a 30 second timeout, a 100 MB size limit and four batch
// workers.
func New(opts ...Option) *Converter {
	c := &Converter{
		engines:     []ocr.Engine{ocr.NewTesseract()},
		cache:       ocr.NewCache(ocr.DefaultCacheSize),
		language:    DefaultLanguage,
		timeout:     DefaultTimeout,
		maxFileSize: DefaultMaxFileSize,
		workers:     DefaultWorkers,
		log:         nopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = NewRegistry(ocr.NewChain(c.engines,
		ocr.WithThreshold(c.threshold),
		ocr.WithCache(c.cache)))
	return c
}

func (c *Converter) pipeline() *pipeline {
	return &pipeline{
		registry: c.registry,
		engines:  c.engines,
		cache:    c.cache,
		log:      c.log,
		progress: c.progress,
	}
}

// fill applies converter defaults to unset request fields.
func (c *Converter) fill(req Request) Request {
	if req.Language == "" {
		req.Language = c.language
	}
	if req.ConfidenceThreshold == 0 {
		req.ConfidenceThreshold = c.threshold
	}
	if req.Timeout == 0 {
		req.Timeout = c.timeout
	}
	if req.MaxFileSize == 0 {
		req.MaxFileSize = c.maxFileSize
	}
	return req
}

// Convert runs one conversion request.
func (c *Converter) Convert(ctx context.Context, req Request) Result {
	return c.pipeline().convert(ctx, c.fill(req))
}

// ConvertFile converts inputPath to outputPath, inferring both
// formats. OCR is enabled, so image inputs work out of the box.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) Result {
	return c.Convert(ctx, Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		OCREnabled: true,
	})
}

// ConvertBatch runs the requests concurrently on the converter's
// worker pool and returns a Result per input path. A failed request
// never aborts the others.
func (c *Converter) ConvertBatch(ctx context.Context, reqs []Request) BatchResult {
	filled := make([]Request, len(reqs))
	for i, req := range reqs {
		filled[i] = c.fill(req)
	}
	return c.pipeline().convertBatch(ctx, filled, c.workers)
}

// ReadFormats lists the formats the converter can read.
func (c *Converter) ReadFormats() []format.ID {
	return c.registry.ReadFormats()
}

// WriteFormats lists the formats the converter can write.
func (c *Converter) WriteFormats() []format.ID {
	return c.registry.WriteFormats()
}
