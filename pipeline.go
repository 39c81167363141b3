package docshift

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/docshift/docshift/docx"
	"github.com/docshift/docshift/epubdoc"
	"github.com/docshift/docshift/format"
	"github.com/docshift/docshift/imagedoc"
	"github.com/docshift/docshift/model"
	"github.com/docshift/docshift/ocr"
	"github.com/docshift/docshift/pdfdoc"
	"github.com/docshift/docshift/rtfdoc"
	"github.com/docshift/docshift/textdoc"
	"github.com/docshift/docshift/writer"
)

// Stage identifies one phase of a conversion.
type Stage int

const (
	StageDetecting Stage = iota
	StageReading
	StageExtractingOCR
	StageWriting
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageDetecting:
		return "detecting"
	case StageReading:
		return "reading"
	case StageExtractingOCR:
		return "extracting-ocr"
	case StageWriting:
		return "writing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressFunc observes stage transitions for one conversion. It must
// not block; it has no influence on pipeline behavior.
type ProgressFunc func(inputPath string, stage Stage)

// Request describes one conversion. It is immutable once passed to
// Convert.
type Request struct {
	InputPath  string
	OutputPath string
	// SourceFormat overrides input detection when set. When zero the
	// format is detected from the input path and content.
	SourceFormat format.ID
	// TargetFormat selects the writer. When zero it is inferred
	// from the output path extension.
	TargetFormat format.ID
	// OCREnabled permits OCR when the input is an image.
	OCREnabled bool
	// Language is the OCR language hint, e.g. "eng".
	Language string
	// ConfidenceThreshold is the minimum OCR confidence (0-100).
	ConfidenceThreshold float64
	// Timeout bounds the reading and writing phases together. Zero
	// applies the converter default; a converter built with
	// WithTimeout(0) runs without a limit.
	Timeout time.Duration
	// MaxFileSize rejects larger inputs before reading. Zero applies
	// the converter default; a converter built with WithMaxFileSize(0)
	// accepts any size.
	MaxFileSize int64
}

// Result reports the outcome of one conversion. Either Success is
// true and OutputPath is set, or Success is false and Err carries the
// classified failure.
type Result struct {
	Success    bool
	InputPath  string
	OutputPath string
	Err        error
	// Kind is the taxonomy name of Err ("CorruptContent", ...).
	Kind    string
	Elapsed time.Duration
	// OCREngine and OCRConfidence are set when OCR produced the text.
	OCREngine     string
	OCRConfidence float64
	// Warnings carries non-fatal reader warnings (skipped features).
	Warnings []model.Warning
}

// pipeline runs single conversions. Registries and the OCR engine set
// are shared read-only state; everything per-conversion lives on the
// stack.
type pipeline struct {
	registry *Registry
	engines  []ocr.Engine
	cache    *ocr.Cache
	log      *slog.Logger
	progress ProgressFunc
}

func (p *pipeline) report(req Request, stage Stage) {
	if p.progress != nil {
		p.progress(req.InputPath, stage)
	}
}

func (p *pipeline) fail(req Request, start time.Time, err error) Result {
	p.report(req, StageFailed)
	p.log.Error("conversion failed",
		"input", req.InputPath,
		"kind", Kind(err),
		"error", err)
	return Result{
		InputPath: req.InputPath,
		Err:       err,
		Kind:      Kind(err),
		Elapsed:   time.Since(start),
	}
}

// convert runs the Detecting, Reading, Writing sequence for one
// request.
func (p *pipeline) convert(ctx context.Context, req Request) Result {
	start := time.Now()

	p.report(req, StageDetecting)

	// Size guard runs before any reader touches the file.
	info, err := os.Stat(req.InputPath)
	if err != nil {
		return p.fail(req, start, fmt.Errorf("%w: %v", ErrUnreadableSource, err))
	}
	if req.MaxFileSize > 0 && info.Size() > req.MaxFileSize {
		return p.fail(req, start, fmt.Errorf("%w: %s is %d bytes (limit %d)",
			ErrFileTooLarge, req.InputPath, info.Size(), req.MaxFileSize))
	}

	srcFormat := req.SourceFormat
	if srcFormat == format.Unknown {
		detected, err := format.Detect(req.InputPath)
		if err != nil {
			return p.fail(req, start, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err))
		}
		srcFormat = detected
	}

	target := req.TargetFormat
	if target == format.Unknown {
		target = format.DetectExtension(req.OutputPath)
	}
	if target == format.Unknown {
		return p.fail(req, start, fmt.Errorf("%w: cannot infer target format from %q",
			ErrUnsupportedFormat, req.OutputPath))
	}

	read, ok := p.registry.Reader(srcFormat)
	if !ok {
		return p.fail(req, start, fmt.Errorf("%w: no reader for %s", ErrUnsupportedFormat, srcFormat))
	}
	write, ok := p.registry.Writer(target)
	if !ok {
		return p.fail(req, start, fmt.Errorf("%w: no writer for %s", ErrUnsupportedFormat, target))
	}

	if srcFormat == format.Image {
		if !req.OCREnabled {
			return p.fail(req, start, fmt.Errorf("%w: input %s requires OCR", ErrOCRDisabled, req.InputPath))
		}
		chain := ocr.NewChain(p.engines,
			ocr.WithThreshold(req.ConfidenceThreshold),
			ocr.WithCache(p.cache))
		ocrRead := imagedoc.NewReader(chain).Read
		read = func(ctx context.Context, path, lang string) (*model.Document, error) {
			p.report(req, StageExtractingOCR)
			return ocrRead(ctx, path, lang)
		}
	}

	doc, err := p.run(ctx, req, read, write)
	if err != nil {
		return p.fail(req, start, err)
	}

	p.report(req, StageDone)
	res := Result{
		Success:    true,
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Elapsed:    time.Since(start),
		Warnings:   doc.Warnings,
	}
	if srcFormat == format.Image {
		res.OCREngine = doc.Metadata.OCREngine
		res.OCRConfidence = doc.Metadata.OCRConfidence
	}
	for _, w := range doc.Warnings {
		p.log.Warn("skipped feature", "input", req.InputPath, "code", w.Code, "detail", w.Message)
	}
	return res
}

// run executes the blocking read and write phases on their own
// goroutine so the request timeout can abandon them. On expiry any
// partial output is deleted.
func (p *pipeline) run(ctx context.Context, req Request, read ReaderFunc, write WriterFunc) (*model.Document, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	type outcome struct {
		doc *model.Document
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		p.report(req, StageReading)
		doc, err := read(ctx, req.InputPath, req.Language)
		if err != nil {
			done <- outcome{nil, classifyReadError(err)}
			return
		}
		p.report(req, StageWriting)
		if err := write(doc, req.OutputPath); err != nil {
			done <- outcome{nil, classifyWriteError(err)}
			return
		}
		done <- outcome{doc, nil}
	}()

	select {
	case out := <-done:
		if out.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			os.Remove(req.OutputPath)
			return nil, fmt.Errorf("%w after %s", ErrTimeout, req.Timeout)
		}
		return out.doc, out.err
	case <-ctx.Done():
		// The worker goroutine is abandoned; it may still be inside
		// a blocking library call.
		os.Remove(req.OutputPath)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, req.Timeout)
		}
		return nil, ctx.Err()
	}
}

// classifyReadError maps reader package errors onto the conversion
// taxonomy. The underlying message is preserved verbatim.
func classifyReadError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission),
		errors.Is(err, epubdoc.ErrDRMProtected):
		return fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	case isAllEnginesFailed(err):
		return fmt.Errorf("%w: %v", ErrAllEnginesFailed, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, textdoc.ErrBinaryContent),
		errors.Is(err, rtfdoc.ErrNotRTF),
		errors.Is(err, docx.ErrNotWordDocument),
		errors.Is(err, pdfdoc.ErrMalformedPDF),
		errors.Is(err, imagedoc.ErrNotImage),
		errors.Is(err, epubdoc.ErrInvalidArchive),
		errors.Is(err, epubdoc.ErrNoContainer),
		errors.Is(err, epubdoc.ErrInvalidContainer),
		errors.Is(err, epubdoc.ErrNoOPF),
		errors.Is(err, epubdoc.ErrInvalidOPF),
		errors.Is(err, epubdoc.ErrEmptySpine):
		return fmt.Errorf("%w: %v", ErrCorruptContent, err)
	default:
		return fmt.Errorf("%w: %v", ErrCorruptContent, err)
	}
}

func isAllEnginesFailed(err error) bool {
	var allFailed *ocr.AllFailedError
	return errors.As(err, &allFailed)
}

func classifyWriteError(err error) error {
	if errors.Is(err, writer.ErrEncoding) {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return fmt.Errorf("%w: %v", ErrWriteFailed, err)
}
