package docshift

import (
	"io"
	"log/slog"
	"time"

	"github.com/docshift/docshift/ocr"
)

const (
	// DefaultTimeout bounds a single conversion.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxFileSize rejects inputs over 100 MB.
	DefaultMaxFileSize = 100 << 20
	// DefaultWorkers is the batch concurrency limit.
	DefaultWorkers = 4
	// DefaultLanguage is the OCR language hint.
	DefaultLanguage = "eng"
)

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout sets the per-conversion time limit. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.timeout = d
	}
}

// WithMaxFileSize sets the input size limit in bytes. Zero disables
// it.
func WithMaxFileSize(n int64) Option {
	return func(c *Converter) {
		c.maxFileSize = n
	}
}

// WithWorkers sets the batch concurrency limit.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithOCREngines replaces the default engine set. The chain orders
// engines by their declared priority regardless of slice order.
func WithOCREngines(engines ...ocr.Engine) Option {
	return func(c *Converter) {
		c.engines = engines
	}
}

// WithOCRConfidenceThreshold sets the minimum confidence an OCR
// result must reach before the chain accepts it.
func WithOCRConfidenceThreshold(threshold float64) Option {
	return func(c *Converter) {
		c.threshold = threshold
	}
}

// WithOCRLanguage sets the default OCR language hint.
func WithOCRLanguage(lang string) Option {
	return func(c *Converter) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithCacheSize sets the OCR result cache capacity.
func WithCacheSize(n int) Option {
	return func(c *Converter) {
		c.cache = ocr.NewCache(n)
	}
}

// WithLogger routes pipeline logging. The default discards all
// records.
func WithLogger(log *slog.Logger) Option {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// WithProgress registers a stage callback for every conversion.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Converter) {
		c.progress = fn
	}
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
