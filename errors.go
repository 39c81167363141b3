package docshift

import "errors"

// Conversion error kinds. Every failure surfaced by a conversion wraps
// exactly one of these sentinels; underlying reader, writer, and OCR
// errors are classified at the pipeline boundary and never escape raw.
var (
	// ErrUnsupportedFormat reports an input or target format with no
	// registered reader or writer.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnreadableSource reports an input that cannot be opened.
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrCorruptContent reports an input that fails to parse as its
	// detected format.
	ErrCorruptContent = errors.New("corrupt content")
	// ErrWriteFailed reports an I/O failure on the destination.
	ErrWriteFailed = errors.New("write error")
	// ErrEncoding reports text that cannot be encoded for the target
	// format.
	ErrEncoding = errors.New("encoding error")
	// ErrOCRDisabled reports an image input with OCR turned off in
	// the request.
	ErrOCRDisabled = errors.New("ocr disabled")
	// ErrAllEnginesFailed reports that every OCR engine was skipped
	// or failed.
	ErrAllEnginesFailed = errors.New("all ocr engines failed")
	// ErrFileTooLarge reports an input above the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrTimeout reports a conversion that exceeded its deadline.
	ErrTimeout = errors.New("conversion timed out")
)

// kindNames orders the sentinels for Kind lookup.
var kindNames = []struct {
	err  error
	name string
}{
	{ErrUnsupportedFormat, "UnsupportedFormat"},
	{ErrUnreadableSource, "UnreadableSource"},
	{ErrCorruptContent, "CorruptContent"},
	{ErrWriteFailed, "WriteError"},
	{ErrEncoding, "EncodingError"},
	{ErrOCRDisabled, "OCRDisabled"},
	{ErrAllEnginesFailed, "AllEnginesFailed"},
	{ErrFileTooLarge, "FileTooLarge"},
	{ErrTimeout, "Timeout"},
}

// Kind names the taxonomy kind of a conversion error, or returns the
// empty string for nil and unclassified errors.
func Kind(err error) string {
	for _, k := range kindNames {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
