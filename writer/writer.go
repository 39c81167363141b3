// Package writer serializes documents into the supported output
// formats. Each writer walks the block sequence in order; blocks are
// never reordered on output.
package writer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/docshift/docshift/model"
)

// ErrEncoding is returned when document text cannot be encoded for the
// target format.
var ErrEncoding = errors.New("writer: encoding error")

// checkEncoding verifies that every block carries valid UTF-8. The
// offending byte offset is reported so the caller can locate the
// character.
func checkEncoding(doc *model.Document) error {
	for i, b := range doc.Blocks {
		text := b.PlainText()
		if !utf8.ValidString(text) {
			for j := 0; j < len(text); {
				r, size := utf8.DecodeRuneInString(text[j:])
				if r == utf8.RuneError && size == 1 {
					return fmt.Errorf("%w: invalid UTF-8 sequence in block %d at byte %d", ErrEncoding, i, j)
				}
				j += size
			}
		}
	}
	return nil
}

// listRun returns the length of the run of list items starting at
// blocks[i] that share the same ordered flag.
func listRun(blocks []model.Block, i int) int {
	first, ok := blocks[i].(model.ListItem)
	if !ok {
		return 0
	}
	n := 1
	for i+n < len(blocks) {
		item, ok := blocks[i+n].(model.ListItem)
		if !ok || item.Ordered != first.Ordered {
			break
		}
		n++
	}
	return n
}
