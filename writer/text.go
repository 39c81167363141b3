package writer

import (
	"fmt"
	"os"
	"strings"

	"github.com/docshift/docshift/model"
)

// Text writes the document as plain text: one line of text per block,
// headings rendered without any marker. Page breaks produce nothing
// beyond the line separation.
func Text(doc *model.Document, path string) error {
	if err := checkEncoding(doc); err != nil {
		return err
	}

	var lines []string
	for _, b := range doc.Blocks {
		switch blk := b.(type) {
		case model.PageBreak:
			continue
		case model.Table:
			for _, row := range blk.Rows {
				lines = append(lines, strings.Join(row, "\t"))
			}
		default:
			lines = append(lines, b.PlainText())
		}
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
