package writer

import (
	"fmt"
	"os"
	"strings"

	"github.com/docshift/docshift/model"
)

const rtfHeader = `{\rtf1\ansi\deff0{\fonttbl{\f0 Times New Roman;}}\f0\fs24`

// RTF writes the document as Rich Text Format with a single-font
// header. Headings are bold with a font size stepping down by level
// (level 1 largest); every block is introduced by \par.
func RTF(doc *model.Document, path string) error {
	if err := checkEncoding(doc); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(rtfHeader)

	for _, b := range doc.Blocks {
		switch blk := b.(type) {
		case model.Heading:
			size := rtfHeadingSize(blk.Level)
			fmt.Fprintf(&sb, `\par\fs%d\b %s\b0\fs24`, size, escapeRTF(blk.Text))
		case model.ListItem:
			fmt.Fprintf(&sb, `\par - %s`, escapeRTF(blk.Text))
		case model.Table:
			for _, row := range blk.Rows {
				fmt.Fprintf(&sb, `\par %s`, escapeRTF(strings.Join(row, "\t")))
			}
		case model.PageBreak:
			sb.WriteString(`\page`)
		default:
			fmt.Fprintf(&sb, `\par %s`, escapeRTF(b.PlainText()))
		}
	}
	sb.WriteString("}")

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// rtfHeadingSize maps a heading level to a half-point font size,
// largest for level 1, floored at 20 (10pt).
func rtfHeadingSize(level int) int {
	size := 32 - level*4
	if size < 20 {
		size = 20
	}
	return size
}

// escapeRTF escapes RTF metacharacters and encodes non-ASCII runes as
// \u escapes so the output stays 7-bit clean.
func escapeRTF(text string) string {
	var sb strings.Builder
	for _, r := range text {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '{':
			sb.WriteString(`\{`)
		case r == '}':
			sb.WriteString(`\}`)
		case r == '\t':
			sb.WriteString(`\tab `)
		case r > 127:
			n := int(r)
			if n > 32767 {
				n -= 65536
			}
			fmt.Fprintf(&sb, `\u%d?`, n)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
