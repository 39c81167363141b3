package writer

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/docshift/docshift/model"
)

// HTML writes the document wrapped in a minimal <html><body> skeleton.
// Runs of list items are grouped into <ul> or <ol> elements; all text
// is HTML-escaped.
func HTML(doc *model.Document, path string) error {
	if err := checkEncoding(doc); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("<html>\n<body>\n")

	blocks := doc.Blocks
	for i := 0; i < len(blocks); {
		switch blk := blocks[i].(type) {
		case model.Heading:
			fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", blk.Level, html.EscapeString(blk.Text), blk.Level)
			i++
		case model.ListItem:
			n := listRun(blocks, i)
			tag := "ul"
			if blk.Ordered {
				tag = "ol"
			}
			fmt.Fprintf(&sb, "<%s>\n", tag)
			for j := 0; j < n; j++ {
				item := blocks[i+j].(model.ListItem)
				fmt.Fprintf(&sb, "<li>%s</li>\n", html.EscapeString(item.Text))
			}
			fmt.Fprintf(&sb, "</%s>\n", tag)
			i += n
		case model.Table:
			sb.WriteString("<table>\n")
			for _, row := range blk.Rows {
				sb.WriteString("<tr>")
				for _, cell := range row {
					fmt.Fprintf(&sb, "<td>%s</td>", html.EscapeString(cell))
				}
				sb.WriteString("</tr>\n")
			}
			sb.WriteString("</table>\n")
			i++
		case model.PageBreak:
			i++
		default:
			fmt.Fprintf(&sb, "<p>%s</p>\n", html.EscapeString(blocks[i].PlainText()))
			i++
		}
	}

	sb.WriteString("</body>\n</html>\n")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
