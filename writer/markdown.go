package writer

import (
	"fmt"
	"os"
	"strings"

	"github.com/docshift/docshift/model"
)

// Markdown writes the document as Markdown: headings get a #-prefix
// matching their level, list items a "- " prefix, and blocks are
// separated by blank lines. Tables become pipe tables.
func Markdown(doc *model.Document, path string) error {
	if err := checkEncoding(doc); err != nil {
		return err
	}

	var chunks []string
	blocks := doc.Blocks
	for i := 0; i < len(blocks); {
		switch blk := blocks[i].(type) {
		case model.Heading:
			chunks = append(chunks, strings.Repeat("#", blk.Level)+" "+blk.Text)
			i++
		case model.ListItem:
			n := listRun(blocks, i)
			var items []string
			for j := 0; j < n; j++ {
				item := blocks[i+j].(model.ListItem)
				if item.Ordered {
					items = append(items, fmt.Sprintf("%d. %s", j+1, item.Text))
				} else {
					items = append(items, "- "+item.Text)
				}
			}
			chunks = append(chunks, strings.Join(items, "\n"))
			i += n
		case model.Table:
			chunks = append(chunks, markdownTable(blk))
			i++
		case model.PageBreak:
			i++
		default:
			chunks = append(chunks, blocks[i].PlainText())
			i++
		}
	}

	out := strings.Join(chunks, "\n\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func markdownTable(t model.Table) string {
	if len(t.Rows) == 0 {
		return ""
	}
	row := func(cells []string) string {
		escaped := make([]string, len(cells))
		for i, c := range cells {
			escaped[i] = strings.ReplaceAll(c, "|", "\\|")
		}
		return "| " + strings.Join(escaped, " | ") + " |"
	}

	var sb strings.Builder
	sb.WriteString(row(t.Rows[0]))
	sb.WriteByte('\n')
	sep := make([]string, len(t.Rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString(row(sep))
	for _, r := range t.Rows[1:] {
		sb.WriteByte('\n')
		sb.WriteString(row(r))
	}
	return sb.String()
}
