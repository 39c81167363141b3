package writer

import (
	"archive/zip"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/docshift/docshift/model"
)

const epubContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

type epubChapter struct {
	title string
	body  []string // XHTML fragments
}

// EPUB writes the document as an EPUB 3 book. The book title comes
// from the first level-1 heading, the author from a leading "By:"
// paragraph; a new chapter starts at every heading of level 1 or 2.
func EPUB(doc *model.Document, path string) error {
	if err := checkEncoding(doc); err != nil {
		return err
	}

	title := doc.Metadata.Title
	author := doc.Metadata.Author
	for _, b := range doc.Blocks {
		if h, ok := b.(model.Heading); ok && h.Level == 1 && title == "" {
			title = h.Text
		}
		if p, ok := b.(model.Paragraph); ok && author == "" {
			if strings.HasPrefix(strings.ToLower(p.Text), "by:") {
				author = strings.TrimSpace(p.Text[3:])
			}
		}
	}
	if title == "" {
		title = "Converted Document"
	}
	if author == "" {
		author = "Unknown Author"
	}

	chapters := splitChapters(doc)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	// The mimetype entry must be first and uncompressed.
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("creating mimetype entry: %w", err)
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return fmt.Errorf("writing mimetype entry: %w", err)
	}

	parts := []struct {
		name    string
		content string
	}{
		{"META-INF/container.xml", epubContainer},
		{"OEBPS/content.opf", epubOPF(title, author, doc.Metadata.Language, chapters)},
		{"OEBPS/nav.xhtml", epubNav(title, chapters)},
	}
	for i, ch := range chapters {
		parts = append(parts, struct {
			name    string
			content string
		}{fmt.Sprintf("OEBPS/chap_%02d.xhtml", i+1), epubChapterXHTML(ch)})
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("creating part %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return fmt.Errorf("writing part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

// splitChapters opens a new chapter at every level-1 or level-2
// heading. Content before the first such heading forms "Chapter 1".
func splitChapters(doc *model.Document) []epubChapter {
	var chapters []epubChapter
	current := -1

	open := func(title string) {
		chapters = append(chapters, epubChapter{title: title})
		current = len(chapters) - 1
	}

	blocks := doc.Blocks
	for i := 0; i < len(blocks); {
		if h, ok := blocks[i].(model.Heading); ok && h.Level <= 2 {
			open(h.Text)
		} else if current < 0 {
			open("Chapter 1")
		}
		ch := &chapters[current]

		switch blk := blocks[i].(type) {
		case model.Heading:
			level := blk.Level
			if level > 6 {
				level = 6
			}
			ch.body = append(ch.body, fmt.Sprintf("<h%d>%s</h%d>", level, html.EscapeString(blk.Text), level))
			i++
		case model.ListItem:
			n := listRun(blocks, i)
			tag := "ul"
			if blk.Ordered {
				tag = "ol"
			}
			items := make([]string, 0, n+2)
			items = append(items, "<"+tag+">")
			for j := 0; j < n; j++ {
				item := blocks[i+j].(model.ListItem)
				items = append(items, "<li>"+html.EscapeString(item.Text)+"</li>")
			}
			items = append(items, "</"+tag+">")
			ch.body = append(ch.body, strings.Join(items, ""))
			i += n
		case model.Table:
			var sb strings.Builder
			sb.WriteString("<table>")
			for _, row := range blk.Rows {
				sb.WriteString("<tr>")
				for _, cell := range row {
					sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
				}
				sb.WriteString("</tr>")
			}
			sb.WriteString("</table>")
			ch.body = append(ch.body, sb.String())
			i++
		case model.PageBreak:
			i++
		default:
			ch.body = append(ch.body, "<p>"+html.EscapeString(blocks[i].PlainText())+"</p>")
			i++
		}
	}

	if len(chapters) == 0 {
		chapters = append(chapters, epubChapter{title: "Chapter 1", body: []string{"<p></p>"}})
	}
	return chapters
}

func epubOPF(title, author, language string, chapters []epubChapter) string {
	if language == "" {
		language = "en"
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)
	fmt.Fprintf(&sb, "    <dc:identifier id=\"bookid\">urn:docshift:%s</dc:identifier>\n", html.EscapeString(title))
	fmt.Fprintf(&sb, "    <dc:title>%s</dc:title>\n", html.EscapeString(title))
	fmt.Fprintf(&sb, "    <dc:creator>%s</dc:creator>\n", html.EscapeString(author))
	fmt.Fprintf(&sb, "    <dc:language>%s</dc:language>\n", html.EscapeString(language))
	sb.WriteString("  </metadata>\n  <manifest>\n")
	sb.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	for i := range chapters {
		fmt.Fprintf(&sb, "    <item id=\"chap%d\" href=\"chap_%02d.xhtml\" media-type=\"application/xhtml+xml\"/>\n", i+1, i+1)
	}
	sb.WriteString("  </manifest>\n  <spine>\n")
	for i := range chapters {
		fmt.Fprintf(&sb, "    <itemref idref=\"chap%d\"/>\n", i+1)
	}
	sb.WriteString("  </spine>\n</package>\n")
	return sb.String()
}

func epubNav(title string, chapters []epubChapter) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title></head>\n<body>\n<nav epub:type=\"toc\">\n<ol>\n")
	for i, ch := range chapters {
		fmt.Fprintf(&sb, "<li><a href=\"chap_%02d.xhtml\">%s</a></li>\n", i+1, html.EscapeString(ch.title))
	}
	sb.WriteString("</ol>\n</nav>\n</body>\n</html>\n")
	return sb.String()
}

func epubChapterXHTML(ch epubChapter) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>`)
	sb.WriteString(html.EscapeString(ch.title))
	sb.WriteString("</title></head>\n<body>\n")
	sb.WriteString(strings.Join(ch.body, "\n"))
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
