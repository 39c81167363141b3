// Package htmldoc parses HTML documents into the intermediate block model.
//
// Content is extracted by walking heading, paragraph, list, and table
// elements in document order. Empty text nodes are skipped. Script, style,
// and navigation elements are ignored.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/docshift/docshift/model"
)

// Reader provides access to parsed HTML document content.
type Reader struct {
	title    string
	metadata map[string]string
	blocks   []model.Block
}

// Open opens and parses an HTML file.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parsing HTML: %w", err)
	}

	reader := &Reader{
		metadata: make(map[string]string),
	}
	reader.extractHead(doc)
	reader.extractBody(doc)

	return reader, nil
}

// Title returns the document title from the head, if present.
func (r *Reader) Title() string { return r.title }

// Meta returns the content of a named meta tag, or "".
func (r *Reader) Meta(name string) string { return r.metadata[name] }

// Blocks returns the extracted content blocks in document order.
func (r *Reader) Blocks() []model.Block { return r.blocks }

// Document builds an intermediate document from the extracted content.
func (r *Reader) Document() *model.Document {
	doc := model.NewDocument()
	doc.Metadata.Title = r.title
	doc.Metadata.Author = r.metadata["author"]
	doc.Append(r.blocks...)
	return doc
}

// extractHead extracts title and meta tags from the head element.
func (r *Reader) extractHead(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "head" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "title":
				r.title = textContent(c)
			case "meta":
				name, content := "", ""
				for _, attr := range c.Attr {
					switch attr.Key {
					case "name", "property":
						name = attr.Val
					case "content":
						content = attr.Val
					}
				}
				if name != "" && content != "" {
					r.metadata[name] = content
				}
			}
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractHead(c)
	}
}

// extractBody extracts content blocks from the body element.
func (r *Reader) extractBody(n *html.Node) {
	body := findElement(n, "body")
	if body == nil {
		body = n
	}
	r.walk(body)
}

// skipElements are elements whose subtrees carry no document content.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"nav":      true,
}

// walk traverses the node tree in document order, emitting blocks for
// headings, paragraphs, lists, and tables.
func (r *Reader) walk(n *html.Node) {
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		return
	}

	if skipElements[n.Data] {
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if text := textContent(n); text != "" {
			level := int(n.Data[1] - '0')
			r.blocks = append(r.blocks, model.Heading{Level: level, Text: text})
		}
	case "p", "blockquote", "pre":
		if text := textContent(n); text != "" {
			r.blocks = append(r.blocks, model.Paragraph{Text: text})
		}
	case "ul", "ol":
		r.walkList(n, n.Data == "ol")
	case "table":
		if tbl := parseTable(n); len(tbl.Rows) > 0 {
			r.blocks = append(r.blocks, tbl)
		}
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
	}
}

// walkList emits one ListItem per li child. Nested lists are flattened in
// document order after their parent item.
func (r *Reader) walkList(n *html.Node, ordered bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		if text := directText(c); text != "" {
			r.blocks = append(r.blocks, model.ListItem{Text: text, Ordered: ordered})
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			if gc.Type == html.ElementNode && (gc.Data == "ul" || gc.Data == "ol") {
				r.walkList(gc, gc.Data == "ol")
			}
		}
	}
}

// parseTable builds a table block from tr/th/td descendants.
func parseTable(n *html.Node) model.Table {
	var tbl model.Table
	var rows []*html.Node
	collectElements(n, "tr", &rows)
	for _, tr := range rows {
		var row []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				row = append(row, textContent(c))
			}
		}
		if len(row) > 0 {
			tbl.Rows = append(tbl.Rows, row)
		}
	}
	return tbl
}

// findElement returns the first descendant element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collectElements appends all descendant elements with the given tag name,
// in document order.
func collectElements(n *html.Node, tag string, out *[]*html.Node) {
	if n.Type == html.ElementNode && n.Data == tag {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectElements(c, tag, out)
	}
}

// textContent returns the normalized text content of the subtree rooted at n.
// Runs of whitespace collapse to a single space.
func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return normalizeSpace(b.String())
}

// directText returns the normalized text of n excluding nested lists, so a
// list item's own text stays separate from its sub-items.
func directText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol" || skipElements[n.Data]) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
	return normalizeSpace(b.String())
}

// normalizeSpace collapses runs of whitespace to single spaces and trims the
// ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
