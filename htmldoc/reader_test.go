package htmldoc

import (
	"strings"
	"testing"

	"github.com/docshift/docshift/model"
)

func TestOpenReader_SimpleHTML(t *testing.T) {
	src := `<!DOCTYPE html>
<html>
<head>
	<title>Test Document</title>
	<meta name="author" content="Test Author">
</head>
<body>
	<h1>Main Heading</h1>
	<p>This is a paragraph.</p>
</body>
</html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	if r.Title() != "Test Document" {
		t.Errorf("Title() = %q, want 'Test Document'", r.Title())
	}
	if r.Meta("author") != "Test Author" {
		t.Errorf("Meta(author) = %q", r.Meta("author"))
	}

	blocks := r.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	h, ok := blocks[0].(model.Heading)
	if !ok || h.Level != 1 || h.Text != "Main Heading" {
		t.Errorf("block 0 = %+v, want h1 'Main Heading'", blocks[0])
	}
	p, ok := blocks[1].(model.Paragraph)
	if !ok || p.Text != "This is a paragraph." {
		t.Errorf("block 1 = %+v, want paragraph", blocks[1])
	}
}

func TestOpenReader_DocumentOrder(t *testing.T) {
	src := `<html><body>
	<h1>One</h1>
	<p>first</p>
	<h2>Two</h2>
	<p>second</p>
	<h3>Three</h3>
</body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	var got []string
	for _, b := range r.Blocks() {
		got = append(got, b.PlainText())
	}
	want := []string{"One", "first", "Two", "second", "Three"}
	if len(got) != len(want) {
		t.Fatalf("got %d blocks, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOpenReader_HeadingLevels(t *testing.T) {
	src := `<html><body><h1>a</h1><h2>b</h2><h3>c</h3><h4>d</h4><h5>e</h5><h6>f</h6></body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	blocks := r.Blocks()
	if len(blocks) != 6 {
		t.Fatalf("got %d blocks, want 6", len(blocks))
	}
	for i, b := range blocks {
		h, ok := b.(model.Heading)
		if !ok {
			t.Fatalf("block %d is %T, want Heading", i, b)
		}
		if h.Level != i+1 {
			t.Errorf("heading %d level = %d, want %d", i, h.Level, i+1)
		}
	}
}

func TestOpenReader_Lists(t *testing.T) {
	src := `<html><body>
	<ul><li>alpha</li><li>beta</li></ul>
	<ol><li>first</li><li>second</li></ol>
</body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	blocks := r.Blocks()
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}

	tests := []struct {
		text    string
		ordered bool
	}{
		{"alpha", false},
		{"beta", false},
		{"first", true},
		{"second", true},
	}
	for i, tt := range tests {
		li, ok := blocks[i].(model.ListItem)
		if !ok {
			t.Fatalf("block %d is %T, want ListItem", i, blocks[i])
		}
		if li.Text != tt.text || li.Ordered != tt.ordered {
			t.Errorf("block %d = %+v, want {%q %v}", i, li, tt.text, tt.ordered)
		}
	}
}

func TestOpenReader_NestedList(t *testing.T) {
	src := `<html><body><ul><li>outer<ul><li>inner</li></ul></li></ul></body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	blocks := r.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %v", len(blocks), blocks)
	}
	if blocks[0].PlainText() != "outer" {
		t.Errorf("block 0 = %q, want 'outer'", blocks[0].PlainText())
	}
	if blocks[1].PlainText() != "inner" {
		t.Errorf("block 1 = %q, want 'inner'", blocks[1].PlainText())
	}
}

func TestOpenReader_Table(t *testing.T) {
	src := `<html><body><table>
	<tr><th>Name</th><th>Age</th></tr>
	<tr><td>Ada</td><td>36</td></tr>
</table></body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	blocks := r.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	tbl, ok := blocks[0].(model.Table)
	if !ok {
		t.Fatalf("block 0 is %T, want Table", blocks[0])
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0][0] != "Name" || tbl.Rows[1][1] != "36" {
		t.Errorf("table rows = %v", tbl.Rows)
	}
}

func TestOpenReader_SkipsScriptStyleNav(t *testing.T) {
	src := `<html><body>
	<nav><p>menu item</p></nav>
	<script>var x = "<p>not content</p>";</script>
	<style>p { color: red }</style>
	<p>real content</p>
</body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	blocks := r.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1: %v", len(blocks), blocks)
	}
	if blocks[0].PlainText() != "real content" {
		t.Errorf("block 0 = %q", blocks[0].PlainText())
	}
}

func TestOpenReader_SkipsEmptyText(t *testing.T) {
	src := `<html><body><p>   </p><p></p><h2>  </h2><p>kept</p></body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	blocks := r.Blocks()
	if len(blocks) != 1 || blocks[0].PlainText() != "kept" {
		t.Errorf("blocks = %v, want just 'kept'", blocks)
	}
}

func TestOpenReader_MalformedHTML(t *testing.T) {
	// The HTML parser is lenient; malformed input still parses.
	src := `<html><body><p>unclosed paragraph`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() should handle malformed HTML: %v", err)
	}
	if len(r.Blocks()) != 1 {
		t.Errorf("got %d blocks, want 1", len(r.Blocks()))
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.html")
	if err == nil {
		t.Fatal("Open() should fail for missing file")
	}
}

func TestReader_Document(t *testing.T) {
	src := `<html><head><title>T</title><meta name="author" content="A"></head>
<body><p>body</p></body></html>`

	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	doc := r.Document()
	if doc.Metadata.Title != "T" || doc.Metadata.Author != "A" {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if doc.BlockCount() != 1 {
		t.Errorf("BlockCount() = %d, want 1", doc.BlockCount())
	}
}
