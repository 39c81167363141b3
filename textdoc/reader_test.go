package textdoc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_Paragraphs(t *testing.T) {
	path := writeFile(t, []byte("first paragraph\nstill first\n\nsecond paragraph\n\n\nthird\n"))

	doc, err := Read(path)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	want := []string{"first paragraph\nstill first", "second paragraph", "third"}
	if doc.BlockCount() != len(want) {
		t.Fatalf("got %d blocks, want %d", doc.BlockCount(), len(want))
	}
	for i, w := range want {
		if got := doc.Blocks[i].PlainText(); got != w {
			t.Errorf("block %d = %q, want %q", i, got, w)
		}
	}
}

func TestRead_CRLFNormalized(t *testing.T) {
	path := writeFile(t, []byte("one\r\n\r\ntwo\r\n"))

	doc, err := Read(path)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if doc.BlockCount() != 2 {
		t.Fatalf("got %d blocks, want 2", doc.BlockCount())
	}
	if doc.Blocks[0].PlainText() != "one" || doc.Blocks[1].PlainText() != "two" {
		t.Errorf("blocks = %v", doc.Blocks)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read("/nonexistent/file.txt")
	if err == nil {
		t.Fatal("Read() should fail for missing file")
	}
}

func TestDecode_UTF8(t *testing.T) {
	got, err := Decode([]byte("héllo wörld"))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if got != "héllo wörld" {
		t.Errorf("Decode() = %q", got)
	}
}

func TestDecode_StripsBOM(t *testing.T) {
	got, err := Decode([]byte("\xef\xbb\xbfhello"))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("Decode() = %q, want %q", got, "hello")
	}
}

func TestDecode_Windows1252Fallback(t *testing.T) {
	// "café" encoded in Windows-1252: é is 0xE9, invalid as UTF-8 here.
	got, err := Decode([]byte{'c', 'a', 'f', 0xE9})
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if got != "café" {
		t.Errorf("Decode() = %q, want %q", got, "café")
	}
}

func TestDecode_BinaryRejected(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nul bytes", []byte{'a', 0x00, 'b', 0x00}},
		{"control soup", []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}},
	}

	for _, tt := range tests {
		_, err := Decode(tt.data)
		if !errors.Is(err, ErrBinaryContent) {
			t.Errorf("%s: Decode() error = %v, want ErrBinaryContent", tt.name, err)
		}
	}
}

func TestRead_BinaryFile(t *testing.T) {
	path := writeFile(t, []byte{0x7f, 'E', 'L', 'F', 0x00, 0x00, 0x01, 0x02})

	_, err := Read(path)
	if !errors.Is(err, ErrBinaryContent) {
		t.Fatalf("Read() error = %v, want ErrBinaryContent", err)
	}
}
