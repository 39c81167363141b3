package docshift

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docshift/docshift/format"
	"github.com/docshift/docshift/model"
	"github.com/docshift/docshift/ocr"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

// countingEngine records how many times it was asked to recognize.
type countingEngine struct {
	name      string
	priority  int
	available bool
	text      string
	conf      float64
	err       error
	calls     int
}

func (e *countingEngine) Name() string    { return e.name }
func (e *countingEngine) Priority() int   { return e.priority }
func (e *countingEngine) Available() bool { return e.available }

func (e *countingEngine) Recognize(ctx context.Context, imageData []byte, lang string) (*ocr.Result, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &ocr.Result{Text: e.text, Lines: strings.Split(e.text, "\n"), Confidence: e.conf}, nil
}

func TestConvertMarkdownToHTML(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "doc.md", []byte("# Title\nBody text"))
	out := filepath.Join(dir, "doc.html")

	res := New().ConvertFile(context.Background(), in, out)
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	html := string(got)
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Errorf("missing heading in output:\n%s", html)
	}
	if !strings.Contains(html, "<p>Body text</p>") {
		t.Errorf("missing paragraph in output:\n%s", html)
	}
}

func TestConvertSourceFormatOverride(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "doc.txt", []byte("# Title\n\nBody text"))
	out := filepath.Join(dir, "doc.html")

	res := New().Convert(context.Background(), Request{
		InputPath:    in,
		OutputPath:   out,
		SourceFormat: format.Markdown,
	})
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	html := string(got)
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Errorf("forced markdown source not honored:\n%s", html)
	}
	if strings.Contains(html, "<p># Title") {
		t.Errorf("input was parsed as plain text:\n%s", html)
	}
}

// TestConvertMatrix seeds one markdown fixture, renders it to every
// writable format, then converts each rendering to every writable
// format again. Every pair must succeed with non-empty output.
func TestConvertMatrix(t *testing.T) {
	dir := t.TempDir()
	seed := writeFile(t, dir, "seed.md", []byte("# Title\n\nBody text\n\n- one\n- two"))

	conv := New()
	targets := conv.WriteFormats()

	inputs := []string{seed}
	for _, target := range targets {
		out := filepath.Join(dir, "seed_"+target.String()+target.Extension())
		res := conv.Convert(context.Background(), Request{
			InputPath:    seed,
			OutputPath:   out,
			TargetFormat: target,
		})
		if !res.Success {
			t.Fatalf("seed to %s failed: %v", target, res.Err)
		}
		inputs = append(inputs, out)
	}

	for _, in := range inputs {
		for _, target := range targets {
			name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			out := filepath.Join(dir, name+"_to_"+target.String()+target.Extension())
			res := conv.Convert(context.Background(), Request{
				InputPath:    in,
				OutputPath:   out,
				TargetFormat: target,
			})
			if !res.Success {
				t.Errorf("%s to %s failed: %v", filepath.Base(in), target, res.Err)
				continue
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Errorf("missing output for %s to %s: %v", filepath.Base(in), target, err)
				continue
			}
			if info.Size() == 0 {
				t.Errorf("empty output for %s to %s", filepath.Base(in), target)
			}
		}
	}
}

func TestMarkdownHTMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "doc.md", []byte("# Title\n\nBody text\n\n## Section\n\nMore text"))
	mid := filepath.Join(dir, "doc.html")
	back := filepath.Join(dir, "back.md")

	conv := New()
	if res := conv.ConvertFile(context.Background(), in, mid); !res.Success {
		t.Fatalf("markdown to html failed: %v", res.Err)
	}
	if res := conv.ConvertFile(context.Background(), mid, back); !res.Success {
		t.Fatalf("html to markdown failed: %v", res.Err)
	}

	got, err := os.ReadFile(back)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Title", "## Section", "Body text", "More text"} {
		if !strings.Contains(string(got), want) {
			t.Errorf("round trip lost %q:\n%s", want, got)
		}
	}
}

func TestConvertTextToTextPreservesContent(t *testing.T) {
	dir := t.TempDir()
	const body = "First paragraph.\n\nSecond paragraph."
	in := writeFile(t, dir, "notes.txt", []byte(body))
	out := filepath.Join(dir, "copy.txt")

	res := New().ConvertFile(context.Background(), in, out)
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "First paragraph.\nSecond paragraph.\n"
	if string(got) != want {
		t.Errorf("content changed: got %q, want %q", got, want)
	}
}

func TestConvertBinaryTextFails(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "garbage.txt", []byte{0x00, 0x01, 0xff, 0xfe, 0x00})
	out := filepath.Join(dir, "garbage.md")

	res := New().ConvertFile(context.Background(), in, out)
	if res.Success {
		t.Fatal("expected failure for binary content")
	}
	if res.Kind != "CorruptContent" {
		t.Errorf("kind = %q, want CorruptContent", res.Kind)
	}
	if !errors.Is(res.Err, ErrCorruptContent) {
		t.Errorf("error %v does not wrap ErrCorruptContent", res.Err)
	}
}

func TestConvertMissingInput(t *testing.T) {
	dir := t.TempDir()
	res := New().ConvertFile(context.Background(),
		filepath.Join(dir, "missing.md"), filepath.Join(dir, "out.html"))
	if res.Success {
		t.Fatal("expected failure for missing input")
	}
	if res.Kind != "UnreadableSource" {
		t.Errorf("kind = %q, want UnreadableSource", res.Kind)
	}
}

func TestConvertUnknownTarget(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "doc.md", []byte("# Title"))
	res := New().ConvertFile(context.Background(), in, filepath.Join(dir, "out.xyz"))
	if res.Success {
		t.Fatal("expected failure for unknown target extension")
	}
	if res.Kind != "UnsupportedFormat" {
		t.Errorf("kind = %q, want UnsupportedFormat", res.Kind)
	}
}

func TestConvertImageUsesOCR(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "scan.png")
	out := filepath.Join(dir, "scan.txt")

	engine := &countingEngine{name: "local", priority: ocr.PriorityLocal, available: true, text: "hello world", conf: 97.5}
	conv := New(WithOCREngines(engine))

	res := conv.Convert(context.Background(), Request{
		InputPath:  in,
		OutputPath: out,
		OCREnabled: true,
	})
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Err)
	}
	if res.OCREngine != "local" {
		t.Errorf("engine = %q, want local", res.OCREngine)
	}
	if res.OCRConfidence != 97.5 {
		t.Errorf("confidence = %v, want 97.5", res.OCRConfidence)
	}
	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1", engine.calls)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "hello world") {
		t.Errorf("output missing recognized text: %q", got)
	}
}

func TestConvertImageOCRDisabled(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "scan.png")

	engine := &countingEngine{name: "local", priority: ocr.PriorityLocal, available: true, text: "hello"}
	conv := New(WithOCREngines(engine))

	res := conv.Convert(context.Background(), Request{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "scan.txt"),
		OCREnabled: false,
	})
	if res.Success {
		t.Fatal("expected failure with OCR disabled")
	}
	if res.Kind != "OCRDisabled" {
		t.Errorf("kind = %q, want OCRDisabled", res.Kind)
	}
	if engine.calls != 0 {
		t.Errorf("engine invoked %d times despite OCR being disabled", engine.calls)
	}
}

func TestConvertImageAllEnginesFail(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "scan.png")

	engine := &countingEngine{name: "local", priority: ocr.PriorityLocal, available: true, err: errors.New("boom")}
	conv := New(WithOCREngines(engine))

	res := conv.Convert(context.Background(), Request{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "scan.txt"),
		OCREnabled: true,
	})
	if res.Success {
		t.Fatal("expected failure when the only engine errors")
	}
	if res.Kind != "AllEnginesFailed" {
		t.Errorf("kind = %q, want AllEnginesFailed", res.Kind)
	}
}

func TestConvertFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "big.md", []byte(strings.Repeat("x", 1024)))

	conv := New(WithMaxFileSize(512))
	res := conv.ConvertFile(context.Background(), in, filepath.Join(dir, "big.html"))
	if res.Success {
		t.Fatal("expected failure for oversized input")
	}
	if res.Kind != "FileTooLarge" {
		t.Errorf("kind = %q, want FileTooLarge", res.Kind)
	}
}

func TestFileTooLargeSkipsReader(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "big.md", []byte(strings.Repeat("x", 1024)))

	readerCalls := 0
	pl := &pipeline{
		registry: &Registry{
			readers: map[format.ID]ReaderFunc{
				format.Markdown: func(ctx context.Context, path, lang string) (*model.Document, error) {
					readerCalls++
					return model.NewDocument(), nil
				},
			},
			writers: map[format.ID]WriterFunc{
				format.HTML: func(doc *model.Document, path string) error { return nil },
			},
		},
		log: nopLogger(),
	}

	res := pl.convert(context.Background(), Request{
		InputPath:   in,
		OutputPath:  filepath.Join(dir, "big.html"),
		MaxFileSize: 512,
	})
	if res.Success {
		t.Fatal("expected failure for oversized input")
	}
	if res.Kind != "FileTooLarge" {
		t.Errorf("kind = %q, want FileTooLarge", res.Kind)
	}
	if readerCalls != 0 {
		t.Errorf("reader invoked %d times for oversized input", readerCalls)
	}
}

func TestFillAppliesDefaults(t *testing.T) {
	conv := New(WithTimeout(5*time.Second), WithMaxFileSize(1024), WithOCRLanguage("deu"))

	filled := conv.fill(Request{})
	if filled.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want converter default", filled.Timeout)
	}
	if filled.MaxFileSize != 1024 {
		t.Errorf("max size = %d, want converter default", filled.MaxFileSize)
	}
	if filled.Language != "deu" {
		t.Errorf("language = %q, want deu", filled.Language)
	}

	explicit := conv.fill(Request{Timeout: time.Second, MaxFileSize: 99, Language: "fra"})
	if explicit.Timeout != time.Second || explicit.MaxFileSize != 99 || explicit.Language != "fra" {
		t.Errorf("explicit request fields were overwritten: %+v", explicit)
	}
}

func TestConvertProgressStages(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "doc.md", []byte("# Title\nBody"))
	out := filepath.Join(dir, "doc.txt")

	var mu strings.Builder
	conv := New(WithProgress(func(path string, stage Stage) {
		mu.WriteString(stage.String())
		mu.WriteString(" ")
	}))
	res := conv.ConvertFile(context.Background(), in, out)
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Err)
	}
	want := "detecting reading writing done "
	if mu.String() != want {
		t.Errorf("stages = %q, want %q", mu.String(), want)
	}
}

func TestConvertProgressStagesOCR(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "scan.png")
	out := filepath.Join(dir, "scan.txt")

	engine := &countingEngine{name: "local", priority: ocr.PriorityLocal, available: true, text: "hello", conf: 90}
	var stages strings.Builder
	conv := New(
		WithOCREngines(engine),
		WithProgress(func(path string, stage Stage) {
			stages.WriteString(stage.String())
			stages.WriteString(" ")
		}),
	)
	res := conv.Convert(context.Background(), Request{
		InputPath:  in,
		OutputPath: out,
		OCREnabled: true,
	})
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Err)
	}
	want := "detecting reading extracting-ocr writing done "
	if stages.String() != want {
		t.Errorf("stages = %q, want %q", stages.String(), want)
	}
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	var reqs []Request
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		in := writeFile(t, dir, name+".md", []byte("# "+name))
		reqs = append(reqs, Request{
			InputPath:  in,
			OutputPath: filepath.Join(dir, name+".html"),
		})
	}
	bad := writeFile(t, dir, "bad.txt", []byte{0x00, 0xff, 0x00})
	reqs = append(reqs, Request{
		InputPath:  bad,
		OutputPath: filepath.Join(dir, "bad.html"),
	})

	conv := New(WithWorkers(3))
	results := conv.ConvertBatch(context.Background(), reqs)

	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
	if results.Succeeded() != 5 {
		t.Errorf("succeeded = %d, want 5", results.Succeeded())
	}
	if results.Failed() != 1 {
		t.Errorf("failed = %d, want 1", results.Failed())
	}
	if r := results[bad]; r.Kind != "CorruptContent" {
		t.Errorf("bad input kind = %q, want CorruptContent", r.Kind)
	}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		out := filepath.Join(dir, name+".html")
		if _, err := os.Stat(out); err != nil {
			t.Errorf("missing output %s: %v", out, err)
		}
	}
}

func TestConvertBatchCanceledContext(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "doc.md", []byte("# Title"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := New().ConvertBatch(ctx, []Request{{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "doc.html"),
	}})
	if results.Succeeded() != 0 {
		t.Error("expected no successes under a canceled context")
	}
}

func TestConvertTimeout(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "scan.png")

	slow := &slowEngine{delay: 200 * time.Millisecond}
	conv := New(WithOCREngines(slow), WithTimeout(20*time.Millisecond))

	res := conv.Convert(context.Background(), Request{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "scan.txt"),
		OCREnabled: true,
	})
	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if res.Kind != "Timeout" {
		t.Errorf("kind = %q, want Timeout", res.Kind)
	}
	if _, err := os.Stat(filepath.Join(dir, "scan.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Error("partial output was not removed")
	}
}

type slowEngine struct {
	delay time.Duration
}

func (e *slowEngine) Name() string    { return "slow" }
func (e *slowEngine) Priority() int   { return ocr.PriorityLocal }
func (e *slowEngine) Available() bool { return true }

func (e *slowEngine) Recognize(ctx context.Context, image []byte, lang string) (*ocr.Result, error) {
	select {
	case <-time.After(e.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &ocr.Result{Text: "slow text", Confidence: 90}, nil
}

func TestReadAndWriteFormats(t *testing.T) {
	conv := New()
	if got := len(conv.ReadFormats()); got != 8 {
		t.Errorf("read formats = %d, want 8", got)
	}
	if got := len(conv.WriteFormats()); got != 7 {
		t.Errorf("write formats = %d, want 7", got)
	}
	for _, id := range conv.WriteFormats() {
		if id == format.Image {
			t.Error("image should not be writable")
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("plain"), ""},
		{ErrCorruptContent, "CorruptContent"},
		{ErrFileTooLarge, "FileTooLarge"},
		{ErrTimeout, "Timeout"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
