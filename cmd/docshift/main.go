// Command docshift converts documents between formats from the
// command line.
//
// Usage:
//
//	docshift [flags] input [input...]
//	docshift --batch dir -t html
//	docshift --list-formats
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/docshift/docshift"
	"github.com/docshift/docshift/config"
	"github.com/docshift/docshift/format"
	"github.com/docshift/docshift/ocr"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "docshift:", err)
		os.Exit(1)
	}
}

type cliOptions struct {
	output      string
	to          string
	from        string
	ocr         bool
	ocrBackend  string
	batchDir    string
	workers     int
	configPath  string
	listFormats bool
	verbose     bool
	quiet       bool
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("docshift", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts cliOptions
	flags.StringVarP(&opts.output, "output", "o", "", "output file path")
	flags.StringVarP(&opts.to, "to", "t", "", "target format (text, markdown, html, docx, pdf, rtf, epub)")
	flags.StringVarP(&opts.from, "from", "f", "", "source format (default: auto-detect)")
	flags.BoolVar(&opts.ocr, "ocr", false, "enable OCR for image inputs")
	flags.StringVar(&opts.ocrBackend, "ocr-backend", "", "use only the named OCR backend (local, google, aws, azure)")
	flags.StringVar(&opts.batchDir, "batch", "", "convert every supported file in the directory")
	flags.IntVar(&opts.workers, "workers", 0, "batch worker count (default from config)")
	flags.StringVar(&opts.configPath, "config", "", "JSON config file path")
	flags.BoolVar(&opts.listFormats, "list-formats", false, "list readable and writable formats")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "errors only")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	conv, err := newConverter(cfg, opts, stderr)
	if err != nil {
		return err
	}

	if opts.listFormats {
		listFormats(stdout, conv)
		return nil
	}

	ctx := context.Background()

	if opts.batchDir != "" {
		return runBatch(ctx, conv, cfg, opts, stdout, stderr)
	}

	inputs := flags.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "usage: docshift [flags] input [input...]")
		fmt.Fprint(stderr, flags.FlagUsages())
		return fmt.Errorf("no input files")
	}
	if opts.output != "" && len(inputs) > 1 {
		return fmt.Errorf("-o accepts a single input, got %d", len(inputs))
	}

	target, err := targetFormat(cfg, opts)
	if err != nil {
		return err
	}
	source, err := sourceFormat(opts)
	if err != nil {
		return err
	}

	failed := 0
	for _, in := range inputs {
		out := opts.output
		if out == "" {
			out = replaceExt(in, target.Extension())
		}
		res := conv.Convert(ctx, docshift.Request{
			InputPath:    in,
			OutputPath:   out,
			SourceFormat: source,
			TargetFormat: target,
			OCREnabled:   opts.ocr,
		})
		if !res.Success {
			failed++
			fmt.Fprintf(stderr, "%s: %s: %v\n", in, res.Kind, res.Err)
			continue
		}
		if !opts.quiet {
			fmt.Fprintf(stdout, "%s -> %s (%s)\n", in, res.OutputPath, res.Elapsed.Round(0))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(inputs))
	}
	return nil
}

func newConverter(cfg *config.Config, opts cliOptions, stderr io.Writer) (*docshift.Converter, error) {
	engines := cfg.Engines()
	if opts.ocrBackend != "" {
		var selected ocr.Engine
		for _, e := range engines {
			if e.Name() == opts.ocrBackend {
				selected = e
				break
			}
		}
		if selected == nil {
			return nil, fmt.Errorf("OCR backend %q is not configured", opts.ocrBackend)
		}
		engines = []ocr.Engine{selected}
	}

	level := slog.LevelInfo
	switch {
	case opts.verbose:
		level = slog.LevelDebug
	case opts.quiet:
		level = slog.LevelError
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return docshift.New(
		docshift.WithTimeout(cfg.Timeout),
		docshift.WithMaxFileSize(cfg.MaxFileSize()),
		docshift.WithWorkers(cfg.Workers),
		docshift.WithOCREngines(engines...),
		docshift.WithOCRConfidenceThreshold(cfg.OCR.ConfidenceThreshold),
		docshift.WithOCRLanguage(cfg.OCR.Language),
		docshift.WithCacheSize(cfg.OCR.CacheSize),
		docshift.WithLogger(log),
	), nil
}

// targetFormat resolves -t, falling back to the config default. -o
// with a recognized extension wins over both.
func targetFormat(cfg *config.Config, opts cliOptions) (format.ID, error) {
	if opts.output != "" {
		if id := format.DetectExtension(opts.output); id != format.Unknown {
			return id, nil
		}
	}
	name := opts.to
	if name == "" {
		name = cfg.TargetFormat
	}
	id, err := format.Parse(name)
	if err != nil {
		return format.Unknown, err
	}
	if id == format.Image {
		return format.Unknown, fmt.Errorf("cannot write image output")
	}
	return id, nil
}

// sourceFormat resolves -f. Empty means auto-detect.
func sourceFormat(opts cliOptions) (format.ID, error) {
	if opts.from == "" {
		return format.Unknown, nil
	}
	return format.Parse(opts.from)
}

func runBatch(ctx context.Context, conv *docshift.Converter, cfg *config.Config, opts cliOptions, stdout, stderr io.Writer) error {
	target, err := targetFormat(cfg, opts)
	if err != nil {
		return err
	}
	source, err := sourceFormat(opts)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(opts.batchDir)
	if err != nil {
		return err
	}

	var reqs []docshift.Request
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(opts.batchDir, e.Name())
		// A forced source format admits any extension.
		if source == format.Unknown && format.DetectExtension(path) == format.Unknown {
			continue
		}
		reqs = append(reqs, docshift.Request{
			InputPath:    path,
			OutputPath:   replaceExt(path, target.Extension()),
			SourceFormat: source,
			TargetFormat: target,
			OCREnabled:   opts.ocr,
		})
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no convertible files in %s", opts.batchDir)
	}

	results := conv.ConvertBatch(ctx, reqs)
	for _, req := range reqs {
		res := results[req.InputPath]
		if !res.Success {
			fmt.Fprintf(stderr, "%s: %s: %v\n", req.InputPath, res.Kind, res.Err)
			continue
		}
		if !opts.quiet {
			fmt.Fprintf(stdout, "%s -> %s\n", req.InputPath, res.OutputPath)
		}
	}
	if n := results.Failed(); n > 0 {
		return fmt.Errorf("%d of %d conversions failed", n, len(reqs))
	}
	fmt.Fprintf(stdout, "converted %d files\n", results.Succeeded())
	return nil
}

func listFormats(w io.Writer, conv *docshift.Converter) {
	names := func(ids []format.ID) string {
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = id.String()
		}
		return strings.Join(out, ", ")
	}
	fmt.Fprintln(w, "read: ", names(conv.ReadFormats()))
	fmt.Fprintln(w, "write:", names(conv.WriteFormats()))
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
