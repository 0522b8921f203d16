package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava12/sentgen/dataset"
	"github.com/ava12/sentgen/i18n"
	"github.com/ava12/sentgen/internal/config"
)

type outputFlags struct {
	path       string
	format     string
	idPrefix   string
	sample     bool
	noProgress bool
}

func (a *app) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&a.output.path, "output", "o", "", "output file, - for standard output")
	flags.StringVar(&a.output.format, "format", config.FormatTSV, "output format: tsv or sqlite")
	flags.StringVar(&a.output.idPrefix, "id-prefix", "", "prefix added to all example ids")
	flags.BoolVar(&a.output.sample, "sample", false, "resolve phrase alternatives randomly")
	flags.BoolVar(&a.output.noProgress, "no-progress", false, "disable progress output")
	return cmd
}

func (a *app) applyOutputFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	o := &a.cfg.Output
	if flags.Changed("output") {
		o.Path = a.output.path
	}
	if flags.Changed("format") {
		o.Format = a.output.format
	}
	if flags.Changed("id-prefix") {
		o.IDPrefix = a.output.idPrefix
	}
	if flags.Changed("sample") {
		o.Sample = a.output.sample
	}
	if flags.Changed("no-progress") {
		o.Progress = !a.output.noProgress
	}
	if o.Path == "" {
		return fmt.Errorf("output file is not set, use --output")
	}
	return nil
}

func (a *app) openWriter(ctx context.Context) (dataset.Writer, error) {
	o := &a.cfg.Output
	if o.Format == config.FormatSQLite {
		return dataset.OpenSQLite(ctx, o.Path)
	}

	if o.Path == "-" {
		return dataset.NewTSVWriter(a.stdout), nil
	}
	f, e := os.Create(o.Path)
	if e != nil {
		return nil, fmt.Errorf("failed to create output file: %w", e)
	}
	return &fileWriter{dataset.NewTSVWriter(f), f}, nil
}

// fileWriter closes the output file after the sink.
type fileWriter struct {
	dataset.Writer
	f *os.File
}

func (fw *fileWriter) Close() error {
	e := fw.Writer.Close()
	ce := fw.f.Close()
	if e == nil {
		e = ce
	}
	return e
}

// progressFunc reports example counts on terminals only, and never together with debug logging.
func (a *app) progressFunc() func(int) {
	if !a.cfg.Output.Progress || a.cfg.Generation.Debug > 0 {
		return nil
	}
	f, is := a.stderr.(*os.File)
	if !is || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return func(written int) {
		if written%1000 == 0 {
			fmt.Fprintf(f, "\r%d examples", written)
		}
	}
}

func (a *app) generate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, e := a.newGenerator()
	if e != nil {
		return e
	}
	pack, e := i18n.Get(a.cfg.Generation.Locale)
	if e != nil {
		return e
	}

	w, e := a.openWriter(ctx)
	if e != nil {
		return e
	}

	progress := a.progressFunc()
	b := &dataset.Builder{
		Generator: gen,
		Pack:      pack,
		IDPrefix:  a.cfg.Output.IDPrefix,
		Sample:    a.cfg.Output.Sample,
		Progress:  progress,
		Logger:    a.logger,
	}
	n, e := b.Build(ctx, w)
	e = dataset.Finish(w, e)
	if progress != nil {
		fmt.Fprintln(a.stderr)
	}
	if e != nil {
		return e
	}

	stats := gen.Stats()
	a.logger.Info("dataset generated",
		zap.String("output", a.cfg.Output.Path),
		zap.Int("examples", n),
		zap.Int("derivations", stats.Derivations),
		zap.Int64("pruned", stats.Pruned))
	return nil
}
