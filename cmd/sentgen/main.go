/*
sentgen is a console utility generating synthetic datasets from YAML grammar descriptions.
Usage is

	sentgen generate -g <grammar> -o <file> [--format tsv|sqlite] [options]
	sentgen partial-completions -g <grammar> [options]
	sentgen check -g <grammar> [--rules]

generate expands the grammar up to --maxdepth and writes one example per root derivation;

partial-completions answers newline-delimited JSON requests read from standard input;

check compiles the grammar and lists its symbols with their minimum depths.

Settings may also be read from a YAML configuration file (-c), command line flags take precedence.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ava12/sentgen/generator"
	"github.com/ava12/sentgen/grammar"
	"github.com/ava12/sentgen/internal/config"
	"github.com/ava12/sentgen/langdef"
)

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configPath string
	cfg        *config.Config
	logger     *zap.Logger

	grammarPath       string
	maxDepth          int
	targetPruningSize int
	randomSeed        string
	locale            string
	debug             int
	parallelism       int

	output outputFlags
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "sentgen",
		Short:         "Grammar-driven synthetic dataset generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file")
	flags.StringVarP(&a.grammarPath, "grammar", "g", "", "grammar description file")
	flags.IntVar(&a.maxDepth, "maxdepth", generator.DefaultMaxDepth, "maximum depth of sentence generation")
	flags.IntVar(&a.targetPruningSize, "target-pruning-size", generator.DefaultTargetPruningSize,
		"approximate target size of every symbol table at every depth")
	flags.StringVar(&a.randomSeed, "random-seed", generator.DefaultSeed, "random seed")
	flags.StringVarP(&a.locale, "locale", "l", "en-US", "BCP 47 locale tag of generated language")
	flags.IntVar(&a.debug, "debug", 0, "generator log level, 0 (none) to 6 (everything)")
	flags.IntVar(&a.parallelism, "parallelism", 0, "number of symbols expanded simultaneously, default is GOMAXPROCS")

	root.AddCommand(a.generateCmd(), a.partialCmd(), a.checkCmd())
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root
}

// init loads configuration, applies flag overrides, and builds the logger writing to stderr.
func (a *app) init(cmd *cobra.Command) error {
	var e error
	if a.configPath == "" {
		a.cfg = config.DefaultConfig()
	} else {
		a.cfg, e = config.Load(a.configPath)
		if e != nil {
			return e
		}
	}

	flags := cmd.Flags()
	g := &a.cfg.Generation
	if flags.Changed("grammar") {
		g.Grammar = a.grammarPath
	}
	if flags.Changed("maxdepth") {
		g.MaxDepth = a.maxDepth
	}
	if flags.Changed("target-pruning-size") {
		g.TargetPruningSize = a.targetPruningSize
	}
	if flags.Changed("random-seed") {
		g.RandomSeed = a.randomSeed
	}
	if flags.Changed("locale") {
		g.Locale = a.locale
	}
	if flags.Changed("debug") {
		g.Debug = a.debug
	}
	if flags.Changed("parallelism") {
		g.Parallelism = a.parallelism
	}

	if cmd.Flags().Lookup("format") != nil {
		e = a.applyOutputFlags(cmd)
		if e != nil {
			return e
		}
	}

	e = a.cfg.Validate()
	if e != nil {
		return fmt.Errorf("invalid configuration: %w", e)
	}
	if g.Grammar == "" {
		return fmt.Errorf("grammar file is not set, use --grammar")
	}

	level := zapcore.InfoLevel
	if g.Debug > 0 {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	a.logger = zap.New(zapcore.NewCore(enc, zapcore.AddSync(a.stderr), level))
	return nil
}

func (a *app) loadGrammar() (*grammar.Grammar, error) {
	g, e := langdef.ParseFile(a.cfg.Generation.Grammar, nil)
	if e != nil {
		return nil, fmt.Errorf("failed to load grammar: %w", e)
	}
	return g, nil
}

func (a *app) newGenerator() (*generator.Generator, error) {
	g, e := a.loadGrammar()
	if e != nil {
		return nil, e
	}

	opts, e := a.cfg.GeneratorOptions(a.logger)
	if e != nil {
		return nil, e
	}
	return generator.New(g, opts)
}

func main() {
	if e := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); e != nil {
		fmt.Fprintln(os.Stderr, e)
		os.Exit(1)
	}
}
