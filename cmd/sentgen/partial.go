package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ava12/sentgen/internal/wire"
)

func (a *app) partialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partial-completions",
		Short: "Answer partial completion requests from standard input",
		Long: "Reads newline-delimited JSON requests from standard input and writes one JSON response per request.\n" +
			"A request holds either a partial sentence to expand by one step or a derivation tree to build a program from.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, e := a.newGenerator()
	if e != nil {
		return e
	}

	a.logger.Debug("serving partial completions")
	e = wire.NewServer(gen, a.logger, a.cfg.Server.MaxLineSize).Serve(ctx, a.stdin, a.stdout)
	if errors.Is(e, context.Canceled) {
		return nil
	}
	return e
}
