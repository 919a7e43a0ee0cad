package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rdswitchboard/doinorm/internal/graph"
	"github.com/rdswitchboard/doinorm/internal/normalize"
)

func runNormalize(opts *RootOptions, dir string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	formatter := &OutputFormatter{
		Format: resolveFormat(opts.Format, cmd.OutOrStdout()),
		Writer: cmd.OutOrStdout(),
	}

	slog.Info("opening graph store", "dir", dir)
	sess, err := graph.OpenSession(dir, graph.ReadWrite)
	if err != nil {
		return fail(formatter, WrapExitError(ExitFailure, "failed to open graph store", err))
	}
	defer func() {
		if err := sess.Release(); err != nil {
			slog.Error("error closing graph store", "error", err)
		}
	}()
	slog.Info("graph store ready", "mode", sess.Store().Mode())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, rolling back", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	pass := normalize.New(normalize.Options{
		DryRun: opts.DryRun,
		Logger: logger,
	})
	report, err := pass.Run(ctx, normalize.FromGraph(sess.Store()))
	if err != nil {
		return fail(formatter, WrapExitError(ExitFailure, "normalization failed", err))
	}

	return formatter.Success(reportView{Store: dir, Report: report})
}

// fail writes the JSON error response when one is due and returns err.
func fail(f *OutputFormatter, err *ExitError) error {
	if outErr := f.Error(err); outErr != nil {
		slog.Error("error writing output", "error", outErr)
	}
	return err
}
