// Package cmd provides the CLI commands for fastfind.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
	"github.com/Aman-CERP/fastfind/internal/logging"
	"github.com/Aman-CERP/fastfind/internal/output"
	"github.com/Aman-CERP/fastfind/internal/profiling"
	"github.com/Aman-CERP/fastfind/pkg/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	debug   bool
	profile profiling.Options

	session        *profiling.Session
	loggingCleanup func()
}

// NewRootCmd creates the root command for the fastfind CLI.
// The root command itself runs a search.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "fastfind [root]",
		Short: "Parallel content-aware file search",
		Long: `fastfind walks a directory tree, keeps the files whose name matches a
regular expression, and reports every line matching a content expression
together with the lines around it.

Files are scanned in parallel. Large files are memory mapped, small ones are
streamed. .gitignore and .ignore rules are honored.`,
		Example: `  # Lines containing "TODO" in Go files, with one line of context
  fastfind -n '\.go$' -c TODO

  # Two lines before and after each match, as JSON
  fastfind ./src -c 'func \w+\(' -C 2 -A --format json`,
		Args:          maxOneRoot,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, rootArg(args))
		},
	}

	cmd.SetVersionTemplate("fastfind version {{.Version}}\n")
	cmd.SetFlagErrorFunc(flagError)
	opts.register(cmd, true)

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Write debug logs to "+logging.DefaultLogPath())
	cmd.PersistentFlags().StringVar(&g.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Mem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = g.start
	cmd.PersistentPostRunE = g.stop

	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command, cancelling it on SIGINT or SIGTERM.
// Errors are printed to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	failed, err := cmd.ExecuteContextC(ctx)
	if err != nil {
		slog.Debug("command failed", slog.Any("error", fferrors.FormatForLog(err)))
		printError(cmd.ErrOrStderr(), failed, err)
	}
	return err
}

// printError writes err to w, as a JSON object when the failed command was
// asked for JSON output.
func printError(w io.Writer, failed *cobra.Command, err error) {
	if wantsJSON(failed) {
		if data, jsonErr := fferrors.FormatJSON(err); jsonErr == nil {
			_, _ = fmt.Fprintln(w, string(data))
			return
		}
	}
	_, _ = fmt.Fprint(w, fferrors.FormatForCLI(err))
}

func wantsJSON(c *cobra.Command) bool {
	if c == nil {
		return false
	}
	if f := c.Flags().Lookup("format"); f != nil && f.Value.String() == output.FormatJSON {
		return true
	}
	f := c.Flags().Lookup("json")
	return f != nil && f.Value.String() == "true"
}

// start installs logging and starts profiling.
func (g *globalOptions) start(cmd *cobra.Command, _ []string) error {
	if g.debug {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		g.loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Short()),
			slog.String("command", cmd.CommandPath()))
	} else {
		useConsoleLogger(cmd.ErrOrStderr(), "warn")
	}

	if g.profile.Enabled() {
		s, err := profiling.Start(g.profile)
		if err != nil {
			return err
		}
		g.session = s
	}
	return nil
}

// stop ends profiling and flushes the debug log.
func (g *globalOptions) stop(_ *cobra.Command, _ []string) error {
	var err error
	if g.session != nil {
		err = g.session.Stop()
		slog.Debug("profiling stopped", slog.String("memory", profiling.MemSummary()))
		g.session = nil
	}
	if g.loggingCleanup != nil {
		slog.Info("debug logging stopped")
		g.loggingCleanup()
		g.loggingCleanup = nil
	}
	return err
}

// useConsoleLogger routes slog to w as text at level.
func useConsoleLogger(w io.Writer, level string) {
	slog.SetDefault(logging.Console(w, level))
}

func maxOneRoot(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fferrors.New(fferrors.ErrCodeInvalidInput,
			fmt.Sprintf("expected at most one search root, got %d arguments", len(args)), nil).
			WithSuggestion("quote patterns and pass them with -n/--name and -c/--content")
	}
	return nil
}

func flagError(_ *cobra.Command, err error) error {
	return fferrors.New(fferrors.ErrCodeInvalidInput, err.Error(), err).
		WithSuggestion("run 'fastfind --help' for usage")
}

func rootArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
