package cmd

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
	"github.com/Aman-CERP/fastfind/internal/logging"
	"github.com/Aman-CERP/fastfind/internal/output"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	opts := logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the debug log",
		Long: `Show the log written by runs with --debug, including every file a
search skipped and why.

By default the last 50 lines are shown. Use -f to follow new entries.`,
		Example: `  fastfind logs                  # last 50 lines
  fastfind logs -n 200 --level warn
  fastfind logs --filter 'skipping file'
  fastfind logs -f               # follow, like tail -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only show lines matching this regular expression")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file (default: "+logging.DefaultLogPath()+")")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	if opts.lines < 1 {
		return fferrors.New(fferrors.ErrCodeInvalidInput,
			fmt.Sprintf("--lines must be at least 1, got %d", opts.lines), nil)
	}

	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return fferrors.New(fferrors.ErrCodeInvalidInput, err.Error(), err)
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return fferrors.PatternError("filter", opts.filter, err)
		}
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || output.DetectNoColor() || !output.IsTTY(stdout),
	}, stdout)

	_, _ = fmt.Fprintf(stderr, "Log file: %s\n---\n", path)

	if !opts.follow {
		entries, err := viewer.Tail(path, opts.lines)
		if err != nil {
			return err
		}
		viewer.Print(entries)
		return nil
	}

	_, _ = fmt.Fprintln(stderr, "Following... (Ctrl+C to stop)")
	return followLogs(cmd.Context(), viewer, path)
}

func followLogs(ctx context.Context, viewer *logging.Viewer, path string) error {
	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)

	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			viewer.Print([]logging.LogEntry{entry})
		case err := <-errCh:
			return err
		}
	}
}
