package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/fastfind/internal/config"
	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
	"github.com/Aman-CERP/fastfind/internal/finder"
	"github.com/Aman-CERP/fastfind/internal/output"
)

// searchOptions holds the search flags. Values only override the
// configuration when the flag was set explicitly.
type searchOptions struct {
	name       string
	content    string
	context    int
	jobs       int
	bufferSize int
	ignoreCase bool
	after      bool

	threshold int64
	unordered bool
	hidden    bool
	noIgnore  bool
	follow    bool
	exclude   []string

	format string
	color  string
	stats  bool
}

// register adds the search flags to cmd. Output flags are only added for
// commands that print results.
func (o *searchOptions) register(cmd *cobra.Command, printing bool) {
	f := cmd.Flags()
	f.StringVarP(&o.name, "name", "n", "", "Regular expression matched against file base names (default: all files)")
	f.StringVarP(&o.content, "content", "c", "", "Regular expression matched against each line (required)")
	f.IntVarP(&o.context, "context", "C", finder.DefaultContext, "Lines of context shown before each match")
	f.IntVarP(&o.jobs, "jobs", "j", 0, "Files scanned in parallel (default: number of CPUs)")
	f.IntVarP(&o.bufferSize, "buffer-size", "b", finder.DefaultBufferSize, "Read buffer size in bytes for streamed files")
	f.BoolVarP(&o.ignoreCase, "ignore-case", "i", false, "Match both patterns case-insensitively")
	f.Int64Var(&o.threshold, "map-threshold", finder.DefaultMapThreshold, "Files larger than this many bytes are memory mapped")
	f.BoolVar(&o.hidden, "hidden", false, "Search hidden files and directories")
	f.BoolVar(&o.noIgnore, "no-ignore", false, "Do not honor .gitignore and .ignore files")
	f.BoolVar(&o.follow, "follow", false, "Follow symbolic links to files")
	f.StringArrayVar(&o.exclude, "exclude", nil, "Skip paths matching this glob, relative to the root (repeatable)")

	if !printing {
		return
	}
	f.BoolVarP(&o.after, "after", "A", false, "Also show the context lines after each match")
	f.BoolVar(&o.unordered, "unordered", false, "Print matches as files finish instead of sorted by path")
	f.StringVar(&o.format, "format", output.FormatText, "Output format: text or json")
	f.StringVar(&o.color, "color", output.ColorAuto, "Colorize output: auto, always or never")
	f.BoolVar(&o.stats, "stats", false, "Print a summary to stderr")
}

// apply overlays the explicitly set flags onto cfg.
func (o *searchOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("context") {
		cfg.Search.Context = o.context
	}
	if changed("jobs") {
		cfg.Search.Workers = o.jobs
	}
	if changed("buffer-size") {
		cfg.Search.BufferSize = o.bufferSize
	}
	if changed("map-threshold") {
		cfg.Search.MapThreshold = o.threshold
	}
	if changed("ignore-case") {
		cfg.Search.IgnoreCase = o.ignoreCase
	}
	if changed("unordered") {
		cfg.Search.Unordered = o.unordered
	}
	if changed("hidden") {
		cfg.Walk.Hidden = o.hidden
	}
	if changed("no-ignore") {
		cfg.Walk.NoIgnore = o.noIgnore
	}
	if changed("follow") {
		cfg.Walk.FollowSymlinks = o.follow
	}
	if changed("format") {
		cfg.Output.Format = o.format
	}
	if changed("color") {
		cfg.Output.Color = o.color
	}
	if changed("stats") {
		cfg.Output.Stats = o.stats
	}
	cfg.Walk.Exclude = append(cfg.Walk.Exclude, o.exclude...)
}

// resolve loads the configuration for root, applies the flags and compiles
// the patterns into a request.
func (o *searchOptions) resolve(cmd *cobra.Command, root string) (finder.Request, *config.Config, error) {
	if o.content == "" && !cmd.Flags().Changed("content") {
		return finder.Request{}, nil, fferrors.New(fferrors.ErrCodeInvalidInput, "a content pattern is required", nil).
			WithSuggestion("pass one with -c/--content, for example: fastfind -c TODO")
	}

	projectDir, err := config.FindProjectRoot(root)
	if err != nil {
		return finder.Request{}, nil, fferrors.Wrap(fferrors.ErrCodeInvalidInput, err)
	}
	cfg, err := config.Load(projectDir)
	if err != nil {
		return finder.Request{}, nil, err
	}
	o.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return finder.Request{}, nil, fferrors.ValidationError(err.Error(), err)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		useConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	}

	name, content, err := finder.CompilePatterns(o.name, o.content, cfg.Search.IgnoreCase)
	if err != nil {
		return finder.Request{}, nil, err
	}

	req := finder.Request{
		Root:            root,
		Name:            name,
		Content:         content,
		Context:         cfg.Search.Context,
		BufferSize:      cfg.Search.BufferSize,
		Workers:         cfg.Search.Workers,
		MapThreshold:    cfg.Search.MapThreshold,
		TrailingContext: o.after,
		Unordered:       cfg.Search.Unordered,
		Hidden:          cfg.Walk.Hidden,
		NoIgnore:        cfg.Walk.NoIgnore,
		FollowSymlinks:  cfg.Walk.FollowSymlinks,
		Exclude:         cfg.Walk.Exclude,
	}
	return req, cfg, nil
}

func runSearch(cmd *cobra.Command, opts *searchOptions, root string) error {
	req, cfg, err := opts.resolve(cmd, root)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	color, err := output.UseColor(cfg.Output.Color, stdout)
	if err != nil {
		return fferrors.ValidationError(err.Error(), err)
	}
	printer, err := output.NewPrinter(stdout, cfg.Output.Format, color)
	if err != nil {
		return fferrors.ValidationError(err.Error(), err)
	}

	slog.Debug("search starting",
		slog.String("root", req.Root),
		slog.String("name", opts.name),
		slog.String("content", opts.content),
		slog.Int("context", req.Context),
		slog.Int("workers", req.Workers))

	res, err := finder.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	slog.Debug("search complete",
		slog.Int("matches", res.Stats.Matches),
		slog.Int64("files_scanned", res.Stats.FilesScanned),
		slog.Int64("files_skipped", res.Stats.FilesSkipped),
		slog.Duration("duration", res.Stats.Duration))

	if err := printer.Print(res.Matches); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if cfg.Output.Stats {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), output.FormatStats(res.Stats))
	}
	return nil
}
