// Package ui provides the interactive search viewer behind `fastfind tui`.
//
// The viewer shows matches in a list on the left and the selected match with
// its surrounding lines on the right. Searches run in the background; a new
// search cancels the one in flight.
package ui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Aman-CERP/fastfind/internal/finder"
	"github.com/Aman-CERP/fastfind/internal/output"
)

// ErrNotTTY is returned by Run when stdout is not a terminal.
var ErrNotTTY = errors.New("the interactive viewer needs a terminal")

// SearchFunc runs one search.
type SearchFunc func(ctx context.Context, req finder.Request) (*finder.Result, error)

// Config configures the viewer.
type Config struct {
	// Request carries root, limits and walk options. Its Name and Content
	// matchers are replaced with the compiled patterns below on every search.
	Request        finder.Request
	NamePattern    string
	ContentPattern string
	IgnoreCase     bool
	NoColor        bool

	// Search defaults to finder.Search.
	Search SearchFunc
}

// Run shows the viewer until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if !output.IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	if cfg.NoColor || output.DetectNoColor() {
		cfg.NoColor = true
	}

	m := newViewerModel(ctx, cfg)
	defer m.cancelSearch()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
