package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
	"github.com/Aman-CERP/fastfind/internal/finder"
)

// listShare is the percentage of the width given to the results list.
const listShare = 30

// searchDoneMsg carries the outcome of the search with the given sequence number.
type searchDoneMsg struct {
	seq    int
	result *finder.Result
	err    error
}

// viewerModel is the bubbletea model for the viewer.
type viewerModel struct {
	cfg    Config
	styles Styles
	ctx    context.Context

	// in-flight search
	seq       int
	cancel    context.CancelFunc
	searching bool

	results  []finder.Match
	stats    finder.Stats
	selected int
	offset   int

	contentPattern string
	editing        bool
	input          textinput.Model
	spinner        spinner.Model
	status         string

	width  int
	height int
}

func newViewerModel(ctx context.Context, cfg Config) *viewerModel {
	if cfg.Search == nil {
		cfg.Search = finder.Search
	}
	styles := GetStyles(cfg.NoColor)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	in := textinput.New()
	in.Prompt = "content> "
	in.CharLimit = 256

	return &viewerModel{
		cfg:            cfg,
		styles:         styles,
		ctx:            ctx,
		contentPattern: cfg.ContentPattern,
		input:          in,
		spinner:        s,
		width:          80,
		height:         24,
	}
}

// Init implements tea.Model.
func (m *viewerModel) Init() tea.Cmd {
	return m.withSpinner(m.beginSearch())
}

// Update implements tea.Model.
func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m, m.updateEditing(msg)
		}
		return m, m.updateBrowsing(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.width-12)
		m.scrollToSelected()

	case searchDoneMsg:
		m.finishSearch(msg)

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		if m.editing {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *viewerModel) updateBrowsing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancelSearch()
		return tea.Quit
	case "up", "k":
		m.selected = max(0, m.selected-1)
	case "down", "j":
		if len(m.results) > 0 {
			m.selected = (m.selected + 1) % len(m.results)
		}
	case "pgup":
		m.selected = max(0, m.selected-m.listRows())
	case "pgdown":
		m.selected = max(0, min(len(m.results)-1, m.selected+m.listRows()))
	case "enter":
		return m.withSpinner(m.beginSearch())
	case "/":
		m.editing = true
		m.input.SetValue(m.contentPattern)
		m.input.CursorEnd()
		return m.input.Focus()
	}
	m.scrollToSelected()
	return nil
}

func (m *viewerModel) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.cancelSearch()
		return tea.Quit
	case "esc":
		m.editing = false
		m.input.Blur()
		return nil
	case "enter":
		m.editing = false
		m.input.Blur()
		m.contentPattern = m.input.Value()
		return m.withSpinner(m.beginSearch())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// beginSearch compiles the current patterns and returns a command running the
// search. On a pattern error the status bar shows it, the previous results
// stay, and no command is returned.
func (m *viewerModel) beginSearch() tea.Cmd {
	name, content, err := finder.CompilePatterns(m.cfg.NamePattern, m.contentPattern, m.cfg.IgnoreCase)
	if err != nil {
		m.status = statusText(err)
		return nil
	}

	m.cancelSearch()
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.seq++
	m.searching = true
	m.status = ""

	req := m.cfg.Request
	req.Name = name
	req.Content = content
	req.TrailingContext = true
	seq, search := m.seq, m.cfg.Search

	return func() tea.Msg {
		res, err := search(ctx, req)
		return searchDoneMsg{seq: seq, result: res, err: err}
	}
}

func (m *viewerModel) finishSearch(msg searchDoneMsg) {
	if msg.seq != m.seq {
		return
	}
	m.searching = false
	m.cancelSearch()

	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) {
			m.status = statusText(msg.err)
		}
		return
	}
	m.results = msg.result.Matches
	m.stats = msg.result.Stats
	m.selected = 0
	m.offset = 0
}

func (m *viewerModel) cancelSearch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *viewerModel) withSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

// listRows is the number of result rows visible in the list pane: the
// terminal height minus the status bar, the pane borders and the pane title.
func (m *viewerModel) listRows() int {
	return max(1, m.height-4)
}

func (m *viewerModel) scrollToSelected() {
	rows := m.listRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
}

// View implements tea.Model.
func (m *viewerModel) View() string {
	paneHeight := max(3, m.height-1)
	listWidth := max(12, m.width*listShare/100)
	previewWidth := max(12, m.width-listWidth)

	list := m.styles.Panel.
		Width(listWidth - 2).
		Height(paneHeight - 2).
		Render(m.renderList(listWidth-2, paneHeight-2))
	preview := m.styles.Panel.
		Width(previewWidth - 2).
		Height(paneHeight - 2).
		Render(m.renderPreview(previewWidth-2, paneHeight-2))

	return lipgloss.JoinHorizontal(lipgloss.Top, list, preview) + "\n" + m.renderStatusBar()
}

func (m *viewerModel) renderList(width, rows int) string {
	lines := []string{m.styles.Header.Render(truncate("Search Results", width))}
	if len(m.results) == 0 {
		lines = append(lines, m.styles.Dim.Render(truncate("  no matches", width)))
		return strings.Join(lines, "\n")
	}

	end := min(len(m.results), m.offset+rows-1)
	for i := m.offset; i < end; i++ {
		r := m.results[i]
		label := fmt.Sprintf("%s:%d: %s", r.Path, r.LineNumber, strings.TrimSpace(r.Line))
		if i == m.selected {
			lines = append(lines, m.styles.Selected.Render(truncate("> "+label, width)))
		} else {
			lines = append(lines, truncate("  "+label, width))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *viewerModel) renderPreview(width, rows int) string {
	lines := []string{m.styles.Header.Render(truncate("Preview", width))}
	if len(m.results) == 0 {
		lines = append(lines, "No file selected")
		return strings.Join(lines, "\n")
	}

	r := m.results[m.selected]
	namePattern := m.cfg.NamePattern
	if namePattern == "" {
		namePattern = "(any)"
	}
	lines = append(lines,
		truncate("File: "+r.Path, width),
		"",
		m.styles.Label.Render("Search Queries:"),
		truncate("  Name pattern: "+namePattern, width),
		truncate("  Content pattern: "+m.contentPattern, width),
		"",
	)
	for _, c := range r.Context {
		lines = append(lines, m.styles.Context.Render(truncate(fmt.Sprintf("  %d: %s", c.Number, c.Text), width)))
	}
	lines = append(lines, m.styles.Match.Render(truncate(fmt.Sprintf("→ %d: %s", r.LineNumber, r.Line), width)))
	for _, c := range r.After {
		lines = append(lines, m.styles.Context.Render(truncate(fmt.Sprintf("  %d: %s", c.Number, c.Text), width)))
	}

	if len(lines) > rows {
		lines = lines[:rows]
	}
	return strings.Join(lines, "\n")
}

func (m *viewerModel) renderStatusBar() string {
	if m.editing {
		return m.input.View()
	}

	var left string
	switch {
	case m.status != "":
		left = m.styles.Error.Render(m.status)
	case m.searching:
		left = m.spinner.View() + " searching " + m.cfg.Request.Root
	default:
		left = fmt.Sprintf("%d matches in %d files (%d scanned) in %s",
			len(m.results), m.stats.FilesMatched, m.stats.FilesScanned,
			m.stats.Duration.Round(time.Millisecond))
	}
	return left + m.styles.Dim.Render("  │  / edit  enter search  q quit")
}

// statusText renders err for the one-line status bar.
func statusText(err error) string {
	var parts []string
	for line := range strings.Lines(fferrors.FormatForUser(err, false)) {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "  ")
}

// truncate shortens s to at most width runes, expanding tabs first.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
