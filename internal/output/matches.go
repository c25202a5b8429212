package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/Aman-CERP/fastfind/internal/finder"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Printer writes matches in text or JSON form.
type Printer struct {
	out    io.Writer
	format string

	path   lipgloss.Style
	lineNo lipgloss.Style
}

// NewPrinter creates a printer for format writing to out.
// Text output is styled only when color is true.
func NewPrinter(out io.Writer, format string, color bool) (*Printer, error) {
	switch format {
	case FormatText, FormatJSON:
	case "":
		format = FormatText
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}

	r := lipgloss.NewRenderer(out)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		out:    out,
		format: format,
		path:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		lineNo: r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
	}, nil
}

// Print writes all matches.
func (p *Printer) Print(matches []finder.Match) error {
	if p.format == FormatJSON {
		return p.printJSON(matches)
	}
	for _, m := range matches {
		if err := p.printGroup(m); err != nil {
			return err
		}
	}
	return nil
}

// printGroup writes the context lines, the match line, any trailing lines
// and a blank separator.
func (p *Printer) printGroup(m finder.Match) error {
	for _, c := range m.Context {
		if err := p.printLine(m.Path, c.Number, c.Text); err != nil {
			return err
		}
	}
	if err := p.printLine(m.Path, m.LineNumber, m.Line); err != nil {
		return err
	}
	for _, c := range m.After {
		if err := p.printLine(m.Path, c.Number, c.Text); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(p.out)
	return err
}

func (p *Printer) printLine(path string, n int, text string) error {
	_, err := fmt.Fprintf(p.out, "%s%s %s\n",
		p.path.Render(path+":"),
		p.lineNo.Render(strconv.Itoa(n)+":"),
		text)
	return err
}

func (p *Printer) printJSON(matches []finder.Match) error {
	if matches == nil {
		matches = []finder.Match{}
	}
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}

// FormatStats returns a one-line summary of a search.
func FormatStats(s finder.Stats) string {
	return fmt.Sprintf("%s in %s of %s (%s, %s mapped, %s skipped) with %d workers in %s",
		plural(s.Matches, "match", "matches"),
		plural(int(s.FilesMatched), "file", "files"),
		plural(int(s.FilesScanned), "scanned file", "scanned files"),
		humanize.IBytes(uint64(s.BytesScanned)),
		humanize.Comma(s.FilesMapped),
		humanize.Comma(s.FilesSkipped),
		s.Workers,
		s.Duration.Round(time.Millisecond),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(int64(n)) + " " + many
}
