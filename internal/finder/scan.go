package finder

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Aman-CERP/fastfind/internal/ring"
)

// lineSource yields the lines of one file in order.
type lineSource interface {
	// next returns the next line without its terminator, or io.EOF.
	// The returned slice is only valid until the following call.
	next() ([]byte, error)
}

// streamSource splits a buffered reader into lines.
type streamSource struct {
	r    *bufio.Reader
	long []byte // reassembles lines longer than the reader buffer
}

func newStreamSource(r io.Reader, size int) *streamSource {
	return &streamSource{r: bufio.NewReaderSize(r, size)}
}

func (s *streamSource) next() ([]byte, error) {
	line, err := s.r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		s.long = append(s.long[:0], line...)
		for err == bufio.ErrBufferFull {
			line, err = s.r.ReadSlice('\n')
			s.long = append(s.long, line...)
		}
		line = s.long
	}
	switch {
	case err == io.EOF:
		if len(line) == 0 {
			return nil, io.EOF
		}
	case err != nil:
		return nil, err
	}
	return trimEOL(line), nil
}

// mappedSource splits an in-memory byte range into lines without copying.
type mappedSource struct {
	data []byte
	off  int
}

func (s *mappedSource) next() ([]byte, error) {
	if s.off >= len(s.data) {
		return nil, io.EOF
	}
	rest := s.data[s.off:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		s.off = len(s.data)
		return trimEOL(rest), nil
	}
	s.off += i + 1
	return trimEOL(rest[:i+1]), nil
}

// trimEOL drops a trailing "\n" or "\r\n".
func trimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// lineSlot is a window entry. Its text buffer is reused once the slot is evicted.
type lineSlot struct {
	num  int
	text []byte
}

// scanLines runs the content matcher over every line of src.
//
// Each line is pushed into a window of 2*context+1 lines; a matching line
// becomes a Match whose Context is the window minus that line, limited to the
// context most recent lines. With trailing set, each match also collects the
// context lines that follow it.
func scanLines(path string, src lineSource, content LineMatcher, context int, trailing bool) ([]Match, error) {
	win := ring.NewWindow[lineSlot](2*context + 1)

	var (
		matches []Match
		open    []int // matches still collecting trailing lines
		n       int
	)
	for {
		line, err := src.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		n++

		if !utf8.Valid(line) {
			return nil, fmt.Errorf("%s:%d: %w", path, n, ErrInvalidEncoding)
		}

		win.PushFunc(func(slot *lineSlot) {
			slot.num = n
			slot.text = append(slot.text[:0], line...)
		})

		if len(open) > 0 {
			open = appendTrailing(matches, open, ContextLine{Number: n, Text: string(line)}, context)
		}

		if content.Match(line) {
			matches = append(matches, newMatch(path, win, context))
			if trailing && context > 0 {
				open = append(open, len(matches)-1)
			}
		}
	}
	return matches, nil
}

// newMatch builds a Match from the newest window entry and up to context
// entries preceding it.
func newMatch(path string, win *ring.Window[lineSlot], context int) Match {
	size := win.Len()
	before := min(size-1, context)
	first := size - 1 - before

	m := Match{
		Path:    path,
		Context: make([]ContextLine, 0, before),
	}
	i := 0
	for slot := range win.All() {
		switch {
		case i == size-1:
			m.LineNumber = slot.num
			m.Line = string(slot.text)
		case i >= first:
			m.Context = append(m.Context, ContextLine{Number: slot.num, Text: string(slot.text)})
		}
		i++
	}
	return m
}

// appendTrailing adds line to every open match and returns the matches still
// short of context trailing lines.
func appendTrailing(matches []Match, open []int, line ContextLine, context int) []int {
	kept := open[:0]
	for _, idx := range open {
		matches[idx].After = append(matches[idx].After, line)
		if len(matches[idx].After) < context {
			kept = append(kept, idx)
		}
	}
	return kept
}
