package finder

import (
	"errors"
	"regexp"
	"time"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
)

const (
	// DefaultContext is the number of preceding lines reported with a match.
	DefaultContext = 1

	// DefaultBufferSize is the read buffer size of the streaming strategy.
	DefaultBufferSize = 8192

	// DefaultMapThreshold is the file size above which files are memory mapped (10 MiB).
	DefaultMapThreshold int64 = 10 << 20

	// fallbackWorkers is used when the CPU count cannot be determined.
	fallbackWorkers = 4
)

var (
	// ErrInvalidEncoding marks a file containing a line that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 text")

	// ErrMapFault marks a mapped file that faulted while being read,
	// typically because it was truncated during the scan.
	ErrMapFault = errors.New("fault reading mapped file")
)

// LineMatcher reports whether a line satisfies the content pattern.
// *regexp.Regexp implements it.
type LineMatcher interface {
	Match(line []byte) bool
}

// NameMatcher reports whether a file base name satisfies the name pattern.
// *regexp.Regexp implements it.
type NameMatcher interface {
	MatchString(name string) bool
}

// ContextLine is a numbered line reported around a match.
type ContextLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Match is one line satisfying the content pattern.
type Match struct {
	// Path is the file path, rooted at Request.Root.
	Path string `json:"path"`

	// LineNumber is the 1-based number of the matching line.
	LineNumber int `json:"line_number"`

	// Line is the matching line without its terminator.
	Line string `json:"line"`

	// Context holds up to Request.Context lines preceding the match, oldest first.
	Context []ContextLine `json:"context"`

	// After holds up to Request.Context lines following the match.
	// Only filled when Request.TrailingContext is set.
	After []ContextLine `json:"after,omitempty"`
}

// Request describes one search. It is not modified by Search.
type Request struct {
	// Root is the directory (or single file) to search. Empty means ".".
	Root string

	// Name filters files by base name. Nil accepts every file.
	Name NameMatcher

	// Content selects matching lines. Required.
	Content LineMatcher

	// Context is the number of preceding lines reported per match.
	Context int

	// BufferSize is the streaming read buffer size. Zero means DefaultBufferSize.
	BufferSize int

	// Workers bounds the number of files scanned concurrently.
	// Zero means one worker per CPU.
	Workers int

	// MapThreshold is the size above which files are memory mapped.
	// Zero means DefaultMapThreshold.
	MapThreshold int64

	// TrailingContext also collects up to Context lines after each match.
	TrailingContext bool

	// Unordered skips the final sort by path and line number.
	Unordered bool

	// Hidden includes dot files and directories.
	Hidden bool

	// NoIgnore disables .gitignore and .ignore rules.
	NoIgnore bool

	// FollowSymlinks includes symlinked regular files.
	FollowSymlinks bool

	// Exclude lists doublestar globs, relative to Root, of paths to skip.
	Exclude []string
}

// Stats summarizes one search.
type Stats struct {
	FilesWalked  int64         `json:"files_walked"`
	FilesScanned int64         `json:"files_scanned"`
	FilesMatched int64         `json:"files_matched"`
	FilesSkipped int64         `json:"files_skipped"`
	FilesMapped  int64         `json:"files_mapped"`
	BytesScanned int64         `json:"bytes_scanned"`
	Matches      int           `json:"matches"`
	Workers      int           `json:"workers"`
	Duration     time.Duration `json:"duration"`
}

// Result is the outcome of a completed search.
type Result struct {
	Matches []Match
	Stats   Stats
}

// normalize validates the request and fills in defaults.
func (r Request) normalize() (Request, error) {
	switch {
	case r.Content == nil:
		return r, fferrors.ValidationError("content pattern is required", nil)
	case r.Context < 0:
		return r, fferrors.ValidationError("context must not be negative", nil).
			WithSuggestion("use --context 0 to report matches without context")
	case r.BufferSize < 0:
		return r, fferrors.ValidationError("buffer size must be positive", nil)
	case r.Workers < 0:
		return r, fferrors.ValidationError("worker count must not be negative", nil)
	case r.MapThreshold < 0:
		return r, fferrors.ValidationError("map threshold must not be negative", nil)
	}

	if r.Root == "" {
		r.Root = "."
	}
	if r.BufferSize == 0 {
		r.BufferSize = DefaultBufferSize
	}
	if r.MapThreshold == 0 {
		r.MapThreshold = DefaultMapThreshold
	}
	if r.Workers == 0 {
		r.Workers = defaultWorkers()
	}
	return r, nil
}

// CompilePatterns compiles the name and content patterns of a search.
// An empty name pattern yields a nil NameMatcher, which accepts every file.
func CompilePatterns(name, content string, ignoreCase bool) (NameMatcher, LineMatcher, error) {
	prefix := ""
	if ignoreCase {
		prefix = "(?i)"
	}

	var nameRe NameMatcher
	if name != "" {
		re, err := regexp.Compile(prefix + name)
		if err != nil {
			return nil, nil, fferrors.PatternError("name", name, err)
		}
		nameRe = re
	}

	contentRe, err := regexp.Compile(prefix + content)
	if err != nil {
		return nil, nil, fferrors.PatternError("content", content, err)
	}
	return nameRe, contentRe, nil
}
