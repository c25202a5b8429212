package finder

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeting = "Hello World\nThis is a test\nHello again"

// scanBoth scans content with both line sources and checks they agree.
func scanBoth(t *testing.T, content, pattern string, context int, trailing bool) []Match {
	t.Helper()
	re := regexp.MustCompile(pattern)

	streamed, err := scanLines("f.txt", newStreamSource(strings.NewReader(content), 16), re, context, trailing)
	require.NoError(t, err)
	mapped, err := scanLines("f.txt", &mappedSource{data: []byte(content)}, re, context, trailing)
	require.NoError(t, err)

	require.Equal(t, streamed, mapped, "stream and mapped sources must agree")
	return streamed
}

func TestScanLines_MatchesWithoutContext(t *testing.T) {
	// Given: three lines, two containing "Hello"
	// When: scanning with context 0
	matches := scanBoth(t, greeting, "Hello", 0, false)

	// Then: lines 1 and 3 match with no context
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].LineNumber)
	assert.Equal(t, "Hello World", matches[0].Line)
	assert.Empty(t, matches[0].Context)
	assert.Equal(t, 3, matches[1].LineNumber)
	assert.Equal(t, "Hello again", matches[1].Line)
	assert.Empty(t, matches[1].Context)
}

func TestScanLines_MatchWithOneLineContext(t *testing.T) {
	matches := scanBoth(t, greeting, "test", 1, false)

	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].LineNumber)
	assert.Equal(t, "This is a test", matches[0].Line)
	assert.Equal(t, []ContextLine{{Number: 1, Text: "Hello World"}}, matches[0].Context)
	assert.Nil(t, matches[0].After)
}

func TestScanLines_NoMatches(t *testing.T) {
	matches := scanBoth(t, greeting, "absent", 2, false)

	assert.Empty(t, matches)
}

func TestScanLines_IsCaseSensitiveByDefault(t *testing.T) {
	matches := scanBoth(t, greeting, "hello", 0, false)

	assert.Empty(t, matches)
}

func TestScanLines_ContextIsExactlyPrecedingLines(t *testing.T) {
	// Given: 20 numbered lines where every line matches
	var sb strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}

	for _, c := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("context=%d", c), func(t *testing.T) {
			matches := scanBoth(t, sb.String(), "line", c, false)
			require.Len(t, matches, 20)

			for _, m := range matches {
				k := m.LineNumber
				// k > c gets exactly c lines, k <= c gets k-1
				want := min(c, k-1)
				require.Len(t, m.Context, want, "line %d", k)
				for j, cl := range m.Context {
					assert.Equal(t, k-want+j, cl.Number)
					assert.Equal(t, fmt.Sprintf("line %d", cl.Number), cl.Text)
				}
			}
		})
	}
}

func TestScanLines_OneMatchPerLine(t *testing.T) {
	matches := scanBoth(t, "aaa\nbab\n", "a", 0, false)

	assert.Len(t, matches, 2)
}

func TestScanLines_FinalLineWithoutNewline(t *testing.T) {
	matches := scanBoth(t, "one\ntwo", "two", 1, false)

	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].LineNumber)
	assert.Equal(t, "two", matches[0].Line)
}

func TestScanLines_TrailingNewlineAddsNoLine(t *testing.T) {
	matches := scanBoth(t, "x\nx\n", "^$", 0, false)

	assert.Empty(t, matches, "no empty line after the final newline")
}

func TestScanLines_EmptyLinesAreCounted(t *testing.T) {
	matches := scanBoth(t, "a\n\n\nb\n", "b", 2, false)

	require.Len(t, matches, 1)
	assert.Equal(t, 4, matches[0].LineNumber)
	assert.Equal(t, []ContextLine{{Number: 2, Text: ""}, {Number: 3, Text: ""}}, matches[0].Context)
}

func TestScanLines_StripsCRLF(t *testing.T) {
	matches := scanBoth(t, "first\r\nsecond\r\nthird", "d$", 1, false)

	require.Len(t, matches, 2)
	assert.Equal(t, "second", matches[0].Line)
	assert.Equal(t, "first", matches[0].Context[0].Text)
	assert.Equal(t, "third", matches[1].Line)
}

func TestScanLines_LinesLongerThanBuffer(t *testing.T) {
	// Given: lines far longer than the 16 byte stream buffer
	long := strings.Repeat("abcdefghij", 50)
	content := long + "\nneedle " + long + "\n" + long

	// When: scanning
	matches := scanBoth(t, content, "needle", 1, false)

	// Then: lines are reassembled intact
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].LineNumber)
	assert.Equal(t, "needle "+long, matches[0].Line)
	assert.Equal(t, long, matches[0].Context[0].Text)
}

func TestScanLines_InvalidUTF8FailsFile(t *testing.T) {
	re := regexp.MustCompile("ok")
	content := "ok\n\xff\xfe bad\nok\n"

	_, err := scanLines("bad.bin", newStreamSource(strings.NewReader(content), 64), re, 0, false)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = scanLines("bad.bin", &mappedSource{data: []byte(content)}, re, 0, false)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestScanLines_EmptyInput(t *testing.T) {
	matches := scanBoth(t, "", ".*", 3, false)

	assert.Empty(t, matches)
}

func TestScanLines_TrailingContext(t *testing.T) {
	// Given: a match followed by more lines than the context size
	content := "a\nb\nmatch\nc\nd\ne\n"

	// When: scanning with trailing context enabled
	matches := scanBoth(t, content, "match", 2, true)

	// Then: the match carries two lines before and two after
	require.Len(t, matches, 1)
	assert.Equal(t, []ContextLine{{1, "a"}, {2, "b"}}, matches[0].Context)
	assert.Equal(t, []ContextLine{{4, "c"}, {5, "d"}}, matches[0].After)
}

func TestScanLines_TrailingContextOverlapsMatches(t *testing.T) {
	matches := scanBoth(t, "x1\nx2\ny\n", "x", 2, true)

	require.Len(t, matches, 2)
	assert.Equal(t, []ContextLine{{2, "x2"}, {3, "y"}}, matches[0].After)
	assert.Equal(t, []ContextLine{{3, "y"}}, matches[1].After, "cut short by end of file")
	assert.Equal(t, []ContextLine{{1, "x1"}}, matches[1].Context)
}

func TestScanLines_TrailingContextNeedsContext(t *testing.T) {
	matches := scanBoth(t, greeting, "Hello", 0, true)

	require.Len(t, matches, 2)
	assert.Nil(t, matches[0].After)
}

func TestTrimEOL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"abc\n", "abc"},
		{"abc\r\n", "abc"},
		{"abc\r", "abc"},
		{"\n", ""},
		{"a\rb\n", "a\rb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(trimEOL([]byte(tt.in))), "%q", tt.in)
	}
}

func BenchmarkScanLines(b *testing.B) {
	var sb strings.Builder
	for i := range 100_000 {
		fmt.Fprintf(&sb, "%d the quick brown fox jumps over the lazy dog\n", i)
	}
	data := []byte(sb.String())
	re := regexp.MustCompile("fox jumps")

	b.Run("stream", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for b.Loop() {
			_, _ = scanLines("bench", newStreamSource(strings.NewReader(sb.String()), DefaultBufferSize), re, 2, false)
		}
	})
	b.Run("mapped", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for b.Loop() {
			_, _ = scanLines("bench", &mappedSource{data: data}, re, 2, false)
		}
	})
}
