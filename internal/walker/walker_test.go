package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
)

func createFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// collect walks opts and returns the slash-separated relative paths found.
func collect(t *testing.T, w *Walker, opts Options) []string {
	t.Helper()
	var got []string
	err := w.Walk(context.Background(), opts, func(e Entry) error {
		got = append(got, filepath.ToSlash(e.RelPath))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(got)
	return got
}

func newWalker(t *testing.T) *Walker {
	t.Helper()
	w, err := New()
	require.NoError(t, err)
	return w
}

func TestWalk_ListsRegularFiles(t *testing.T) {
	// Given: a nested tree
	root := t.TempDir()
	createFile(t, root, "a.txt", "a")
	createFile(t, root, "dir/b.go", "b")
	createFile(t, root, "dir/sub/c.md", "c")

	// When: walking it
	got := collect(t, newWalker(t), Options{Root: root})

	// Then: every file is listed relative to the root
	assert.Equal(t, []string{"a.txt", "dir/b.go", "dir/sub/c.md"}, got)
}

func TestWalk_EntryFields(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "dir/file.txt", "12345")

	var entries []Entry
	err := newWalker(t).Walk(context.Background(), Options{Root: root}, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(root, "dir", "file.txt"), entries[0].Path)
	assert.Equal(t, "file.txt", entries[0].Name)
	assert.EqualValues(t, 5, entries[0].Size)
	assert.True(t, entries[0].Mode.IsRegular())
}

func TestWalk_SkipsHiddenAndGit(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "visible.txt", "")
	createFile(t, root, ".env", "")
	createFile(t, root, ".config/settings.json", "")
	createFile(t, root, ".git/HEAD", "")

	w := newWalker(t)
	assert.Equal(t, []string{"visible.txt"}, collect(t, w, Options{Root: root}))

	// .git stays excluded even when hidden entries are included
	assert.Equal(t, []string{".config/settings.json", ".env", "visible.txt"},
		collect(t, w, Options{Root: root, Hidden: true}))
}

func TestWalk_RespectsGitignore(t *testing.T) {
	// Given: root and nested ignore files
	root := t.TempDir()
	createFile(t, root, ".gitignore", "*.log\nbuild/\n")
	createFile(t, root, "app.go", "")
	createFile(t, root, "debug.log", "")
	createFile(t, root, "build/out.bin", "")
	createFile(t, root, "src/.gitignore", "local.txt\n")
	createFile(t, root, "src/local.txt", "")
	createFile(t, root, "src/main.go", "")
	createFile(t, root, "src/trace.log", "")
	createFile(t, root, "local.txt", "")

	// When: walking with ignore rules
	got := collect(t, newWalker(t), Options{Root: root})

	// Then: root rules apply everywhere, nested rules only below their directory
	assert.Equal(t, []string{"app.go", "local.txt", "src/main.go"}, got)
}

func TestWalk_RespectsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, ".ignore", "fixtures\n")
	createFile(t, root, "fixtures/big.json", "")
	createFile(t, root, "keep.go", "")

	got := collect(t, newWalker(t), Options{Root: root})

	assert.Equal(t, []string{"keep.go"}, got)
}

func TestWalk_NoIgnore(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, ".gitignore", "*.log\n")
	createFile(t, root, "debug.log", "")

	got := collect(t, newWalker(t), Options{Root: root, NoIgnore: true})

	assert.Equal(t, []string{"debug.log"}, got)
}

func TestWalk_Exclude(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "a/keep.go", "")
	createFile(t, root, "a/testdata/skip.go", "")
	createFile(t, root, "b/skip_test.go", "")

	got := collect(t, newWalker(t), Options{
		Root:    root,
		Exclude: []string{"**/testdata", "**/*_test.go"},
	})

	assert.Equal(t, []string{"a/keep.go"}, got)
}

func TestWalk_InvalidExcludePattern(t *testing.T) {
	err := newWalker(t).Walk(context.Background(), Options{Root: t.TempDir(), Exclude: []string{"[a-"}}, func(Entry) error {
		return nil
	})

	assert.Equal(t, fferrors.ErrCodeInvalidPattern, fferrors.GetCode(err))
}

func TestWalk_RootIsFile(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "only.txt", "x")

	got := collect(t, newWalker(t), Options{Root: filepath.Join(root, "only.txt")})

	assert.Equal(t, []string{"only.txt"}, got)
}

func TestWalk_MissingRoot(t *testing.T) {
	err := newWalker(t).Walk(context.Background(), Options{Root: filepath.Join(t.TempDir(), "nope")}, func(Entry) error {
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, fferrors.ErrCodeRootNotFound, fferrors.GetCode(err))
	var fe *fferrors.FindError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fferrors.SeverityFatal, fe.Severity)
}

func TestWalk_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	createFile(t, root, "real/target.txt", "x")
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "target.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "broken")))

	w := newWalker(t)
	assert.Equal(t, []string{"real/target.txt"}, collect(t, w, Options{Root: root}))

	// linked files are followed, linked directories and broken links are not
	assert.Equal(t, []string{"link.txt", "real/target.txt"},
		collect(t, w, Options{Root: root, FollowSymlinks: true}))
}

func TestWalk_CallbackErrorStopsWalk(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "a.txt", "")
	createFile(t, root, "b.txt", "")
	stop := errors.New("stop")

	calls := 0
	err := newWalker(t).Walk(context.Background(), Options{Root: root}, func(Entry) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWalk_Cancelled(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "a.txt", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newWalker(t).Walk(ctx, Options{Root: root}, func(Entry) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk_ReloadsChangedIgnoreFile(t *testing.T) {
	// Given: a walker that has cached the root ignore rules
	root := t.TempDir()
	createFile(t, root, ".gitignore", "a.txt\n")
	createFile(t, root, "a.txt", "")
	createFile(t, root, "b.txt", "")
	w := newWalker(t)
	assert.Equal(t, []string{"b.txt"}, collect(t, w, Options{Root: root}))

	// When: the ignore file changes
	createFile(t, root, ".gitignore", "b.txt\n")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, ".gitignore"), later, later))

	// Then: the next walk uses the new rules
	assert.Equal(t, []string{"a.txt"}, collect(t, w, Options{Root: root}))
}

func TestWalk_SymlinkedRootDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	// Given: a root that is a symlink to a directory with nested ignore rules
	base := t.TempDir()
	createFile(t, base, "real/a.txt", "a")
	createFile(t, base, "real/sub/b.txt", "b")
	createFile(t, base, "real/sub/.gitignore", "skip.txt\n")
	createFile(t, base, "real/sub/skip.txt", "s")
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(filepath.Join(base, "real"), link))

	// When: walking through the link
	var paths []string
	err := newWalker(t).Walk(context.Background(), Options{Root: link}, func(e Entry) error {
		paths = append(paths, e.Path)
		return nil
	})
	require.NoError(t, err)

	// Then: the target's files are listed under the link path
	sort.Strings(paths)
	assert.Equal(t, []string{filepath.Join(link, "a.txt"), filepath.Join(link, "sub", "b.txt")}, paths)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, collect(t, newWalker(t), Options{Root: link}))
}
