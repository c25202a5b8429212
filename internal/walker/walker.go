// Package walker enumerates the regular files under a search root.
//
// It honors .gitignore and .ignore files at every directory level, skips
// hidden entries and the .git directory, and applies doublestar exclude
// globs. Entries that cannot be read are logged and skipped; only an
// inaccessible root fails a walk.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	ignore "github.com/sabhiram/go-gitignore"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
)

// ignoreCacheSize is the maximum number of directories whose ignore rules are cached.
const ignoreCacheSize = 1000

// ignoreFiles are the per-directory rule files, in precedence order.
var ignoreFiles = []string{".gitignore", ".ignore"}

// Entry is a regular file found under the root.
type Entry struct {
	Path    string      // Root joined with RelPath
	RelPath string      // Path relative to the root
	Name    string      // Base name
	Size    int64       // Size in bytes
	Mode    fs.FileMode // Mode of the file (symlink targets resolved)
}

// Options configures a walk.
type Options struct {
	// Root is the directory or file to walk. Empty means ".".
	Root string

	// Hidden includes entries whose name starts with a dot.
	Hidden bool

	// NoIgnore disables .gitignore and .ignore rules.
	NoIgnore bool

	// FollowSymlinks yields symlinks that resolve to regular files.
	// Symlinked directories are never descended into.
	FollowSymlinks bool

	// Exclude lists doublestar globs matched against slash-separated paths
	// relative to Root.
	Exclude []string
}

// WalkFunc is called for every entry. A non-nil error stops the walk.
type WalkFunc func(Entry) error

// Walker walks directory trees. It is safe for concurrent use and caches
// parsed ignore files between walks.
type Walker struct {
	// ignoreCache maps a directory to its compiled ignore rules.
	// LRU eviction bounds memory in long interactive sessions.
	ignoreCache *lru.Cache[string, *dirRules]
}

// dirRules are the compiled ignore files of one directory.
type dirRules struct {
	stamp    string
	matchers []*ignore.GitIgnore
}

// New creates a Walker.
func New() (*Walker, error) {
	cache, err := lru.New[string, *dirRules](ignoreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create ignore cache: %w", err)
	}
	return &Walker{ignoreCache: cache}, nil
}

// Walk calls fn for each regular file under opts.Root.
// A root that is itself a regular file is passed to fn alone.
func (w *Walker) Walk(ctx context.Context, opts Options, fn WalkFunc) error {
	root := opts.Root
	if root == "" {
		root = "."
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fferrors.PatternError("exclude", p, nil).
				WithSuggestion("use doublestar glob syntax, e.g. '**/testdata/**'")
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return fferrors.RootNotFoundError(root, err)
	}
	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return fferrors.RootNotFoundError(root, fmt.Errorf("not a regular file or directory"))
		}
		return fn(Entry{
			Path:    root,
			RelPath: filepath.Base(root),
			Name:    filepath.Base(root),
			Size:    info.Size(),
			Mode:    info.Mode(),
		})
	}

	// WalkDir does not descend into a symlinked root; the trailing separator
	// makes it resolve the link while paths keep the root as given.
	walkRoot := root
	if li, err := os.Lstat(root); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		walkRoot = root + string(filepath.Separator)
	}

	wk := &walk{
		walker: w,
		opts:   opts,
		root:   root,
		rules:  make(map[string][]*ignore.GitIgnore),
	}
	return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			slog.Debug("skipping unreadable entry",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}
		return wk.visit(path, d, fn)
	})
}

// walk is the state of a single Walk call.
type walk struct {
	walker *Walker
	opts   Options
	root   string
	// rules holds the ignore matchers of every directory entered so far,
	// keyed by path relative to the root ("." for the root).
	rules map[string][]*ignore.GitIgnore
}

func (wk *walk) visit(path string, d fs.DirEntry, fn WalkFunc) error {
	rel, err := filepath.Rel(wk.root, path)
	if err != nil {
		return nil
	}

	if rel == "." {
		wk.enter(path, rel)
		return nil
	}

	name := d.Name()
	if d.IsDir() {
		if wk.skipDir(name, rel) {
			return filepath.SkipDir
		}
		wk.enter(path, rel)
		return nil
	}

	if wk.skipFile(name, rel) {
		return nil
	}

	var info fs.FileInfo
	switch {
	case d.Type()&fs.ModeSymlink != 0:
		if !wk.opts.FollowSymlinks {
			return nil
		}
		info, err = os.Stat(path)
	case d.Type().IsRegular():
		info, err = d.Info()
	default:
		// devices, sockets, pipes
		return nil
	}
	if err != nil {
		slog.Debug("skipping unreadable entry",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	return fn(Entry{
		Path:    path,
		RelPath: rel,
		Name:    name,
		Size:    info.Size(),
		Mode:    info.Mode(),
	})
}

func (wk *walk) skipDir(name, rel string) bool {
	if name == ".git" {
		return true
	}
	if !wk.opts.Hidden && isHidden(name) {
		return true
	}
	slash := filepath.ToSlash(rel)
	if wk.excluded(slash) {
		return true
	}
	// A trailing slash lets directory-only patterns such as "build/" match.
	return wk.ignored(rel, slash+"/")
}

func (wk *walk) skipFile(name, rel string) bool {
	if !wk.opts.Hidden && isHidden(name) {
		return true
	}
	slash := filepath.ToSlash(rel)
	return wk.excluded(slash) || wk.ignored(rel, slash)
}

func (wk *walk) excluded(slashRel string) bool {
	for _, pattern := range wk.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, slashRel); ok {
			return true
		}
	}
	return false
}

// ignored checks the rules of every ancestor directory of rel, from the root
// down. Each rule file sees the path relative to its own directory.
func (wk *walk) ignored(rel, slashRel string) bool {
	if wk.opts.NoIgnore {
		return false
	}

	dir := "."
	sub := slashRel
	for {
		for _, m := range wk.rules[dir] {
			if m.MatchesPath(sub) {
				return true
			}
		}
		head, tail, found := strings.Cut(sub, "/")
		if !found || tail == "" {
			return false
		}
		dir = filepath.Join(dir, head)
		sub = tail
	}
}

// enter loads the ignore rules of a directory before its children are visited.
func (wk *walk) enter(path, rel string) {
	if wk.opts.NoIgnore {
		return
	}
	if matchers := wk.walker.loadRules(path); len(matchers) > 0 {
		wk.rules[rel] = matchers
	}
}

// loadRules returns the compiled ignore files of dir, reusing the cached
// rules while the files are unchanged.
func (w *Walker) loadRules(dir string) []*ignore.GitIgnore {
	var stamp strings.Builder
	var present []string
	for _, name := range ignoreFiles {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		present = append(present, p)
		fmt.Fprintf(&stamp, "%s:%d:%d;", name, info.Size(), info.ModTime().UnixNano())
	}

	key := dir
	if abs, err := filepath.Abs(dir); err == nil {
		key = abs
	}
	if cached, ok := w.ignoreCache.Get(key); ok && cached.stamp == stamp.String() {
		return cached.matchers
	}

	rules := &dirRules{stamp: stamp.String()}
	for _, p := range present {
		m, err := ignore.CompileIgnoreFile(p)
		if err != nil {
			slog.Debug("skipping unreadable ignore file",
				slog.String("path", p),
				slog.String("error", err.Error()))
			continue
		}
		rules.matchers = append(rules.matchers, m)
	}
	w.ignoreCache.Add(key, rules)
	return rules.matchers
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
