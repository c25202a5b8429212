package finder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
	"github.com/Aman-CERP/fastfind/internal/walker"
)

// Finder runs searches. It is safe for concurrent use; each Search builds its
// own worker pool sized from its Request, so searches never share workers.
type Finder struct {
	walker *walker.Walker
}

// New creates a Finder.
func New() (*Finder, error) {
	w, err := walker.New()
	if err != nil {
		return nil, err
	}
	return &Finder{walker: w}, nil
}

var defaultFinder = sync.OnceValues(New)

// Search runs req with a process-wide Finder.
func Search(ctx context.Context, req Request) (*Result, error) {
	f, err := defaultFinder()
	if err != nil {
		return nil, err
	}
	return f.Search(ctx, req)
}

// counters are updated by scan tasks.
type counters struct {
	walked, scanned, matched, skipped, mapped, bytes atomic.Int64
}

// Search walks req.Root and scans every file whose name satisfies req.Name.
// It blocks until all files are scanned and returns the collected matches,
// sorted by path and line number unless req.Unordered is set.
//
// Files that cannot be read are skipped. Search fails on an invalid request,
// an inaccessible root, or cancellation of ctx.
func (f *Finder) Search(ctx context.Context, req Request) (*Result, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var st counters

	g, gctx := errgroup.WithContext(ctx)
	entries := make(chan walker.Entry, req.Workers*4)

	// Producer: the sequential walk feeds the dispatcher.
	g.Go(func() error {
		defer close(entries)
		return f.walker.Walk(gctx, walker.Options{
			Root:           req.Root,
			Hidden:         req.Hidden,
			NoIgnore:       req.NoIgnore,
			FollowSymlinks: req.FollowSymlinks,
			Exclude:        req.Exclude,
		}, func(e walker.Entry) error {
			select {
			case entries <- e:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	var perFile [][]Match
	g.Go(func() error {
		p := pool.NewWithResults[[]Match]().
			WithMaxGoroutines(req.Workers).
			WithContext(gctx)
		for e := range entries {
			st.walked.Add(1)
			if req.Name != nil && !req.Name.MatchString(e.Name) {
				continue
			}
			p.Go(func(ctx context.Context) ([]Match, error) {
				return scanEntry(ctx, e.Path, &req, &st), nil
			})
		}
		var err error
		perFile, err = p.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := collect(perFile, !req.Unordered)
	return &Result{
		Matches: matches,
		Stats: Stats{
			FilesWalked:  st.walked.Load(),
			FilesScanned: st.scanned.Load(),
			FilesMatched: st.matched.Load(),
			FilesSkipped: st.skipped.Load(),
			FilesMapped:  st.mapped.Load(),
			BytesScanned: st.bytes.Load(),
			Matches:      len(matches),
			Workers:      req.Workers,
			Duration:     time.Since(start),
		},
	}, nil
}

// scanEntry scans one file. Failures are logged and counted, never returned.
func scanEntry(ctx context.Context, path string, req *Request, st *counters) []Match {
	if ctx.Err() != nil {
		return nil
	}

	res, err := scanFile(path, req)
	if err != nil {
		st.skipped.Add(1)
		slog.Debug("skipping file", slog.Any("error", fferrors.FormatForLog(err)))
		return nil
	}

	st.scanned.Add(1)
	st.bytes.Add(res.size)
	if res.strategy == StrategyMapped {
		st.mapped.Add(1)
	}
	if len(res.matches) > 0 {
		st.matched.Add(1)
	}
	return res.matches
}
