package finder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"runtime/debug"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
	"github.com/Aman-CERP/fastfind/internal/mmap"
)

// Strategy is the way a file is read.
type Strategy int

const (
	// StrategyStream reads the file through a buffered reader.
	StrategyStream Strategy = iota
	// StrategyMapped memory maps the file and splits it in place.
	StrategyMapped
)

func (s Strategy) String() string {
	switch s {
	case StrategyStream:
		return "stream"
	case StrategyMapped:
		return "mapped"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// selectStrategy streams files at or below threshold and maps larger ones.
func selectStrategy(size, threshold int64) Strategy {
	if size <= threshold {
		return StrategyStream
	}
	return StrategyMapped
}

// fileScan is the outcome of scanning one file.
type fileScan struct {
	matches  []Match
	strategy Strategy
	size     int64
}

// scanFile opens path, picks a strategy from its size and scans it.
// Failures are returned as warning-severity *fferrors.FindError values.
func scanFile(path string, req *Request) (fileScan, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileScan{}, skipError(path, StrategyStream, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fileScan{}, skipError(path, StrategyStream, fmt.Errorf("stat %s: %w", path, err))
	}

	res := fileScan{
		strategy: selectStrategy(info.Size(), req.MapThreshold),
		size:     info.Size(),
	}
	switch res.strategy {
	case StrategyMapped:
		res.matches, err = scanMapped(path, f, info.Size(), req)
	default:
		res.matches, err = scanLines(path, newStreamSource(f, req.BufferSize), req.Content, req.Context, req.TrailingContext)
	}
	if err != nil {
		return fileScan{}, skipError(path, res.strategy, err)
	}
	return res, nil
}

// skipError codes a per-file failure.
func skipError(path string, strategy Strategy, err error) *fferrors.FindError {
	code := fferrors.ErrCodeFileUnreadable
	switch {
	case errors.Is(err, ErrInvalidEncoding):
		code = fferrors.ErrCodeInvalidEncoding
	case errors.Is(err, fs.ErrPermission):
		code = fferrors.ErrCodeFilePermission
	case strategy == StrategyMapped:
		code = fferrors.ErrCodeMapFailed
	}
	return fferrors.Wrap(code, err).WithDetail("path", path)
}

// scanMapped scans a memory mapped file.
// A page fault on the mapping, e.g. from a concurrent truncation, is turned
// into ErrMapFault instead of crashing the process.
func scanMapped(path string, f *os.File, size int64, req *Request) (matches []Match, err error) {
	m, err := mmap.Map(f, size)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()

	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(interface{ Addr() uintptr }); !ok {
				panic(r)
			}
			matches, err = nil, fmt.Errorf("%s: %w", path, ErrMapFault)
		}
	}()

	return scanLines(path, &mappedSource{data: m.Bytes()}, req.Content, req.Context, req.TrailingContext)
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return fallbackWorkers
}
