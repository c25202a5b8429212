// Package mmap exposes a file's contents as a read-only, addressable byte range.
//
// The mapped slice aliases the file pages directly, so scanning it avoids the
// read syscalls and buffer copies of streaming I/O. Slices taken from Bytes()
// are only valid until Close.
package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned when accessing a mapping after Close.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for negative or unaddressable file sizes.
	ErrInvalidSize = errors.New("mmap: invalid file size")
)

// maxMapSize bounds the mapping so the size always fits in an int.
const maxMapSize = int64(^uint(0) >> 1)

// Mapping is a read-only memory mapping of a file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Map maps size bytes of an already opened file.
// The caller keeps ownership of f; the mapping stays valid after f is closed.
func Map(f *os.File, size int64) (*Mapping, error) {
	if size < 0 || size > maxMapSize {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		// mmap(2) rejects zero-length mappings
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", f.Name(), err)
	}

	// Lines are consumed front to back, tell the kernel to read ahead.
	_ = osAdviseSequential(data)

	return &Mapping{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped contents, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Len returns the number of mapped bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap == nil || m.data == nil {
		return nil
	}
	err := m.unmap(m.data)
	m.data = nil
	return err
}
