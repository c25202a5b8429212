// Package ring provides a fixed-capacity window over the most recent items
// of a sequence.
package ring

import "iter"

// Window is a fixed-capacity ring buffer holding the most recent items pushed.
// When full, each push evicts the oldest item.
//
// Storage grows lazily up to the capacity, so a large capacity costs nothing
// for short inputs.
type Window[T any] struct {
	buf   []T
	start int // index of the oldest item once buf is full
	limit int
}

// NewWindow returns an empty window holding at most capacity items.
// Capacities below 1 are raised to 1.
func NewWindow[T any](capacity int) *Window[T] {
	capacity = max(capacity, 1)
	return &Window[T]{
		buf:   make([]T, 0, min(capacity, 64)),
		limit: capacity,
	}
}

// Push appends item, evicting the oldest item when the window is full.
func (w *Window[T]) Push(item T) {
	w.PushFunc(func(slot *T) { *slot = item })
}

// PushFunc appends a new newest item by letting fill write it in place.
// When the window is full, fill receives the slot of the item being evicted,
// so buffers held by that item can be reused.
func (w *Window[T]) PushFunc(fill func(slot *T)) {
	if len(w.buf) < w.limit {
		var zero T
		w.buf = append(w.buf, zero)
		fill(&w.buf[len(w.buf)-1])
		return
	}
	fill(&w.buf[w.start])
	w.start++
	if w.start == len(w.buf) {
		w.start = 0
	}
}

// All returns the current items from oldest to newest.
// The sequence reads the live window and can be ranged over repeatedly.
func (w *Window[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		n := len(w.buf)
		for i := range n {
			if !yield(w.buf[(w.start+i)%n]) {
				return
			}
		}
	}
}

// Len returns the number of items held.
func (w *Window[T]) Len() int {
	return len(w.buf)
}

// Cap returns the maximum number of items held.
func (w *Window[T]) Cap() int {
	return w.limit
}
