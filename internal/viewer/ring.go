package viewer

import "slices"

// HistoryDepth is how many past clicks the trend chart shows.
const HistoryDepth = 4

// Ring is a fixed-capacity history with the newest value at index 0.
type Ring[T any] struct {
	capacity int
	values   []T
}

// NewRing creates an empty ring holding at most capacity values.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{capacity: capacity, values: make([]T, 0, capacity)}
}

// Push inserts v at the front, dropping the oldest value past capacity.
func (r *Ring[T]) Push(v T) {
	if len(r.values) < r.capacity {
		r.values = append(r.values, v)
	}
	copy(r.values[1:], r.values[:len(r.values)-1])
	r.values[0] = v
}

// Values returns the contents, most recent first.
func (r *Ring[T]) Values() []T {
	return slices.Clone(r.values)
}

// Len returns the number of values held.
func (r *Ring[T]) Len() int {
	return len(r.values)
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int {
	return r.capacity
}
