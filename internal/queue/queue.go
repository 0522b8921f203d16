// Package queue implements FIFO worklists used by grammar analysis.
package queue

const compactThreshold = 32

// Queue is a FIFO queue of comparable items.
// A unique queue ignores items that are already waiting in the queue,
// so an item may be re-queued only after it has been fetched.
type Queue[T comparable] struct {
	items   []T
	head    int
	unique  bool
	pending map[T]bool
}

// New creates a queue holding given items.
func New[T comparable](items ...T) *Queue[T] {
	q := &Queue[T]{}
	for _, item := range items {
		q.Append(item)
	}
	return q
}

// NewUnique creates a unique queue holding given items, duplicates are dropped.
func NewUnique[T comparable](items ...T) *Queue[T] {
	q := &Queue[T]{unique: true, pending: make(map[T]bool)}
	for _, item := range items {
		q.Append(item)
	}
	return q
}

func (q *Queue[T]) IsEmpty() bool {
	return q.head == len(q.items)
}

func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// Items returns a copy of waiting items in fetch order.
func (q *Queue[T]) Items() []T {
	result := make([]T, q.Len())
	copy(result, q.items[q.head:])
	return result
}

// Append adds item to the tail, returns false if a unique queue already holds it.
func (q *Queue[T]) Append(item T) bool {
	if q.unique {
		if q.pending[item] {
			return false
		}
		q.pending[item] = true
	}

	q.items = append(q.items, item)
	return true
}

// First fetches item from the head.
func (q *Queue[T]) First() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}

	result := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.unique {
		delete(q.pending, result)
	}

	if q.head >= compactThreshold && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return result, true
}
