// Package announce sequences transient announcements: FIFO queues whose head
// stays on screen until the presentation layer reports it finished, and a
// single-slot debouncer for flickering recognition signals.
package announce

// Queue is a FIFO of announcements. The head item is "current" until
// CompleteCurrentItem is called; items pushed meanwhile wait their turn.
// Queue is not safe for concurrent use; it is owned by the reconciler loop.
type Queue[T any] struct {
	items   []T
	showing bool
	seq     int
}

// Item is an announcement paired with its position in the stream.
type Item[T any] struct {
	Seq   int
	Value T
}

// Push appends v. When nothing was being displayed, v becomes current and is
// returned with ok=true so the caller can announce it.
func (q *Queue[T]) Push(v T) (Item[T], bool) {
	q.seq++
	q.items = append(q.items, v)
	if q.showing {
		return Item[T]{}, false
	}
	q.showing = true
	return Item[T]{Seq: q.seq, Value: v}, true
}

// CompleteCurrentItem drops the displayed item and returns the next one, if any.
// A completion while nothing is displayed is ignored.
func (q *Queue[T]) CompleteCurrentItem() (Item[T], bool) {
	if !q.showing || len(q.items) == 0 {
		return Item[T]{}, false
	}
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.showing = false
		return Item[T]{}, false
	}
	return Item[T]{Seq: q.seq - len(q.items) + 1, Value: q.items[0]}, true
}

// Current returns the displayed item.
func (q *Queue[T]) Current() (T, bool) {
	if !q.showing || len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// Len returns the number of items, including the displayed one.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Reset drops every item.
func (q *Queue[T]) Reset() {
	q.items = nil
	q.showing = false
}
