package internal

// Ring is a fixed-capacity circular buffer. Once full, each Push discards
// the oldest entry. The zero value is unusable; use NewRing.
type Ring[T any] struct {
	data  []T
	next  int
	count int
}

// NewRing creates a ring holding at most capacity entries.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{
		data: make([]T, capacity),
	}
}

// Push appends a value, evicting the oldest entry when at capacity.
func (r *Ring[T]) Push(value T) {
	r.data[r.next] = value
	r.next = (r.next + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// Len returns the number of entries currently held.
func (r *Ring[T]) Len() int {
	return r.count
}

// Last returns up to n entries, oldest first, ending at the most recent.
func (r *Ring[T]) Last(n int) (values []T) {
	if n > r.count {
		n = r.count
	}

	for i := n; i > 0; i-- {
		index := (r.next - i + len(r.data)) % len(r.data)
		values = append(values, r.data[index])
	}

	return
}

// Reset discards all entries without releasing storage.
func (r *Ring[T]) Reset() {
	r.next = 0
	r.count = 0
}
