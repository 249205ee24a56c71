package smalloc

import "fmt"

// Heap is the system allocator behind the pool. Alloc either returns a region
// of at least n bytes or an error; there are no partial results. Free releases
// a region previously returned by Alloc, unchanged.
type Heap interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte) error
}

// GoHeap obtains memory from the Go runtime. Free is a no-op; the garbage
// collector reclaims the region once it is unreachable.
type GoHeap struct{}

// Alloc returns a zeroed slice of n bytes.
func (GoHeap) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	return make([]byte, n), nil
}

// Free does nothing.
func (GoHeap) Free([]byte) error { return nil }

// LimitedHeap caps the bytes outstanding in an inner Heap.
// It is not safe for concurrent use.
type LimitedHeap struct {
	inner Heap
	limit int
	used  int
}

// NewLimitedHeap wraps inner with a budget of limit bytes.
// A nil inner means GoHeap.
func NewLimitedHeap(inner Heap, limit int) *LimitedHeap {
	if inner == nil {
		inner = GoHeap{}
	}
	return &LimitedHeap{inner: inner, limit: limit}
}

// Alloc fails with ErrHeapExhausted when n would exceed the budget.
func (h *LimitedHeap) Alloc(n int) ([]byte, error) {
	if n > h.limit-h.used {
		return nil, fmt.Errorf("%w: want %d, %d of %d in use", ErrHeapExhausted, n, h.used, h.limit)
	}
	b, err := h.inner.Alloc(n)
	if err != nil {
		return nil, err
	}
	h.used += len(b)
	return b, nil
}

// Free returns b to the inner heap and credits the budget.
func (h *LimitedHeap) Free(b []byte) error {
	if err := h.inner.Free(b); err != nil {
		return err
	}
	h.used -= len(b)
	return nil
}

// SetLimit changes the budget. Memory already handed out is not reclaimed.
func (h *LimitedHeap) SetLimit(limit int) { h.limit = limit }

// Used returns the bytes currently outstanding.
func (h *LimitedHeap) Used() int { return h.used }

// Limit returns the current budget.
func (h *LimitedHeap) Limit() int { return h.limit }
