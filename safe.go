package smalloc

import "sync"

// SafeAllocator is a mutex-protected wrapper around Allocator for concurrent access.
// All operations are thread-safe but come with the overhead of mutex locking.
type SafeAllocator struct {
	mu sync.Mutex
	a  *Allocator
}

// NewSafeAllocator creates a new thread-safe allocator with the given options.
func NewSafeAllocator(opts ...Option) (*SafeAllocator, error) {
	a, err := NewAllocator(opts...)
	if err != nil {
		return nil, err
	}
	return &SafeAllocator{a: a}, nil
}

// Allocate thread-safely allocates n bytes.
func (s *SafeAllocator) Allocate(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(n)
}

// Deallocate thread-safely releases p, allocated with size n.
func (s *SafeAllocator) Deallocate(p []byte, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Deallocate(p, n)
}

// Reallocate thread-safely releases p and allocates newN bytes.
// Contents are not preserved.
func (s *SafeAllocator) Reallocate(p []byte, oldN, newN int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Reallocate(p, oldN, newN)
}

// Release thread-safely returns every slab to the heap.
func (s *SafeAllocator) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Release()
}
