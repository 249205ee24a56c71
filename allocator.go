package smalloc

import "fmt"

// Allocator is a small-object allocator. Not goroutine-safe.
// Use SafeAllocator for concurrent access.
type Allocator struct {
	heap   Heap
	log    *Logger
	slabs  slabTable
	free   freeLists
	pool   pool
	shadow *shadowMap
	stats  counters

	initialPool int
	released    bool
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithHeap sets the system heap. The default is GoHeap.
func WithHeap(h Heap) Option {
	return func(a *Allocator) {
		a.heap = h
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *Logger) Option {
	return func(a *Allocator) {
		a.log = l
	}
}

// WithInitialPool seeds the pool with one slab of n bytes, rounded down to
// a multiple of Align.
func WithInitialPool(n int) Option {
	return func(a *Allocator) {
		a.initialPool = n &^ (Align - 1)
	}
}

// WithDebugChecks tracks every live small block so that Deallocate reports
// size mismatches, double frees and foreign blocks instead of corrupting a
// free list.
func WithDebugChecks() Option {
	return func(a *Allocator) {
		a.shadow = newShadowMap()
	}
}

// NewAllocator creates an Allocator. The pool stays empty until the first
// small request unless WithInitialPool is given.
func NewAllocator(opts ...Option) (*Allocator, error) {
	a := &Allocator{pool: pool{slab: -1}}
	for _, opt := range opts {
		opt(a)
	}
	if a.heap == nil {
		a.heap = GoHeap{}
	}
	if a.log == nil {
		a.log = NoopLogger()
	}
	if a.initialPool > 0 {
		buf, err := a.grow(a.initialPool)
		if err != nil {
			return nil, fmt.Errorf("smalloc: initial pool: %w", err)
		}
		idx := a.slabs.add(buf)
		a.pool.slab, a.pool.start, a.pool.end = idx, 0, a.initialPool
		a.pool.totalGrown = a.initialPool
		a.stats.grows++
	}
	return a, nil
}

// Allocate returns a block of n uninitialized bytes with len n. Small blocks
// have cap equal to their class size. Heap errors for large requests are
// returned as is; exhaustion on the small path panics with *OutOfMemoryError.
func (a *Allocator) Allocate(n int) ([]byte, error) {
	a.panicIfReleased()
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	if n > MaxSmall {
		b, err := a.heap.Alloc(n)
		if err != nil {
			return nil, err
		}
		a.stats.largeAllocs++
		a.stats.largeInUse += n
		return b, nil
	}

	class := ClassIndex(n)
	r, ok := a.free.pop(&a.slabs, class)
	if !ok {
		r = a.refill(ClassSize(class))
	}
	a.stats.allocs++
	a.stats.smallInUse += ClassSize(class)
	if a.shadow != nil {
		a.shadow.track(r, n)
	}
	return a.slabs.bytes(r, n, ClassSize(class)), nil
}

// Deallocate releases p, which must come from Allocate(n) with the same n.
// The size is trusted: a wrong n silently corrupts a free list unless debug
// checks are on. A nil p is a no-op.
func (a *Allocator) Deallocate(p []byte, n int) error {
	a.panicIfReleased()
	if p == nil {
		return nil
	}
	if n <= 0 {
		return ErrInvalidSize
	}
	if n > MaxSmall {
		if err := a.heap.Free(p); err != nil {
			return err
		}
		a.stats.largeFrees++
		a.stats.largeInUse -= n
		return nil
	}

	r, ok := a.slabs.lookup(p)
	if !ok {
		return ErrForeignBlock
	}
	if a.shadow != nil {
		if err := a.shadow.untrack(r, n); err != nil {
			return err
		}
	}
	class := ClassIndex(n)
	a.free.push(&a.slabs, class, r)
	a.stats.frees++
	a.stats.smallInUse -= ClassSize(class)
	return nil
}

// Reallocate releases p as oldN bytes and allocates newN bytes.
// The contents of p are not carried over; copy them first if needed.
func (a *Allocator) Reallocate(p []byte, oldN, newN int) ([]byte, error) {
	if err := a.Deallocate(p, oldN); err != nil {
		return nil, err
	}
	return a.Allocate(newN)
}

// refill carves a batch of blocks of size bytes, returns the first and
// chains the rest onto the (empty) free list for size.
func (a *Allocator) refill(size int) blockRef {
	first, got := a.chunkAlloc(size, RefillBatch)
	a.stats.refills++
	if got > 1 {
		a.free.publish(&a.slabs, ClassIndex(size), first+blockRef(size), got-1)
	}
	return first
}

// Release returns every slab to the heap and makes the allocator unusable.
// Large blocks still held by callers are not touched.
func (a *Allocator) Release() error {
	a.panicIfReleased()
	var firstErr error
	for _, s := range a.slabs.slabs {
		if err := a.heap.Free(s.buf); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.slabs = slabTable{}
	a.free = freeLists{}
	a.pool = pool{slab: -1}
	a.shadow = nil
	a.released = true
	return firstErr
}

// panicIfReleased panics if the allocator has been released.
func (a *Allocator) panicIfReleased() {
	if a.released {
		panic("smalloc: use after Release()")
	}
}
