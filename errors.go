package smalloc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is returned for a request or release of n <= 0 bytes.
	ErrInvalidSize = errors.New("smalloc: size must be positive")

	// ErrForeignBlock indicates a small block that was not carved from this allocator's pool.
	ErrForeignBlock = errors.New("smalloc: block does not belong to the pool")

	// ErrSizeMismatch indicates a release size that differs from the allocation size.
	// Only reported with debug checks enabled.
	ErrSizeMismatch = errors.New("smalloc: release size does not match allocation size")

	// ErrDoubleFree indicates a release of a block that is not live.
	// Only reported with debug checks enabled.
	ErrDoubleFree = errors.New("smalloc: block is not live")

	// ErrOutOfMemory is matched by the OutOfMemoryError panic value.
	ErrOutOfMemory = errors.New("smalloc: out of memory")

	// ErrHeapExhausted is returned by LimitedHeap when a request exceeds its budget.
	ErrHeapExhausted = errors.New("smalloc: heap budget exhausted")

	// ErrShortSlab is returned when a Heap hands back fewer bytes than requested.
	ErrShortSlab = errors.New("smalloc: heap returned a short slab")

	// ErrUnsupported is returned by heaps that are not available on this platform.
	ErrUnsupported = errors.New("smalloc: not supported on this platform")
)

// OutOfMemoryError is the panic value raised when neither the heap nor any
// larger free list can supply a block. It is not recoverable locally.
type OutOfMemoryError struct {
	Size       int   // block size requested from the pool
	Wanted     int   // blocks requested at the time of failure
	TotalGrown int   // bytes obtained from the heap over the allocator's life
	Err        error // last heap error
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("smalloc: out of memory: %d x %d-byte blocks (grown %d bytes): %v",
		e.Wanted, e.Size, e.TotalGrown, e.Err)
}

func (e *OutOfMemoryError) Unwrap() error { return e.Err }

func (e *OutOfMemoryError) Is(target error) bool { return target == ErrOutOfMemory }
