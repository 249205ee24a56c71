package smalloc

import "unsafe"

// RawAllocator is the untyped contract the typed helpers build on.
// Both *Allocator and *SafeAllocator satisfy it.
type RawAllocator interface {
	Allocate(n int) ([]byte, error)
	Deallocate(p []byte, n int) error
}

// The helpers below place values of T in raw allocator memory. That memory
// is invisible to the garbage collector, so T must not contain Go pointers
// (pointers, slices, maps, strings, interfaces, channels or funcs).
// Zero-sized types never reach the allocator.

// Alloc returns a pointer to a zeroed T stored in allocator memory.
func Alloc[T any](a RawAllocator) (*T, error) {
	p, err := AllocUninitialized[T](a)
	if err != nil {
		return nil, err
	}
	var zero T
	*p = zero
	return p, nil
}

// AllocUninitialized returns a *T whose memory contents are undefined.
func AllocUninitialized[T any](a RawAllocator) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T), nil
	}
	b, err := a.Allocate(size)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// Construct allocates a T and copies v into it.
func Construct[T any](a RawAllocator, v T) (*T, error) {
	p, err := AllocUninitialized[T](a)
	if err != nil {
		return nil, err
	}
	*p = v
	return p, nil
}

// Destroy returns the memory of *p to a. p must come from one of the
// helpers above with the same T and must not be used afterwards.
func Destroy[T any](a RawAllocator, p *T) error {
	if p == nil {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return nil
	}
	return a.Deallocate(unsafe.Slice((*byte)(unsafe.Pointer(p)), size), size)
}

// AllocSlice allocates a slice of n elements of type T. Elements are not
// initialized. Returns nil if n <= 0.
func AllocSlice[T any](a RawAllocator, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n), nil
	}
	b, err := a.Allocate(elemSize * n)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// FreeSlice returns a slice from AllocSlice. s must have the length it was
// allocated with.
func FreeSlice[T any](a RawAllocator, s []T) error {
	if len(s) == 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return nil
	}
	total := elemSize * len(s)
	return a.Deallocate(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), total), total)
}
