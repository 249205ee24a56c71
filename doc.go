// Package smalloc implements a two-tier small-object allocator for Go.
//
// # Overview
//
// Requests larger than MaxSmall (128) bytes pass straight through to a Heap.
// Smaller requests are rounded up to a multiple of 8 and served from one of
// 16 size-segregated free lists (8, 16, ..., 128 bytes). An empty list is
// refilled with a batch of up to 20 blocks carved from a pool, and the pool
// grows by requesting slabs from the Heap. This is useful for:
//
//   - Workloads dominated by many tiny, short-lived buffers
//   - Keeping small objects off the Go heap (with MmapHeap)
//   - Predictable O(1) reuse of same-size blocks
//
// # Basic Usage
//
//	a, err := smalloc.NewAllocator()
//	if err != nil { ... }
//	defer a.Release()
//
//	// Raw bytes: release with the same size
//	buf, _ := a.Allocate(24)
//	_ = a.Deallocate(buf, 24)
//
//	// Typed values
//	p, _ := smalloc.Construct(a, point{X: 1, Y: 2})
//	_ = smalloc.Destroy(a, p)
//
// # Contract
//
// Deallocate trusts the size it is given; there is no per-block header. A
// wrong size, a double free or a use after free corrupts a free list. Enable
// WithDebugChecks in tests to turn these into errors.
//
// Reallocate does not copy. The new block's contents are undefined.
//
// # Growth
//
// When the pool cannot supply a single block, its remnant is moved onto the
// free list of matching size and a new slab of
//
//	2*size*wanted + RoundUp(totalGrown >> 4)
//
// bytes is requested. If the Heap refuses, one block from the smallest
// non-empty larger class becomes the pool. If there is none, the allocator
// logs the failure and panics with *OutOfMemoryError. The pool never shrinks
// until Release.
//
// # Thread Safety
//
// Allocator is not thread-safe. For concurrent access, use SafeAllocator:
//
//	s, _ := smalloc.NewSafeAllocator()
//	defer s.Release()
//
//	// All operations are thread-safe
//	buf, _ := s.Allocate(64)
//	p, _ := smalloc.Alloc[header](s)
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Grown: %d bytes in %d slabs\n", m.TotalGrown, m.NumSlabs)
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
package smalloc
