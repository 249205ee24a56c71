//go:build unix

package smalloc

import "golang.org/x/sys/unix"

// MmapHeap maps anonymous private memory outside the Go heap.
// Regions must be returned to Free exactly as Alloc produced them.
type MmapHeap struct{}

// Alloc maps n bytes of zeroed, read-write memory.
func (MmapHeap) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

// Free unmaps b.
func (MmapHeap) Free(b []byte) error {
	if b == nil {
		return nil
	}
	return unix.Munmap(b)
}
