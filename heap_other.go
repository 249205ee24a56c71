//go:build !unix

package smalloc

// MmapHeap is only available on unix platforms.
type MmapHeap struct{}

func (MmapHeap) Alloc(int) ([]byte, error) { return nil, ErrUnsupported }

func (MmapHeap) Free([]byte) error { return ErrUnsupported }
