//go:build unix

package smalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapHeap(t *testing.T) {
	var h MmapHeap
	b, err := h.Alloc(4096 + 8)
	require.NoError(t, err)
	require.Len(t, b, 4096+8)
	for i := range b {
		require.Zero(t, b[i])
		b[i] = byte(i)
	}
	require.NoError(t, h.Free(b))
	assert.NoError(t, h.Free(nil))

	_, err = h.Alloc(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestAllocatorOnMmapHeap(t *testing.T) {
	a := newTestAllocator(t, WithHeap(MmapHeap{}), WithDebugChecks())

	sizes := []int{1, 8, 24, 100, 128, 129, 4096}
	blocks := make([][]byte, len(sizes))
	for i, n := range sizes {
		b, err := a.Allocate(n)
		require.NoError(t, err)
		require.Len(t, b, n)
		for j := range b {
			b[j] = byte(n)
		}
		blocks[i] = b
	}
	for i, n := range sizes {
		for j := range blocks[i] {
			require.Equal(t, byte(n), blocks[i][j])
		}
		require.NoError(t, a.Deallocate(blocks[i], n))
	}
	assertFreeListsSound(t, a)
	require.NoError(t, a.Release())
}
