package smalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoHeap(t *testing.T) {
	var h GoHeap
	b, err := h.Alloc(64)
	require.NoError(t, err)
	assert.Len(t, b, 64)
	assert.NoError(t, h.Free(b))

	_, err = h.Alloc(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestLimitedHeap(t *testing.T) {
	h := NewLimitedHeap(nil, 100)
	assert.Equal(t, 100, h.Limit())

	a, err := h.Alloc(60)
	require.NoError(t, err)
	assert.Equal(t, 60, h.Used())

	_, err = h.Alloc(41)
	assert.ErrorIs(t, err, ErrHeapExhausted)
	assert.Equal(t, 60, h.Used(), "failed request is all or nothing")

	b, err := h.Alloc(40)
	require.NoError(t, err)
	assert.Equal(t, 100, h.Used())

	require.NoError(t, h.Free(a))
	assert.Equal(t, 40, h.Used())

	h.SetLimit(0)
	_, err = h.Alloc(8)
	assert.ErrorIs(t, err, ErrHeapExhausted)

	require.NoError(t, h.Free(b))
	assert.Zero(t, h.Used())
}

func TestLimitedHeapInnerError(t *testing.T) {
	h := NewLimitedHeap(NewLimitedHeap(nil, 10), 100)
	_, err := h.Alloc(20)
	require.ErrorIs(t, err, ErrHeapExhausted)
	assert.Zero(t, h.Used())
}
