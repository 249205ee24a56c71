package smalloc

import (
	"context"
	"log/slog"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// recordHandler keeps every log record for inspection.
type recordHandler struct {
	records *[]slog.Record
}

func newRecordLogger() (*Logger, *[]slog.Record) {
	var recs []slog.Record
	return NewLogger(recordHandler{records: &recs}), &recs
}

func (h recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}

func (h recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h recordHandler) WithGroup(string) slog.Handler { return h }

func countLevel(recs []slog.Record, level slog.Level) int {
	n := 0
	for _, r := range recs {
		if r.Level == level {
			n++
		}
	}
	return n
}

// recordingHeap remembers every request size.
type recordingHeap struct {
	*LimitedHeap
	requests []int
}

func newRecordingHeap(limit int) *recordingHeap {
	return &recordingHeap{LimitedHeap: NewLimitedHeap(nil, limit)}
}

func (h *recordingHeap) Alloc(n int) ([]byte, error) {
	h.requests = append(h.requests, n)
	return h.LimitedHeap.Alloc(n)
}

// shortHeap always returns half of what was asked.
type shortHeap struct{}

func (shortHeap) Alloc(n int) ([]byte, error) { return make([]byte, n/2), nil }

func (shortHeap) Free([]byte) error { return nil }

func catchPanic(f func()) (v any) {
	defer func() { v = recover() }()
	f()
	return nil
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func newTestAllocator(t testing.TB, opts ...Option) *Allocator {
	t.Helper()
	a, err := NewAllocator(opts...)
	require.NoError(t, err)
	return a
}

// assertFreeListsSound walks every list and checks that each node lies on a
// block boundary inside a slab and that the counters match.
func assertFreeListsSound(t *testing.T, a *Allocator) {
	t.Helper()
	seen := make(map[blockRef]bool)
	for class := 0; class < NumClasses; class++ {
		n := 0
		for r := a.free.head[class]; r != 0; r = a.slabs.next(r) {
			require.False(t, seen[r], "block %#x linked twice", uint64(r))
			seen[r] = true
			require.Less(t, r.slab(), len(a.slabs.slabs))
			require.LessOrEqual(t, r.offset()+ClassSize(class), len(a.slabs.slabs[r.slab()].buf))
			require.Zero(t, r.offset()%Align)
			n++
		}
		require.Equal(t, a.free.n[class], n, "class %d length", class)
	}
}
