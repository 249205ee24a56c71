package smalloc

import (
	"encoding/binary"
	"slices"
	"unsafe"
)

// blockRef names a block by slab index and byte offset. The zero value is
// "none", so slab indexes are stored off by one.
type blockRef uint64

const (
	refOffsetBits = 40
	refOffsetMask = 1<<refOffsetBits - 1
	maxSlabs      = 1<<(64-refOffsetBits) - 1
	maxSlabBytes  = 1 << refOffsetBits
)

func makeRef(slab, off int) blockRef {
	return blockRef(uint64(slab+1)<<refOffsetBits | uint64(off))
}

func (r blockRef) slab() int { return int(r>>refOffsetBits) - 1 }

func (r blockRef) offset() int { return int(r & refOffsetMask) }

// slab is one region obtained from the heap. Slabs are never returned
// before Release.
type slab struct {
	buf  []byte
	base uintptr
}

// slabTable holds the slabs in creation order and an index sorted by base
// address for mapping caller slices back to a blockRef.
type slabTable struct {
	slabs  []slab
	byAddr []int
}

func (t *slabTable) add(buf []byte) int {
	idx := len(t.slabs)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	t.slabs = append(t.slabs, slab{buf: buf, base: base})
	pos, _ := slices.BinarySearchFunc(t.byAddr, base, func(i int, b uintptr) int {
		return cmpAddr(t.slabs[i].base, b)
	})
	t.byAddr = slices.Insert(t.byAddr, pos, idx)
	return idx
}

// lookup finds the block whose first byte is p[0]. ok is false when p does
// not start on an Align boundary inside a slab.
func (t *slabTable) lookup(p []byte) (blockRef, bool) {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	// first slab whose base is above addr; the candidate is the one before it
	pos, _ := slices.BinarySearchFunc(t.byAddr, addr+1, func(i int, a uintptr) int {
		return cmpAddr(t.slabs[i].base, a)
	})
	if pos == 0 {
		return 0, false
	}
	idx := t.byAddr[pos-1]
	s := &t.slabs[idx]
	off := addr - s.base
	if off >= uintptr(len(s.buf)) || off%Align != 0 {
		return 0, false
	}
	return makeRef(idx, int(off)), true
}

// bytes returns the n-byte window at r with capacity size.
func (t *slabTable) bytes(r blockRef, n, size int) []byte {
	off := r.offset()
	return t.slabs[r.slab()].buf[off : off+n : off+size]
}

func (t *slabTable) next(r blockRef) blockRef {
	off := r.offset()
	return blockRef(binary.NativeEndian.Uint64(t.slabs[r.slab()].buf[off:]))
}

func (t *slabTable) setNext(r, next blockRef) {
	off := r.offset()
	binary.NativeEndian.PutUint64(t.slabs[r.slab()].buf[off:], uint64(next))
}

func cmpAddr(a, b uintptr) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// freeLists is the bank of per-class LIFO lists. Links live inside the free
// blocks themselves.
type freeLists struct {
	head [NumClasses]blockRef
	n    [NumClasses]int
}

func (f *freeLists) push(t *slabTable, class int, r blockRef) {
	t.setNext(r, f.head[class])
	f.head[class] = r
	f.n[class]++
}

func (f *freeLists) pop(t *slabTable, class int) (blockRef, bool) {
	r := f.head[class]
	if r == 0 {
		return 0, false
	}
	f.head[class] = t.next(r)
	f.n[class]--
	return r, true
}

// publish installs a chain of count blocks of class, starting at first and
// laid out contiguously, as the head of an empty list.
func (f *freeLists) publish(t *slabTable, class int, first blockRef, count int) {
	size := ClassSize(class)
	r := first
	for i := 0; i < count-1; i++ {
		nxt := r + blockRef(size)
		t.setNext(r, nxt)
		r = nxt
	}
	t.setNext(r, 0)
	f.head[class] = first
	f.n[class] += count
}
