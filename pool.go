package smalloc

import "fmt"

// pool is the uncarved window [start, end) of one slab.
type pool struct {
	slab       int
	start, end int
	totalGrown int
}

func (p *pool) avail() int { return p.end - p.start }

// maxChunkTries bounds chunkAlloc's loop. A successful grow or steal always
// leaves at least one block in the pool, so the third pass must carve.
const maxChunkTries = 3

// chunkAlloc carves up to wanted contiguous blocks of size bytes from the
// pool, growing it from the heap or from a larger free list when it runs
// dry. It returns the first block and how many were carved (>= 1), or
// panics with *OutOfMemoryError.
func (a *Allocator) chunkAlloc(size, wanted int) (blockRef, int) {
	for try := 0; try < maxChunkTries; try++ {
		needed := size * wanted
		avail := a.pool.avail()

		switch {
		case avail >= needed:
			return a.carve(needed), wanted
		case avail >= size:
			wanted = avail / size
			return a.carve(size * wanted), wanted
		}

		if avail > 0 {
			// Every slab and every carve is a multiple of Align, so the
			// remnant is always a whole block of a smaller class.
			r := makeRef(a.pool.slab, a.pool.start)
			a.free.push(&a.slabs, ClassIndex(avail), r)
			a.pool.start = a.pool.end
			a.stats.salvages++
			a.log.LogSalvage(avail)
		}

		toGet := 2*needed + RoundUp(a.pool.totalGrown>>4)
		buf, err := a.grow(toGet)
		if err == nil {
			idx := a.slabs.add(buf)
			a.pool.slab, a.pool.start, a.pool.end = idx, 0, toGet
			a.pool.totalGrown += toGet
			a.stats.grows++
			a.log.LogGrow(size, wanted, toGet, a.pool.totalGrown)
			continue
		}
		a.log.LogHeapFailure(size, toGet, err)

		if r, from, ok := a.stealLarger(size); ok {
			a.pool.slab, a.pool.start, a.pool.end = r.slab(), r.offset(), r.offset()+from
			a.stats.steals++
			a.log.LogSteal(size, from)
			continue
		}

		oom := &OutOfMemoryError{
			Size:       size,
			Wanted:     wanted,
			TotalGrown: a.pool.totalGrown,
			Err:        err,
		}
		a.log.LogOutOfMemory(oom)
		panic(oom)
	}
	panic(fmt.Sprintf("smalloc: chunkAlloc(%d, %d) did not converge", size, wanted))
}

// carve takes n bytes off the front of the pool.
func (a *Allocator) carve(n int) blockRef {
	r := makeRef(a.pool.slab, a.pool.start)
	a.pool.start += n
	return r
}

// grow requests a slab of exactly n bytes from the heap.
func (a *Allocator) grow(n int) ([]byte, error) {
	if len(a.slabs.slabs) >= maxSlabs || uint64(n) > maxSlabBytes {
		return nil, fmt.Errorf("%w: slab limits reached", ErrHeapExhausted)
	}
	buf, err := a.heap.Alloc(n)
	if err != nil {
		return nil, err
	}
	if len(buf) < n {
		_ = a.heap.Free(buf)
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortSlab, len(buf), n)
	}
	return buf[:n], nil
}

// stealLarger pops one block from the smallest non-empty class strictly
// larger than size. It returns the block and its class size.
func (a *Allocator) stealLarger(size int) (blockRef, int, bool) {
	for i := ClassIndex(size) + 1; i < NumClasses; i++ {
		if r, ok := a.free.pop(&a.slabs, i); ok {
			return r, ClassSize(i), true
		}
	}
	return 0, 0, false
}
