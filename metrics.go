package smalloc

// counters are cumulative event counts kept by the Allocator.
type counters struct {
	allocs, frees           uint64
	largeAllocs, largeFrees uint64
	refills, grows          uint64
	salvages, steals        uint64
	smallInUse, largeInUse  int
}

// TotalGrown returns the bytes ever requested from the heap for the pool.
func (a *Allocator) TotalGrown() int {
	return a.pool.totalGrown
}

// PoolAvail returns the bytes still uncarved in the current pool window.
func (a *Allocator) PoolAvail() int {
	return a.pool.avail()
}

// NumSlabs returns the number of slabs obtained from the heap.
func (a *Allocator) NumSlabs() int {
	return len(a.slabs.slabs)
}

// FreeBlocks returns the length of the free list for class i.
func (a *Allocator) FreeBlocks(i int) int {
	return a.free.n[i]
}

// SizeInUse returns the small-block bytes currently held by callers,
// counted at class size.
func (a *Allocator) SizeInUse() int {
	return a.stats.smallInUse
}

// Utilization returns the ratio of small bytes in use to bytes grown (0.0 to 1.0).
// Returns 0.0 if the pool has never grown.
func (a *Allocator) Utilization() float64 {
	if a.pool.totalGrown == 0 {
		return 0
	}
	return float64(a.stats.smallInUse) / float64(a.pool.totalGrown)
}

// Metrics returns a snapshot of allocator statistics.
func (a *Allocator) Metrics() Metrics {
	m := Metrics{
		TotalGrown:  a.pool.totalGrown,
		PoolAvail:   a.pool.avail(),
		NumSlabs:    len(a.slabs.slabs),
		FreeBlocks:  a.free.n,
		SmallInUse:  a.stats.smallInUse,
		LargeInUse:  a.stats.largeInUse,
		Allocs:      a.stats.allocs,
		Frees:       a.stats.frees,
		LargeAllocs: a.stats.largeAllocs,
		LargeFrees:  a.stats.largeFrees,
		Refills:     a.stats.refills,
		Grows:       a.stats.grows,
		Salvages:    a.stats.salvages,
		Steals:      a.stats.steals,
		Utilization: a.Utilization(),
	}
	for i, n := range m.FreeBlocks {
		m.FreeBytes += n * ClassSize(i)
	}
	if a.shadow != nil {
		m.Tracked = a.shadow.len()
	}
	return m
}

// Metrics contains statistical information about an allocator.
type Metrics struct {
	TotalGrown  int             // Bytes ever requested from the heap for the pool
	PoolAvail   int             // Uncarved bytes in the current pool window
	NumSlabs    int             // Slabs obtained from the heap
	FreeBlocks  [NumClasses]int // Free-list length per class
	FreeBytes   int             // Bytes sitting in free lists
	SmallInUse  int             // Small bytes held by callers, at class size
	LargeInUse  int             // Large bytes held by callers
	Allocs      uint64          // Small allocations
	Frees       uint64          // Small releases
	LargeAllocs uint64          // Heap allocations on the large path
	LargeFrees  uint64          // Heap releases on the large path
	Refills     uint64          // Free lists refilled from the pool
	Grows       uint64          // Slabs obtained from the heap
	Salvages    uint64          // Pool remnants moved to a free list
	Steals      uint64          // Larger free blocks reused as the pool
	Tracked     int             // Live blocks in the debug shadow map
	Utilization float64         // SmallInUse / TotalGrown (0.0-1.0)
}

// Thread-safe metrics for SafeAllocator

// SizeInUse thread-safely returns the small-block bytes held by callers.
func (s *SafeAllocator) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// TotalGrown thread-safely returns the bytes ever requested for the pool.
func (s *SafeAllocator) TotalGrown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.TotalGrown()
}

// Utilization thread-safely returns the ratio of bytes in use to bytes grown.
func (s *SafeAllocator) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// Metrics thread-safely returns a snapshot of allocator statistics.
func (s *SafeAllocator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
