package smalloc

import (
	"fmt"
	"unsafe"
)

// Example demonstrates basic allocator usage
func Example() {
	a, err := NewAllocator()
	if err != nil {
		panic(err)
	}
	defer a.Release()

	// Small requests are rounded up to a size class
	b, _ := a.Allocate(20)
	fmt.Printf("len=%d cap=%d\n", len(b), cap(b))

	// Freed blocks are reused first
	first := unsafe.SliceData(b)
	_ = a.Deallocate(b, 20)
	b, _ = a.Allocate(24)
	fmt.Printf("reused: %v\n", unsafe.SliceData(b) == first)

	// Large requests go straight to the heap
	large, _ := a.Allocate(1000)
	fmt.Printf("large: %d slabs: %d\n", len(large), a.NumSlabs())
	_ = a.Deallocate(large, 1000)

	fmt.Printf("grown: %d bytes\n", a.TotalGrown())

	// Output:
	// len=20 cap=24
	// reused: true
	// large: 1000 slabs: 1
	// grown: 960 bytes
}

// ExampleAllocator_Metrics shows the pool growing once the initial slab is used up
func ExampleAllocator_Metrics() {
	a, _ := NewAllocator(WithInitialPool(100))
	defer a.Release()

	for i := 0; i < 13; i++ {
		_, _ = a.Allocate(8)
	}

	m := a.Metrics()
	fmt.Printf("Slabs: %d\n", m.NumSlabs)
	fmt.Printf("TotalGrown: %d\n", m.TotalGrown)
	fmt.Printf("Free 8-byte blocks: %d\n", m.FreeBlocks[0])
	fmt.Printf("PoolAvail: %d\n", m.PoolAvail)
	fmt.Printf("SmallInUse: %d\n", m.SmallInUse)
	fmt.Printf("Utilization: %.1f%%\n", m.Utilization*100)

	// Output:
	// Slabs: 2
	// TotalGrown: 424
	// Free 8-byte blocks: 19
	// PoolAvail: 168
	// SmallInUse: 104
	// Utilization: 24.5%
}

// ExampleConstruct demonstrates typed allocation
func ExampleConstruct() {
	a, _ := NewAllocator()
	defer a.Release()

	type point struct{ X, Y int32 }
	p, _ := Construct(a, point{X: 3, Y: 4})
	fmt.Println(p.X*p.X + p.Y*p.Y)

	xs, _ := AllocSlice[uint16](a, 6)
	for i := range xs {
		xs[i] = uint16(i * i)
	}
	fmt.Println(xs)

	_ = FreeSlice(a, xs)
	_ = Destroy(a, p)
	fmt.Printf("in use: %d\n", a.SizeInUse())

	// Output:
	// 25
	// [0 1 4 9 16 25]
	// in use: 0
}

// ExampleSafeAllocator demonstrates sharing one allocator between goroutines
func ExampleSafeAllocator() {
	s, _ := NewSafeAllocator()
	defer s.Release()

	done := make(chan []byte)
	for i := 0; i < 3; i++ {
		go func() {
			b, _ := s.Allocate(64)
			done <- b
		}()
	}
	for i := 0; i < 3; i++ {
		_ = s.Deallocate(<-done, 64)
	}
	fmt.Printf("in use: %d\n", s.SizeInUse())
	fmt.Printf("grown: %d\n", s.TotalGrown())

	// Output:
	// in use: 0
	// grown: 2560
}
