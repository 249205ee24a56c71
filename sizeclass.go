package smalloc

const (
	// Align is the granularity of every small block and of every pool carve.
	Align = 8
	// MaxSmall is the largest request served from the free lists.
	// Anything bigger goes straight to the Heap.
	MaxSmall = 128
	// NumClasses is the number of size classes: 8, 16, ..., 128 bytes.
	NumClasses = MaxSmall / Align
	// RefillBatch is how many blocks a refill asks the pool for.
	RefillBatch = 20
)

// RoundUp returns the smallest multiple of Align that is >= n.
// RoundUp(0) is 0.
func RoundUp(n int) int {
	return (n + Align - 1) &^ (Align - 1)
}

// ClassIndex maps a request size in [1, MaxSmall] to its size class.
// The caller checks the MaxSmall threshold first; ClassIndex(0) is -1.
func ClassIndex(n int) int {
	return RoundUp(n)/Align - 1
}

// ClassSize returns the block size of class i.
func ClassSize(i int) int {
	return (i + 1) * Align
}
