package smalloc

import "fmt"

// shadowMap remembers the requested size of every live small block.
// It exists only with WithDebugChecks.
type shadowMap struct {
	live map[blockRef]int
}

func newShadowMap() *shadowMap {
	return &shadowMap{live: make(map[blockRef]int)}
}

func (m *shadowMap) track(r blockRef, n int) {
	m.live[r] = n
}

func (m *shadowMap) untrack(r blockRef, n int) error {
	want, ok := m.live[r]
	if !ok {
		return fmt.Errorf("%w: slab %d offset %d", ErrDoubleFree, r.slab(), r.offset())
	}
	if want != n {
		return fmt.Errorf("%w: allocated %d, released %d", ErrSizeMismatch, want, n)
	}
	delete(m.live, r)
	return nil
}

func (m *shadowMap) len() int { return len(m.live) }
