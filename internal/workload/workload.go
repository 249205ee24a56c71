// Package workload drives an allocator with a randomized mix of allocations
// and releases and verifies that no block is corrupted while it is live.
package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pavanmanishd/smalloc"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCorruption is returned when a live block no longer holds the
	// pattern written into it.
	ErrCorruption = errors.New("workload: block corrupted")
	// ErrInvalidConfig is returned by Run for an unusable Config.
	ErrInvalidConfig = errors.New("workload: invalid config")
)

// Config describes a run.
type Config struct {
	Ops       int     // steps per worker
	Workers   int     // concurrent workers; > 1 needs a goroutine-safe allocator
	MaxSize   int     // request sizes are drawn from [1, MaxSize]
	FreeRatio float64 // probability that a step frees a live block
	Seed      uint64
}

// DefaultConfig returns a single-worker run over the small size range.
func DefaultConfig() Config {
	return Config{
		Ops:       100_000,
		Workers:   1,
		MaxSize:   smalloc.MaxSmall,
		FreeRatio: 0.5,
		Seed:      1,
	}
}

func (c Config) validate() error {
	switch {
	case c.Ops < 0:
		return fmt.Errorf("%w: ops %d", ErrInvalidConfig, c.Ops)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.MaxSize < 1:
		return fmt.Errorf("%w: max size %d", ErrInvalidConfig, c.MaxSize)
	case c.FreeRatio < 0 || c.FreeRatio > 1:
		return fmt.Errorf("%w: free ratio %v", ErrInvalidConfig, c.FreeRatio)
	}
	return nil
}

// Result summarizes a run.
type Result struct {
	Allocs   uint64
	Frees    uint64
	Bytes    uint64 // requested bytes, summed over all allocations
	PeakLive int    // most blocks live at once in a single worker
	Elapsed  time.Duration
}

// block is one live allocation and the byte it was stamped with.
type block struct {
	p     []byte
	stamp byte
}

// Run executes cfg against a. Every block still live when a worker finishes
// is verified and released, so a clean run leaves nothing in use. An out of
// memory panic from a is reported as an error wrapping it.
func Run(ctx context.Context, a smalloc.RawAllocator, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	var (
		mu  sync.Mutex
		res Result
	)
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			r, err := runWorker(ctx, a, cfg, w)
			mu.Lock()
			res.Allocs += r.Allocs
			res.Frees += r.Frees
			res.Bytes += r.Bytes
			res.PeakLive = max(res.PeakLive, r.PeakLive)
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	res.Elapsed = time.Since(start)
	return res, err
}

func runWorker(ctx context.Context, a smalloc.RawAllocator, cfg Config, worker int) (res Result, err error) {
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(worker)))
	var live []block

	defer func() {
		if r := recover(); r != nil {
			oom, ok := r.(*smalloc.OutOfMemoryError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("worker %d: %w", worker, oom)
		}
		for _, b := range live {
			if ferr := release(a, b); ferr != nil {
				if err == nil {
					err = fmt.Errorf("worker %d: %w", worker, ferr)
				}
				continue
			}
			res.Frees++
		}
	}()

	for i := 0; i < cfg.Ops; i++ {
		if i&255 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		if len(live) > 0 && rng.Float64() < cfg.FreeRatio {
			j := rng.IntN(len(live))
			b := live[j]
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			if err := release(a, b); err != nil {
				return res, fmt.Errorf("worker %d op %d: %w", worker, i, err)
			}
			res.Frees++
			continue
		}

		n := rng.IntN(cfg.MaxSize) + 1
		p, err := a.Allocate(n)
		if err != nil {
			return res, fmt.Errorf("worker %d op %d: allocate %d: %w", worker, i, n, err)
		}
		stamp := byte(worker*131 + i)
		for k := range p {
			p[k] = stamp
		}
		live = append(live, block{p: p, stamp: stamp})
		res.Allocs++
		res.Bytes += uint64(n)
		res.PeakLive = max(res.PeakLive, len(live))
	}
	return res, nil
}

// release checks b's pattern and returns it to a.
func release(a smalloc.RawAllocator, b block) error {
	for k, v := range b.p {
		if v != b.stamp {
			return fmt.Errorf("%w: byte %d of %d is %#x, want %#x", ErrCorruption, k, len(b.p), v, b.stamp)
		}
	}
	return a.Deallocate(b.p, len(b.p))
}
