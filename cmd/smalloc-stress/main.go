// smalloc-stress runs a randomized allocation workload against the small-object
// allocator and prints the resulting pool statistics.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pavanmanishd/smalloc"
	"github.com/pavanmanishd/smalloc/internal/workload"
	"github.com/urfave/cli/v2"
)

var (
	opsFlag = &cli.IntFlag{
		Name:  "ops",
		Value: workload.DefaultConfig().Ops,
		Usage: "Steps per worker",
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Value: 1,
		Usage: "Concurrent workers (more than one shares a locked allocator)",
	}
	maxSizeFlag = &cli.IntFlag{
		Name:  "max-size",
		Value: smalloc.MaxSmall,
		Usage: "Largest request size in bytes",
	}
	freeRatioFlag = &cli.Float64Flag{
		Name:  "free-ratio",
		Value: workload.DefaultConfig().FreeRatio,
		Usage: "Probability that a step releases a live block",
	}
	seedFlag = &cli.Uint64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "Random seed",
	}
	initialPoolFlag = &cli.IntFlag{
		Name:  "initial-pool",
		Usage: "Bytes to seed the pool with before the run",
	}
	heapLimitFlag = &cli.IntFlag{
		Name:  "heap-limit",
		Usage: "Cap on bytes taken from the system heap (0 means unlimited)",
	}
	mmapFlag = &cli.BoolFlag{
		Name:  "mmap",
		Usage: "Take slabs from anonymous mappings instead of the Go heap",
	}
	debugChecksFlag = &cli.BoolFlag{
		Name:  "debug-checks",
		Usage: "Track live blocks to catch double frees and size mismatches",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Value: 1,
		Usage: "Logging verbosity: 0=error, 1=warn, 2=info, 3=debug",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "smalloc-stress",
		Usage: "stress the small-object allocator with a random workload",
		Flags: []cli.Flag{
			opsFlag,
			workersFlag,
			maxSizeFlag,
			freeRatioFlag,
			seedFlag,
			initialPoolFlag,
			heapLimitFlag,
			mmapFlag,
			debugChecksFlag,
			verbosityFlag,
		},
		Action: stress,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func stress(ctx *cli.Context) error {
	opts, err := allocatorOptions(ctx)
	if err != nil {
		return err
	}
	cfg := workload.Config{
		Ops:       ctx.Int(opsFlag.Name),
		Workers:   ctx.Int(workersFlag.Name),
		MaxSize:   ctx.Int(maxSizeFlag.Name),
		FreeRatio: ctx.Float64(freeRatioFlag.Name),
		Seed:      ctx.Uint64(seedFlag.Name),
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()

	var (
		res     workload.Result
		metrics smalloc.Metrics
		release func() error
	)
	if cfg.Workers > 1 {
		s, err := smalloc.NewSafeAllocator(opts...)
		if err != nil {
			return err
		}
		res, err = workload.Run(runCtx, s, cfg)
		if err != nil {
			return err
		}
		metrics, release = s.Metrics(), s.Release
	} else {
		a, err := smalloc.NewAllocator(opts...)
		if err != nil {
			return err
		}
		res, err = workload.Run(runCtx, a, cfg)
		if err != nil {
			return err
		}
		metrics, release = a.Metrics(), a.Release
	}

	out := ctx.App.Writer
	printSummary(out, cfg, res, metrics)
	printClasses(out, metrics)
	return release()
}

func allocatorOptions(ctx *cli.Context) ([]smalloc.Option, error) {
	opts := []smalloc.Option{
		smalloc.WithLogger(smalloc.NewTextLogger(verbosityLevel(ctx.Int(verbosityFlag.Name)))),
	}
	var heap smalloc.Heap = smalloc.GoHeap{}
	if ctx.Bool(mmapFlag.Name) {
		heap = smalloc.MmapHeap{}
	}
	if limit := ctx.Int(heapLimitFlag.Name); limit > 0 {
		heap = smalloc.NewLimitedHeap(heap, limit)
	} else if limit < 0 {
		return nil, fmt.Errorf("invalid --%s %d", heapLimitFlag.Name, limit)
	}
	opts = append(opts, smalloc.WithHeap(heap))
	if n := ctx.Int(initialPoolFlag.Name); n > 0 {
		opts = append(opts, smalloc.WithInitialPool(n))
	}
	if ctx.Bool(debugChecksFlag.Name) {
		opts = append(opts, smalloc.WithDebugChecks())
	}
	return opts, nil
}

func verbosityLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v == 2:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func printSummary(w io.Writer, cfg workload.Config, res workload.Result, m smalloc.Metrics) {
	fmt.Fprintf(w, "workers=%d ops=%d max-size=%d free-ratio=%.2f seed=%d\n",
		cfg.Workers, cfg.Ops, cfg.MaxSize, cfg.FreeRatio, cfg.Seed)
	fmt.Fprintf(w, "allocs=%d frees=%d bytes=%d peak-live=%d elapsed=%v\n",
		res.Allocs, res.Frees, res.Bytes, res.PeakLive, res.Elapsed)
	fmt.Fprintf(w, "slabs=%d grown=%d pool-avail=%d free-bytes=%d\n",
		m.NumSlabs, m.TotalGrown, m.PoolAvail, m.FreeBytes)
	fmt.Fprintf(w, "refills=%d grows=%d salvages=%d steals=%d large=%d\n",
		m.Refills, m.Grows, m.Salvages, m.Steals, m.LargeAllocs)
}

func printClasses(w io.Writer, m smalloc.Metrics) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Class", "Size", "Free blocks", "Free bytes"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, n := range m.FreeBlocks {
		size := smalloc.ClassSize(i)
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(size),
			strconv.Itoa(n),
			strconv.Itoa(n * size),
		})
	}
	table.Render()
}
