package smalloc

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with allocator-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// LogGrow records a new slab obtained from the heap.
func (l *Logger) LogGrow(size, wanted, toGet, totalGrown int) {
	l.Debug("pool grown",
		"block_size", size,
		"wanted", wanted,
		"slab_bytes", toGet,
		"total_grown", totalGrown,
	)
}

// LogHeapFailure records a slab request the heap refused.
func (l *Logger) LogHeapFailure(size, toGet int, err error) {
	l.Warn("heap refused slab, salvaging larger free block",
		"block_size", size,
		"slab_bytes", toGet,
		"error", err,
	)
}

// LogSalvage records a pool remnant moved onto a free list.
func (l *Logger) LogSalvage(remnant int) {
	l.Debug("pool remnant salvaged",
		"bytes", remnant,
		"class", ClassIndex(remnant),
	)
}

// LogSteal records a larger free block turned into the pool.
func (l *Logger) LogSteal(size, from int) {
	l.Debug("free block reused as pool",
		"block_size", size,
		"from_class_size", from,
	)
}

// LogOutOfMemory records the fatal exhaustion condition.
func (l *Logger) LogOutOfMemory(err *OutOfMemoryError) {
	l.Error("out of memory",
		"block_size", err.Size,
		"wanted", err.Wanted,
		"total_grown", err.TotalGrown,
		"error", err.Err,
	)
}
