// Package logbuf keeps the bounded, human-readable status log that
// automation steps write to.
package logbuf

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mj1618/droid-a11y/internal/clock"
)

// DefaultCapacity is the number of lines kept when Capacity is unset.
const DefaultCapacity = 400

// TimeFormat is the timestamp prefix layout of each line.
const TimeFormat = "15:04:05.000"

// Buffer is an append-only ring of timestamped lines. When full, the
// oldest line is evicted. Safe for concurrent use.
type Buffer struct {
	mu       sync.Mutex
	lines    []string
	capacity int
	clock    clock.Clock
	forward  *zerolog.Logger
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithClock sets the timestamp source.
func WithClock(c clock.Clock) Option {
	return func(b *Buffer) { b.clock = c }
}

// WithForward mirrors every line to a structured logger at info level.
func WithForward(l zerolog.Logger) Option {
	return func(b *Buffer) { b.forward = &l }
}

// New returns a buffer holding at most capacity lines (0 = DefaultCapacity).
func New(capacity int, opts ...Option) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Buffer{
		capacity: capacity,
		clock:    clock.Real{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Add appends one line.
func (b *Buffer) Add(msg string) {
	line := b.clock.Now().Format(TimeFormat) + "  " + msg

	b.mu.Lock()
	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.capacity; over > 0 {
		// Copy down instead of reslicing so the backing array does not grow
		// without bound.
		n := copy(b.lines, b.lines[over:])
		for i := n; i < len(b.lines); i++ {
			b.lines[i] = ""
		}
		b.lines = b.lines[:n]
	}
	b.mu.Unlock()

	if b.forward != nil {
		b.forward.Info().Msg(msg)
	}
}

// Addf formats and appends one line.
func (b *Buffer) Addf(format string, args ...any) {
	b.Add(fmt.Sprintf(format, args...))
}

// Snapshot returns a copy of the current lines, oldest first.
func (b *Buffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Clear drops every line.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

// Len returns the number of lines held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Capacity returns the maximum number of lines held.
func (b *Buffer) Capacity() int {
	return b.capacity
}
