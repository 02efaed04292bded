// Package logger provides the explicit event sink used by tagvault services.
//
// A Logger is created once by the composition root and passed into every
// component that logs. It writes through log/slog and additionally keeps the
// most recent events in a bounded in-memory buffer, so a UI or API can show
// recent activity without reading global state.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultBufferSize is the number of events retained when no size is configured.
const DefaultBufferSize = 500

// Options configures a Logger.
type Options struct {
	// Level is one of debug, info, warn, error (default info).
	Level string

	// Format is "text" or "json" (default text).
	Format string

	// Output receives formatted log lines (default os.Stderr).
	Output io.Writer

	// BufferSize bounds the in-memory event buffer (default 500).
	BufferSize int

	// Verbose forces debug level.
	Verbose bool
}

// Event is one buffered log record.
type Event struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Logger is a structured logger with a bounded event buffer.
// It is safe for concurrent use.
type Logger struct {
	slog   *slog.Logger
	buffer *EventBuffer
}

// New creates a Logger from options.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		inner = slog.NewJSONHandler(out, handlerOpts)
	} else {
		inner = slog.NewTextHandler(out, handlerOpts)
	}

	buffer := NewEventBuffer(opts.BufferSize)
	return &Logger{
		slog:   slog.New(&bufferHandler{inner: inner, buffer: buffer}),
		buffer: buffer,
	}
}

// Nop returns a Logger that discards output but still buffers events.
func Nop() *Logger {
	return New(Options{Output: io.Discard, Level: "debug", BufferSize: 64})
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a Logger that adds args to every record and shares the buffer.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), buffer: l.buffer}
}

// Slog exposes the underlying slog.Logger for libraries that accept one.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Events returns a snapshot of buffered events, oldest first.
func (l *Logger) Events() []Event {
	return l.buffer.Snapshot()
}

// Buffer returns the event buffer.
func (l *Logger) Buffer() *EventBuffer {
	return l.buffer
}

// EventBuffer is a fixed-capacity ring of events. When full, the oldest
// event is overwritten.
type EventBuffer struct {
	mu     sync.Mutex
	events []Event
	start  int
	size   int
}

// NewEventBuffer creates a buffer holding at most capacity events.
func NewEventBuffer(capacity int) *EventBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &EventBuffer{events: make([]Event, capacity)}
}

// Add appends an event, evicting the oldest when full.
func (b *EventBuffer) Add(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.events)
	if b.size < capacity {
		b.events[(b.start+b.size)%capacity] = e
		b.size++
		return
	}
	b.events[b.start] = e
	b.start = (b.start + 1) % capacity
}

// Snapshot returns buffered events, oldest first.
func (b *EventBuffer) Snapshot() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Event, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.events[(b.start+i)%len(b.events)]
	}
	return out
}

// Len returns the number of buffered events.
func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the buffer capacity.
func (b *EventBuffer) Cap() int {
	return len(b.events)
}

// bufferHandler records enabled records into an EventBuffer and forwards
// them to the wrapped handler.
type bufferHandler struct {
	inner  slog.Handler
	buffer *EventBuffer
	attrs  []slog.Attr
	group  string
}

func (h *bufferHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *bufferHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.buffer.Add(Event{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return h.inner.Handle(ctx, r)
}

func (h *bufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &bufferHandler{
		inner:  h.inner.WithAttrs(attrs),
		buffer: h.buffer,
		attrs:  merged,
		group:  h.group,
	}
}

func (h *bufferHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &bufferHandler{
		inner:  h.inner.WithGroup(name),
		buffer: h.buffer,
		attrs:  h.attrs,
		group:  group,
	}
}

func (h *bufferHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}
