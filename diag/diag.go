// Package diag fans log records out to a text writer and an in-game status
// line.
package diag

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Sink receives one line per record at or above its level.
type Sink interface {
	Diagnostic(level slog.Level, msg string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(level slog.Level, msg string)

func (f SinkFunc) Diagnostic(level slog.Level, msg string) {
	f(level, msg)
}

// Handler forwards records to every wrapped handler and, for records at or
// above MinLevel, to the sink.
type Handler struct {
	next     slog.Handler
	sink     Sink
	minLevel slog.Leveler
}

// NewHandler wraps next. Records at minLevel or above also go to sink.
func NewHandler(next slog.Handler, sink Sink, minLevel slog.Leveler) *Handler {
	return &Handler{next: next, sink: sink, minLevel: minLevel}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level) || (h.sink != nil && level >= h.minLevel.Level())
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if h.sink != nil && r.Level >= h.minLevel.Level() {
		h.sink.Diagnostic(r.Level, r.Message)
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs), sink: h.sink, minLevel: h.minLevel}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), sink: h.sink, minLevel: h.minLevel}
}

// NewLogger builds a text logger writing to w at level, with warnings and
// errors also sent to sink.
func NewLogger(level slog.Level, w io.Writer, sink Sink) *slog.Logger {
	text := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
	return slog.New(NewHandler(text, sink, slog.LevelWarn))
}

// Last keeps the most recent diagnostic for display.
type Last struct {
	mu    sync.Mutex
	level slog.Level
	msg   string
	count int
}

func (l *Last) Diagnostic(level slog.Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level, l.msg = level, msg
	l.count++
}

// Get returns the latest message and how many were received in total.
func (l *Last) Get() (slog.Level, string, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level, l.msg, l.count
}
