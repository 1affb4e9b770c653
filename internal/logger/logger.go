// Package logger provides the plain-text slog handler used by the tempmap
// command.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// SimpleHandler implements slog.Handler for common log format.
type SimpleHandler struct {
	Output io.Writer
	Level  slog.Leveler
	attrs  []slog.Attr
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(&SimpleHandler{Output: w, Level: level})
}

// ParseLevel converts debug, info, warn or error into a slog level.
// Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (h *SimpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.Level != nil {
		threshold = h.Level.Level()
	}
	return level >= threshold
}

func (h *SimpleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, " [%s] %s", r.Level.String(), r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})

	_, err := fmt.Fprintln(h.Output, b.String())
	return err
}

func (h *SimpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &nh
}

func (h *SimpleHandler) WithGroup(name string) slog.Handler {
	return h
}
