package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimpleHandler_Enabled(t *testing.T) {
	h := &SimpleHandler{Level: slog.LevelInfo}
	ctx := context.Background()

	assert.False(t, h.Enabled(ctx, slog.LevelDebug))
	assert.True(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}

func TestSimpleHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := &SimpleHandler{Output: &buf, Level: slog.LevelInfo}

	fixedTime := time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC)
	r := slog.NewRecord(fixedTime, slog.LevelWarn, "renderer disabled", 0)
	r.AddAttrs(slog.String("id", "map-1"), slog.Int("points", 3))

	err := h.WithAttrs([]slog.Attr{slog.String("component", "tempmap")}).Handle(context.Background(), r)
	assert.NoError(t, err)

	expected := "2023-10-27 10:00:00 [WARN] renderer disabled component=tempmap id=map-1 points=3\n"
	assert.Equal(t, expected, buf.String())
}

func TestWithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := &SimpleHandler{Output: &buf, Level: slog.LevelInfo}
	_ = base.WithAttrs([]slog.Attr{slog.String("a", "1")})

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "msg", 0)
	assert.NoError(t, base.Handle(context.Background(), r))
	assert.NotContains(t, buf.String(), "a=1")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewUsesLevelVar(t *testing.T) {
	var buf bytes.Buffer
	var level slog.LevelVar
	l := New(&buf, &level)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "[DEBUG] shown")
}
