package tempmap

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestDebugModeLogsDrawStats(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := mustRenderer(t, newRecordingBackend(), 16, 16, opts)
	r.SetPoints([]Point{{X: 4, Y: 4, Value: 1}}, Calibration{})

	r.Draw()
	if strings.Contains(buf.String(), "msg=draw") {
		t.Fatalf("draw stats logged with debug mode off: %s", buf.String())
	}

	r.SetDebugMode(true)
	r.Draw()
	out := buf.String()
	for _, want := range []string{"msg=draw", "points=1", "component=tempmap"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q: %s", want, out)
		}
	}
}

func TestDebugModeControlsOwnLogger(t *testing.T) {
	opts := DefaultOptions()
	r := mustRenderer(t, newRecordingBackend(), 1, 1, opts)
	if r.level == nil {
		t.Fatal("renderer should own its log level")
	}
	r.SetDebugMode(true)
	if r.level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", r.level.Level())
	}
	r.SetDebugMode(false)
	if r.level.Level() != slog.LevelInfo {
		t.Errorf("level = %v, want info", r.level.Level())
	}
}

func TestStats(t *testing.T) {
	r := mustRenderer(t, newRecordingBackend(), 30, 20, testOptions())
	r.SetPoints([]Point{{X: 1, Y: 1, Value: 1}, {X: 2, Y: 2, Value: 2}}, Calibration{})
	r.Draw()
	s := r.Stats()
	if s.Points != 2 || s.FieldWidth != 30 || s.FieldHeight != 20 {
		t.Errorf("Stats = %+v", s)
	}
	if s.Total() != s.AccumulateTime+s.CompositeTime+s.LabelTime {
		t.Error("Total does not sum phases")
	}
	if s.Total() < 0 || s.Total() > time.Minute {
		t.Errorf("Total = %v", s.Total())
	}
}
