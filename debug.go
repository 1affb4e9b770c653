package tempmap

import (
	"log/slog"
	"time"
)

// DrawStats holds timing and size metrics of the most recent Draw.
type DrawStats struct {
	AccumulateTime time.Duration
	CompositeTime  time.Duration
	LabelTime      time.Duration
	Points         int
	Labels         int
	FieldWidth     int
	FieldHeight    int
}

// Total returns the combined duration of the draw.
func (s DrawStats) Total() time.Duration {
	return s.AccumulateTime + s.CompositeTime + s.LabelTime
}

// Stats returns the metrics of the most recent Draw.
func (r *Renderer) Stats() DrawStats { return r.stats }

// SetDebugMode enables per-draw timing output at debug level. When the
// renderer created its own logger, the logger's level follows the mode.
func (r *Renderer) SetDebugMode(on bool) {
	r.debug = on
	if r.level == nil {
		return
	}
	if on {
		r.level.Set(slog.LevelDebug)
	} else {
		r.level.Set(slog.LevelInfo)
	}
}

// debugLog logs draw stats when debug mode is on.
func (r *Renderer) debugLog(stats DrawStats) {
	if !r.debug {
		return
	}
	r.log.Debug("draw",
		"accumulate", stats.AccumulateTime,
		"composite", stats.CompositeTime,
		"labels", stats.LabelTime,
		"total", stats.Total(),
		"points", stats.Points,
		"field", [2]int{stats.FieldWidth, stats.FieldHeight},
	)
	if stats.Points > debugMaxPoints {
		r.log.Warn("point count exceeds per-draw threshold", "points", stats.Points, "threshold", debugMaxPoints)
	}
}

// debugMaxPoints is the point count above which debug mode warns.
const debugMaxPoints = 1000
