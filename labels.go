package tempmap

import (
	"math"
	"sort"
	"strconv"
	"sync"
)

// Label is a textual marker placed at a sample's position on the surface.
type Label struct {
	Owner string  // ID of the renderer that placed the label
	X, Y  float64 // surface pixel coordinates of the sample
	Value string  // formatted sample value
	Unit  string
}

// Text returns the value followed by its unit.
func (l Label) Text() string { return l.Value + l.Unit }

// LabelHandle removes a placed label. Remove must be safe to call more
// than once.
type LabelHandle interface {
	Remove()
}

// LabelSink is the host overlay that displays point labels next to the
// heat map surface.
type LabelSink interface {
	PlaceLabel(Label) LabelHandle
}

// PointTextFunc formats a raw sample value for its label.
type PointTextFunc func(v float64) string

// FormatPointText is the default PointTextFunc: two decimals below 1, one
// decimal below 10, otherwise rounded to an integer.
func FormatPointText(v float64) string {
	a := math.Abs(v)
	switch {
	case a < 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case a < 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(math.Floor(v+0.5), 'f', 0, 64)
	}
}

// LabelSet is an in-memory LabelSink. It is safe for concurrent use.
type LabelSet struct {
	mu     sync.Mutex
	next   uint64
	labels map[uint64]Label
}

// NewLabelSet creates an empty label set.
func NewLabelSet() *LabelSet {
	return &LabelSet{labels: make(map[uint64]Label)}
}

// PlaceLabel stores l and returns a handle that deletes it.
func (s *LabelSet) PlaceLabel(l Label) LabelHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.labels[s.next] = l
	return &labelSetHandle{set: s, id: s.next}
}

// Labels returns the current labels in placement order.
func (s *LabelSet) Labels() []Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.labels))
	for id := range s.labels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Label, len(ids))
	for i, id := range ids {
		out[i] = s.labels[id]
	}
	return out
}

// Len returns the number of labels currently placed.
func (s *LabelSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.labels)
}

type labelSetHandle struct {
	set *LabelSet
	id  uint64
}

func (h *labelSetHandle) Remove() {
	h.set.mu.Lock()
	delete(h.set.labels, h.id)
	h.set.mu.Unlock()
}
