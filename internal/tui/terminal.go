package tui

import (
	"math"
	"sync"

	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/platform"
	"github.com/npratt/flick/internal/training"
)

// Metrics maps terminal cells to the engine's pixel space.
type Metrics struct {
	CellW   float64
	CellH   float64
	TargetW float64
	TargetH float64
}

// DefaultMetrics approximates a common terminal font.
func DefaultMetrics() Metrics {
	return Metrics{CellW: 8, CellH: 16, TargetW: 32, TargetH: 32}
}

// Terminal presents the arena area of the terminal to the engine as a
// screen, a pointer driven by mouse motion and an overlay of target boxes.
// It is safe for concurrent use: the engine calls it from scheduler
// goroutines while the bubbletea loop feeds it input.
type Terminal struct {
	metrics Metrics

	mu      sync.Mutex
	cols    int
	rows    int
	pointer geom.Point
	live    []*surface
}

var (
	_ platform.Pointer = (*Terminal)(nil)
	_ platform.Screen  = (*Terminal)(nil)
	_ platform.Overlay = (*Terminal)(nil)
)

// NewTerminal creates a Terminal with an empty arena.
func NewTerminal(m Metrics) *Terminal {
	if m.CellW <= 0 || m.CellH <= 0 {
		d := DefaultMetrics()
		m.CellW, m.CellH = d.CellW, d.CellH
	}
	return &Terminal{metrics: m}
}

// Metrics returns the cell metrics.
func (t *Terminal) Metrics() Metrics {
	return t.metrics
}

// Resize sets the arena size in cells.
func (t *Terminal) Resize(cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols = max(cols, 0)
	t.rows = max(rows, 0)
}

// Cells returns the arena size in cells.
func (t *Terminal) Cells() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

// MovePointer places the pointer at the center of an arena cell.
func (t *Terminal) MovePointer(col, row int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pointer = geom.Point{
		X: (float64(col) + 0.5) * t.metrics.CellW,
		Y: (float64(row) + 0.5) * t.metrics.CellH,
	}
}

// Position implements platform.Pointer.
func (t *Terminal) Position() geom.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pointer
}

// Geometry implements platform.Screen.
func (t *Terminal) Geometry() geom.Size {
	t.mu.Lock()
	defer t.mu.Unlock()
	return geom.Size{W: float64(t.cols) * t.metrics.CellW, H: float64(t.rows) * t.metrics.CellH}
}

// TargetSize implements platform.Screen.
func (t *Terminal) TargetSize() geom.Size {
	return geom.Size{W: t.metrics.TargetW, H: t.metrics.TargetH}
}

// Open implements platform.Overlay.
func (t *Terminal) Open(kind training.Kind, rect geom.Rect) platform.Surface {
	s := &surface{term: t, kind: kind, rect: rect}
	t.mu.Lock()
	t.live = append(t.live, s)
	t.mu.Unlock()
	return s
}

// Box is a live target in cell coordinates. Only cells whose centers fall
// inside the target rectangle are covered, so any covered cell is a hit.
type Box struct {
	Kind training.Kind
	Col  int
	Row  int
	W    int
	H    int
}

// Boxes returns the live targets in cell coordinates.
func (t *Terminal) Boxes() []Box {
	t.mu.Lock()
	defer t.mu.Unlock()
	boxes := make([]Box, 0, len(t.live))
	for _, s := range t.live {
		if b, ok := t.cellBox(s); ok {
			boxes = append(boxes, b)
		}
	}
	return boxes
}

func (t *Terminal) cellBox(s *surface) (Box, bool) {
	cw, ch := t.metrics.CellW, t.metrics.CellH
	c0 := int(math.Ceil(s.rect.X/cw - 0.5))
	c1 := int(math.Floor((s.rect.X+s.rect.W)/cw - 0.5))
	r0 := int(math.Ceil(s.rect.Y/ch - 0.5))
	r1 := int(math.Floor((s.rect.Y+s.rect.H)/ch - 0.5))
	if c1 < c0 || r1 < r0 {
		return Box{}, false
	}
	return Box{Kind: s.kind, Col: c0, Row: r0, W: c1 - c0 + 1, H: r1 - r0 + 1}, true
}

func (t *Terminal) release(s *surface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, live := range t.live {
		if live == s {
			t.live = append(t.live[:i], t.live[i+1:]...)
			return
		}
	}
}

type surface struct {
	term *Terminal
	kind training.Kind
	rect geom.Rect
	once sync.Once
}

func (s *surface) Rect() geom.Rect {
	return s.rect
}

func (s *surface) Close() {
	s.once.Do(func() { s.term.release(s) })
}
