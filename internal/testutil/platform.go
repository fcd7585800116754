// Package testutil provides test doubles for the engine's platform
// collaborators and small filesystem helpers.
package testutil

import (
	"sync"

	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/platform"
	"github.com/npratt/flick/internal/training"
)

// MockPointer is a settable platform.Pointer.
type MockPointer struct {
	mu  sync.Mutex
	pos geom.Point
}

// NewMockPointer creates a pointer resting at p.
func NewMockPointer(p geom.Point) *MockPointer {
	return &MockPointer{pos: p}
}

// Position implements platform.Pointer.
func (m *MockPointer) Position() geom.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// MoveTo sets the pointer position.
func (m *MockPointer) MoveTo(p geom.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = p
}

// MockScreen is a platform.Screen with settable geometry.
type MockScreen struct {
	mu              sync.Mutex
	size            geom.Size
	target          geom.Size
	targetSizeCalls int
}

// NewMockScreen creates a screen of the given size with fixed target size.
func NewMockScreen(size, target geom.Size) *MockScreen {
	return &MockScreen{size: size, target: target}
}

// Geometry implements platform.Screen.
func (m *MockScreen) Geometry() geom.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// TargetSize implements platform.Screen.
func (m *MockScreen) TargetSize() geom.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targetSizeCalls++
	return m.target
}

// SetGeometry simulates a resolution change.
func (m *MockScreen) SetGeometry(size geom.Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = size
}

// TargetSizeCalls returns how many times TargetSize was queried.
func (m *MockScreen) TargetSizeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.targetSizeCalls
}

// MockSurface records its lifecycle.
type MockSurface struct {
	overlay *MockOverlay
	Kind    training.Kind
	rect    geom.Rect

	mu     sync.Mutex
	closes int
}

// Rect implements platform.Surface.
func (s *MockSurface) Rect() geom.Rect {
	return s.rect
}

// Close implements platform.Surface.
func (s *MockSurface) Close() {
	s.mu.Lock()
	s.closes++
	first := s.closes == 1
	s.mu.Unlock()
	if first {
		s.overlay.release(s)
	}
}

// Closes returns how many times Close was called.
func (s *MockSurface) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// MockOverlay is a platform.Overlay that tracks every surface it opens.
type MockOverlay struct {
	mu      sync.Mutex
	opened  []*MockSurface
	live    map[*MockSurface]struct{}
	maxLive int
}

// NewMockOverlay creates an empty overlay.
func NewMockOverlay() *MockOverlay {
	return &MockOverlay{live: make(map[*MockSurface]struct{})}
}

// Open implements platform.Overlay.
func (m *MockOverlay) Open(kind training.Kind, rect geom.Rect) platform.Surface {
	s := &MockSurface{overlay: m, Kind: kind, rect: rect}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, s)
	m.live[s] = struct{}{}
	if len(m.live) > m.maxLive {
		m.maxLive = len(m.live)
	}
	return s
}

func (m *MockOverlay) release(s *MockSurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, s)
}

// Opened returns every surface opened so far, oldest first.
func (m *MockOverlay) Opened() []*MockSurface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockSurface(nil), m.opened...)
}

// Current returns the most recently opened surface, or nil.
func (m *MockOverlay) Current() *MockSurface {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.opened) == 0 {
		return nil
	}
	return m.opened[len(m.opened)-1]
}

// Live returns the number of surfaces opened and not yet closed.
func (m *MockOverlay) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// MaxLive returns the highest number of simultaneously live surfaces.
func (m *MockOverlay) MaxLive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLive
}
