// Package target implements the live target handle and its hit detection.
//
// A Handle wraps one overlay surface and polls the pointer at a fixed cadence.
// Its outcome moves from Pending to exactly one of Hit, Missed or Discarded
// through a single compare-and-swap, so a struck target can never also be
// counted as a miss and a discarded target can never report a hit.
package target

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/npratt/flick/internal/clock"
	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/platform"
	"github.com/npratt/flick/internal/training"
)

// DefaultPollInterval is the hit-check cadence (about 60 Hz).
const DefaultPollInterval = 16 * time.Millisecond

// Outcome is the resolution state of a target.
type Outcome int32

// Target outcomes.
const (
	Pending Outcome = iota
	Hit
	Missed
	Discarded
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Hit:
		return "hit"
	case Missed:
		return "missed"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Spec describes a target to spawn.
type Spec struct {
	Seq          int
	Kind         training.Kind
	Rect         geom.Rect
	PollInterval time.Duration
}

// Handle is one spawned, visible target.
type Handle struct {
	seq       int
	kind      training.Kind
	surface   platform.Surface
	rect      geom.Rect
	pointer   platform.Pointer
	spawnedAt time.Time
	onHit     func(*Handle)

	outcome atomic.Int32

	pollMu     sync.Mutex
	cancelPoll clock.CancelFunc
	pollDone   bool

	closeOnce sync.Once
}

// Spawn opens a surface for spec on overlay and starts polling pointer for
// containment. onHit is called at most once, from the scheduler's goroutine,
// after the handle has already been marked Hit.
func Spawn(spec Spec, overlay platform.Overlay, pointer platform.Pointer, src clock.Source, onHit func(*Handle)) *Handle {
	interval := spec.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	surface := overlay.Open(spec.Kind, spec.Rect)
	h := &Handle{
		seq:       spec.Seq,
		kind:      spec.Kind,
		surface:   surface,
		rect:      surface.Rect(),
		pointer:   pointer,
		spawnedAt: src.Now(),
		onHit:     onHit,
	}

	h.pollMu.Lock()
	h.cancelPoll = src.Every(interval, h.poll)
	h.pollMu.Unlock()
	return h
}

// Seq returns the per-run sequence number of the target, starting at 1.
func (h *Handle) Seq() int {
	return h.seq
}

// Kind returns the target visual kind.
func (h *Handle) Kind() training.Kind {
	return h.kind
}

// Rect returns the on-screen rectangle reported by the surface.
func (h *Handle) Rect() geom.Rect {
	return h.rect
}

// SpawnedAt returns when the target was created.
func (h *Handle) SpawnedAt() time.Time {
	return h.spawnedAt
}

// Outcome returns the current resolution state.
func (h *Handle) Outcome() Outcome {
	return Outcome(h.outcome.Load())
}

// Struck reports whether the target has been hit.
func (h *Handle) Struck() bool {
	return h.Outcome() == Hit
}

// Miss marks a pending target as missed. It returns false when the target
// was already resolved, in particular when it was struck first.
func (h *Handle) Miss() bool {
	if !h.resolve(Missed) {
		return false
	}
	h.stopPolling()
	return true
}

// Close stops polling, discards the target if it is still pending and
// releases the surface. It is idempotent.
func (h *Handle) Close() {
	h.resolve(Discarded)
	h.stopPolling()
	h.closeOnce.Do(h.surface.Close)
}

func (h *Handle) resolve(to Outcome) bool {
	return h.outcome.CompareAndSwap(int32(Pending), int32(to))
}

func (h *Handle) poll() {
	if h.Outcome() != Pending {
		return
	}
	if !h.rect.Contains(h.pointer.Position()) {
		return
	}
	if !h.resolve(Hit) {
		return
	}
	h.stopPolling()
	if h.onHit != nil {
		h.onHit(h)
	}
}

func (h *Handle) stopPolling() {
	h.pollMu.Lock()
	defer h.pollMu.Unlock()
	if h.pollDone {
		return
	}
	h.pollDone = true
	if h.cancelPoll != nil {
		h.cancelPoll()
	}
}
