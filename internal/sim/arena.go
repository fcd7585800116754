// Package sim provides a simulated trainee that plays the real engine
// headlessly: a virtual screen, an overlay that records targets and a
// pointer that reaches for each target after a sampled reaction time.
package sim

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/npratt/flick/internal/clock"
	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/platform"
	"github.com/npratt/flick/internal/training"
)

// Params describes the simulated screen and player.
type Params struct {
	Screen geom.Size
	Target geom.Size

	// Reaction is the mean delay from spawn to the pointer reaching the
	// target. Jitter spreads it uniformly by up to ±Jitter.
	Reaction time.Duration
	Jitter   time.Duration

	// Accuracy is the probability that the first reach lands on the
	// target. A reach that falls short is corrected after another delay.
	Accuracy float64
}

// minDelay keeps sampled delays positive.
const minDelay = time.Millisecond

// Stats counts what the player did.
type Stats struct {
	Opened      int `json:"opened"`
	Reaches     int `json:"reaches"`
	Corrections int `json:"corrections"`
}

// Arena implements platform.Pointer, platform.Screen and platform.Overlay
// for a simulated player.
type Arena struct {
	params Params
	sched  clock.Scheduler
	logger *slog.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	pointer geom.Point
	live    []*surface
	stats   Stats
}

var (
	_ platform.Pointer = (*Arena)(nil)
	_ platform.Screen  = (*Arena)(nil)
	_ platform.Overlay = (*Arena)(nil)
)

// Option configures an Arena.
type Option func(*Arena)

// WithSeed makes the player deterministic.
func WithSeed(seed int64) Option {
	return func(a *Arena) {
		a.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Arena) {
		a.logger = logger
	}
}

// New creates an Arena whose player is timed by sched. The pointer starts
// at the screen center.
func New(p Params, sched clock.Scheduler, opts ...Option) *Arena {
	a := &Arena{
		params:  p,
		sched:   sched,
		logger:  slog.Default(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		pointer: geom.Point{X: p.Screen.W / 2, Y: p.Screen.H / 2},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Position implements platform.Pointer.
func (a *Arena) Position() geom.Point {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pointer
}

// Geometry implements platform.Screen.
func (a *Arena) Geometry() geom.Size {
	return a.params.Screen
}

// TargetSize implements platform.Screen.
func (a *Arena) TargetSize() geom.Size {
	return a.params.Target
}

// Open implements platform.Overlay. The player schedules its first reach
// for the new target.
func (a *Arena) Open(kind training.Kind, rect geom.Rect) platform.Surface {
	s := &surface{arena: a, kind: kind, rect: rect}
	a.mu.Lock()
	a.live = append(a.live, s)
	a.stats.Opened++
	delay := a.delayLocked()
	a.mu.Unlock()

	s.arm(delay)
	return s
}

// Stats returns a snapshot of the player counters.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Live returns the number of open surfaces.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// delayLocked samples one reaction delay. Caller holds mu.
func (a *Arena) delayLocked() time.Duration {
	d := a.params.Reaction
	if a.params.Jitter > 0 {
		d += time.Duration((a.rng.Float64()*2 - 1) * float64(a.params.Jitter))
	}
	return max(d, minDelay)
}

// reach moves the pointer toward rect. The first attempt lands with the
// configured accuracy and corrections always land. It reports whether the
// reach landed, and the delay before a correction otherwise.
func (a *Arena) reach(rect geom.Rect, attempt int) (landed bool, retry time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.Reaches++

	c := rect.Center()
	if attempt > 0 || a.rng.Float64() < a.params.Accuracy {
		a.pointer = geom.Point{
			X: c.X + (a.rng.Float64()-0.5)*rect.W/2,
			Y: c.Y + (a.rng.Float64()-0.5)*rect.H/2,
		}
		a.logger.Debug("sim reach landed", "x", a.pointer.X, "y", a.pointer.Y)
		return true, 0
	}

	// Overshoot sideways, clear of the rectangle.
	dx := rect.W/2 + 10 + a.rng.Float64()*20
	if a.rng.Intn(2) == 0 {
		dx = -dx
	}
	a.pointer = geom.Point{X: c.X + dx, Y: c.Y + (a.rng.Float64()-0.5)*rect.H/2}
	a.stats.Corrections++
	a.logger.Debug("sim reach missed", "x", a.pointer.X, "y", a.pointer.Y)
	return false, a.delayLocked()
}

func (a *Arena) release(s *surface) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, live := range a.live {
		if live == s {
			a.live = append(a.live[:i], a.live[i+1:]...)
			return
		}
	}
}

// surface is one simulated target with at most one pending reach.
type surface struct {
	arena *Arena
	kind  training.Kind
	rect  geom.Rect

	mu      sync.Mutex
	cancel  clock.CancelFunc
	gen     int
	fired   bool
	closed  bool
	reaches int
}

func (s *surface) Rect() geom.Rect {
	return s.rect
}

func (s *surface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.arena.release(s)
}

// arm schedules a single reach after delay.
func (s *surface) arm(delay time.Duration) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	cancel := s.arena.sched.Every(delay, func() { s.fire(gen) })

	s.mu.Lock()
	if s.closed || s.gen != gen || s.fired {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()
}

// fire runs the reach armed as generation gen. Stale ticks are ignored.
func (s *surface) fire(gen int) {
	s.mu.Lock()
	if s.closed || s.gen != gen || s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	attempt := s.reaches
	s.reaches++
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	landed, retry := s.arena.reach(s.rect, attempt)
	if landed {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.fired = false
	s.mu.Unlock()
	s.arm(retry)
}
