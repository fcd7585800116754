// Package controller runs training sessions: it sequences target spawns,
// resolves each target as a hit or a timeout miss, decides when a run is
// complete and accumulates the result.
//
// Every transition (start, stop, hit, countdown expiry) enters through a
// single mutex-guarded dispatch, so the pointer poll and the countdown can
// race freely without mutating run state in parallel. Completion callbacks
// run after the lock is released.
package controller

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/npratt/flick/internal/clock"
	"github.com/npratt/flick/internal/events"
	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/placement"
	"github.com/npratt/flick/internal/platform"
	"github.com/npratt/flick/internal/target"
	"github.com/npratt/flick/internal/training"
)

// State represents the controller's current state.
type State string

// Controller states.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
)

// Controller owns the sampler, the current result and the single live target.
type Controller struct {
	pointer platform.Pointer
	screen  platform.Screen
	overlay platform.Overlay
	clock   clock.Source
	router  *events.Router
	logger  *slog.Logger

	pollInterval time.Duration
	samplerOpts  []placement.Option
	onComplete   []func(training.Result)

	mu      sync.Mutex
	outbox  []func()
	state   State
	sampler *placement.Sampler

	cfg     training.Config
	lastCfg training.Config
	hasLast bool

	runID      string
	log        *slog.Logger
	result     training.Result
	startedAt  time.Time
	total      time.Duration
	targetSize geom.Size
	seq        int

	current         *target.Handle
	cancelCountdown clock.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRouter sets the router engine events are emitted on.
func WithRouter(r *events.Router) Option {
	return func(c *Controller) {
		c.router = r
	}
}

// WithOnComplete registers a callback receiving a snapshot of the final
// result of every completed run. Stopped runs do not complete.
func WithOnComplete(fn func(training.Result)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.onComplete = append(c.onComplete, fn)
		}
	}
}

// WithPlacement overrides the placement constraints.
func WithPlacement(p placement.Params) Option {
	return func(c *Controller) {
		c.samplerOpts = append(c.samplerOpts, placement.WithParams(p))
	}
}

// WithSamplerOptions passes options through to the position sampler.
func WithSamplerOptions(opts ...placement.Option) Option {
	return func(c *Controller) {
		c.samplerOpts = append(c.samplerOpts, opts...)
	}
}

// WithPollInterval sets the hit-check cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLastConfig seeds the configuration QuickStart replays before any
// run has been started.
func WithLastConfig(cfg training.Config) Option {
	return func(c *Controller) {
		c.lastCfg = cfg
		c.hasLast = true
	}
}

// New creates an idle Controller.
func New(pointer platform.Pointer, screen platform.Screen, overlay platform.Overlay, src clock.Source, opts ...Option) *Controller {
	c := &Controller{
		pointer:      pointer,
		screen:       screen,
		overlay:      overlay,
		clock:        src,
		logger:       slog.Default(),
		pollInterval: target.DefaultPollInterval,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sampler = placement.New(pointer, c.samplerOpts...)
	c.log = c.logger
	return c
}

// Start begins a new run with cfg. An invalid cfg is rejected with an error
// wrapping training.ErrInvalidConfig and leaves any active run untouched.
// A valid cfg stops the active run, if any, before the new one begins.
func (c *Controller) Start(cfg training.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	c.dispatch(func() { c.startLocked(cfg) })
	return nil
}

// Stop aborts the active run without touching its counts. It is a no-op
// unless a run is active.
func (c *Controller) Stop() {
	c.dispatch(func() { c.stopLocked(events.StopReasonUser) })
}

// QuickStart restarts with the last-used configuration. It returns false
// without doing anything when there is none or it is invalid.
func (c *Controller) QuickStart() bool {
	c.mu.Lock()
	cfg, ok := c.lastCfg, c.hasLast
	c.mu.Unlock()

	if !ok || !cfg.Valid() {
		c.logger.Debug("quick start ignored", "has_config", ok)
		return false
	}
	return c.Start(cfg) == nil
}

// IsRunning reports whether a run is active.
func (c *Controller) IsRunning() bool {
	return c.State() == StateRunning
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns a snapshot of the current or most recent run's result.
func (c *Controller) Result() training.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result.Clone()
}

// Config returns the configuration of the current or most recent run.
func (c *Controller) Config() training.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// RunID returns the identifier of the current or most recent run.
func (c *Controller) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

// Elapsed returns how long the active run has been going, or the frozen
// total of the most recent completed run.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateRunning:
		return c.elapsedLocked()
	case StateCompleted:
		return c.total
	default:
		return 0
	}
}

// dispatch runs fn under the controller lock, then delivers any callbacks
// fn queued once the lock is released.
func (c *Controller) dispatch(fn func()) {
	c.mu.Lock()
	fn()
	out := c.outbox
	c.outbox = nil
	c.mu.Unlock()

	for _, notify := range out {
		notify()
	}
}

func (c *Controller) startLocked(cfg training.Config) {
	if c.state == StateRunning {
		c.stopLocked(events.StopReasonRestart)
	}

	c.cfg = cfg
	c.lastCfg = cfg
	c.hasLast = true
	c.runID = uuid.NewString()
	c.log = c.logger.With("run_id", c.runID, "mode", cfg.Mode)
	c.result = training.Result{}
	c.total = 0
	c.seq = 0
	c.sampler.Reset()
	c.startedAt = c.clock.Now()
	c.targetSize = c.screen.TargetSize()
	c.state = StateRunning

	c.log.Info("run started",
		"kind", cfg.Kind.String(),
		"hit_count", cfg.TargetHitCount,
		"duration_s", cfg.TotalDurationSeconds,
		"stay_ms", cfg.TargetStayTimeMs,
	)
	c.router.Emit(&events.RunStartEvent{
		BaseEvent: c.event(events.EventRunStart),
		Config:    cfg,
	})

	c.spawnNextLocked()
}

func (c *Controller) stopLocked(reason string) {
	if c.state != StateRunning {
		return
	}
	c.teardownLocked()
	c.state = StateStopped

	c.log.Info("run stopped", "reason", reason, "hits", c.result.Hits, "misses", c.result.Misses)
	c.router.Emit(&events.RunStopEvent{
		BaseEvent: c.event(events.EventRunStop),
		Reason:    reason,
		Hits:      c.result.Hits,
		Misses:    c.result.Misses,
	})
}

func (c *Controller) finishedLocked() bool {
	switch c.cfg.Mode {
	case training.ModeTime:
		return c.elapsedLocked() >= c.cfg.TotalDuration()
	default:
		return c.result.Hits >= c.cfg.TargetHitCount
	}
}

func (c *Controller) spawnNextLocked() {
	if c.finishedLocked() {
		c.completeLocked()
		return
	}

	pos := c.sampler.Next(c.screen.Geometry(), c.targetSize)
	c.seq++
	if out := c.sampler.Last(); out.Fallback {
		c.log.Debug("placement fallback", "seq", c.seq, "attempts", out.Attempts, "x", pos.X, "y", pos.Y)
		c.router.Emit(&events.PlacementFallbackEvent{
			BaseEvent: c.event(events.EventPlacementFallback),
			Seq:       c.seq,
			Attempts:  out.Attempts,
			X:         pos.X,
			Y:         pos.Y,
		})
	}

	h := target.Spawn(target.Spec{
		Seq:          c.seq,
		Kind:         c.cfg.Kind,
		Rect:         geom.RectAt(pos, c.targetSize),
		PollInterval: c.pollInterval,
	}, c.overlay, c.pointer, c.clock, c.onTargetHit)
	c.current = h

	rect := h.Rect()
	c.router.Emit(&events.TargetSpawnEvent{
		BaseEvent: c.event(events.EventTargetSpawn),
		Seq:       c.seq,
		Kind:      c.cfg.Kind.String(),
		X:         rect.X,
		Y:         rect.Y,
		W:         rect.W,
		H:         rect.H,
	})

	if c.cfg.Mode == training.ModeTime {
		c.cancelCountdown = c.clock.Every(c.cfg.StayTime(), func() {
			c.dispatch(func() { c.expiredLocked(h) })
		})
	}
}

// onTargetHit is called by a handle after it has marked itself struck.
func (c *Controller) onTargetHit(h *target.Handle) {
	c.dispatch(func() { c.hitLocked(h) })
}

func (c *Controller) hitLocked(h *target.Handle) {
	if c.state != StateRunning || h != c.current {
		return
	}

	now := c.clock.Now()
	reaction := now.Sub(h.SpawnedAt())
	c.result.Hits++
	c.result.Reactions = append(c.result.Reactions, reaction)
	if c.cfg.Mode == training.ModeCount {
		c.result.AverageTimePerTargetSeconds = now.Sub(c.startedAt).Seconds() / float64(c.result.Hits)
	}

	c.log.Debug("target hit", "seq", h.Seq(), "reaction", reaction, "hits", c.result.Hits)
	c.router.Emit(&events.TargetHitEvent{
		BaseEvent:  c.event(events.EventTargetHit),
		Seq:        h.Seq(),
		ReactionMs: reaction.Milliseconds(),
		Hits:       c.result.Hits,
	})

	c.teardownLocked()
	c.spawnNextLocked()
}

func (c *Controller) expiredLocked(h *target.Handle) {
	if c.state != StateRunning || h != c.current {
		return
	}
	// A struck handle refuses the miss; its hit is already on the way in.
	if !h.Miss() {
		return
	}

	c.result.Misses++
	c.log.Debug("target missed", "seq", h.Seq(), "misses", c.result.Misses)
	c.router.Emit(&events.TargetMissEvent{
		BaseEvent: c.event(events.EventTargetMiss),
		Seq:       h.Seq(),
		Misses:    c.result.Misses,
	})

	c.teardownLocked()
	c.spawnNextLocked()
}

func (c *Controller) completeLocked() {
	c.teardownLocked()
	c.total = c.elapsedLocked()
	c.result.TotalTimeSeconds = c.total.Seconds()
	c.state = StateCompleted

	final := c.result.Clone()
	c.log.Info("run complete",
		"hits", final.Hits,
		"misses", final.Misses,
		"total_s", final.TotalTimeSeconds,
	)
	c.router.Emit(&events.RunCompleteEvent{
		BaseEvent: c.event(events.EventRunComplete),
		Mode:      c.cfg.Mode,
		Result:    final,
	})

	for _, fn := range c.onComplete {
		snapshot := final.Clone()
		c.outbox = append(c.outbox, func() { fn(snapshot) })
	}
}

// teardownLocked cancels the countdown and releases the current target.
func (c *Controller) teardownLocked() {
	if c.cancelCountdown != nil {
		c.cancelCountdown()
		c.cancelCountdown = nil
	}
	if c.current != nil {
		c.current.Close()
		c.current = nil
	}
}

func (c *Controller) elapsedLocked() time.Duration {
	return c.clock.Now().Sub(c.startedAt)
}

func (c *Controller) event(t events.EventType) events.BaseEvent {
	return events.NewEngineEvent(t, c.runID, c.clock.Now())
}
