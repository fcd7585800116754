package controller

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/npratt/flick/internal/clock"
	"github.com/npratt/flick/internal/events"
	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/placement"
	"github.com/npratt/flick/internal/target"
	"github.com/npratt/flick/internal/testutil"
	"github.com/npratt/flick/internal/training"
)

var (
	epoch    = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	desktop  = geom.Size{W: 1920, H: 1080}
	iconSize = geom.Size{W: 32, H: 32}
)

type rig struct {
	clk     *clock.Manual
	pointer *testutil.MockPointer
	screen  *testutil.MockScreen
	overlay *testutil.MockOverlay
	router  *events.Router
	c       *Controller

	mu        sync.Mutex
	completed []training.Result
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	r := &rig{
		clk:     clock.NewManual(epoch),
		pointer: testutil.NewMockPointer(geom.Point{}),
		screen:  testutil.NewMockScreen(desktop, iconSize),
		overlay: testutil.NewMockOverlay(),
		router:  events.NewRouter(1000),
	}
	t.Cleanup(r.router.Close)

	base := []Option{
		WithRouter(r.router),
		WithSamplerOptions(placement.WithSeed(7)),
		WithOnComplete(func(res training.Result) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completed = append(r.completed, res)
		}),
	}
	r.c = New(r.pointer, r.screen, r.overlay, r.clk, append(base, opts...)...)
	return r
}

// hitCurrent moves the pointer onto the live target and lets one poll run.
func (r *rig) hitCurrent(t *testing.T) {
	t.Helper()
	s := r.overlay.Current()
	if s == nil {
		t.Fatal("no target to hit")
	}
	r.pointer.MoveTo(s.Rect().Center())
	r.clk.Advance(target.DefaultPollInterval)
}

func (r *rig) completions() []training.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]training.Result(nil), r.completed...)
}

func countConfig(n int) training.Config {
	cfg := training.Default()
	cfg.Mode = training.ModeCount
	cfg.TargetHitCount = n
	return cfg
}

func timeConfig(seconds, stayMs int) training.Config {
	cfg := training.Default()
	cfg.Mode = training.ModeTime
	cfg.TotalDurationSeconds = seconds
	cfg.TargetStayTimeMs = stayMs
	return cfg
}

func drain(ch <-chan events.Event) []events.EventType {
	var types []events.EventType
	for {
		select {
		case e := <-ch:
			types = append(types, e.Type())
		default:
			return types
		}
	}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestInitialState(t *testing.T) {
	r := newRig(t)
	if r.c.State() != StateIdle {
		t.Errorf("state = %s, want %s", r.c.State(), StateIdle)
	}
	if r.c.IsRunning() {
		t.Error("new controller reports running")
	}
	if r.c.Elapsed() != 0 {
		t.Errorf("elapsed = %v, want 0", r.c.Elapsed())
	}
}

func TestCountModeCompletes(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(countConfig(5)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 5; i++ {
		if !r.c.IsRunning() {
			t.Fatalf("stopped running after %d hits", i)
		}
		r.hitCurrent(t)
	}

	if r.c.IsRunning() {
		t.Fatal("still running after 5 hits")
	}
	if r.c.State() != StateCompleted {
		t.Errorf("state = %s, want %s", r.c.State(), StateCompleted)
	}

	got := r.completions()
	if len(got) != 1 {
		t.Fatalf("completions = %d, want 1", len(got))
	}
	want := training.Result{
		Hits:                        5,
		Misses:                      0,
		TotalTimeSeconds:            0.080,
		AverageTimePerTargetSeconds: 0.016,
		Reactions:                   []time.Duration{16 * time.Millisecond, 16 * time.Millisecond, 16 * time.Millisecond, 16 * time.Millisecond, 16 * time.Millisecond},
	}
	if diff := cmp.Diff(want, got[0], approx); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if r.overlay.Live() != 0 {
		t.Errorf("live surfaces = %d after completion", r.overlay.Live())
	}
	if r.clk.Pending() != 0 {
		t.Errorf("scheduled callbacks = %d after completion", r.clk.Pending())
	}
}

func TestCountModeNeverMisses(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(countConfig(2)); err != nil {
		t.Fatal(err)
	}

	r.clk.Advance(30 * time.Second)
	r.hitCurrent(t)
	r.clk.Advance(10 * time.Second)
	r.hitCurrent(t)

	res := r.c.Result()
	if res.Misses != 0 {
		t.Errorf("misses = %d, want 0", res.Misses)
	}
	if res.Hits != 2 {
		t.Errorf("hits = %d, want 2", res.Hits)
	}
	if want := 40.032; res.TotalTimeSeconds < want-1e-9 || res.TotalTimeSeconds > want+1e-9 {
		t.Errorf("total = %v, want %v", res.TotalTimeSeconds, want)
	}
}

func TestTimeModeAllMisses(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(timeConfig(10, 2000)); err != nil {
		t.Fatal(err)
	}

	r.clk.Advance(9999 * time.Millisecond)
	if !r.c.IsRunning() {
		t.Fatal("completed before the duration elapsed")
	}
	if got := r.c.Result().Misses; got != 4 {
		t.Errorf("misses before end = %d, want 4", got)
	}

	r.clk.Advance(time.Millisecond)
	if r.c.State() != StateCompleted {
		t.Fatalf("state = %s, want %s", r.c.State(), StateCompleted)
	}

	got := r.completions()
	if len(got) != 1 {
		t.Fatalf("completions = %d, want 1", len(got))
	}
	want := training.Result{Misses: 5, TotalTimeSeconds: 10}
	if diff := cmp.Diff(want, got[0], approx, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if n := len(r.overlay.Opened()); n != 5 {
		t.Errorf("targets spawned = %d, want 5", n)
	}
}

func TestStopMidRun(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(countConfig(10)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		r.hitCurrent(t)
	}
	last := r.overlay.Current()

	r.c.Stop()

	if r.c.State() != StateStopped {
		t.Errorf("state = %s, want %s", r.c.State(), StateStopped)
	}
	if got := r.c.Result().Hits; got != 3 {
		t.Errorf("hits = %d, want 3", got)
	}
	if len(r.completions()) != 0 {
		t.Error("stopped run reported completion")
	}
	if r.overlay.Live() != 0 {
		t.Errorf("live surfaces = %d after stop", r.overlay.Live())
	}
	if r.clk.Pending() != 0 {
		t.Errorf("scheduled callbacks = %d after stop", r.clk.Pending())
	}

	// Moving onto the discarded target afterwards changes nothing.
	r.pointer.MoveTo(last.Rect().Center())
	r.clk.Advance(time.Second)
	if got := r.c.Result().Hits; got != 3 {
		t.Errorf("hits after late poll = %d, want 3", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	r := newRig(t)
	sub := r.router.Subscribe()

	r.c.Stop()
	if r.c.State() != StateIdle {
		t.Errorf("Stop on idle changed state to %s", r.c.State())
	}

	if err := r.c.Start(countConfig(3)); err != nil {
		t.Fatal(err)
	}
	r.c.Stop()
	r.c.Stop()

	stops := 0
	for _, et := range drain(sub) {
		if et == events.EventRunStop {
			stops++
		}
	}
	if stops != 1 {
		t.Errorf("run.stop events = %d, want 1", stops)
	}
}

func TestQuickStart(t *testing.T) {
	t.Run("no prior config is a no-op", func(t *testing.T) {
		r := newRig(t)
		if r.c.QuickStart() {
			t.Error("QuickStart returned true without a config")
		}
		if r.c.IsRunning() {
			t.Error("QuickStart started a run without a config")
		}
	})

	t.Run("invalid seeded config is a no-op", func(t *testing.T) {
		r := newRig(t, WithLastConfig(countConfig(0)))
		if r.c.QuickStart() {
			t.Error("QuickStart returned true for an invalid config")
		}
		if r.c.IsRunning() {
			t.Error("QuickStart started a run with an invalid config")
		}
	})

	t.Run("seeded config starts", func(t *testing.T) {
		r := newRig(t, WithLastConfig(timeConfig(5, 1000)))
		if !r.c.QuickStart() {
			t.Fatal("QuickStart returned false")
		}
		if got := r.c.Config().Mode; got != training.ModeTime {
			t.Errorf("mode = %s, want time", got)
		}
	})

	t.Run("replays last run", func(t *testing.T) {
		r := newRig(t)
		if err := r.c.Start(countConfig(1)); err != nil {
			t.Fatal(err)
		}
		r.hitCurrent(t)
		first := r.c.RunID()

		if !r.c.QuickStart() {
			t.Fatal("QuickStart returned false after a run")
		}
		if !r.c.IsRunning() {
			t.Fatal("QuickStart did not start a run")
		}
		if r.c.RunID() == first {
			t.Error("QuickStart reused the previous run ID")
		}
		if got := r.c.Result(); got.Hits != 0 {
			t.Errorf("result not reset: %+v", got)
		}
	})
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	r := newRig(t)
	err := r.c.Start(timeConfig(0, 1000))
	if !errors.Is(err, training.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if r.c.State() != StateIdle {
		t.Errorf("state = %s, want idle", r.c.State())
	}
	if len(r.overlay.Opened()) != 0 {
		t.Error("invalid start spawned a target")
	}

	if err := r.c.Start(countConfig(3)); err != nil {
		t.Fatal(err)
	}
	if err := r.c.Start(countConfig(-1)); err == nil {
		t.Fatal("negative hit count accepted")
	}
	if !r.c.IsRunning() {
		t.Error("invalid start aborted the active run")
	}
}

func TestDoubleStartStopsPreviousRun(t *testing.T) {
	r := newRig(t)
	sub := r.router.Subscribe()

	if err := r.c.Start(countConfig(5)); err != nil {
		t.Fatal(err)
	}
	r.hitCurrent(t)
	first := r.c.RunID()

	if err := r.c.Start(countConfig(5)); err != nil {
		t.Fatal(err)
	}

	if r.c.RunID() == first {
		t.Error("restart kept the run ID")
	}
	if got := r.c.Result().Hits; got != 0 {
		t.Errorf("hits after restart = %d, want 0", got)
	}
	if r.overlay.MaxLive() != 1 {
		t.Errorf("max live surfaces = %d, want 1", r.overlay.MaxLive())
	}
	if r.overlay.Live() != 1 {
		t.Errorf("live surfaces = %d, want 1", r.overlay.Live())
	}

	var sawRestart bool
	for len(sub) > 0 {
		if stop, ok := (<-sub).(*events.RunStopEvent); ok {
			sawRestart = stop.Reason == events.StopReasonRestart && stop.Run() == first && stop.Hits == 1
		}
	}
	if !sawRestart {
		t.Error("no run.stop with reason restart for the first run")
	}
}

func TestHitWinsSimultaneousTimeout(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(timeConfig(10, 2000)); err != nil {
		t.Fatal(err)
	}

	// The poll and the countdown are both due at 2s; the poll runs first.
	r.clk.Advance(1999 * time.Millisecond)
	r.pointer.MoveTo(r.overlay.Current().Rect().Center())
	r.clk.Advance(time.Millisecond)

	res := r.c.Result()
	if res.Hits != 1 || res.Misses != 0 {
		t.Errorf("hits/misses = %d/%d, want 1/0", res.Hits, res.Misses)
	}
}

func TestLateNotificationsAreNoOps(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(timeConfig(30, 1000)); err != nil {
		t.Fatal(err)
	}

	c := r.c
	c.mu.Lock()
	first := c.current
	c.mu.Unlock()

	r.hitCurrent(t)
	before := r.c.Result()

	c.onTargetHit(first)
	c.dispatch(func() { c.expiredLocked(first) })

	after := r.c.Result()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("late notifications changed the result (-before +after):\n%s", diff)
	}
	if first.Outcome() != target.Hit {
		t.Errorf("first target outcome = %v, want hit", first.Outcome())
	}
}

func TestCallbacksAfterStopAreNoOps(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(timeConfig(30, 1000)); err != nil {
		t.Fatal(err)
	}
	c := r.c
	c.mu.Lock()
	h := c.current
	c.mu.Unlock()

	c.Stop()
	c.dispatch(func() { c.expiredLocked(h) })
	c.onTargetHit(h)

	res := c.Result()
	if res.Hits != 0 || res.Misses != 0 {
		t.Errorf("hits/misses = %d/%d after stop, want 0/0", res.Hits, res.Misses)
	}
	if h.Outcome() != target.Discarded {
		t.Errorf("outcome = %v, want discarded", h.Outcome())
	}
}

func TestResolvedTargetsMatchCounts(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(timeConfig(5, 500)); err != nil {
		t.Fatal(err)
	}

	for i := 0; r.c.IsRunning(); i++ {
		if i%3 == 0 {
			r.hitCurrent(t)
		} else {
			r.clk.Advance(500 * time.Millisecond)
		}
		if r.overlay.MaxLive() > 1 {
			t.Fatalf("two targets live at once after step %d", i)
		}
	}

	res := r.c.Result()
	if res.Hits == 0 || res.Misses == 0 {
		t.Fatalf("expected both hits and misses, got %+v", res)
	}
	if got := len(r.overlay.Opened()); got != res.Resolved() {
		t.Errorf("targets spawned = %d, resolved = %d", got, res.Resolved())
	}
	if len(res.Reactions) != res.Hits {
		t.Errorf("reactions = %d, hits = %d", len(res.Reactions), res.Hits)
	}
	if res.AverageTimePerTargetSeconds != 0 {
		t.Errorf("time mode set average time per target to %v", res.AverageTimePerTargetSeconds)
	}
	if res.TotalTimeSeconds < 5 {
		t.Errorf("total = %v, want >= 5", res.TotalTimeSeconds)
	}
}

func TestTargetsStayOnScreenAcrossResize(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(countConfig(20)); err != nil {
		t.Fatal(err)
	}

	small := geom.Size{W: 800, H: 600}
	for i := 0; i < 10; i++ {
		r.hitCurrent(t)
	}
	r.screen.SetGeometry(small)
	for i := 0; i < 9; i++ {
		r.hitCurrent(t)
	}

	opened := r.overlay.Opened()
	for i, s := range opened {
		bounds := desktop
		if i > 10 {
			bounds = small
		}
		if !s.Rect().Within(bounds) {
			t.Errorf("target %d at %+v outside %+v", i+1, s.Rect(), bounds)
		}
	}
	for i := 1; i < len(opened); i++ {
		dx := opened[i].Rect().X - opened[i-1].Rect().X
		if dx < 0 {
			dx = -dx
		}
		if dx < 100 {
			t.Errorf("targets %d and %d only %.1fpx apart", i, i+1, dx)
		}
	}
	if calls := r.screen.TargetSizeCalls(); calls != 1 {
		t.Errorf("TargetSize queried %d times, want 1", calls)
	}
}

func TestEventSequence(t *testing.T) {
	r := newRig(t)
	sub := r.router.Subscribe()

	if err := r.c.Start(countConfig(2)); err != nil {
		t.Fatal(err)
	}
	r.hitCurrent(t)
	r.hitCurrent(t)

	want := []events.EventType{
		events.EventRunStart,
		events.EventTargetSpawn,
		events.EventTargetHit,
		events.EventTargetSpawn,
		events.EventTargetHit,
		events.EventRunComplete,
	}
	if diff := cmp.Diff(want, drain(sub)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletionCallbackMayRestart(t *testing.T) {
	var c *Controller
	restarted := false
	r := newRig(t, WithOnComplete(func(training.Result) {
		if !restarted {
			restarted = true
			c.QuickStart()
		}
	}))
	c = r.c

	if err := c.Start(countConfig(1)); err != nil {
		t.Fatal(err)
	}
	r.hitCurrent(t)

	if !restarted {
		t.Fatal("completion callback not called")
	}
	if !c.IsRunning() {
		t.Error("restart from completion callback did not take effect")
	}
}

func TestElapsed(t *testing.T) {
	r := newRig(t)
	if err := r.c.Start(countConfig(1)); err != nil {
		t.Fatal(err)
	}
	r.clk.Advance(1500 * time.Millisecond)
	if got := r.c.Elapsed(); got != 1500*time.Millisecond {
		t.Errorf("elapsed = %v, want 1.5s", got)
	}
	r.hitCurrent(t)
	r.clk.Advance(time.Hour)
	// The poll after 1.5s lands on the 16ms grid at 1.504s.
	if got := r.c.Elapsed(); got != 1504*time.Millisecond {
		t.Errorf("frozen elapsed = %v, want 1.504s", got)
	}
}

func TestSystemClockRun(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock test")
	}

	pointer := testutil.NewMockPointer(geom.Point{})
	overlay := testutil.NewMockOverlay()
	done := make(chan training.Result, 1)
	c := New(pointer, testutil.NewMockScreen(desktop, iconSize), overlay, clock.NewSystem(),
		WithPollInterval(2*time.Millisecond),
		WithOnComplete(func(res training.Result) { done <- res }),
	)

	if err := c.Start(countConfig(3)); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(time.Millisecond):
				if s := overlay.Current(); s != nil {
					pointer.MoveTo(s.Rect().Center())
				}
			}
		}
	}()

	select {
	case res := <-done:
		if res.Hits != 3 || res.Misses != 0 {
			t.Errorf("hits/misses = %d/%d, want 3/0", res.Hits, res.Misses)
		}
	case <-time.After(5 * time.Second):
		c.Stop()
		t.Fatal("run did not complete")
	}
	if overlay.MaxLive() != 1 {
		t.Errorf("max live surfaces = %d, want 1", overlay.MaxLive())
	}
}
