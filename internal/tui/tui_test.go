package tui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/npratt/flick/internal/clock"
	"github.com/npratt/flick/internal/controller"
	"github.com/npratt/flick/internal/events"
	"github.com/npratt/flick/internal/placement"
	"github.com/npratt/flick/internal/target"
	"github.com/npratt/flick/internal/training"
)

func TestNew_AppliesOptions(t *testing.T) {
	eventChan := make(chan events.Event)
	term := NewTerminal(DefaultMetrics())
	engine := &fakeEngine{}
	quitCalled := false
	cfg := training.Config{Kind: training.KindRecycleBin, Mode: training.ModeTime, TotalDurationSeconds: 30, TargetStayTimeMs: 800}

	tui := New(engine, term, eventChan,
		WithOnQuit(func() { quitCalled = true }),
		WithInitialConfig(cfg),
	)

	if tui.eventChan != eventChan {
		t.Error("eventChan not set")
	}
	if tui.term != term || tui.engine != engine {
		t.Error("engine or terminal not set")
	}
	if tui.initial != cfg {
		t.Errorf("initial = %+v, want %+v", tui.initial, cfg)
	}
	tui.onQuit()
	if !quitCalled {
		t.Error("onQuit callback not invoked")
	}
}

func TestNew_DefaultsForm(t *testing.T) {
	tui := New(&fakeEngine{}, NewTerminal(DefaultMetrics()), nil)
	if tui.initial != training.Default() {
		t.Errorf("initial = %+v, want defaults", tui.initial)
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestTUICountRun drives a full count-mode run through the bubbletea
// program: start from the form, hit every target with mouse motion and
// land on the results panel.
func TestTUICountRun(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	router := events.NewRouter(1000)
	defer router.Close()
	term := NewTerminal(DefaultMetrics())
	ctrl := controller.New(term, term, term, clk,
		controller.WithRouter(router),
		controller.WithSamplerOptions(placement.WithSeed(3)),
	)

	initial := training.Default()
	initial.TargetHitCount = 3
	quitCalled := false
	m := newModel(ctrl, term, router.Subscribe(), initial, func() { quitCalled = true })

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))
	waitUntil(t, "arena resize", func() bool {
		cols, _ := term.Cells()
		return cols == 120
	})

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	for i := 0; i < initial.TargetHitCount; i++ {
		waitUntil(t, "target", func() bool { return len(term.Boxes()) == 1 })
		box := term.Boxes()[0]
		tm.Send(tea.MouseMsg{X: box.Col, Y: box.Row + headerRows, Action: tea.MouseActionMotion})
		waitUntil(t, "pointer on target", func() bool {
			p := term.Position()
			return int(p.X/8) == box.Col && int(p.Y/16) == box.Row
		})
		hits := ctrl.Result().Hits
		clk.Advance(target.DefaultPollInterval)
		waitUntil(t, "hit", func() bool { return ctrl.Result().Hits == hits+1 })
	}

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Average time"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))

	got, ok := fm.(model)
	if !ok {
		t.Fatalf("FinalModel type = %T", fm)
	}
	if got.lastResult == nil || got.lastResult.Hits != initial.TargetHitCount {
		t.Errorf("lastResult = %+v, want %d hits", got.lastResult, initial.TargetHitCount)
	}
	if got.lastMode != training.ModeCount {
		t.Errorf("lastMode = %v", got.lastMode)
	}
	if !quitCalled {
		t.Error("quit callback was not invoked")
	}
	if ctrl.State() != controller.StateCompleted {
		t.Errorf("controller state = %v, want completed", ctrl.State())
	}
}

// TestTUILifecycleChannelClose verifies that closing the event channel
// causes the TUI to exit gracefully.
func TestTUILifecycleChannelClose(t *testing.T) {
	eventChan := make(chan events.Event, 10)
	m := newModel(&fakeEngine{}, NewTerminal(DefaultMetrics()), eventChan, training.Default(), nil)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))
	close(eventChan)

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if fm == nil {
		t.Fatal("FinalModel returned nil")
	}
}
