// Package tui provides the terminal trainer shell using bubbletea.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/flick/internal/events"
	"github.com/npratt/flick/internal/training"
)

// TUI is the interactive terminal trainer.
type TUI struct {
	engine    Engine
	term      *Terminal
	eventChan <-chan events.Event
	initial   training.Config
	onQuit    func()
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a TUI driving engine, drawing targets opened on term and
// following the given event channel.
func New(engine Engine, term *Terminal, eventChan <-chan events.Event, opts ...Option) *TUI {
	t := &TUI{
		engine:    engine,
		term:      term,
		eventChan: eventChan,
		initial:   training.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithOnQuit sets the callback invoked when the user presses 'q'.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// WithInitialConfig fills the setup form.
func WithInitialConfig(cfg training.Config) Option {
	return func(t *TUI) {
		t.initial = cfg
	}
}

// Run starts the TUI and blocks until it exits.
func (t *TUI) Run() error {
	m := newModel(t.engine, t.term, t.eventChan, t.initial, t.onQuit)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
