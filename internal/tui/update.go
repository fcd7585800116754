package tui

import (
	"log/slog"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/flick/internal/events"
)

// tickInterval refreshes the elapsed clock while a run is active.
const tickInterval = 100 * time.Millisecond

// channelClosedMsg signals that the event channel was closed.
type channelClosedMsg struct{}

// tickMsg signals a periodic header refresh.
type tickMsg time.Time

// waitForEvent creates a command that waits for the next event from the channel.
// Returns channelClosedMsg if the channel is closed.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return eventMsg(event)
	}
}

func doTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	if m.eventChan == nil {
		return nil
	}
	return waitForEvent(m.eventChan)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		row := msg.Y - headerRows
		cols, rows := m.term.Cells()
		if msg.X >= 0 && msg.X < cols && row >= 0 && row < rows {
			m.term.MovePointer(msg.X, row)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.term.Resize(msg.Width, msg.Height-headerRows-footerRows)
		return m, nil

	case eventMsg:
		m.handleEvent(events.Event(msg))
		return m, waitForEvent(m.eventChan)

	case channelClosedMsg:
		slog.Info("event channel closed, exiting TUI")
		return m, tea.Quit

	case tickMsg:
		if m.screen == screenArena && m.engine.IsRunning() {
			return m, doTick()
		}
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input and returns the updated model and command.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		if m.engine.IsRunning() {
			m.engine.Stop()
		}
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Abort):
		if m.engine.IsRunning() {
			m.engine.Stop()
		}
		m.screen = screenSetup
		return m, nil

	case key.Matches(msg, keys.Results):
		if !m.engine.IsRunning() {
			m.screen = screenResults
		}
		return m, nil

	case key.Matches(msg, keys.QuickStart):
		if !m.arenaReady() {
			m.formErr = "terminal too small to train"
			return m, nil
		}
		if !m.engine.QuickStart() {
			m.formErr = "no valid previous configuration"
			return m, nil
		}
		return m.beginRun()
	}

	switch m.screen {
	case screenSetup:
		return m.handleFormKey(msg)
	case screenResults:
		if key.Matches(msg, keys.Start) {
			m.screen = screenSetup
		}
	}
	return m, nil
}

func (m model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Start):
		if !m.arenaReady() {
			m.formErr = "terminal too small to train"
			return m, nil
		}
		if err := m.engine.Start(m.formConfig()); err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m.beginRun()

	case key.Matches(msg, keys.Next):
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.setFocus(m.focus - 1)
		return m, nil
	}

	switch m.focus {
	case fieldKind:
		if key.Matches(msg, keys.Left) {
			m.kind = nextKind(m.kind, -1)
		} else if key.Matches(msg, keys.Right) {
			m.kind = nextKind(m.kind, 1)
		}
		return m, nil
	case fieldMode:
		if key.Matches(msg, keys.Left, keys.Right) {
			m.mode = toggleMode(m.mode)
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if !unicode.IsDigit(r) {
				return m, nil
			}
		}
	}
	in := m.inputs[m.focus]
	updated, cmd := in.Update(msg)
	*in = updated
	m.formErr = ""
	return m, cmd
}

// beginRun switches to the arena after the engine accepted a start.
func (m model) beginRun() (tea.Model, tea.Cmd) {
	m.formErr = ""
	m.hits, m.misses = 0, 0
	m.screen = screenArena
	return m, doTick()
}

// handleEvent folds an engine event into the display state.
func (m *model) handleEvent(event events.Event) {
	m.pushActivity(events.Format(event))

	switch e := event.(type) {
	case *events.RunStartEvent:
		m.runID = e.Run()
		m.hits, m.misses = 0, 0
	case *events.TargetHitEvent:
		if e.Run() == m.runID {
			m.hits = e.Hits
		}
	case *events.TargetMissEvent:
		if e.Run() == m.runID {
			m.misses = e.Misses
		}
	case *events.RunCompleteEvent:
		res := e.Result.Clone()
		m.lastResult = &res
		m.lastMode = e.Mode
		if e.Run() == m.runID {
			m.screen = screenResults
		}
	case *events.RunStopEvent:
		if e.Reason == events.StopReasonUser && e.Run() == m.runID && m.screen == screenArena {
			m.screen = screenSetup
		}
	}
}
