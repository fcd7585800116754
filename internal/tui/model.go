package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/npratt/flick/internal/events"
	"github.com/npratt/flick/internal/training"
)

// Engine is the training controller as seen by the terminal shell.
type Engine interface {
	Start(cfg training.Config) error
	Stop()
	QuickStart() bool
	IsRunning() bool
	Config() training.Config
	Elapsed() time.Duration
}

// screen is the view currently filling the arena area.
type screen int

const (
	screenSetup screen = iota
	screenArena
	screenResults
)

// field is a setup form row.
type field int

const (
	fieldKind field = iota
	fieldMode
	fieldHitCount
	fieldDuration
	fieldStay
	fieldCount
)

// Layout constants.
const (
	headerRows  = 2
	footerRows  = 3
	minArenaCol = 40
	minArenaRow = 8
	maxActivity = 50
)

// model is the bubbletea model for the trainer.
type model struct {
	engine    Engine
	term      *Terminal
	eventChan <-chan events.Event
	onQuit    func()

	screen  screen
	focus   field
	kind    training.Kind
	mode    training.Mode
	inputs  map[field]*textinput.Model
	formErr string

	// Live run counters, fed by engine events
	runID  string
	hits   int
	misses int

	lastResult *training.Result
	lastMode   training.Mode
	activity   []string

	width  int
	height int
}

// eventMsg wraps an event for the bubbletea message system.
type eventMsg events.Event

func newNumberInput(v int) *textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 6
	ti.Width = 8
	ti.SetValue(strconv.Itoa(v))
	return &ti
}

// newModel creates the model showing the setup form filled from initial.
func newModel(engine Engine, term *Terminal, eventChan <-chan events.Event, initial training.Config, onQuit func()) model {
	return model{
		engine:    engine,
		term:      term,
		eventChan: eventChan,
		onQuit:    onQuit,
		screen:    screenSetup,
		focus:     fieldKind,
		kind:      initial.Kind,
		mode:      initial.Mode,
		inputs: map[field]*textinput.Model{
			fieldHitCount: newNumberInput(initial.TargetHitCount),
			fieldDuration: newNumberInput(initial.TotalDurationSeconds),
			fieldStay:     newNumberInput(initial.TargetStayTimeMs),
		},
	}
}

// formConfig builds a run configuration from the setup form.
func (m model) formConfig() training.Config {
	value := func(f field) int {
		n, _ := strconv.Atoi(m.inputs[f].Value())
		return n
	}
	return training.Config{
		Kind:                 m.kind,
		Mode:                 m.mode,
		TargetHitCount:       value(fieldHitCount),
		TotalDurationSeconds: value(fieldDuration),
		TargetStayTimeMs:     value(fieldStay),
	}
}

// setFocus moves keyboard focus to f.
func (m *model) setFocus(f field) {
	m.focus = (f + fieldCount) % fieldCount
	for k, in := range m.inputs {
		if k == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// arenaReady reports whether the terminal leaves room to train.
func (m model) arenaReady() bool {
	cols, rows := m.term.Cells()
	return cols >= minArenaCol && rows >= minArenaRow
}

func (m *model) pushActivity(line string) {
	if line == "" {
		return
	}
	m.activity = append(m.activity, line)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
}

func (m model) lastActivity() string {
	if len(m.activity) == 0 {
		return ""
	}
	return m.activity[len(m.activity)-1]
}

func nextKind(k training.Kind, delta int) training.Kind {
	all := training.Kinds()
	i := (int(k) + delta + len(all)) % len(all)
	return all[i]
}

func toggleMode(mode training.Mode) training.Mode {
	if mode == training.ModeTime {
		return training.ModeCount
	}
	return training.ModeTime
}
