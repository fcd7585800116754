package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the trainer's key bindings.
type keyMap struct {
	Quit       key.Binding
	Abort      key.Binding
	Results    key.Binding
	QuickStart key.Binding
	Start      key.Binding
	Next       key.Binding
	Prev       key.Binding
	Left       key.Binding
	Right      key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Abort: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "abort"),
	),
	Results: key.NewBinding(
		key.WithKeys("f6"),
		key.WithHelp("f6", "results"),
	),
	QuickStart: key.NewBinding(
		key.WithKeys("f7"),
		key.WithHelp("f7", "quick start"),
	),
	Start: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "start"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("←/→", "change"),
	),
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		h := b.Help()
		if i > 0 {
			out += "  "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}
