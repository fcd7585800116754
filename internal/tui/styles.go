package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/npratt/flick/internal/training"
)

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Layout styles
	Container lipgloss.Style
	Divider   lipgloss.Style
	Title     lipgloss.Style

	// Header styles
	Mode    lipgloss.Style
	Hits    lipgloss.Style
	Misses  lipgloss.Style
	Elapsed lipgloss.Style

	// Footer styles
	Footer   lipgloss.Style
	Activity lipgloss.Style

	// Form styles
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Choice       lipgloss.Style
	Error        lipgloss.Style

	// Result panel
	Panel     lipgloss.Style
	StatName  lipgloss.Style
	StatValue lipgloss.Style
	NoData    lipgloss.Style
}{
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Mode: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Hits: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	Misses: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Elapsed: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Activity: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),

	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Width(18),

	FocusedLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("63")).
		Width(18),

	Choice: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Panel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 3),

	StatName: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Width(16),

	StatValue: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("252")),

	NoData: lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("245")),
}

// kindColors are the placeholder colors of each target kind.
var kindColors = map[training.Kind]lipgloss.Color{
	training.KindRecycleBin:   lipgloss.Color("196"), // red
	training.KindNewFolder:    lipgloss.Color("33"),  // blue
	training.KindSpreadsheet:  lipgloss.Color("34"),  // green
	training.KindWordDocument: lipgloss.Color("18"),  // dark blue
	training.KindTextDocument: lipgloss.Color("208"), // orange
}

// kindGlyphs label target boxes.
var kindGlyphs = map[training.Kind]string{
	training.KindRecycleBin:   "RB",
	training.KindNewFolder:    "NF",
	training.KindSpreadsheet:  "XL",
	training.KindWordDocument: "WD",
	training.KindTextDocument: "TX",
}

func targetStyle(k training.Kind) lipgloss.Style {
	c, ok := kindColors[k]
	if !ok {
		c = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().
		Background(c).
		Foreground(lipgloss.Color("231")).
		Bold(true)
}
