package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/npratt/flick/internal/training"
	"github.com/npratt/flick/internal/viewmodel"
)

// View implements tea.Model. This renders the full TUI display.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	rows := m.height - headerRows - footerRows
	if rows < 1 {
		rows = 1
	}

	var body string
	switch m.screen {
	case screenArena:
		body = m.renderArena(rows)
	case screenResults:
		body = lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center,
			renderResult(m.lastResult, m.lastMode))
	default:
		body = lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, m.renderForm())
	}

	sections := []string{
		m.renderHeader(),
		m.renderDivider(),
		body,
		m.renderDivider(),
		m.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

func (m model) renderDivider() string {
	return styles.Divider.Render(strings.Repeat("─", safeWidth(m.width)))
}

// renderHeader renders the title and live run counters.
func (m model) renderHeader() string {
	parts := []string{styles.Title.Render("flick")}

	switch m.screen {
	case screenArena:
		cfg := m.engine.Config()
		parts = append(parts, styles.Mode.Render(string(cfg.Mode)+" mode"))
		if cfg.Mode == training.ModeCount {
			parts = append(parts, styles.Hits.Render(fmt.Sprintf("hits %d/%d", m.hits, cfg.TargetHitCount)))
		} else {
			parts = append(parts,
				styles.Hits.Render(fmt.Sprintf("hits %d", m.hits)),
				styles.Misses.Render(fmt.Sprintf("misses %d", m.misses)))
		}
		parts = append(parts, styles.Elapsed.Render(formatElapsed(m.engine.Elapsed(), cfg)))
	case screenResults:
		parts = append(parts, styles.Mode.Render("results"))
	default:
		parts = append(parts, styles.Mode.Render("setup"))
	}

	return truncate(strings.Join(parts, "  "), m.width)
}

func formatElapsed(d time.Duration, cfg training.Config) string {
	elapsed := d.Truncate(100 * time.Millisecond).Seconds()
	if cfg.Mode == training.ModeTime {
		return fmt.Sprintf("%.1fs / %ds", elapsed, cfg.TotalDurationSeconds)
	}
	return fmt.Sprintf("%.1fs", elapsed)
}

// renderFooter renders the key help and the latest activity line.
func (m model) renderFooter() string {
	var help string
	switch m.screen {
	case screenArena:
		help = helpLine(keys.Abort, keys.Quit)
	case screenResults:
		help = helpLine(keys.Start, keys.QuickStart, keys.Quit)
	default:
		help = helpLine(keys.Start, keys.Next, keys.Right, keys.Results, keys.QuickStart, keys.Quit)
	}
	lines := []string{
		styles.Footer.Render(truncate(help, m.width)),
		styles.Activity.Render(truncate(m.lastActivity(), m.width)),
	}
	return strings.Join(lines, "\n")
}

// renderForm renders the setup form.
func (m model) renderForm() string {
	label := func(f field, text string) string {
		if m.focus == f {
			return styles.FocusedLabel.Render("> " + text)
		}
		return styles.Label.Render("  " + text)
	}
	choice := func(f field, value string) string {
		if m.focus == f {
			return styles.Choice.Render("‹ " + value + " ›")
		}
		return styles.Choice.Render("  " + value)
	}
	number := func(f field, text string, active bool) string {
		row := label(f, text) + "[" + m.inputs[f].View() + "]"
		if !active {
			return styles.Divider.Render(row)
		}
		return row
	}

	count := m.mode == training.ModeCount
	lines := []string{
		label(fieldKind, "Target kind") + choice(fieldKind, m.kind.String()),
		label(fieldMode, "Mode") + choice(fieldMode, string(m.mode)),
		number(fieldHitCount, "Hit count", count),
		number(fieldDuration, "Duration (s)", !count),
		number(fieldStay, "Stay time (ms)", !count),
	}
	if m.formErr != "" {
		lines = append(lines, "", styles.Error.Render(m.formErr))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderArena draws the live targets on a blank grid of the arena size.
func (m model) renderArena(rows int) string {
	cols, _ := m.term.Cells()
	boxes := m.term.Boxes()
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Col < boxes[j].Col })

	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		var b strings.Builder
		col := 0
		for _, box := range boxes {
			if r < box.Row || r >= box.Row+box.H || box.Col < col || box.Col >= cols {
				continue
			}
			w := min(box.W, cols-box.Col)
			b.WriteString(strings.Repeat(" ", box.Col-col))
			text := ""
			if r == box.Row+(box.H-1)/2 {
				text = kindGlyphs[box.Kind]
			}
			b.WriteString(targetStyle(box.Kind).Render(boxLabel(text, w)))
			col = box.Col + w
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// boxLabel centers text in a cell run of width w.
func boxLabel(text string, w int) string {
	text = runewidth.Truncate(text, w, "")
	pad := w - runewidth.StringWidth(text)
	left := pad / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
}

// renderResult renders the summary of the last completed run.
func renderResult(res *training.Result, mode training.Mode) string {
	if res == nil {
		return styles.Panel.Render(styles.NoData.Render("No data"))
	}

	var lines []string
	for _, row := range viewmodel.ResultRows(*res, mode) {
		lines = append(lines, styles.StatName.Render(row.Name)+styles.StatValue.Render(row.Value))
	}
	if reaction := viewmodel.ReactionRows(res.Reaction()); reaction != nil {
		lines = append(lines, "")
		for _, row := range reaction {
			lines = append(lines, styles.StatName.Render(row.Name)+styles.StatValue.Render(row.Value))
		}
	}
	return styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// truncate shortens s to fit within width display columns.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return runewidth.Truncate(s, safeWidth(width), "…")
}

// safeWidth ensures width is at least 1 to prevent rendering issues.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}
