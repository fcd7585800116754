// Package viewmodel provides the result figures shared by the terminal
// results panel and the headless sim report.
package viewmodel

import (
	"fmt"

	"github.com/npratt/flick/internal/training"
)

// Row is one labelled figure.
type Row struct {
	Name  string
	Value string
}

// ResultRows lists the figures shown for a finished run. Count mode shows
// hits, total time and average time per target; time mode shows hits,
// misses, hit rate, hits per minute and total time.
func ResultRows(res training.Result, mode training.Mode) []Row {
	hits := Row{"Hits", fmt.Sprintf("%d", res.Hits)}
	total := Row{"Total time", fmt.Sprintf("%.2f s", res.TotalTimeSeconds)}

	if mode == training.ModeCount {
		return []Row{
			hits,
			total,
			{"Average time", fmt.Sprintf("%.2f s", res.AverageTimePerTargetSeconds)},
		}
	}
	return []Row{
		hits,
		{"Misses", fmt.Sprintf("%d", res.Misses)},
		{"Hit rate", fmt.Sprintf("%.2f%%", res.HitRate()*100)},
		{"Hits/Minute", fmt.Sprintf("%.2f", res.HitsPerMinute())},
		total,
	}
}

// ReactionRows lists reaction-time figures, or nothing when no target was hit.
func ReactionRows(rs training.ReactionStats) []Row {
	if rs.Count == 0 {
		return nil
	}
	return []Row{
		{"Reaction", fmt.Sprintf("%d ms ± %d ms", rs.Mean.Milliseconds(), rs.StdDev.Milliseconds())},
		{"Best", fmt.Sprintf("%d ms", rs.Best.Milliseconds())},
	}
}
