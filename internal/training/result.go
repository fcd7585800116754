package training

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Result accumulates the metrics of one run. It is mutated by the
// controller while the run is active and handed out as a copy.
type Result struct {
	Hits                        int             `json:"hits"`
	Misses                      int             `json:"misses"`
	TotalTimeSeconds            float64         `json:"total_time_seconds"`
	AverageTimePerTargetSeconds float64         `json:"average_time_per_target_seconds"`
	Reactions                   []time.Duration `json:"reactions,omitempty"`
}

// HitRate returns hits/(hits+misses), or 0 when nothing was resolved.
func (r Result) HitRate() float64 {
	total := r.Hits + r.Misses
	if total == 0 {
		return 0
	}
	return float64(r.Hits) / float64(total)
}

// HitsPerMinute returns the hit throughput over the whole run.
func (r Result) HitsPerMinute() float64 {
	if r.TotalTimeSeconds <= 0 {
		return 0
	}
	return float64(r.Hits) / r.TotalTimeSeconds * 60
}

// Resolved returns the number of targets with a final outcome.
func (r Result) Resolved() int {
	return r.Hits + r.Misses
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r Result) Clone() Result {
	r.Reactions = slices.Clone(r.Reactions)
	return r
}

// ReactionStats summarises spawn-to-hit times.
type ReactionStats struct {
	Count  int           `json:"count"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"std_dev"`
	Best   time.Duration `json:"best"`
}

// Reaction computes reaction-time statistics for the struck targets.
func (r Result) Reaction() ReactionStats {
	if len(r.Reactions) == 0 {
		return ReactionStats{}
	}
	ms := make([]float64, len(r.Reactions))
	for i, d := range r.Reactions {
		ms[i] = float64(d) / float64(time.Millisecond)
	}
	rs := ReactionStats{
		Count: len(ms),
		Best:  slices.Min(r.Reactions),
	}
	if len(ms) == 1 {
		rs.Mean = r.Reactions[0]
		return rs
	}
	mean, std := stat.MeanStdDev(ms, nil)
	rs.Mean = time.Duration(mean * float64(time.Millisecond))
	rs.StdDev = time.Duration(std * float64(time.Millisecond))
	return rs
}
