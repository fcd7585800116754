package viewmodel

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/npratt/flick/internal/training"
)

func TestResultRows(t *testing.T) {
	tests := []struct {
		name string
		res  training.Result
		mode training.Mode
		want []Row
	}{
		{
			name: "count mode",
			res:  training.Result{Hits: 5, TotalTimeSeconds: 0.08, AverageTimePerTargetSeconds: 0.016},
			mode: training.ModeCount,
			want: []Row{
				{"Hits", "5"},
				{"Total time", "0.08 s"},
				{"Average time", "0.02 s"},
			},
		},
		{
			name: "time mode",
			res:  training.Result{Hits: 3, Misses: 1, TotalTimeSeconds: 10},
			mode: training.ModeTime,
			want: []Row{
				{"Hits", "3"},
				{"Misses", "1"},
				{"Hit rate", "75.00%"},
				{"Hits/Minute", "18.00"},
				{"Total time", "10.00 s"},
			},
		},
		{
			name: "time mode with nothing resolved",
			res:  training.Result{},
			mode: training.ModeTime,
			want: []Row{
				{"Hits", "0"},
				{"Misses", "0"},
				{"Hit rate", "0.00%"},
				{"Hits/Minute", "0.00"},
				{"Total time", "0.00 s"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ResultRows(tt.res, tt.mode)); diff != "" {
				t.Errorf("ResultRows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReactionRows(t *testing.T) {
	if rows := ReactionRows(training.ReactionStats{}); rows != nil {
		t.Errorf("ReactionRows(empty) = %v, want nil", rows)
	}

	rs := training.ReactionStats{
		Count:  2,
		Mean:   300 * time.Millisecond,
		StdDev: 141 * time.Millisecond,
		Best:   200 * time.Millisecond,
	}
	want := []Row{
		{"Reaction", "300 ms ± 141 ms"},
		{"Best", "200 ms"},
	}
	if diff := cmp.Diff(want, ReactionRows(rs)); diff != "" {
		t.Errorf("ReactionRows() mismatch (-want +got):\n%s", diff)
	}
}
