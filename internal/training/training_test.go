package training

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"count ok", Config{Mode: ModeCount, TargetHitCount: 5}, false},
		{"count zero", Config{Mode: ModeCount, TargetHitCount: 0}, true},
		{"count ignores time params", Config{Mode: ModeCount, TargetHitCount: 1, TotalDurationSeconds: -1}, false},
		{"time ok", Config{Mode: ModeTime, TotalDurationSeconds: 10, TargetStayTimeMs: 2000}, false},
		{"time zero duration", Config{Mode: ModeTime, TotalDurationSeconds: 0, TargetStayTimeMs: 2000}, true},
		{"time negative stay", Config{Mode: ModeTime, TotalDurationSeconds: 10, TargetStayTimeMs: -5}, true},
		{"unknown mode", Config{Mode: "sprint", TargetHitCount: 5}, true},
		{"kind out of range", Config{Kind: Kind(9), Mode: ModeCount, TargetHitCount: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if tt.cfg.Valid() == tt.wantErr {
				t.Errorf("Valid() = %v, want %v", tt.cfg.Valid(), !tt.wantErr)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseKind("printer"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown kind, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Time "); err != nil || m != ModeTime {
		t.Errorf("ParseMode = %q, %v", m, err)
	}
	if _, err := ParseMode("endless"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestResultDerived(t *testing.T) {
	t.Run("zero denominators", func(t *testing.T) {
		var r Result
		if r.HitRate() != 0 {
			t.Errorf("HitRate = %v, want 0", r.HitRate())
		}
		if r.HitsPerMinute() != 0 {
			t.Errorf("HitsPerMinute = %v, want 0", r.HitsPerMinute())
		}
	})

	t.Run("rates", func(t *testing.T) {
		r := Result{Hits: 3, Misses: 1, TotalTimeSeconds: 30}
		if r.HitRate() != 0.75 {
			t.Errorf("HitRate = %v, want 0.75", r.HitRate())
		}
		if r.HitsPerMinute() != 6 {
			t.Errorf("HitsPerMinute = %v, want 6", r.HitsPerMinute())
		}
		if r.Resolved() != 4 {
			t.Errorf("Resolved = %d, want 4", r.Resolved())
		}
	})
}

func TestResultReaction(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if rs := (Result{}).Reaction(); rs != (ReactionStats{}) {
			t.Errorf("expected zero stats, got %+v", rs)
		}
	})

	t.Run("single sample", func(t *testing.T) {
		rs := Result{Reactions: []time.Duration{300 * time.Millisecond}}.Reaction()
		if rs.Count != 1 || rs.Mean != 300*time.Millisecond || rs.StdDev != 0 || rs.Best != 300*time.Millisecond {
			t.Errorf("unexpected stats %+v", rs)
		}
	})

	t.Run("several samples", func(t *testing.T) {
		r := Result{Reactions: []time.Duration{
			200 * time.Millisecond,
			400 * time.Millisecond,
			600 * time.Millisecond,
		}}
		rs := r.Reaction()
		if rs.Count != 3 {
			t.Errorf("Count = %d, want 3", rs.Count)
		}
		if rs.Mean != 400*time.Millisecond {
			t.Errorf("Mean = %v, want 400ms", rs.Mean)
		}
		// Sample standard deviation of {200, 400, 600} is 200.
		if rs.StdDev < 199*time.Millisecond || rs.StdDev > 201*time.Millisecond {
			t.Errorf("StdDev = %v, want ~200ms", rs.StdDev)
		}
		if rs.Best != 200*time.Millisecond {
			t.Errorf("Best = %v, want 200ms", rs.Best)
		}
	})
}

func TestResultClone(t *testing.T) {
	r := Result{Hits: 1, Reactions: []time.Duration{time.Second}}
	c := r.Clone()
	c.Reactions[0] = time.Minute
	if r.Reactions[0] != time.Second {
		t.Error("Clone shares the reactions slice")
	}
}
