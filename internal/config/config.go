// Package config provides configuration types and defaults for flick.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/npratt/flick/internal/placement"
	"github.com/npratt/flick/internal/training"
)

// Config holds all configuration for flick.
type Config struct {
	Training    TrainingConfig    `toml:"training" mapstructure:"training"`
	Placement   PlacementConfig   `toml:"placement" mapstructure:"placement"`
	Timing      TimingConfig      `toml:"timing" mapstructure:"timing"`
	Terminal    TerminalConfig    `toml:"terminal" mapstructure:"terminal"`
	Sim         SimConfig         `toml:"sim" mapstructure:"sim"`
	Paths       PathsConfig       `toml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `toml:"log_rotation" mapstructure:"log_rotation"`
}

// TrainingConfig holds the run parameters the trainer starts with.
type TrainingConfig struct {
	Kind            string `toml:"kind" mapstructure:"kind"` // recycle-bin, new-folder, spreadsheet, word-document, text-document
	Mode            string `toml:"mode" mapstructure:"mode"` // count or time
	HitCount        int    `toml:"hit_count" mapstructure:"hit_count"`
	DurationSeconds int    `toml:"duration_seconds" mapstructure:"duration_seconds"`
	StayTimeMs      int    `toml:"stay_time_ms" mapstructure:"stay_time_ms"`
}

// PlacementConfig holds the target placement constraints.
type PlacementConfig struct {
	BandMin       float64 `toml:"band_min" mapstructure:"band_min"`
	BandMax       float64 `toml:"band_max" mapstructure:"band_max"`
	CoreLeft      float64 `toml:"core_left" mapstructure:"core_left"`
	CoreRight     float64 `toml:"core_right" mapstructure:"core_right"`
	CoreWeight    float64 `toml:"core_weight" mapstructure:"core_weight"`
	MinTargetGap  float64 `toml:"min_target_gap" mapstructure:"min_target_gap"`
	MinPointerGap float64 `toml:"min_pointer_gap" mapstructure:"min_pointer_gap"`
	MaxAttempts   int     `toml:"max_attempts" mapstructure:"max_attempts"`
}

// TimingConfig holds engine cadences.
type TimingConfig struct {
	HitPollMs int `toml:"hit_poll_ms" mapstructure:"hit_poll_ms"`
}

// TerminalConfig maps terminal cells onto the engine's pixel space.
type TerminalConfig struct {
	CellWidthPx    int `toml:"cell_width_px" mapstructure:"cell_width_px"`
	CellHeightPx   int `toml:"cell_height_px" mapstructure:"cell_height_px"`
	TargetWidthPx  int `toml:"target_width_px" mapstructure:"target_width_px"`
	TargetHeightPx int `toml:"target_height_px" mapstructure:"target_height_px"`
}

// SimConfig holds the simulated player used by `flick sim`.
type SimConfig struct {
	ReactionMs int     `toml:"reaction_ms" mapstructure:"reaction_ms"`
	JitterMs   int     `toml:"jitter_ms" mapstructure:"jitter_ms"`
	Accuracy   float64 `toml:"accuracy" mapstructure:"accuracy"` // Probability of reaching each target, 0..1
	Seed       int64   `toml:"seed" mapstructure:"seed"`         // 0 picks a time-based seed
	Realtime   bool    `toml:"realtime" mapstructure:"realtime"`
	ScreenW    int     `toml:"screen_width" mapstructure:"screen_width"`
	ScreenH    int     `toml:"screen_height" mapstructure:"screen_height"`
}

// PathsConfig holds file paths for logs and traces.
type PathsConfig struct {
	Log   string `toml:"log" mapstructure:"log"`
	Trace string `toml:"trace" mapstructure:"trace"` // Empty disables the event trace
}

// LogRotationConfig holds settings for log file rotation.
// Used for the TUI debug log (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `toml:"compress" mapstructure:"compress"`
}

// Default returns a Config with the standard training setup.
func Default() *Config {
	tc := training.Default()
	p := placement.DefaultParams()
	return &Config{
		Training: TrainingConfig{
			Kind:            tc.Kind.String(),
			Mode:            string(tc.Mode),
			HitCount:        tc.TargetHitCount,
			DurationSeconds: tc.TotalDurationSeconds,
			StayTimeMs:      tc.TargetStayTimeMs,
		},
		Placement: PlacementConfig{
			BandMin:       p.BandMin,
			BandMax:       p.BandMax,
			CoreLeft:      p.CoreLeft,
			CoreRight:     p.CoreRight,
			CoreWeight:    p.CoreWeight,
			MinTargetGap:  p.MinTargetGap,
			MinPointerGap: p.MinPointerGap,
			MaxAttempts:   p.MaxAttempts,
		},
		Timing: TimingConfig{
			HitPollMs: 16,
		},
		Terminal: TerminalConfig{
			CellWidthPx:    8,
			CellHeightPx:   16,
			TargetWidthPx:  32,
			TargetHeightPx: 32,
		},
		Sim: SimConfig{
			ReactionMs: 350,
			JitterMs:   120,
			Accuracy:   0.85,
			ScreenW:    1920,
			ScreenH:    1080,
		},
		Paths: PathsConfig{
			Log: filepath.Join(XDGStateHome(), AppName, "flick.log"),
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// RunConfig converts the file settings into an engine configuration.
// It does not check that the mode parameters are positive; call Validate on
// the result for that.
func (c *Config) RunConfig() (training.Config, error) {
	kind, err := training.ParseKind(c.Training.Kind)
	if err != nil {
		return training.Config{}, fmt.Errorf("training.kind: %w", err)
	}
	mode, err := training.ParseMode(c.Training.Mode)
	if err != nil {
		return training.Config{}, fmt.Errorf("training.mode: %w", err)
	}
	return training.Config{
		Kind:                 kind,
		Mode:                 mode,
		TargetHitCount:       c.Training.HitCount,
		TotalDurationSeconds: c.Training.DurationSeconds,
		TargetStayTimeMs:     c.Training.StayTimeMs,
	}, nil
}

// PlacementParams converts the placement section into sampler parameters.
func (c *Config) PlacementParams() placement.Params {
	p := c.Placement
	return placement.Params{
		BandMin:       p.BandMin,
		BandMax:       p.BandMax,
		CoreLeft:      p.CoreLeft,
		CoreRight:     p.CoreRight,
		CoreWeight:    p.CoreWeight,
		MinTargetGap:  p.MinTargetGap,
		MinPointerGap: p.MinPointerGap,
		MaxAttempts:   p.MaxAttempts,
	}
}

// HitPollInterval returns the hit-check cadence.
func (c *Config) HitPollInterval() time.Duration {
	return time.Duration(c.Timing.HitPollMs) * time.Millisecond
}

// Validate checks the settings that do not belong to a single run.
// Training parameters are validated when a run is started.
func (c *Config) Validate() error {
	p := c.Placement
	switch {
	case p.BandMin <= 0 || p.BandMax > 1 || p.BandMin > p.BandMax:
		return fmt.Errorf("placement: band must satisfy 0 < band_min <= band_max <= 1 (got %.2f, %.2f)", p.BandMin, p.BandMax)
	case p.CoreLeft < 0 || p.CoreRight > 1 || p.CoreLeft >= p.CoreRight:
		return fmt.Errorf("placement: core zone must satisfy 0 <= core_left < core_right <= 1 (got %.2f, %.2f)", p.CoreLeft, p.CoreRight)
	case p.CoreWeight < 0 || p.CoreWeight > 1:
		return fmt.Errorf("placement: core_weight must be in [0, 1] (got %.2f)", p.CoreWeight)
	case p.MinTargetGap < 0 || p.MinPointerGap < 0:
		return fmt.Errorf("placement: gaps must not be negative")
	case p.MaxAttempts < 1:
		return fmt.Errorf("placement: max_attempts must be at least 1 (got %d)", p.MaxAttempts)
	}
	if c.Timing.HitPollMs <= 0 {
		return fmt.Errorf("timing: hit_poll_ms must be positive (got %d)", c.Timing.HitPollMs)
	}
	t := c.Terminal
	if t.CellWidthPx <= 0 || t.CellHeightPx <= 0 || t.TargetWidthPx <= 0 || t.TargetHeightPx <= 0 {
		return fmt.Errorf("terminal: cell and target sizes must be positive")
	}
	s := c.Sim
	if s.Accuracy < 0 || s.Accuracy > 1 {
		return fmt.Errorf("sim: accuracy must be in [0, 1] (got %.2f)", s.Accuracy)
	}
	if s.ReactionMs < 0 || s.JitterMs < 0 {
		return fmt.Errorf("sim: reaction_ms and jitter_ms must not be negative")
	}
	if s.ScreenW <= 0 || s.ScreenH <= 0 {
		return fmt.Errorf("sim: screen size must be positive")
	}
	return nil
}
