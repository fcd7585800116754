// Package training defines the run configuration and result types shared by
// the engine and the shells.
package training

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid training config")

// Kind selects the visual used for targets.
type Kind int

// Target kinds.
const (
	KindRecycleBin Kind = iota
	KindNewFolder
	KindSpreadsheet
	KindWordDocument
	KindTextDocument
)

var kindNames = []string{
	KindRecycleBin:   "recycle-bin",
	KindNewFolder:    "new-folder",
	KindSpreadsheet:  "spreadsheet",
	KindWordDocument: "word-document",
	KindTextDocument: "text-document",
}

// Kinds lists every target kind in display order.
func Kinds() []Kind {
	return []Kind{KindRecycleBin, KindNewFolder, KindSpreadsheet, KindWordDocument, KindTextDocument}
}

// String returns the config-file name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name as written in config files and flags.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown target kind %q (valid: %s)", ErrInvalidConfig, s, strings.Join(kindNames, ", "))
}

// Mode selects how a run ends.
type Mode string

// Training modes.
const (
	// ModeCount ends the run once the target hit count is reached.
	ModeCount Mode = "count"
	// ModeTime ends the run once the total duration has elapsed.
	ModeTime Mode = "time"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCount:
		return ModeCount, nil
	case ModeTime:
		return ModeTime, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q (valid: count, time)", ErrInvalidConfig, s)
}

// Config describes one training run. Only the parameter group selected by
// Mode is meaningful.
type Config struct {
	Kind Kind `json:"kind"`
	Mode Mode `json:"mode"`

	// Count mode
	TargetHitCount int `json:"target_hit_count,omitempty"`

	// Time mode
	TotalDurationSeconds int `json:"total_duration_seconds,omitempty"`
	TargetStayTimeMs     int `json:"target_stay_time_ms,omitempty"`
}

// Default returns the configuration the shell starts with.
func Default() Config {
	return Config{
		Kind:                 KindNewFolder,
		Mode:                 ModeCount,
		TargetHitCount:       10,
		TotalDurationSeconds: 60,
		TargetStayTimeMs:     2000,
	}
}

// Validate checks the parameters relevant to the selected mode.
func (c Config) Validate() error {
	if c.Kind < 0 || int(c.Kind) >= len(kindNames) {
		return fmt.Errorf("%w: target kind %d out of range", ErrInvalidConfig, int(c.Kind))
	}
	switch c.Mode {
	case ModeCount:
		if c.TargetHitCount <= 0 {
			return fmt.Errorf("%w: target hit count must be > 0, got %d", ErrInvalidConfig, c.TargetHitCount)
		}
	case ModeTime:
		if c.TotalDurationSeconds <= 0 {
			return fmt.Errorf("%w: total duration must be > 0, got %d", ErrInvalidConfig, c.TotalDurationSeconds)
		}
		if c.TargetStayTimeMs <= 0 {
			return fmt.Errorf("%w: target stay time must be > 0, got %d", ErrInvalidConfig, c.TargetStayTimeMs)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// Valid reports whether Validate would succeed.
func (c Config) Valid() bool {
	return c.Validate() == nil
}

// TotalDuration returns the time-mode run length.
func (c Config) TotalDuration() time.Duration {
	return time.Duration(c.TotalDurationSeconds) * time.Second
}

// StayTime returns how long a time-mode target stays up before it counts as a miss.
func (c Config) StayTime() time.Duration {
	return time.Duration(c.TargetStayTimeMs) * time.Millisecond
}
