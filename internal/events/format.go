package events

import (
	"fmt"
	"time"

	"github.com/npratt/flick/internal/training"
)

// shortIDLength is how much of a run ID is shown in formatted lines.
const shortIDLength = 8

// Format converts an event to a human-readable string for display.
// Returns empty string for nil or unknown event types.
func Format(event Event) string {
	if event == nil {
		return ""
	}

	switch e := event.(type) {
	case *RunStartEvent:
		return formatRunStart(e)
	case *RunStopEvent:
		return formatRunStop(e)
	case *RunCompleteEvent:
		return formatRunComplete(e)
	case *TargetSpawnEvent:
		return fmt.Sprintf("target #%d %s at (%.0f, %.0f)", e.Seq, e.Kind, e.X, e.Y)
	case *TargetHitEvent:
		return fmt.Sprintf("[+] target #%d hit in %dms", e.Seq, e.ReactionMs)
	case *TargetMissEvent:
		return fmt.Sprintf("[x] target #%d missed", e.Seq)
	case *PlacementFallbackEvent:
		return fmt.Sprintf("[!] target #%d placed after %d attempts without a valid spot", e.Seq, e.Attempts)
	default:
		return ""
	}
}

// FormatWithTimestamp formats an event with a timestamp prefix.
func FormatWithTimestamp(event Event) string {
	if event == nil {
		return ""
	}
	ts := event.Timestamp().Format("15:04:05")
	detail := Format(event)
	if detail == "" {
		return fmt.Sprintf("[%s] %s", ts, event.Type())
	}
	return fmt.Sprintf("[%s] %s", ts, detail)
}

func formatRunStart(e *RunStartEvent) string {
	cfg := e.Config
	switch cfg.Mode {
	case training.ModeTime:
		return fmt.Sprintf("run %s started: time mode, %ds, %dms per target",
			ShortID(e.RunID), cfg.TotalDurationSeconds, cfg.TargetStayTimeMs)
	default:
		return fmt.Sprintf("run %s started: count mode, %d targets",
			ShortID(e.RunID), cfg.TargetHitCount)
	}
}

func formatRunStop(e *RunStopEvent) string {
	if e.Reason != "" {
		return fmt.Sprintf("run %s stopped (%s): %d hits, %d misses", ShortID(e.RunID), e.Reason, e.Hits, e.Misses)
	}
	return fmt.Sprintf("run %s stopped: %d hits, %d misses", ShortID(e.RunID), e.Hits, e.Misses)
}

func formatRunComplete(e *RunCompleteEvent) string {
	r := e.Result
	total := time.Duration(r.TotalTimeSeconds * float64(time.Second)).Round(time.Millisecond)
	if e.Mode == training.ModeTime {
		return fmt.Sprintf("run %s complete: %d hits, %d misses in %s", ShortID(e.RunID), r.Hits, r.Misses, total)
	}
	return fmt.Sprintf("run %s complete: %d hits in %s", ShortID(e.RunID), r.Hits, total)
}

// ShortID returns the leading characters of a run ID.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}
