// Package events defines the training engine's event taxonomy and the
// channel-based router that fans events out to the terminal shell, the
// simulator and the optional trace file.
package events

import (
	"time"

	"github.com/npratt/flick/internal/training"
)

// EventType identifies the category and nature of an event.
type EventType string

// Engine event types.
const (
	// Run lifecycle
	EventRunStart    EventType = "run.start"
	EventRunStop     EventType = "run.stop"
	EventRunComplete EventType = "run.complete"

	// Target lifecycle
	EventTargetSpawn EventType = "target.spawn"
	EventTargetHit   EventType = "target.hit"
	EventTargetMiss  EventType = "target.miss"

	// Placement
	EventPlacementFallback EventType = "placement.fallback"
)

// Source constants identify the origin of events.
const (
	SourceEngine = "engine"
	SourceSim    = "sim"
)

// Stop reasons carried by RunStopEvent.
const (
	StopReasonUser    = "user"
	StopReasonRestart = "restart"
)

// Event is the base interface for all events in the system.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	Source() string
	Run() string
}

// BaseEvent provides the common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	Time      time.Time `json:"timestamp"`
	Src       string    `json:"source"`
	RunID     string    `json:"run_id"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// Source returns the origin of the event.
func (e BaseEvent) Source() string {
	return e.Src
}

// RunStartEvent is emitted when a training run begins.
type RunStartEvent struct {
	BaseEvent
	Config training.Config `json:"config"`
}

// RunStopEvent is emitted when a run is aborted before completing.
type RunStopEvent struct {
	BaseEvent
	Reason string `json:"reason"`
	Hits   int    `json:"hits"`
	Misses int    `json:"misses"`
}

// RunCompleteEvent is emitted when a run reaches its completion condition.
type RunCompleteEvent struct {
	BaseEvent
	Mode   training.Mode   `json:"mode"`
	Result training.Result `json:"result"`
}

// TargetSpawnEvent is emitted when a new target becomes visible.
type TargetSpawnEvent struct {
	BaseEvent
	Seq  int     `json:"seq"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// TargetHitEvent is emitted when the pointer strikes the current target.
type TargetHitEvent struct {
	BaseEvent
	Seq        int   `json:"seq"`
	ReactionMs int64 `json:"reaction_ms"`
	Hits       int   `json:"hits"`
}

// TargetMissEvent is emitted when a target's stay time expires unstruck.
type TargetMissEvent struct {
	BaseEvent
	Seq    int `json:"seq"`
	Misses int `json:"misses"`
}

// PlacementFallbackEvent is emitted when no candidate position satisfied
// every placement constraint and the last candidate was used.
type PlacementFallbackEvent struct {
	BaseEvent
	Seq      int     `json:"seq"`
	Attempts int     `json:"attempts"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// NewEvent creates a BaseEvent with the given type, source, run and time.
func NewEvent(eventType EventType, source, runID string, at time.Time) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      at,
		Src:       source,
		RunID:     runID,
	}
}

// NewEngineEvent creates a BaseEvent with the engine as the source.
func NewEngineEvent(eventType EventType, runID string, at time.Time) BaseEvent {
	return NewEvent(eventType, SourceEngine, runID, at)
}

// Run returns the run the event belongs to.
func (e BaseEvent) Run() string {
	return e.RunID
}
