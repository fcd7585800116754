// Package platform declares the collaborators the training engine consumes:
// pointer input, screen geometry and the overlay surfaces that render targets.
// The terminal UI and the simulator provide implementations; tests use fakes.
package platform

import (
	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/training"
)

// Pointer supplies the current screen-space pointer position. It never fails;
// an implementation that cannot read the pointer returns its last known value.
type Pointer interface {
	Position() geom.Point
}

// Screen describes the primary display.
type Screen interface {
	// Geometry returns the current display size. It is read on every spawn.
	Geometry() geom.Size
	// TargetSize returns the standard target size. It is read once per run.
	TargetSize() geom.Size
}

// Surface is one rendered target.
type Surface interface {
	// Rect returns the on-screen rectangle, equal to the rect it was opened with.
	Rect() geom.Rect
	// Close removes the visual. Calling Close more than once is a no-op.
	Close()
}

// Overlay materializes target surfaces.
type Overlay interface {
	Open(kind training.Kind, rect geom.Rect) Surface
}
