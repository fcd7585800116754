package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/npratt/flick/internal/clock"
)

// DefaultStep is the virtual time advanced per Drive iteration.
const DefaultStep = 4 * time.Millisecond

// ErrNoProgress is returned when a run does not finish within the
// virtual time limit.
var ErrNoProgress = errors.New("run did not finish")

// Runner is the part of the controller Drive needs.
type Runner interface {
	IsRunning() bool
}

// Drive advances clk in steps until r stops running, ctx is canceled, or
// limit of virtual time has passed. It returns the virtual time consumed.
func Drive(ctx context.Context, clk *clock.Manual, r Runner, step, limit time.Duration) (time.Duration, error) {
	if step <= 0 {
		step = DefaultStep
	}
	var elapsed time.Duration
	for r.IsRunning() {
		if err := ctx.Err(); err != nil {
			return elapsed, err
		}
		if limit > 0 && elapsed >= limit {
			return elapsed, fmt.Errorf("drive simulation: %w after %s", ErrNoProgress, elapsed)
		}
		clk.Advance(step)
		elapsed += step
	}
	return elapsed, nil
}
