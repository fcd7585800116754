// Package clock provides the time source and recurring-callback scheduler the
// engine runs on. System is backed by the wall clock; Manual is advanced by
// hand and fires callbacks deterministically for tests and simulations.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// CancelFunc stops a recurring callback. It is safe to call more than once.
type CancelFunc func()

// Scheduler runs fn every interval until the returned CancelFunc is called.
// Callbacks never run on the caller's goroutine from within Every.
type Scheduler interface {
	Every(interval time.Duration, fn func()) CancelFunc
}

// Source is a Clock and Scheduler sharing one notion of time.
type Source interface {
	Clock
	Scheduler
}

// System is the wall-clock Source. Each recurring callback gets its own
// goroutine driven by a time.Ticker.
type System struct{}

// NewSystem returns the wall-clock Source.
func NewSystem() System {
	return System{}
}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// Every starts a ticker goroutine. A callback already in flight when the
// CancelFunc is called may still complete.
func (System) Every(interval time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
