// Package placement chooses where the next target appears.
//
// Targets are biased toward a horizontal core zone in the middle of the
// screen and kept inside a vertical band around the screen center. Each new
// position must be horizontally separated from the previous target and away
// from the pointer. When no candidate satisfies the constraints within the
// attempt budget, the last candidate is used anyway.
package placement

import (
	"math"
	"math/rand"
	"time"

	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/platform"
)

// Params holds the placement constraints.
type Params struct {
	BandMin       float64 // Minimum vertical band height as a fraction of screen height
	BandMax       float64 // Maximum vertical band height as a fraction of screen height
	CoreLeft      float64 // Left edge of the core zone as a fraction of screen width
	CoreRight     float64 // Right edge of the core zone as a fraction of screen width
	CoreWeight    float64 // Probability of sampling inside the core zone
	MinTargetGap  float64 // Minimum horizontal distance from the previous target, px
	MinPointerGap float64 // Minimum Euclidean distance from the pointer, px
	MaxAttempts   int     // Candidate budget before falling back
}

// DefaultParams returns the standard placement constraints.
func DefaultParams() Params {
	return Params{
		BandMin:       0.30,
		BandMax:       0.40,
		CoreLeft:      0.25,
		CoreRight:     0.75,
		CoreWeight:    0.70,
		MinTargetGap:  100,
		MinPointerGap: 80,
		MaxAttempts:   50,
	}
}

// Outcome describes the most recent Next call.
type Outcome struct {
	Position geom.Point
	Attempts int
	Fallback bool // No candidate satisfied every constraint
}

// Sampler generates target positions. It is not safe for concurrent use;
// the controller serializes access.
type Sampler struct {
	params  Params
	pointer platform.Pointer
	rnd     *rand.Rand

	lastTarget  *geom.Point
	lastPointer *geom.Point
	last        Outcome
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithParams overrides the placement constraints.
func WithParams(p Params) Option {
	return func(s *Sampler) {
		if p.MaxAttempts < 1 {
			p.MaxAttempts = 1
		}
		s.params = p
	}
}

// WithRand sets the random source.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Sampler) {
		s.rnd = rnd
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(s *Sampler) {
		s.rnd = rand.New(rand.NewSource(seed))
	}
}

// New creates a Sampler reading the pointer from pointer.
func New(pointer platform.Pointer, opts ...Option) *Sampler {
	s := &Sampler{
		params:  DefaultParams(),
		pointer: pointer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Params returns the active constraints.
func (s *Sampler) Params() Params {
	return s.params
}

// Reset forgets the previous target and pointer positions. Call it once at
// the start of every run.
func (s *Sampler) Reset() {
	s.lastTarget = nil
	s.lastPointer = nil
	s.last = Outcome{}
}

// Last returns the outcome of the most recent Next call.
func (s *Sampler) Last() Outcome {
	return s.last
}

// Next returns the top-left position of the next target. It never fails.
func (s *Sampler) Next(screen, target geom.Size) geom.Point {
	if s.pointer != nil {
		p := s.pointer.Position()
		s.lastPointer = &p
	}

	p := s.params
	bandHeight := screen.H * (p.BandMin + (p.BandMax-p.BandMin)*s.rnd.Float64())
	bandTop := (screen.H - bandHeight) / 2

	coreLeft := screen.W * p.CoreLeft
	coreRight := screen.W * p.CoreRight

	var candidate geom.Point
	attempts := 0
	valid := false
	for attempts < p.MaxAttempts {
		attempts++

		var x float64
		switch {
		case s.rnd.Float64() < p.CoreWeight:
			x = coreLeft + s.rnd.Float64()*(coreRight-coreLeft)
		case s.rnd.Float64() < 0.5:
			x = s.rnd.Float64() * coreLeft
		default:
			x = coreRight + s.rnd.Float64()*(screen.W-coreRight)
		}
		y := bandTop + s.rnd.Float64()*(bandHeight-target.H)

		candidate = geom.Point{X: x, Y: y}
		if s.valid(candidate, screen, target) {
			valid = true
			break
		}
	}

	s.last = Outcome{Position: candidate, Attempts: attempts, Fallback: !valid}
	s.lastTarget = &candidate
	return candidate
}

func (s *Sampler) valid(pos geom.Point, screen, target geom.Size) bool {
	if !geom.RectAt(pos, target).Within(screen) {
		return false
	}
	if s.lastTarget != nil && math.Abs(pos.X-s.lastTarget.X) < s.params.MinTargetGap {
		return false
	}
	if s.lastPointer != nil && pos.Dist(*s.lastPointer) < s.params.MinPointerGap {
		return false
	}
	return true
}
