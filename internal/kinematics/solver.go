package kinematics

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

const (
	DefaultMaxIterations = 16
	DefaultTolerance     = 0.5
)

// Options bound the relaxation loop. Tolerance is in the caller's
// coordinate units.
type Options struct {
	MaxIterations int
	Tolerance     float64
}

func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

func (o Options) Validate() error {
	if o.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrOptionBounds, o.MaxIterations)
	}
	if o.Tolerance < 0 || math.IsNaN(o.Tolerance) || math.IsInf(o.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance must be finite and non-negative, got %f", ErrOptionBounds, o.Tolerance)
	}
	return nil
}

// Stats describes one solve.
type Stats struct {
	Iterations int
	Reachable  bool
	Converged  bool
	Error      float64 // distance from effector to target after the solve
}

type Solver struct {
	opts Options
}

// NewSolver returns a solver using opts. Invalid options fall back to the
// defaults field by field; call Options.Validate first to reject them.
func NewSolver(opts Options) *Solver {
	def := DefaultOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Validate() != nil {
		opts.Tolerance = def.Tolerance
	}
	return &Solver{opts: opts}
}

func (s *Solver) Options() Options { return s.opts }

// Solve moves points so the end effector approaches target while P0 stays
// on base and every segment keeps its length. points is updated in place
// and must hold len(lengths)+1 joints. On a contract violation points is
// left untouched.
func (s *Solver) Solve(points Pose, base, target r2.Point, lengths []float64) (Stats, error) {
	if err := checkContract("solve", points, base, target, lengths); err != nil {
		return Stats{}, err
	}

	n := len(lengths)
	if Distance(base, target) > TotalLength(lengths) {
		dir := Direction(base, target)
		points[0] = base
		for i, l := range lengths {
			points[i+1] = points[i].Add(dir.Mul(l))
		}
		return Stats{Error: Distance(points[n], target)}, nil
	}

	stats := Stats{Reachable: true}
	diff := Distance(points[n], target)

	// A moved base forces at least one pass even when the effector is
	// already within tolerance.
	for stats.Iterations < s.opts.MaxIterations && (diff > s.opts.Tolerance || points[0] != base) {
		stats.Iterations++

		points[n] = target
		for i := n - 1; i >= 0; i-- {
			points[i] = reach(points[i+1], points[i], lengths[i])
		}

		points[0] = base
		for i := 0; i < n; i++ {
			points[i+1] = reach(points[i], points[i+1], lengths[i])
		}

		diff = Distance(points[n], target)
	}

	stats.Error = diff
	stats.Converged = diff <= s.opts.Tolerance
	return stats, nil
}

var defaultSolver = NewSolver(DefaultOptions())

// Solve runs the default solver (16 iterations, tolerance 0.5).
func Solve(points Pose, base, target r2.Point, lengths []float64) (Stats, error) {
	return defaultSolver.Solve(points, base, target, lengths)
}

func checkContract(op string, points Pose, base, target r2.Point, lengths []float64) error {
	if len(points) != len(lengths)+1 {
		return contractf(op, "%d points for %d segments, want %d", len(points), len(lengths), len(lengths)+1)
	}
	for i, l := range lengths {
		if !(l > 0) || math.IsInf(l, 0) {
			return contractf(op, "segment %d has length %v, want finite and positive", i, l)
		}
	}
	if !finite(base) {
		return contractf(op, "base %v is not finite", base)
	}
	if !finite(target) {
		return contractf(op, "target %v is not finite", target)
	}
	for i, p := range points {
		if !finite(p) {
			return contractf(op, "joint %d at %v is not finite", i, p)
		}
	}
	return nil
}
