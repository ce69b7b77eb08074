package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const rigidEps = 1e-6

var armLengths = []float64{150, 120, 90}

func TestSolveReachable(t *testing.T) {
	tests := []struct {
		name   string
		target r2.Point
	}{
		{"below right", r2.Point{X: 50, Y: -50}},
		{"upper right", r2.Point{X: 200, Y: 100}},
		{"far left", r2.Point{X: -300, Y: 10}},
		{"lower left", r2.Point{X: -100, Y: -200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := r2.Point{}
			pose := Straight(base, armLengths)

			stats, err := Solve(pose, base, tt.target, armLengths)
			if err != nil {
				t.Fatalf("solve failed: %v", err)
			}
			if !stats.Reachable || !stats.Converged {
				t.Errorf("expected reachable and converged, got %+v", stats)
			}
			if d := Distance(pose.Effector(), tt.target); d > DefaultTolerance {
				t.Errorf("effector %.4f from target, want <= %.1f", d, DefaultTolerance)
			}
			if pose[0] != base {
				t.Errorf("base not pinned: got %v", pose[0])
			}
			if e := MaxRigidityError(pose, armLengths); e > rigidEps {
				t.Errorf("rigidity error %g", e)
			}
		})
	}
}

func TestSolveWarmStartConverges(t *testing.T) {
	base := r2.Point{}
	target := r2.Point{X: 0, Y: 359}
	pose := Straight(base, armLengths)

	for call := 0; call < DefaultMaxIterations; call++ {
		if _, err := Solve(pose, base, target, armLengths); err != nil {
			t.Fatalf("solve failed: %v", err)
		}
		if Distance(pose.Effector(), target) <= DefaultTolerance {
			return
		}
	}
	t.Errorf("did not converge: effector at %v", pose.Effector())
}

func TestSolveUnreachable(t *testing.T) {
	base := r2.Point{}
	pose := Straight(base, armLengths)

	stats, err := Solve(pose, base, r2.Point{X: 1000, Y: 0}, armLengths)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if stats.Reachable {
		t.Error("expected unreachable")
	}
	if stats.Iterations != 0 {
		t.Errorf("expected no relaxation passes, got %d", stats.Iterations)
	}

	want := Pose{{X: 0}, {X: 150}, {X: 270}, {X: 360}}
	if diff := cmp.Diff(want, pose, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("pose mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveUnreachableDiagonal(t *testing.T) {
	base := r2.Point{X: 10, Y: -20}
	target := r2.Point{X: 1010, Y: 980}
	pose := Straight(base, armLengths)

	if _, err := Solve(pose, base, target, armLengths); err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if !Collinear(pose, 1e-9) {
		t.Errorf("pose not collinear: %v", pose)
	}
	if d := Distance(base, pose.Effector()); math.Abs(d-TotalLength(armLengths)) > rigidEps {
		t.Errorf("effector at %.6f from base, want %.1f", d, TotalLength(armLengths))
	}
	ray := Direction(base, target)
	got := Direction(base, pose.Effector())
	if math.Abs(ray.Cross(got)) > 1e-9 || ray.Dot(got) < 0 {
		t.Errorf("effector off the base->target ray: %v vs %v", got, ray)
	}
	if pose[0] != base {
		t.Errorf("base not pinned: got %v", pose[0])
	}
}

func TestSolveIdempotentAfterConvergence(t *testing.T) {
	base := r2.Point{}
	target := r2.Point{X: 50, Y: -50}
	pose := Straight(base, armLengths)

	if _, err := Solve(pose, base, target, armLengths); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	before := pose.Clone()

	stats, err := Solve(pose, base, target, armLengths)
	if err != nil {
		t.Fatalf("second solve failed: %v", err)
	}
	if stats.Iterations != 0 {
		t.Errorf("expected no passes on a converged pose, got %d", stats.Iterations)
	}
	for i := range pose {
		if d := Distance(before[i], pose[i]); d > DefaultTolerance {
			t.Errorf("joint %d moved by %.4f", i, d)
		}
	}
}

func TestSolvePinsMovedBase(t *testing.T) {
	target := r2.Point{X: 50, Y: -50}
	pose := Straight(r2.Point{}, armLengths)
	if _, err := Solve(pose, r2.Point{}, target, armLengths); err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	moved := r2.Point{X: 5, Y: 5}
	stats, err := Solve(pose, moved, target, armLengths)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if stats.Iterations == 0 {
		t.Error("expected at least one pass after moving the base")
	}
	if pose[0] != moved {
		t.Errorf("base not pinned: got %v, want %v", pose[0], moved)
	}
	if e := MaxRigidityError(pose, armLengths); e > rigidEps {
		t.Errorf("rigidity error %g", e)
	}
}

func TestSolveCollapsedPose(t *testing.T) {
	pose := make(Pose, len(armLengths)+1)

	stats, err := Solve(pose, r2.Point{}, r2.Point{X: 50, Y: -50}, armLengths)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if stats.Iterations > DefaultMaxIterations {
		t.Errorf("iteration budget exceeded: %d", stats.Iterations)
	}
	for i, p := range pose {
		if !finite(p) {
			t.Fatalf("joint %d not finite: %v", i, p)
		}
	}
	if e := MaxRigidityError(pose, armLengths); e > rigidEps {
		t.Errorf("rigidity error %g", e)
	}
}

func TestSolveSingleSegmentInsideReach(t *testing.T) {
	lengths := []float64{100}
	pose := Straight(r2.Point{}, lengths)

	stats, err := Solve(pose, r2.Point{}, r2.Point{X: 0, Y: 50}, lengths)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if stats.Converged {
		t.Error("a single rigid link cannot reach an interior point")
	}
	if stats.Iterations != DefaultMaxIterations {
		t.Errorf("expected full budget, got %d", stats.Iterations)
	}
	if math.Abs(stats.Error-50) > 1e-6 {
		t.Errorf("expected best error 50, got %f", stats.Error)
	}
}

func TestSolveNoSegments(t *testing.T) {
	base := r2.Point{X: 3, Y: 4}
	pose := Pose{{X: 1, Y: 1}}

	if _, err := Solve(pose, base, r2.Point{X: 9, Y: 9}, nil); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if pose[0] != base {
		t.Errorf("expected base joint, got %v", pose[0])
	}
}

func TestSolveContractViolation(t *testing.T) {
	tests := []struct {
		name    string
		pose    Pose
		base    r2.Point
		target  r2.Point
		lengths []float64
	}{
		{"too many points", make(Pose, 5), r2.Point{}, r2.Point{X: 10}, armLengths},
		{"too few points", make(Pose, 3), r2.Point{}, r2.Point{X: 10}, armLengths},
		{"empty points", Pose{}, r2.Point{}, r2.Point{X: 10}, nil},
		{"zero length", make(Pose, 3), r2.Point{}, r2.Point{X: 10}, []float64{10, 0}},
		{"negative length", make(Pose, 3), r2.Point{}, r2.Point{X: 10}, []float64{10, -5}},
		{"nan length", make(Pose, 2), r2.Point{}, r2.Point{X: 10}, []float64{math.NaN()}},
		{"nan target", make(Pose, 2), r2.Point{}, r2.Point{X: math.NaN()}, []float64{10}},
		{"inf base", make(Pose, 2), r2.Point{Y: math.Inf(1)}, r2.Point{}, []float64{10}},
		{"inf joint", Pose{{}, {X: math.Inf(-1)}}, r2.Point{}, r2.Point{}, []float64{10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range tt.pose {
				if tt.pose[i] == (r2.Point{}) {
					tt.pose[i] = r2.Point{X: float64(i), Y: 7}
				}
			}
			before := tt.pose.Clone()

			_, err := Solve(tt.pose, tt.base, tt.target, tt.lengths)
			if !errors.Is(err, ErrContractViolation) {
				t.Fatalf("expected ErrContractViolation, got %v", err)
			}
			var ce *ContractError
			if !errors.As(err, &ce) || ce.Op != "solve" {
				t.Errorf("expected *ContractError for solve, got %T", err)
			}
			if diff := cmp.Diff(before, tt.pose, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("pose mutated on contract violation:\n%s", diff)
			}
		})
	}
}

func TestSolverOptions(t *testing.T) {
	s := NewSolver(Options{MaxIterations: 1, Tolerance: 0})
	base := r2.Point{}
	target := r2.Point{X: 200, Y: 100}
	pose := Straight(base, armLengths)

	stats, err := s.Solve(pose, base, target, armLengths)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if stats.Iterations != 1 {
		t.Errorf("expected 1 iteration, got %d", stats.Iterations)
	}

	loose := NewSolver(Options{MaxIterations: 16, Tolerance: 1e6})
	pose = Straight(base, armLengths)
	before := pose.Clone()
	stats, _ = loose.Solve(pose, base, target, armLengths)
	if stats.Iterations != 0 || !stats.Converged {
		t.Errorf("expected immediate exit, got %+v", stats)
	}
	if diff := cmp.Diff(before, pose); diff != "" {
		t.Errorf("pose changed:\n%s", diff)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		valid bool
	}{
		{"defaults", DefaultOptions(), true},
		{"zero tolerance", Options{MaxIterations: 4}, true},
		{"zero iterations", Options{Tolerance: 0.5}, false},
		{"negative tolerance", Options{MaxIterations: 4, Tolerance: -1}, false},
		{"nan tolerance", Options{MaxIterations: 4, Tolerance: math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tt.valid)
			}
			if err != nil && !errors.Is(err, ErrOptionBounds) {
				t.Errorf("expected ErrOptionBounds, got %v", err)
			}
		})
	}
}

func TestNewSolverFallsBackToDefaults(t *testing.T) {
	s := NewSolver(Options{MaxIterations: -3, Tolerance: math.Inf(1)})
	if got := s.Options(); got != DefaultOptions() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func BenchmarkSolve(b *testing.B) {
	base := r2.Point{}
	targets := []r2.Point{{X: 50, Y: -50}, {X: 200, Y: 100}, {X: -100, Y: -200}}
	pose := Straight(base, armLengths)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Solve(pose, base, targets[i%len(targets)], armLengths)
	}
}
