package kinematics

import (
	"math"

	"github.com/golang/geo/r2"
)

// degenerate is the length below which a vector has no usable direction.
const degenerate = 1e-12

// fallback is the direction used when two points coincide.
var fallback = r2.Point{X: 1, Y: 0}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r2.Point) float64 {
	return b.Sub(a).Norm()
}

// Direction returns the unit vector pointing from -> to. Coincident points
// yield the fixed unit vector (1, 0).
func Direction(from, to r2.Point) r2.Point {
	v := to.Sub(from)
	n := v.Norm()
	if n < degenerate {
		return fallback
	}
	return v.Mul(1 / n)
}

// reach places a point at distance length from anchor, along the ray from
// anchor toward the point's previous position.
func reach(anchor, toward r2.Point, length float64) r2.Point {
	return anchor.Add(Direction(anchor, toward).Mul(length))
}

// TotalLength sums the segment lengths.
func TotalLength(lengths []float64) float64 {
	total := 0.0
	for _, l := range lengths {
		total += l
	}
	return total
}

// Reachable reports whether target lies within the chain's full extension.
func Reachable(base, target r2.Point, lengths []float64) bool {
	return Distance(base, target) <= TotalLength(lengths)
}

// MaxRigidityError returns the largest deviation of a segment from its
// nominal length. Mismatched inputs report +Inf.
func MaxRigidityError(pose Pose, lengths []float64) float64 {
	if len(pose) != len(lengths)+1 {
		return math.Inf(1)
	}
	worst := 0.0
	for i, l := range lengths {
		worst = math.Max(worst, math.Abs(Distance(pose[i], pose[i+1])-l))
	}
	return worst
}

// Collinear reports whether every pair of consecutive segments is parallel
// and pointing the same way, within eps on the cross product of their unit
// directions.
func Collinear(pose Pose, eps float64) bool {
	for i := 0; i+2 < len(pose); i++ {
		a := Direction(pose[i], pose[i+1])
		b := Direction(pose[i+1], pose[i+2])
		if math.Abs(a.Cross(b)) > eps || a.Dot(b) < 0 {
			return false
		}
	}
	return true
}

func finite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
