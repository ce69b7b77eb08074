package kinematics

import "github.com/golang/geo/r2"

// Pose is an ordered sequence of joint positions; P0 is the base joint and
// the last element is the end effector.
type Pose []r2.Point

// Straight returns a pose fully extended along +x from base.
func Straight(base r2.Point, lengths []float64) Pose {
	p := make(Pose, len(lengths)+1)
	p[0] = base
	for i, l := range lengths {
		p[i+1] = r2.Point{X: p[i].X + l, Y: p[i].Y}
	}
	return p
}

func (p Pose) Clone() Pose {
	c := make(Pose, len(p))
	copy(c, p)
	return c
}

// Effector returns the last joint. An empty pose yields the origin.
func (p Pose) Effector() r2.Point {
	if len(p) == 0 {
		return r2.Point{}
	}
	return p[len(p)-1]
}

// Flatten returns x0, y0, x1, y1, ... for storage and export.
func (p Pose) Flatten() []float64 {
	out := make([]float64, 0, len(p)*2)
	for _, pt := range p {
		out = append(out, pt.X, pt.Y)
	}
	return out
}

// Unflatten is the inverse of Flatten. A trailing odd value is ignored.
func Unflatten(vals []float64) Pose {
	p := make(Pose, 0, len(vals)/2)
	for i := 0; i+1 < len(vals); i += 2 {
		p = append(p, r2.Point{X: vals[i], Y: vals[i+1]})
	}
	return p
}
