package sim

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Trajectory yields the target at time t seconds.
type Trajectory interface {
	Target(t float64) r2.Point
}

type Static struct {
	Point r2.Point
}

func (s Static) Target(float64) r2.Point { return s.Point }

// Circle orbits Center at Speed revolutions per second.
type Circle struct {
	Center r2.Point
	Radius float64
	Speed  float64
}

func (c Circle) Target(t float64) r2.Point {
	a := 2 * math.Pi * c.Speed * t
	return r2.Point{X: c.Center.X + c.Radius*math.Cos(a), Y: c.Center.Y + c.Radius*math.Sin(a)}
}

// Lissajous traces a 3:2 figure inside a box of half-size Radius.
type Lissajous struct {
	Center r2.Point
	Radius float64
	Speed  float64
}

func (l Lissajous) Target(t float64) r2.Point {
	a := 2 * math.Pi * l.Speed * t
	return r2.Point{
		X: l.Center.X + l.Radius*math.Sin(3*a+math.Pi/2),
		Y: l.Center.Y + l.Radius*math.Sin(2*a),
	}
}

// Line sweeps back and forth between From and To, one round trip per
// 1/Speed seconds.
type Line struct {
	From, To r2.Point
	Speed    float64
}

func (l Line) Target(t float64) r2.Point {
	phase := math.Mod(l.Speed*t, 1)
	if phase < 0 {
		phase += 1
	}
	u := 1 - math.Abs(2*phase-1)
	return l.From.Add(l.To.Sub(l.From).Mul(u))
}

// NewTrajectory builds a named trajectory around center. For "line" the
// sweep runs horizontally through center, radius to either side, and
// "static" parks the target at center offset by (0, -radius).
func NewTrajectory(name string, center r2.Point, radius, speed float64) (Trajectory, error) {
	switch name {
	case "static":
		return Static{Point: r2.Point{X: center.X, Y: center.Y - radius}}, nil
	case "circle":
		return Circle{Center: center, Radius: radius, Speed: speed}, nil
	case "lissajous":
		return Lissajous{Center: center, Radius: radius, Speed: speed}, nil
	case "line":
		return Line{
			From:  r2.Point{X: center.X - radius, Y: center.Y - radius/2},
			To:    r2.Point{X: center.X + radius, Y: center.Y - radius/2},
			Speed: speed,
		}, nil
	default:
		return nil, fmt.Errorf("unknown trajectory: %s (available: static, circle, lissajous, line)", name)
	}
}
