package metrics

import (
	"math"

	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/session"
)

// EffectorError is the mean distance between end effector and target.
type EffectorError struct {
	name    string
	sum     float64
	max     float64
	samples int
}

func NewEffectorError() *EffectorError {
	return &EffectorError{name: "effector_error"}
}

func (e *EffectorError) Name() string { return e.name }

func (e *EffectorError) Observe(f session.Frame, t float64) {
	d := kinematics.Distance(f.Pose.Effector(), f.Target)
	e.sum += d
	e.max = math.Max(e.max, d)
	e.samples++
}

func (e *EffectorError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *EffectorError) Max() float64 { return e.max }

func (e *EffectorError) Reset() {
	e.sum = 0
	e.max = 0
	e.samples = 0
}

// Rigidity tracks the worst segment-length deviation seen.
type Rigidity struct {
	name    string
	lengths []float64
	worst   float64
}

func NewRigidity(lengths []float64) *Rigidity {
	return &Rigidity{
		name:    "max_rigidity_error",
		lengths: append([]float64(nil), lengths...),
	}
}

func (r *Rigidity) Name() string { return r.name }

func (r *Rigidity) Observe(f session.Frame, t float64) {
	r.worst = math.Max(r.worst, kinematics.MaxRigidityError(f.Pose, r.lengths))
}

func (r *Rigidity) Value() float64 { return r.worst }

func (r *Rigidity) Reset() { r.worst = 0 }
