package metrics

import (
	"github.com/san-kum/armik/internal/session"
)

type Iterations struct {
	name    string
	total   int
	samples int
}

func NewIterations() *Iterations {
	return &Iterations{name: "mean_iterations"}
}

func (it *Iterations) Name() string { return it.name }

func (it *Iterations) Observe(f session.Frame, t float64) {
	it.total += f.Stats.Iterations
	it.samples++
}

func (it *Iterations) Value() float64 {
	if it.samples == 0 {
		return 0
	}
	return float64(it.total) / float64(it.samples)
}

func (it *Iterations) Reset() {
	it.total = 0
	it.samples = 0
}

// Convergence is the fraction of reachable frames that ended within
// tolerance. Unreachable frames are not counted.
type Convergence struct {
	name      string
	converged int
	reachable int
}

func NewConvergence() *Convergence {
	return &Convergence{name: "convergence_rate"}
}

func (c *Convergence) Name() string { return c.name }

func (c *Convergence) Observe(f session.Frame, t float64) {
	if !f.Stats.Reachable {
		return
	}
	c.reachable++
	if f.Stats.Converged {
		c.converged++
	}
}

func (c *Convergence) Value() float64 {
	if c.reachable == 0 {
		return 1.0
	}
	return float64(c.converged) / float64(c.reachable)
}

func (c *Convergence) Reset() {
	c.converged = 0
	c.reachable = 0
}

// Reach is the fraction of frames whose target was reachable.
type Reach struct {
	name      string
	reachable int
	samples   int
}

func NewReach() *Reach {
	return &Reach{name: "reachable_fraction"}
}

func (r *Reach) Name() string { return r.name }

func (r *Reach) Observe(f session.Frame, t float64) {
	r.samples++
	if f.Stats.Reachable {
		r.reachable++
	}
}

func (r *Reach) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.reachable) / float64(r.samples)
}

func (r *Reach) Reset() {
	r.reachable = 0
	r.samples = 0
}
