package kinematics

import "github.com/golang/geo/r2"

// Chain is a fixed-base open chain: the base anchor, immutable segment
// lengths and the pose the solver warm-starts from.
type Chain struct {
	Base    r2.Point
	Lengths []float64
	Pose    Pose
}

// NewChain builds a chain extended straight along +x from base.
func NewChain(base r2.Point, lengths []float64) (*Chain, error) {
	ls := make([]float64, len(lengths))
	copy(ls, lengths)
	pose := Straight(base, ls)
	if err := checkContract("new chain", pose, base, base, ls); err != nil {
		return nil, err
	}
	return &Chain{Base: base, Lengths: ls, Pose: pose}, nil
}

// Reset moves the base and re-extends the pose straight from it.
func (c *Chain) Reset(base r2.Point) {
	c.Base = base
	c.Pose = Straight(base, c.Lengths)
}

func (c *Chain) Solve(s *Solver, target r2.Point) (Stats, error) {
	return s.Solve(c.Pose, c.Base, target, c.Lengths)
}

func (c *Chain) Segments() int             { return len(c.Lengths) }
func (c *Chain) TotalLength() float64      { return TotalLength(c.Lengths) }
func (c *Chain) Effector() r2.Point        { return c.Pose.Effector() }
func (c *Chain) Reachable(t r2.Point) bool { return Reachable(c.Base, t, c.Lengths) }

func (c *Chain) Clone() *Chain {
	ls := make([]float64, len(c.Lengths))
	copy(ls, c.Lengths)
	return &Chain{Base: c.Base, Lengths: ls, Pose: c.Pose.Clone()}
}
