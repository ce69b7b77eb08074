package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/session"
	"golang.org/x/sync/errgroup"
)

// SweepCase is one solver configuration run by a Sweep.
type SweepCase struct {
	Name    string
	Options kinematics.Options
}

// Sweep replays the same trajectory against several solver configurations
// in parallel. Every case gets its own session, so no pose is shared.
type Sweep struct {
	lengths    []float64
	sessCfg    session.Config
	traj       Trajectory
	newMetrics func(lengths []float64) []Metric
}

func NewSweep(lengths []float64, sessCfg session.Config, traj Trajectory, newMetrics func([]float64) []Metric) *Sweep {
	return &Sweep{lengths: lengths, sessCfg: sessCfg, traj: traj, newMetrics: newMetrics}
}

// Run returns one result per case, in case order. The first failure
// cancels the remaining cases.
func (s *Sweep) Run(ctx context.Context, cases []SweepCase, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range cases {
		g.Go(func() error {
			sc := s.sessCfg
			sc.Solver = c.Options
			sess, err := session.New(s.lengths, sc)
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
			}

			r := New(sess, s.traj)
			if s.newMetrics != nil {
				for _, m := range s.newMetrics(s.lengths) {
					r.AddMetric(m)
				}
			}

			res, err := r.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
