package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/armik/internal/session"
	"go.uber.org/zap"
)

// Runner drives a session for a fixed number of frames, feeding it targets
// from a trajectory. A nil trajectory leaves targeting to session input.
type Runner struct {
	sess      *session.Session
	traj      Trajectory
	metrics   []Metric
	observers []Observer
}

func New(sess *session.Session, traj Trajectory) *Runner {
	return &Runner{
		sess:      sess,
		traj:      traj,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	log := logger(cfg)

	result := &Result{
		Lengths: r.sess.Lengths(),
		Frames:  make([]session.Frame, 0, cfg.Frames),
		Times:   make([]float64, 0, cfg.Frames),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	err := r.loop(ctx, cfg, func(f session.Frame, t float64) bool {
		result.Frames = append(result.Frames, f)
		result.Times = append(result.Times, t)
		return true
	})

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	log.Info("run finished",
		zap.Int("frames", len(result.Frames)),
		zap.Any("metrics", result.Metrics),
		zap.Error(err),
	)
	return result, err
}

// RunWithCallback streams frames until the budget runs out or callback
// returns false.
func (r *Runner) RunWithCallback(ctx context.Context, cfg Config, callback func(session.Frame, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return r.loop(ctx, cfg, callback)
}

func (r *Runner) loop(ctx context.Context, cfg Config, emit func(session.Frame, float64) bool) error {
	dt := cfg.Dt()
	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * dt
		if r.traj != nil {
			r.sess.SetTarget(r.traj.Target(t))
		}

		f, err := r.sess.Frame()
		if err != nil {
			return &FrameError{Frame: i, Time: t, Wrapped: err}
		}

		for _, m := range r.metrics {
			m.Observe(f, t)
		}
		for _, obs := range r.observers {
			obs.OnFrame(f, t)
		}

		if !emit(f, t) {
			return nil
		}
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", cfg.FPS)
	}
	return nil
}

func logger(cfg Config) *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}
	return cfg.Logger
}
