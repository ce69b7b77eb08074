// Package scenario replays scripted input through a session.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/san-kum/armik/internal/config"
	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/session"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted input sequence
type Scenario struct {
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Lengths     []float64             `yaml:"lengths"`
	Viewport    config.ViewportConfig `yaml:"viewport"`
	Solver      config.SolverConfig   `yaml:"solver"`
	Frames      int                   `yaml:"frames"`
	Events      []Step                `yaml:"events"`
}

// Step is a single input event, applied before frame Frame is solved.
type Step struct {
	Frame int     `yaml:"frame"`
	Type  string  `yaml:"type"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	W     float64 `yaml:"w"`
	H     float64 `yaml:"h"`
}

// Event converts the step into a session event.
func (s Step) Event() (session.Event, error) {
	kind, err := session.ParseEventKind(s.Type)
	if err != nil {
		return session.Event{}, err
	}
	return session.Event{
		Kind:   kind,
		Point:  r2.Point{X: s.X, Y: s.Y},
		Width:  s.W,
		Height: s.H,
	}, nil
}

type Result struct {
	Name   string
	Frames []session.Frame
}

// Load loads a scenario from a YAML file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) applyDefaults() {
	if len(sc.Lengths) == 0 {
		sc.Lengths = append([]float64(nil), config.DefaultLengths...)
	}
	if sc.Viewport.Width == 0 && sc.Viewport.Height == 0 {
		sc.Viewport = config.ViewportConfig{Width: config.DefaultWidth, Height: config.DefaultHeight}
	}
	if sc.Solver.MaxIterations == 0 && sc.Solver.Tolerance == 0 {
		sc.Solver = config.SolverConfig{
			MaxIterations: kinematics.DefaultMaxIterations,
			Tolerance:     kinematics.DefaultTolerance,
		}
	}
}

// Validate reports every malformed step at once.
func (sc *Scenario) Validate() error {
	var err error
	if sc.Frames < 0 {
		err = multierr.Append(err, fmt.Errorf("frames must be non-negative, got %d", sc.Frames))
	}
	for i, st := range sc.Events {
		if st.Frame < 0 {
			err = multierr.Append(err, fmt.Errorf("event %d: frame must be non-negative, got %d", i, st.Frame))
		}
		if _, perr := session.ParseEventKind(st.Type); perr != nil {
			err = multierr.Append(err, fmt.Errorf("event %d: %w", i, perr))
		}
	}
	return err
}

// Length is the number of frames Run will solve: Frames, extended to
// cover the last event.
func (sc *Scenario) Length() int {
	n := sc.Frames
	for _, st := range sc.Events {
		if st.Frame+1 > n {
			n = st.Frame + 1
		}
	}
	return n
}

// Run replays the events through a fresh session, solving one frame per
// index. Events sharing a frame are applied in file order.
func Run(ctx context.Context, sc *Scenario, log *zap.Logger) (*Result, error) {
	if sc == nil {
		return nil, errors.New("scenario: nil scenario")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	sess, err := session.New(sc.Lengths, session.Config{
		Width:  sc.Viewport.Width,
		Height: sc.Viewport.Height,
		Solver: kinematics.Options{
			MaxIterations: sc.Solver.MaxIterations,
			Tolerance:     sc.Solver.Tolerance,
		},
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	steps := append([]Step(nil), sc.Events...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Frame < steps[j].Frame })

	n := sc.Length()
	res := &Result{Name: sc.Name, Frames: make([]session.Frame, 0, n)}
	log.Info("scenario started", zap.String("name", sc.Name), zap.Int("frames", n), zap.Int("events", len(steps)))

	next := 0
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		for next < len(steps) && steps[next].Frame == i {
			ev, err := steps[next].Event()
			if err != nil {
				return res, err
			}
			log.Debug("event", zap.Int("frame", i), zap.Stringer("kind", ev.Kind))
			sess.Push(ev)
			next++
		}

		f, err := sess.Frame()
		if err != nil {
			return res, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		res.Frames = append(res.Frames, f)
	}

	log.Info("scenario finished", zap.String("name", sc.Name), zap.Int("frames", len(res.Frames)))
	return res, nil
}
