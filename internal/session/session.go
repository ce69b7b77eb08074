// Package session holds the state of one interactive solve loop: viewport,
// base, target, drag flag and the pose carried from frame to frame.
//
// Input is decoupled from solving. Any goroutine may push events; they are
// applied in order at the top of the next Frame call, which then performs
// exactly one solve.
package session

import (
	"fmt"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/san-kum/armik/internal/kinematics"
	"go.uber.org/zap"
)

const (
	baseHeightRatio   = 0.75
	targetHeightRatio = 0.3
	targetOffsetX     = 40.0
)

type Config struct {
	Width, Height float64
	Solver        kinematics.Options
	Logger        *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		Width:  720,
		Height: 468,
		Solver: kinematics.DefaultOptions(),
	}
}

// Frame is a snapshot taken after one solve. Pose is a private copy.
type Frame struct {
	Index    int
	Base     r2.Point
	Target   r2.Point
	Pose     kinematics.Pose
	Stats    kinematics.Stats
	Dragging bool
}

type Session struct {
	mu       sync.Mutex
	pending  []Event
	solver   *kinematics.Solver
	chain    *kinematics.Chain
	target   r2.Point
	dragging bool
	width    float64
	height   float64
	frame    int
	log      *zap.Logger
}

// New builds a session sized to cfg's viewport with the pose extended
// straight from the base.
func New(lengths []float64, cfg Config) (*Session, error) {
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	if !(cfg.Width > 0) || !(cfg.Height > 0) {
		return nil, fmt.Errorf("session: viewport must be positive, got %vx%v", cfg.Width, cfg.Height)
	}
	chain, err := kinematics.NewChain(r2.Point{}, lengths)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		solver: kinematics.NewSolver(cfg.Solver),
		chain:  chain,
		log:    log,
	}
	s.resize(cfg.Width, cfg.Height)
	return s, nil
}

// Push queues an event for the next frame. Safe for concurrent use.
func (s *Session) Push(ev Event) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()
}

func (s *Session) PointerDown(p r2.Point) { s.Push(Event{Kind: PointerDown, Point: p}) }
func (s *Session) PointerMove(p r2.Point) { s.Push(Event{Kind: PointerMove, Point: p}) }
func (s *Session) PointerUp()             { s.Push(Event{Kind: PointerUp}) }
func (s *Session) SetTarget(p r2.Point)   { s.Push(Event{Kind: SetTarget, Point: p}) }

func (s *Session) Resize(w, h float64) {
	s.Push(Event{Kind: Resize, Width: w, Height: h})
}

// Frame drains pending input, solves once, and returns the result.
func (s *Session) Frame() (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.pending {
		s.apply(ev)
	}
	s.pending = s.pending[:0]

	stats, err := s.chain.Solve(s.solver, s.target)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: %w", s.frame, err)
	}
	f := s.snapshot(stats)
	s.frame++

	s.log.Debug("frame solved",
		zap.Int("frame", f.Index),
		zap.Int("iterations", stats.Iterations),
		zap.Bool("reachable", stats.Reachable),
		zap.Float64("error", stats.Error),
	)
	return f, nil
}

// Snapshot returns the current state without solving or draining input.
func (s *Session) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(kinematics.Stats{})
}

func (s *Session) Lengths() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.chain.Lengths...)
}

func (s *Session) Viewport() (w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Session) Options() kinematics.Options { return s.solver.Options() }

func (s *Session) snapshot(stats kinematics.Stats) Frame {
	return Frame{
		Index:    s.frame,
		Base:     s.chain.Base,
		Target:   s.target,
		Pose:     s.chain.Pose.Clone(),
		Stats:    stats,
		Dragging: s.dragging,
	}
}

func (s *Session) apply(ev Event) {
	switch ev.Kind {
	case PointerDown:
		s.dragging = true
		s.target = ev.Point
	case PointerMove:
		if s.dragging {
			s.target = ev.Point
		}
	case PointerUp:
		s.dragging = false
	case SetTarget:
		s.target = ev.Point
	case Resize:
		if ev.Width > 0 && ev.Height > 0 {
			s.resize(ev.Width, ev.Height)
		} else {
			s.log.Warn("ignoring resize", zap.Float64("width", ev.Width), zap.Float64("height", ev.Height))
		}
	}
}

// resize recentres the base, re-extends the pose and, unless the user is
// dragging, parks the target above the base.
func (s *Session) resize(w, h float64) {
	s.width, s.height = w, h
	base := r2.Point{X: w / 2, Y: h * baseHeightRatio}
	if !s.dragging {
		s.target = r2.Point{X: w/2 + targetOffsetX, Y: h * targetHeightRatio}
	}
	s.chain.Reset(base)
}
