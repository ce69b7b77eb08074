package sim

import (
	"fmt"

	"github.com/san-kum/armik/internal/session"
	"go.uber.org/zap"
)

type Metric interface {
	Name() string
	Observe(f session.Frame, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f session.Frame, t float64)
}

type Config struct {
	Frames int
	FPS    int
	Logger *zap.Logger
}

func DefaultConfig() Config {
	return Config{Frames: 600, FPS: 60}
}

// Dt is the time between frames in seconds.
func (c Config) Dt() float64 { return 1 / float64(c.FPS) }

type Result struct {
	Lengths []float64
	Frames  []session.Frame
	Times   []float64
	Metrics map[string]float64
}

// FrameError wraps a failure with the frame it happened on.
type FrameError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
