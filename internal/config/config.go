package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/armik/internal/kinematics"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth      = 720.0
	DefaultHeight     = 468.0
	DefaultFrames     = 600
	DefaultFPS        = 60
	DefaultTrajectory = "circle"
	DefaultRadius     = 120.0
	DefaultSpeed      = 0.5
)

// DefaultLengths is the stock three-link arm.
var DefaultLengths = []float64{150, 120, 90}

type Config struct {
	Name     string         `yaml:"name"`
	Chain    ChainConfig    `yaml:"chain"`
	Solver   SolverConfig   `yaml:"solver"`
	Viewport ViewportConfig `yaml:"viewport"`
	Run      RunConfig      `yaml:"run"`
}

type ChainConfig struct {
	Lengths []float64 `yaml:"lengths"`
}

type SolverConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// ViewportConfig sizes the logical canvas. The base sits at
// (width/2, 0.75*height).
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type RunConfig struct {
	Frames     int     `yaml:"frames"`
	FPS        int     `yaml:"fps"`
	Trajectory string  `yaml:"trajectory"`
	Radius     float64 `yaml:"radius"`
	Speed      float64 `yaml:"speed"` // revolutions per second
	TargetX    float64 `yaml:"target_x"`
	TargetY    float64 `yaml:"target_y"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:  "arm",
		Chain: ChainConfig{Lengths: append([]float64(nil), DefaultLengths...)},
		Solver: SolverConfig{
			MaxIterations: kinematics.DefaultMaxIterations,
			Tolerance:     kinematics.DefaultTolerance,
		},
		Viewport: ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		Run: RunConfig{
			Frames:     DefaultFrames,
			FPS:        DefaultFPS,
			Trajectory: DefaultTrajectory,
			Radius:     DefaultRadius,
			Speed:      DefaultSpeed,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if len(c.Chain.Lengths) == 0 {
		err = multierr.Append(err, fmt.Errorf("chain: at least one segment length is required"))
	}
	for i, l := range c.Chain.Lengths {
		if !(l > 0) || math.IsInf(l, 0) {
			err = multierr.Append(err, fmt.Errorf("chain: length %d must be finite and positive, got %v", i, l))
		}
	}
	err = multierr.Append(err, c.SolverOptions().Validate())
	if !(c.Viewport.Width > 0) || !(c.Viewport.Height > 0) {
		err = multierr.Append(err, fmt.Errorf("viewport: width and height must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Run.Frames <= 0 {
		err = multierr.Append(err, fmt.Errorf("run: frames must be positive, got %d", c.Run.Frames))
	}
	if c.Run.FPS <= 0 {
		err = multierr.Append(err, fmt.Errorf("run: fps must be positive, got %d", c.Run.FPS))
	}
	return err
}

func (c *Config) SolverOptions() kinematics.Options {
	return kinematics.Options{
		MaxIterations: c.Solver.MaxIterations,
		Tolerance:     c.Solver.Tolerance,
	}
}

// Clone returns a deep copy so presets stay untouched.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Chain.Lengths = append([]float64(nil), c.Chain.Lengths...)
	return &cp
}
