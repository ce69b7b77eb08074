package config

import "sort"

var Presets = map[string]*Config{
	"arm": DefaultConfig(),
	"snake": withChain(DefaultConfig(), "snake", []float64{40, 40, 40, 40, 40, 40, 40, 40}, RunConfig{
		Frames: 900, FPS: 60, Trajectory: "lissajous", Radius: 200, Speed: 0.25,
	}),
	"crane": withChain(DefaultConfig(), "crane", []float64{200, 60, 30}, RunConfig{
		Frames: 600, FPS: 60, Trajectory: "line", Radius: 250, Speed: 0.2,
	}),
	"finger": withChain(DefaultConfig(), "finger", []float64{45, 30, 20}, RunConfig{
		Frames: 300, FPS: 30, Trajectory: "circle", Radius: 60, Speed: 1.0,
	}),
	"overreach": withChain(DefaultConfig(), "overreach", []float64{150, 120, 90}, RunConfig{
		Frames: 300, FPS: 60, Trajectory: "circle", Radius: 420, Speed: 0.5,
	}),
}

func withChain(c *Config, name string, lengths []float64, run RunConfig) *Config {
	c.Name = name
	c.Chain.Lengths = lengths
	c.Run = run
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
