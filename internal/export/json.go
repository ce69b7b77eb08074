package export

import (
	"encoding/json"
	"os"

	"github.com/san-kum/armik/internal/session"
)

type FrameData struct {
	Index      int          `json:"index"`
	Time       float64      `json:"time"`
	Target     [2]float64   `json:"target"`
	Joints     [][2]float64 `json:"joints"`
	Iterations int          `json:"iterations"`
	Reachable  bool         `json:"reachable"`
	Error      float64      `json:"error"`
}

type ExportData struct {
	Name          string             `json:"name"`
	Lengths       []float64          `json:"lengths"`
	MaxIterations int                `json:"max_iterations"`
	Tolerance     float64            `json:"tolerance"`
	Frames        []FrameData        `json:"frames"`
	Metrics       map[string]float64 `json:"metrics"`
}

// NewExportData flattens frames into the JSON layout.
func NewExportData(name string, lengths []float64, maxIterations int, tolerance float64, frames []session.Frame, times []float64, metrics map[string]float64) ExportData {
	data := ExportData{
		Name:          name,
		Lengths:       lengths,
		MaxIterations: maxIterations,
		Tolerance:     tolerance,
		Frames:        make([]FrameData, len(frames)),
		Metrics:       metrics,
	}
	for i, f := range frames {
		fd := FrameData{
			Index:      f.Index,
			Target:     [2]float64{f.Target.X, f.Target.Y},
			Joints:     make([][2]float64, len(f.Pose)),
			Iterations: f.Stats.Iterations,
			Reachable:  f.Stats.Reachable,
			Error:      f.Stats.Error,
		}
		if i < len(times) {
			fd.Time = times[i]
		}
		for j, p := range f.Pose {
			fd.Joints[j] = [2]float64{p.X, p.Y}
		}
		data.Frames[i] = fd
	}
	return data
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
