// Package metrics aggregates per-frame solver quality over a run.
package metrics

import "github.com/san-kum/armik/internal/sim"

// Default returns the metric set used by the CLI.
func Default(lengths []float64) []sim.Metric {
	return []sim.Metric{
		NewEffectorError(),
		NewRigidity(lengths),
		NewIterations(),
		NewConvergence(),
		NewReach(),
	}
}
