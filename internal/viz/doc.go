// Package viz draws chain poses in the terminal.
//
// The package provides:
//
//   - [Canvas]: braille-based pixel canvas, 2x4 dots per cell
//   - [Model]: Bubble Tea live view; the mouse drags the target
//   - [Renderer]: sim.Observer that prints frames to a writer
//
// # Key Bindings
//
//	Mouse  - Press and drag to move the target
//	Arrows - Nudge the target
//	Space  - Pause/Resume solving
//	R      - Re-extend the chain
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
