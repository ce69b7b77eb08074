// Package kinematics solves planar inverse kinematics for open chains of
// rigid links using FABRIK (Forward And Backward Reaching Inverse
// Kinematics).
//
// The package is built around a few small pieces:
//
//   - [Pose]: ordered joint positions P0..PN
//   - [Solver]: one FABRIK solve per call, bounded by [Options]
//   - [Chain]: base, segment lengths and pose bundled as one value
//
// # Example
//
//	lengths := []float64{150, 120, 90}
//	pose := kinematics.Straight(base, lengths)
//	solver := kinematics.NewSolver(kinematics.DefaultOptions())
//	stats, err := solver.Solve(pose, base, target, lengths)
//
// The solver mutates the pose in place. Callers warm-start each frame with
// the previous frame's pose.
//
// # Thread Safety
//
// A Solver holds no mutable state and can be shared. A Pose must not be
// solved from two goroutines at once.
package kinematics
