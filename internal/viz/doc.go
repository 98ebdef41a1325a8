// Package viz provides the terminal live view of a double pendulum.
//
// [Model] is a Bubble Tea model that steps a pendulum on every frame and
// draws it on a braille [Canvas], next to an energy chart and the running
// Lyapunov estimate.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the starting angles
//	Tab   - Cycle integrator
//	+/-   - Steps per frame
//	[]    - Replay recent frames
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
