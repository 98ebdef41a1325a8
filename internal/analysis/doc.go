// Package analysis post-processes double pendulum trajectories.
//
//   - [TracePhasePortrait] and [PortraitFromStates]: 2D projections of the
//     [A1, A2, V1, V2] state vector
//   - [PoincareSection]: points recorded when one variable crosses a level
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a series
//   - [Sweep]: final Lyapunov estimate and energy drift across initial angles
//
// # Chaos Detection
//
// A sweep over the first angle shows where the motion turns chaotic:
//
//	points, err := analysis.Sweep(ctx, cfg)
//	summary := analysis.Summarize(points)
//	fmt.Println(summary.Chaotic, "of", len(points), "initial angles look chaotic")
package analysis
