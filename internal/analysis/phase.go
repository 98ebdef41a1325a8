package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

// Indices into the [A1, A2, V1, V2] state vector.
const (
	IndexA1 = iota
	IndexA2
	IndexV1
	IndexV2
)

var indexNames = []string{"a1", "a2", "v1", "v2"}

// IndexByName maps "a1", "a2", "v1" or "v2" to a state index.
func IndexByName(name string) (int, bool) {
	for i, n := range indexNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

type Point struct {
	X, Y float64
}

// PhasePortrait holds data for a 2D phase space plot
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

// TracePhasePortrait steps p in place and records the chosen pair of
// variables after every step.
func TracePhasePortrait(p *pendulum.Pendulum, method integrators.Method, xIdx, yIdx, steps int) *PhasePortrait {
	if !validIndex(xIdx) || !validIndex(yIdx) {
		return nil
	}

	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, steps),
	}

	for i := 0; i < steps; i++ {
		p.Step(method)
		x := p.Vector()
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}

	return portrait
}

// PortraitFromStates projects recorded state vectors.
func PortraitFromStates(states []dynamo.State, xIdx, yIdx int) *PhasePortrait {
	if !validIndex(xIdx) || !validIndex(yIdx) {
		return nil
	}

	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(states)),
	}
	for _, x := range states {
		if len(x) <= xIdx || len(x) <= yIdx {
			continue
		}
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait
}

// Bounds returns the extent of the finite points. ok is false when there
// are none.
func (pp *PhasePortrait) Bounds() (minX, maxX, minY, maxY float64, ok bool) {
	xs := make([]float64, 0, len(pp.Points))
	ys := make([]float64, 0, len(pp.Points))
	for _, p := range pp.Points {
		if isFinite(p.X) && isFinite(p.Y) {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	if len(xs) == 0 {
		return 0, 0, 0, 0, false
	}
	return floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys), true
}

// ASCII renders the portrait on a width x height character grid, with axes
// drawn where they cross the visible area.
func (pp *PhasePortrait) ASCII(width, height int) string {
	if pp == nil || len(pp.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX, minY, maxY, ok := pp.Bounds()
	if !ok {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range pp.Points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			continue
		}
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records (xIdx, yIdx) whenever the variable at crossIdx
// passes upward through threshold between consecutive states.
func PoincareSection(states []dynamo.State, crossIdx int, threshold float64, xIdx, yIdx int) *PhasePortrait {
	if !validIndex(crossIdx) || !validIndex(xIdx) || !validIndex(yIdx) {
		return nil
	}

	section := &PhasePortrait{XIndex: xIdx, YIndex: yIdx}
	for i := 1; i < len(states); i++ {
		prev, curr := states[i-1], states[i]
		if len(prev) < 4 || len(curr) < 4 {
			continue
		}
		if prev[crossIdx] < threshold && curr[crossIdx] >= threshold {
			section.Points = append(section.Points, Point{X: curr[xIdx], Y: curr[yIdx]})
		}
	}
	return section
}

func validIndex(i int) bool { return i >= 0 && i < len(indexNames) }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
