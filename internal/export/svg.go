package export

import (
	"fmt"
	"strings"

	"github.com/Trawczynski/double-pendulum/internal/sim"
)

// TrajectorySVG draws the path of the second bob and the final pose of both
// rods. The pivot sits at the centre and the view fits both rods at full
// extension.
func TrajectorySVG(samples []sim.Sample, r1, r2 float64, size int) string {
	if len(samples) == 0 || size <= 0 {
		return ""
	}

	reach := (r1 + r2) * 1.1
	if reach <= 0 {
		reach = 1
	}
	half := float64(size) / 2
	scale := half / reach
	px := func(x float64) float64 { return half + x*scale }
	py := func(y float64) float64 { return half + y*scale }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	started := false
	for _, s := range samples {
		if !finite(s.X2, s.Y2) {
			continue
		}
		if !started {
			sb.WriteString(`<path fill="none" stroke="#e04f2f" stroke-opacity="0.6" stroke-width="1" d="M`)
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(s.X2), py(s.Y2)))
			started = true
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(s.X2), py(s.Y2)))
		}
	}
	if started {
		sb.WriteString("\"/>\n")
	}

	last := samples[len(samples)-1]
	if finite(last.X1, last.Y1, last.X2, last.Y2) {
		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="#d0d0d0" stroke-width="2" points="%.1f,%.1f %.1f,%.1f %.1f,%.1f"/>
`, px(0), py(0), px(last.X1), py(last.Y1), px(last.X2), py(last.Y2)))
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="5" fill="#007acc"/>
<circle cx="%.1f" cy="%.1f" r="5" fill="#e04f2f"/>
`, px(last.X1), py(last.Y1), px(last.X2), py(last.Y2)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
