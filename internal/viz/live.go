package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/metrics"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

const (
	defaultWidth    = 60
	defaultHeight   = 24
	historyCapacity = 600
	trailCapacity   = 200
	maxStepsPerTick = 64
)

// Snapshot is a past frame kept for replay.
type Snapshot struct {
	State    dynamo.State
	Step     int
	Energy   float64
	Lyapunov float64
}

type TickMsg time.Time

type Options struct {
	Width, Height int
	// StepsPerTick is how many integration steps run per frame.
	StepsPerTick int
	FPS          int
	Theme        string
}

func DefaultOptions() Options {
	return Options{Width: defaultWidth, Height: defaultHeight, StepsPerTick: 1, FPS: 60}
}

type point struct{ x, y int }

// Model is the bubbletea model of the live view. It owns the pendulum and
// steps it on every tick while running.
type Model struct {
	p      *pendulum.Pendulum
	method integrators.Method
	opts   Options

	initParams pendulum.Params
	initA1     float64
	initA2     float64
	e0         float64

	step     int
	running  bool
	showHelp bool
	theme    int

	canvas   *Canvas
	trail    []point
	energy   []float64
	lyapunov []float64
	history  []Snapshot
	playHead int
}

func NewModel(p *pendulum.Pendulum, method integrators.Method, opts Options) Model {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.StepsPerTick <= 0 {
		opts.StepsPerTick = def.StepsPerTick
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}

	return Model{
		p:          p,
		method:     method,
		opts:       opts,
		initParams: p.Params,
		initA1:     p.A1,
		initA2:     p.A2,
		e0:         p.TotalEnergy(),
		running:    true,
		theme:      ThemeIndex(opts.Theme),
		canvas:     NewCanvas(opts.Width, opts.Height),
		trail:      make([]point, 0, trailCapacity),
		energy:     make([]float64, 0, historyCapacity),
		lyapunov:   make([]float64, 0, historyCapacity),
		history:    make([]Snapshot, 0, historyCapacity),
		playHead:   -1,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleMethod()
		case "+", "=":
			m.opts.StepsPerTick = min(m.opts.StepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.opts.StepsPerTick = max(m.opts.StepsPerTick/2, 1)
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.opts.StepsPerTick; i++ {
					m.advance()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	m.p.Step(m.method)
	m.step++

	energy := m.p.TotalEnergy()
	lya, _ := m.p.Lyapunov()

	m.energy = appendCapped(m.energy, energy, historyCapacity)
	m.lyapunov = appendCapped(m.lyapunov, lya, historyCapacity)

	m.history = append(m.history, Snapshot{State: m.p.Vector(), Step: m.step, Energy: energy, Lyapunov: lya})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}

	vp := NewViewport(m.canvas, m.p.R1+m.p.R2)
	if x, y, ok := vp.Map(m.p.X2(), m.p.Y2()); ok {
		m.trail = append(m.trail, point{x, y})
		if len(m.trail) > trailCapacity {
			m.trail = m.trail[1:]
		}
	}
}

func appendCapped(s []float64, v float64, capacity int) []float64 {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// reset puts the pendulum back to its starting angles at rest. Gravity is
// kept and the chaos estimate starts over.
func (m *Model) reset() {
	ip := m.initParams
	m.p.Reset(ip.R1, ip.R2, ip.M1, ip.M2, m.initA1, m.initA2)
	m.step = 0
	m.e0 = m.p.TotalEnergy()
	m.trail = m.trail[:0]
	m.energy = m.energy[:0]
	m.lyapunov = m.lyapunov[:0]
	m.history = m.history[:0]
	m.playHead = -1
}

func (m *Model) cycleMethod() {
	methods := integrators.Methods()
	for i, mm := range methods {
		if mm == m.method {
			m.method = methods[(i+1)%len(methods)]
			return
		}
	}
	m.method = methods[0]
}

// scrub moves the replay position; stepping past the newest frame returns
// to live mode.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m Model) Method() integrators.Method { return m.method }
func (m Model) Steps() int                 { return m.step }
func (m Model) Running() bool              { return m.running }
func (m Model) Replaying() bool            { return m.playHead != -1 }

// frame returns the state to display: the live pendulum or a replayed
// snapshot.
func (m Model) frame() (dynamo.State, int, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		s := m.history[m.playHead]
		return s.State, s.Step, s.Lyapunov
	}
	lya, _ := m.p.Lyapunov()
	return m.p.Vector(), m.step, lya
}

func (m Model) draw(state dynamo.State) {
	m.canvas.Clear()
	for _, pt := range m.trail {
		m.canvas.Set(pt.x, pt.y)
	}

	shown := pendulum.New(m.p.Params, state[0], state[1], false)
	vp := NewViewport(m.canvas, m.p.R1+m.p.R2)
	cx, cy := vp.Pivot()
	m.canvas.Disc(cx, cy, 0)

	x1, y1, ok1 := vp.Map(shown.X1(), shown.Y1())
	x2, y2, ok2 := vp.Map(shown.X2(), shown.Y2())
	if !ok1 || !ok2 {
		return
	}
	m.canvas.DrawLine(cx, cy, x1, y1)
	m.canvas.DrawLine(x1, y1, x2, y2)
	m.canvas.Disc(x1, y1, 1)
	m.canvas.Disc(x2, y2, 1)
}

func (m Model) View() string {
	st := newStyles(Themes[m.theme])
	state, step, lya := m.frame()
	m.draw(state)

	var s strings.Builder
	s.WriteString(st.header.Render("DOUBLE PENDULUM · "+m.method.String()) + "\n")

	switch {
	case m.playHead != -1:
		s.WriteString(st.paused.Render(fmt.Sprintf("REPLAY (%d steps back)", m.step-step)))
	case m.running:
		s.WriteString(st.running.Render("RUNNING"))
	default:
		s.WriteString(st.paused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	if chart := energyChart(m.energy); chart != "" {
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d (x%d)", step, m.opts.StepsPerTick))
	row("a1 / a2", fmt.Sprintf("%.3f / %.3f", state[0], state[1]))
	row("v1 / v2", fmt.Sprintf("%.4f / %.4f", state[2], state[3]))
	row("K - P", fmt.Sprintf("%.2f", m.p.MechanicalEnergy()))
	row("Drift", fmt.Sprintf("%.2e", metrics.RelativeDrift(m.e0, m.p.TotalEnergy())))
	if m.p.Tracking() {
		row("Lyapunov", fmt.Sprintf("%.5f", lya))
		row("", Sparkline(m.lyapunov, 30))
	} else {
		row("Lyapunov", "off")
	}

	s.WriteString(st.help.Render("SP:Pause R:Reset TAB:Integrator Q:Quit\n+/-:Speed [ ]:Replay T:Theme ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		st.canvas.Render(m.canvas.String()),
		st.stats.Render(s.String()),
	)
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

// energyChart plots the finite part of the total energy history.
func energyChart(history []float64) string {
	vals := make([]float64, 0, len(history))
	for _, v := range history {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) < 2 {
		return ""
	}
	return asciigraph.Plot(vals, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("K + P"))
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space  - Pause/Resume               ║
║  R      - Reset to starting angles   ║
║  Tab    - Cycle integrator           ║
║  + / -  - More/fewer steps per frame ║
║  [ / ]  - Replay backward/forward    ║
║  T      - Cycle themes               ║
║  ?      - Toggle this help           ║
║  Q      - Quit                       ║
╚══════════════════════════════════════╝`
