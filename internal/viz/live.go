package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/session"
)

const (
	defaultCols     = 60
	defaultRows     = 22
	minCols         = 10
	minRows         = 5
	statsWidth      = 46
	padX, padY      = 2, 1
	historyCapacity = 300
	nudgeStep       = 4 // sub-pixels per arrow key press
	reachFill       = 0.7
)

var canvasStyle = lipgloss.NewStyle().Padding(padY, padX)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the interactive view. The mouse drags the target; each tick
// solves one frame.
type Model struct {
	sess      *session.Session
	reach     float64
	cols      int
	rows      int
	proj      projection
	canvas    *Canvas
	frame     session.Frame
	errHist   []float64
	running   bool
	showHelp  bool
	theme     Theme
	lastError error
}

func NewModel(sess *session.Session) Model {
	m := Model{
		sess:    sess,
		reach:   kinematics.TotalLength(sess.Lengths()),
		running: true,
		theme:   ThemeNight,
		errHist: make([]float64, 0, historyCapacity),
	}
	m.layout(defaultCols+statsWidth+2*padX, defaultRows+2*padY)
	m.frame = sess.Snapshot()
	return m
}

// Run starts the program in the alternate screen with mouse motion enabled.
func Run(sess *session.Session) error {
	p := tea.NewProgram(NewModel(sess), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and advances the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			w, h := m.sess.Viewport()
			m.sess.Resize(w, h)
			m.errHist = m.errHist[:0]
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
		case "up", "k":
			m.nudge(0, -1)
		case "down", "j":
			m.nudge(0, 1)
		case "left", "h":
			m.nudge(-1, 0)
		case "right", "l":
			m.nudge(1, 0)
		}
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// layout sizes the canvas to the terminal and resizes the session so the
// chain fills reachFill of the height above the base.
func (m *Model) layout(termW, termH int) {
	m.cols = max(termW-statsWidth-2*padX, minCols)
	m.rows = max(termH-2*padY, minRows)
	m.canvas = NewCanvas(m.cols, m.rows)
	_, dotsH := m.canvas.Dots()
	m.proj = projection{scale: m.reach / (reachFill * float64(dotsH))}
	dotsW, _ := m.canvas.Dots()
	m.sess.Resize(float64(dotsW)*m.proj.scale, float64(dotsH)*m.proj.scale)
}

func (m *Model) mouse(msg tea.MouseMsg) {
	p, inside := m.proj.cellToWorld(msg.X-padX, msg.Y-padY, m.cols, m.rows)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside {
			m.sess.PointerDown(p)
		}
	case tea.MouseActionMotion:
		m.sess.PointerMove(p)
	case tea.MouseActionRelease:
		m.sess.PointerUp()
	}
}

func (m *Model) nudge(dx, dy float64) {
	t := m.frame.Target
	m.sess.SetTarget(r2.Point{
		X: t.X + dx*nudgeStep*m.proj.scale,
		Y: t.Y + dy*nudgeStep*m.proj.scale,
	})
}

func (m *Model) step() {
	f, err := m.sess.Frame()
	if err != nil {
		m.lastError = err
		m.running = false
		return
	}
	m.frame = f
	m.lastError = nil
	m.errHist = append(m.errHist, f.Stats.Error)
	if len(m.errHist) > historyCapacity {
		m.errHist = m.errHist[1:]
	}
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	m.canvas.Clear()
	drawFrame(m.canvas, m.proj, m.frame)

	th := m.theme
	header := lipgloss.NewStyle().Foreground(th.Header).Bold(true).MarginBottom(1)
	label := lipgloss.NewStyle().Foreground(th.Muted).Width(12)
	value := lipgloss.NewStyle().Foreground(th.Text)
	stats := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(th.Muted).
		Padding(1, 2).
		Width(statsWidth - 1)

	canvasView := canvasStyle.Foreground(th.Arm).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(header.Render("FABRIK CHAIN") + "\n")
	s.WriteString(m.status() + "\n\n")
	if len(m.errHist) > 1 {
		chart := asciigraph.Plot(m.errHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Effector error"))
		s.WriteString(lipgloss.NewStyle().Foreground(th.Good).Padding(1, 0).Render(chart) + "\n\n")
	}
	st := m.frame.Stats
	reach := lipgloss.NewStyle().Foreground(th.Good).Render("yes")
	if !st.Reachable {
		reach = lipgloss.NewStyle().Foreground(th.Bad).Render("no")
	}
	rows := [][2]string{
		{"Frame", fmt.Sprintf("%d", m.frame.Index)},
		{"Target", fmt.Sprintf("(%.1f, %.1f)", m.frame.Target.X, m.frame.Target.Y)},
		{"Error", fmt.Sprintf("%.3f", st.Error)},
		{"Iterations", fmt.Sprintf("%d", st.Iterations)},
		{"Segments", fmt.Sprintf("%d", len(m.frame.Pose)-1)},
		{"Length", fmt.Sprintf("%.1f", m.reach)},
	}
	for _, r := range rows {
		s.WriteString(label.Render(r[0]) + value.Render(r[1]) + "\n")
	}
	s.WriteString(label.Render("Reachable") + reach + "\n")
	if m.lastError != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(th.Bad).Render(m.lastError.Error()) + "\n")
	}
	s.WriteString(lipgloss.NewStyle().Foreground(th.Muted).MarginTop(2).Render(
		"\n─────────────────────\nDrag:Target SP:Pause R:Reset\nT:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Mouse    - Press and drag target    ║
║  Arrows   - Nudge target             ║
║  Space    - Pause/Resume solving     ║
║  R        - Re-extend the chain      ║
║  T        - Cycle themes (` + fmt.Sprintf("%-8s", th.Name) + `)  ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	switch {
	case !m.running:
		return "PAUSED"
	case m.frame.Dragging:
		return "DRAGGING"
	default:
		return "RUNNING"
	}
}

// projection maps world coordinates to canvas sub-pixels. Both have y
// pointing down, so only the scale differs.
type projection struct {
	scale float64 // world units per sub-pixel
}

func (p projection) toDots(pt r2.Point) (int, int) {
	return int(math.Round(pt.X / p.scale)), int(math.Round(pt.Y / p.scale))
}

// cellToWorld returns the world point at the centre of a canvas cell and
// whether the cell lies inside a cols x rows canvas.
func (p projection) cellToWorld(col, row, cols, rows int) (r2.Point, bool) {
	inside := col >= 0 && row >= 0 && col < cols && row < rows
	return r2.Point{
		X: float64(col*2+1) * p.scale,
		Y: float64(row*4+2) * p.scale,
	}, inside
}

// drawFrame draws segments, joints, the base and a ring at the target.
func drawFrame(c *Canvas, p projection, f session.Frame) {
	for i := 1; i < len(f.Pose); i++ {
		x0, y0 := p.toDots(f.Pose[i-1])
		x1, y1 := p.toDots(f.Pose[i])
		c.DrawLine(x0, y0, x1, y1)
	}
	for _, j := range f.Pose {
		x, y := p.toDots(j)
		c.DrawDisc(x, y, 1)
	}
	bx, by := p.toDots(f.Base)
	c.DrawDisc(bx, by, 2)
	tx, ty := p.toDots(f.Target)
	c.DrawRing(tx, ty, 3)
}
