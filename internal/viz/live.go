// Package viz renders a live terminal view of a running co-simulation: a
// braille side projection of the terrain bed and rover next to a stats panel.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/roversim/internal/config"
	"github.com/san-kum/roversim/internal/cosim"
	"github.com/san-kum/roversim/internal/granular"
	"github.com/san-kum/roversim/internal/rover"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps a coupling loop from UI ticks and renders its state. The loop
// is advanced here, not in a background goroutine; when the run completes the
// program quits and the caller finishes the loop.
type Model struct {
	loop    *cosim.Loop
	terrain *granular.System
	rov     *rover.Rover
	params  *config.Params

	canvas       *Canvas
	running      bool
	stepsPerTick int
	heightHist   []float64
	err          error
}

// NewModel wires a live view around an assembled loop.
func NewModel(loop *cosim.Loop, terrain *granular.System, rov *rover.Rover, p *config.Params) Model {
	perTick := int(1.0 / (60 * loop.StepSize()))
	if perTick < 1 {
		perTick = 1
	}
	return Model{
		loop:         loop,
		terrain:      terrain,
		rov:          rov,
		params:       p,
		canvas:       NewCanvas(width, height),
		running:      true,
		stepsPerTick: perTick,
		heightHist:   make([]float64, 0, historyCapacity),
	}
}

// Err reports the step error that aborted the view, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && !m.loop.Done() {
			for i := 0; i < m.stepsPerTick && !m.loop.Done(); i++ {
				if err := m.loop.Step(); err != nil {
					m.err = err
					return m, tea.Quit
				}
			}
			m.heightHist = append(m.heightHist, m.rov.Chassis.Position().Z())
			if len(m.heightHist) > historyCapacity {
				m.heightHist = m.heightHist[1:]
			}
		}
		if m.loop.Done() {
			return m, tea.Quit
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// project maps world xz (cm) to canvas sub-pixel coordinates, side view.
func (m *Model) project(x, z float64) (int, int) {
	cw, ch := float64(width*2), float64(height*4)
	margin := 1.1
	spanX := m.params.BoxX * margin
	spanZ := m.params.BoxZ * 2 * margin
	px := (x/spanX + 0.5) * cw
	py := (0.5 - z/spanZ) * ch
	return int(px), int(py)
}

func (m *Model) draw() {
	m.canvas.Clear()

	// terrain box walls and floor
	x0, y0 := m.project(-m.params.BoxX/2, m.params.BoxZ/2)
	x1, y1 := m.project(m.params.BoxX/2, -m.params.BoxZ/2)
	m.canvas.DrawLine(x0, y0, x0, y1)
	m.canvas.DrawLine(x1, y0, x1, y1)
	m.canvas.DrawLine(x0, y1, x1, y1)

	for _, p := range m.terrain.Positions() {
		px, py := m.project(p.X(), p.Z())
		m.canvas.Set(px, py)
	}

	scaleX := float64(width*2) / (m.params.BoxX * 1.1)
	for _, w := range m.rov.Wheels {
		pos := w.Position()
		px, py := m.project(pos.X(), pos.Z())
		m.canvas.DrawCircle(px, py, int(rover.WheelRadius*scaleX))
	}

	cp := m.rov.Chassis.Position()
	hx := float64(rover.ChassisLengthX) / 2
	hz := float64(rover.ChassisLengthZ) / 2
	rx0, ry0 := m.project(cp.X()-hx, cp.Z()+hz)
	rx1, ry1 := m.project(cp.X()+hx, cp.Z()-hz)
	m.canvas.DrawRect(rx0, ry0, rx1, ry1)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.loop.Done() {
		status = "DONE"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("ROVER CO-SIMULATION") + "\n")
	s.WriteString(status + "\n\n")

	if len(m.heightHist) > 1 {
		chart := asciigraph.Plot(m.heightHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Chassis height"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	chassis := "fixed"
	if m.loop.ChassisFree() {
		chassis = "free"
	}
	cp := m.rov.Chassis.Position()
	cv := m.rov.Chassis.Velocity()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", m.loop.Time())) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d / %d", int(m.loop.Time()/m.loop.StepSize()+0.5), m.loop.Steps())) + "\n")
	s.WriteString(labelStyle.Render("Chassis") + valueStyle.Render(chassis) + "\n")
	s.WriteString(labelStyle.Render("Chassis z") + valueStyle.Render(fmt.Sprintf("%.2f cm", cp.Z())) + "\n")
	s.WriteString(labelStyle.Render("Chassis vx") + valueStyle.Render(fmt.Sprintf("%.2f cm/s", cv.X())) + "\n")
	s.WriteString(labelStyle.Render("Terrain max") + valueStyle.Render(fmt.Sprintf("%.2f cm", m.terrain.MaxParticleHeight())) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", m.terrain.NumParticles())) + "\n")
	s.WriteString(labelStyle.Render("Frames") + valueStyle.Render(fmt.Sprintf("%d", m.loop.FramesWritten())) + "\n")

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause Q:Quit"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
