package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mdtally/internal/run"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps a System on every tick and keeps scrolling histories of the
// tallied totals for display.
type Model struct {
	sys     *run.System
	title   string
	step    int
	running bool
	last    run.StepRecord

	energyHistory []float64
	vtraceHistory []float64
}

func NewModel(sys *run.System, title string) Model {
	return Model{
		sys:           sys,
		title:         title,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		vtraceHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.sys.Reset()
			m.step = 0
			m.last = run.StepRecord{}
			m.energyHistory = m.energyHistory[:0]
			m.vtraceHistory = m.vtraceHistory[:0]
		}
	case TickMsg:
		if m.running {
			m.last = m.sys.Step(m.step)
			m.step++
			m.energyHistory = append(m.energyHistory, m.last.TotalEnergy())
			if len(m.energyHistory) > historyCapacity {
				m.energyHistory = m.energyHistory[1:]
			}
			m.vtraceHistory = append(m.vtraceHistory, m.last.Virial.Trace())
			if len(m.vtraceHistory) > historyCapacity {
				m.vtraceHistory = m.vtraceHistory[1:]
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	var charts strings.Builder
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(8), asciigraph.Width(50), asciigraph.Caption("Total energy"))
		charts.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.vtraceHistory) > 1 {
		chart := asciigraph.Plot(m.vtraceHistory, asciigraph.Height(6), asciigraph.Width(50), asciigraph.Caption("Virial trace"))
		charts.WriteString(graphStyle.Render(chart) + "\n")
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	if m.running {
		s.WriteString("RUNNING\n\n")
	} else {
		s.WriteString(pausedStyle.Render("PAUSED") + "\n\n")
	}
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.step)) + "\n")
	s.WriteString(labelStyle.Render("E vdwl") + valueStyle.Render(fmt.Sprintf("%.4f", m.last.EngVdwl)) + "\n")
	s.WriteString(labelStyle.Render("E coul") + valueStyle.Render(fmt.Sprintf("%.4f", m.last.EngCoul)) + "\n")
	s.WriteString(labelStyle.Render("E bond") + valueStyle.Render(fmt.Sprintf("%.4f", m.last.EngBond)) + "\n")
	s.WriteString(labelStyle.Render("E angle") + valueStyle.Render(fmt.Sprintf("%.4f", m.last.EngAngle)) + "\n")
	s.WriteString(labelStyle.Render("E dihedral") + valueStyle.Render(fmt.Sprintf("%.4f", m.last.EngDihedral)) + "\n")
	s.WriteString(labelStyle.Render("E total") + valueStyle.Render(fmt.Sprintf("%.4f", m.last.TotalEnergy())) + "\n")
	s.WriteString("\nVIRIAL\n")
	v := m.last.Virial
	s.WriteString(labelStyle.Render("xx yy zz") + valueStyle.Render(fmt.Sprintf("%.3f %.3f %.3f", v[0], v[1], v[2])) + "\n")
	s.WriteString(labelStyle.Render("xy xz yz") + valueStyle.Render(fmt.Sprintf("%.3f %.3f %.3f", v[3], v[4], v[5])) + "\n")
	s.WriteString(labelStyle.Render("trace") + valueStyle.Render(fmt.Sprintf("%.4f", v.Trace())) + "\n")
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, charts.String(), statsStyle.Render(s.String()))
}
