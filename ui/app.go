package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

// TickMsg delivers a completed engine tick to the program. Wire it with
// eng.OnTick(func(r engine.TickResult) { p.Send(ui.TickMsg(r)) }).
type TickMsg engine.TickResult

const flashTTL = 4 * time.Second

// Model is the bubbletea model.
type Model struct {
	engine   *engine.Engine
	gate     *engine.Gate
	controls engine.Controls
	role     model.Role
	interval time.Duration
	width    int
	height   int

	// Data
	state *model.State

	// Navigation
	metric   model.Metric
	showHelp bool
	scroll   int

	// Control feedback
	flash     string
	flashErr  bool
	flashTime time.Time
}

// NewModel creates a new TUI model. gate may be nil when voice is disabled.
func NewModel(eng *engine.Engine, gate *engine.Gate, role model.Role, interval time.Duration) Model {
	st := eng.State()
	return Model{
		engine:   eng,
		gate:     gate,
		controls: engine.ControlsFor(role, eng, gate),
		role:     role,
		interval: interval,
		state:    &st,
		metric:   model.MetricTemperature,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) refresh() {
	st := m.engine.State()
	m.state = &st
}

func (m *Model) setFlash(msg string, isErr bool) {
	m.flash = msg
	m.flashErr = isErr
	m.flashTime = time.Now()
}

// apply reports the outcome of a control call in the status line.
func (m *Model) apply(err error, ok string) {
	switch {
	case errors.Is(err, engine.ErrReadOnly):
		m.setFlash(fmt.Sprintf("read-only: role %s cannot change the machine", m.role), true)
	case err != nil:
		m.setFlash(err.Error(), true)
	default:
		m.setFlash(ok, false)
	}
	m.refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.refresh()

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.showHelp = true
		case "e":
			on := !m.engine.EcoMode()
			label := "Eco mode disabled"
			if on {
				label = "Eco mode enabled"
			}
			m.apply(m.controls.SetEcoMode(on), label)
		case "v":
			switch {
			case m.gate == nil:
				m.setFlash("voice alerts are not configured", true)
			case m.gate.Paused():
				m.apply(m.controls.ResumeAnnouncements(), "Voice alerts resumed")
			default:
				m.apply(m.controls.PauseAnnouncements(), "Voice alerts paused")
			}
		case "o":
			m.apply(m.controls.OptimizeMaintenanceTasks(), "Maintenance schedule optimized")
		case "1", "2", "3", "4":
			m.metric = model.Metrics[int(msg.String()[0]-'1')]
			m.scroll = 0
		case "j", "down":
			m.scroll++
		case "k", "up":
			if m.scroll > 0 {
				m.scroll--
			}
		case "g":
			m.scroll = 0
		}
	}
	return m, nil
}

func (m Model) voice() voiceInfo {
	if m.gate == nil {
		return voiceInfo{}
	}
	return voiceInfo{enabled: true, paused: m.gate.Paused(), count: m.gate.Announcements()}
}

func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	if m.width == 0 {
		return "Loading..."
	}

	st := m.state
	th := m.engine.Params().Thresholds

	var content string
	header := renderHeader(st, m.role, m.voice())
	if m.width >= 110 {
		colW := m.width/2 - 1
		innerW := colW - 5
		left := renderReadings(st, th, m.metric, innerW) +
			renderHealth(st, innerW) +
			renderEnergy(st, innerW) +
			renderMaintenance(st.Tasks, innerW)
		right := renderMetricChart(st, m.metric, th, colW-2, 8) + "\n" +
			renderAlerts(st.Alerts, innerW) +
			renderLogs(st.Logs, innerW, 8)
		content = header + "\n" + joinColumns(left, right, colW, " ")
	} else {
		innerW := m.width - 5
		if innerW < 40 {
			innerW = 40
		}
		content = header + "\n" +
			renderReadings(st, th, m.metric, innerW) +
			renderAlerts(st.Alerts, innerW) +
			renderMetricChart(st, m.metric, th, m.width-2, 6) + "\n" +
			renderHealth(st, innerW) +
			renderEnergy(st, innerW) +
			renderMaintenance(st.Tasks, innerW) +
			renderLogs(st.Logs, innerW, 5)
	}

	lines := strings.Split(content, "\n")
	scroll := m.scroll
	if scroll >= len(lines) {
		scroll = len(lines) - 1
	}
	if scroll > 0 {
		lines = lines[scroll:]
	}
	// Trim to viewport height (leave room for status bar)
	maxLines := m.height - 2
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n") + "\n" + m.renderStatusBar()
}

func (m Model) renderStatusBar() string {
	key := func(k, label string, mutating bool) string {
		if mutating && m.controls.ReadOnly() {
			return dimStyle.Render(k + ":" + label)
		}
		return headerStyle.Render(k) + dimStyle.Render(":"+label)
	}
	parts := []string{
		key("e", "eco", true),
		key("v", "voice", true),
		key("o", "optimize", true),
		key("1-4", "chart", false),
		key("?", "help", false),
		key("q", "quit", false),
	}
	bar := " " + strings.Join(parts, "  ")
	if m.controls.ReadOnly() {
		bar += "  " + orangeStyle.Render("[read-only]")
	}

	if m.flash != "" && time.Since(m.flashTime) < flashTTL {
		style := okStyle
		if m.flashErr {
			style = critStyle
		}
		msg := style.Render(m.flash)
		if gap := m.width - lipgloss.Width(bar) - lipgloss.Width(msg) - 1; gap > 1 {
			bar += strings.Repeat(" ", gap) + msg
		} else {
			bar += "  " + msg
		}
	}
	return bar
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("twinmon: motor digital twin monitor"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("Controls"))
	sb.WriteString("\n")
	sb.WriteString("  e         Toggle eco mode (lower fluctuation, power shedding)\n")
	sb.WriteString("  v         Pause / resume voice announcements\n")
	sb.WriteString("  o         Optimize maintenance schedule\n")
	if m.controls.ReadOnly() {
		sb.WriteString(orangeStyle.Render(fmt.Sprintf("            (disabled for role %s)\n", m.role)))
	}
	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("Navigation"))
	sb.WriteString("\n")
	sb.WriteString("  1-4       Chart temperature / vibration / speed / power\n")
	sb.WriteString("  j/k       Scroll down/up\n")
	sb.WriteString("  g         Top\n")
	sb.WriteString("  ?         Toggle this help\n")
	sb.WriteString("  q/Ctrl+C  Quit\n")
	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("Alerts"))
	sb.WriteString("\n")
	sb.WriteString("  WARN      Temperature above warning threshold\n")
	sb.WriteString("  CRIT      Overheating or abnormal vibration\n")
	sb.WriteString("  ANOMALY   Sudden spike; announced by voice once per alert\n")
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  tick interval %s", m.interval)))
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Press any key to close"))
	return sb.String()
}
