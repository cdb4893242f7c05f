package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/twinmon/model"
)

var (
	// Colors
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorOrange  = lipgloss.Color("#FFB86C")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")
	colorPanel   = lipgloss.Color("#44475A")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	valueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	warnStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	headerStyle   = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	helpStyle     = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle      = lipgloss.NewStyle().Foreground(colorGray)
	orangeStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	anomalyStyle  = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
)

func statusStyle(s model.MachineStatus) lipgloss.Style {
	switch s {
	case model.StatusCritical:
		return critStyle
	case model.StatusWarning:
		return warnStyle
	default:
		return okStyle
	}
}

func bandStyle(b model.RULBand) lipgloss.Style {
	switch b {
	case model.RULCritical:
		return critStyle
	case model.RULWarning:
		return warnStyle
	default:
		return okStyle
	}
}

func alertStyle(a model.AlertRecord) lipgloss.Style {
	switch {
	case a.IsAnomaly:
		return anomalyStyle
	case a.Kind == model.AlertCritical:
		return critStyle
	default:
		return warnStyle
	}
}

func logStyle(t model.LogType) lipgloss.Style {
	switch t {
	case model.LogAnomaly:
		return anomalyStyle
	case model.LogCritical:
		return critStyle
	default:
		return dimStyle
	}
}
