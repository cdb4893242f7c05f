package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

func renderHeader(st *model.State, role model.Role, voice voiceInfo) string {
	var sb strings.Builder
	sb.WriteString(" ")
	sb.WriteString(titleStyle.Render("TWINMON"))
	sb.WriteString(dimStyle.Render("  motor digital twin  "))
	sb.WriteString(statusStyle(st.Status).Render("STATUS: " + strings.ToUpper(st.Status.String())))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  tick %s", humanize.Comma(int64(st.Tick)))))

	eco := dimStyle.Render("eco off")
	if st.EcoMode {
		eco = okStyle.Render("ECO")
	}
	sb.WriteString("  " + eco)
	sb.WriteString("  " + voice.badge())
	sb.WriteString(dimStyle.Render("  role " + string(role)))
	return sb.String()
}

// voiceInfo is the gate state shown in the header.
type voiceInfo struct {
	enabled bool
	paused  bool
	count   uint64
}

func (v voiceInfo) badge() string {
	switch {
	case !v.enabled:
		return dimStyle.Render("voice n/a")
	case v.paused:
		return warnStyle.Render("voice PAUSED")
	default:
		return okStyle.Render(fmt.Sprintf("voice on (%d)", v.count))
	}
}

func formatReading(m model.Metric, r model.SensorReading) string {
	switch m {
	case model.MetricRPM:
		return humanize.Comma(int64(r.RPM)) + " " + m.Unit()
	case model.MetricVibration:
		return fmt.Sprintf("%.2f %s", r.Vibration, m.Unit())
	}
	return fmt.Sprintf("%.1f %s", m.Value(r), m.Unit())
}

func renderReadings(st *model.State, th engine.Thresholds, selected model.Metric, innerW int) string {
	sparkW := innerW - colKey - 14
	if sparkW < 5 {
		sparkW = 5
	}
	lines := make([]string, 0, len(model.Metrics))
	for i, m := range model.Metrics {
		colorFn := metricChartColor(m, th)
		val := m.Value(st.Reading)
		keyStyle := dimStyle
		if m == selected {
			keyStyle = selectedStyle
		}
		key := fmt.Sprintf("%d %s", i+1, metricTitle(m))
		line := fmt.Sprintf("%s %s %s",
			styledPad(keyStyle.Render(key+":"), colKey),
			styledPad(colorFn(val).Render(formatReading(m, st.Reading)), 12),
			sparkline(st.Series(m), sparkW, minOf(st.Series(m)), maxOf(st.Series(m)), colorFn))
		lines = append(lines, line)
	}
	return boxSection("Live Sensors", lines, innerW)
}

func renderHealth(st *model.State, innerW int) string {
	band := model.BandForRUL(st.RUL)
	style := bandStyle(band)
	gaugeW := innerW - colKey - 10
	if gaugeW < 10 {
		gaugeW = 10
	}
	lines := []string{
		kvLine(kv{"RUL", fmt.Sprintf("%.2f%%", st.RUL)}, style) + "  " + gauge(st.RUL, gaugeW, style),
		kvLine(kv{"Prediction", model.RULVerdict(st.RUL)}, style),
		kvLine(kv{"Band", band.String()}, style),
	}
	return boxSection("Predictive Health", lines, innerW)
}

func renderEnergy(st *model.State, innerW int) string {
	mode := "Normal"
	modeStyle := valueStyle
	if st.EcoMode {
		mode = "Eco"
		modeStyle = okStyle
	}
	gaugeW := innerW - colKey - 10
	if gaugeW < 10 {
		gaugeW = 10
	}
	lines := []string{
		kvLine(kv{"Mode", mode}, modeStyle),
		kvLine(kv{"Draw", fmt.Sprintf("%.1f A", st.Reading.Power)}, valueStyle),
		kvLine(kv{"Efficiency", fmt.Sprintf("%.1f%%", st.Efficiency)}, valueStyle) + "  " + gauge(st.Efficiency, gaugeW, okStyle),
		dimStyle.Render(model.EcoSuggestion(st.EcoMode)),
	}
	return boxSection("Energy", lines, innerW)
}

func alertTag(a model.AlertRecord) string {
	switch {
	case a.IsAnomaly:
		return "ANOMALY"
	case a.Kind == model.AlertCritical:
		return "CRIT"
	default:
		return "WARN"
	}
}

func renderAlerts(alerts []model.AlertRecord, innerW int) string {
	if len(alerts) == 0 {
		return boxSection("Alerts", []string{okStyle.Render("No active alerts")}, innerW)
	}
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		style := alertStyle(a)
		lines = append(lines, fmt.Sprintf("%s %s %s",
			dimStyle.Render(model.TimeLabel(a.CreatedAt)),
			style.Render(padRight(alertTag(a), 7)),
			style.Render(a.Message)))
	}
	return boxSection(fmt.Sprintf("Alerts (%d)", len(alerts)), lines, innerW)
}

func priorityStyle(p string) func(string) string {
	switch p {
	case "Critical":
		return func(s string) string { return critStyle.Render(s) }
	case "High":
		return func(s string) string { return orangeStyle.Render(s) }
	case "Medium":
		return func(s string) string { return warnStyle.Render(s) }
	}
	return func(s string) string { return dimStyle.Render(s) }
}

func renderMaintenance(tasks []model.MaintenanceTask, innerW int) string {
	taskW := innerW - 30
	if taskW < 12 {
		taskW = 12
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			valueStyle.Render(padRight(t.Task, taskW)),
			dimStyle.Render(padRight(t.Due, 4)),
			dimStyle.Render(padRight(t.Status, 12)),
			priorityStyle(t.Priority)(t.Priority)))
	}
	return boxSection("Maintenance", lines, innerW)
}

func renderLogs(logs []model.LogEntry, innerW, max int) string {
	if len(logs) > max {
		logs = logs[:max]
	}
	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		lines = append(lines, fmt.Sprintf("%s %s",
			dimStyle.Render(model.TimeLabel(l.Time)),
			logStyle(l.Type).Render(l.Message)))
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}
	return boxSection("System Log", lines, innerW)
}

func minOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
