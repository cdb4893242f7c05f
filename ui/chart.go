package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

// areaChart renders a multi-line area chart with Y-axis labels, sub-cell
// resolution using fractional block characters, and per-cell coloring.
//
//	Temperature °C                                now: 72.4
//	 80│
//	 75│          ████
//	 70│        ████████       ██
//	 65│████████████████████████████████
//	   └────────────────────────────────────────
//	   14:00:01                        14:00:20
func areaChart(data []float64, label string, width, height int, minVal, maxVal float64,
	colorFn func(float64) lipgloss.Style, startTime, endTime time.Time) string {

	if height < 2 {
		height = 2
	}
	if maxVal <= minVal {
		maxVal = minVal + 1
	}

	axisW := 5 // e.g. "3000│"
	chartW := width - axisW - 1
	if chartW < 10 {
		chartW = 10
	}

	resampled := resampleData(data, chartW)
	subBlocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var sb strings.Builder

	last := float64(0)
	if len(resampled) > 0 {
		last = resampled[len(resampled)-1]
	}
	sb.WriteString(titleStyle.Render(label))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  now: %.1f", last)))
	sb.WriteString("\n")

	rangeVal := maxVal - minVal
	yFmt := "%4.0f"
	if rangeVal < 10 {
		yFmt = "%4.1f"
	}

	for row := height - 1; row >= 0; row-- {
		yVal := minVal + (float64(row+1)/float64(height))*rangeVal
		sb.WriteString(dimStyle.Render(fmt.Sprintf(yFmt, yVal)))
		sb.WriteString(dimStyle.Render("│"))

		for col := 0; col < len(resampled); col++ {
			val := resampled[col]
			normalized := (val - minVal) / rangeVal * float64(height)

			cellBottom := float64(row)
			cellTop := float64(row + 1)

			var ch rune
			switch {
			case normalized >= cellTop:
				ch = '█'
			case normalized <= cellBottom:
				ch = ' '
			default:
				idx := int((normalized - cellBottom) * 8)
				if idx >= len(subBlocks) {
					idx = len(subBlocks) - 1
				}
				if idx < 0 {
					idx = 0
				}
				ch = subBlocks[idx]
			}

			if ch == ' ' {
				sb.WriteRune(' ')
			} else {
				sb.WriteString(colorFn(val).Render(string(ch)))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(dimStyle.Render("    └" + strings.Repeat("─", len(resampled))))
	sb.WriteString("\n")

	if !startTime.IsZero() && !endTime.IsZero() {
		left := model.TimeLabel(startTime)
		right := model.TimeLabel(endTime)
		gap := len(resampled) - len(left) - len(right) + axisW
		if gap < 1 {
			gap = 1
		}
		sb.WriteString(dimStyle.Render("    " + left + strings.Repeat(" ", gap) + right))
	}

	return sb.String()
}

// resampleData stretches or averages data to fill targetWidth columns.
// The chart window is short, so sparse data is repeated rather than left
// as a thin strip on the left edge.
func resampleData(data []float64, targetWidth int) []float64 {
	if len(data) == 0 || targetWidth <= 0 {
		return nil
	}
	result := make([]float64, targetWidth)
	if len(data) <= targetWidth {
		for i := range result {
			result[i] = data[i*len(data)/targetWidth]
		}
		return result
	}
	for i := 0; i < targetWidth; i++ {
		// Average the bucket of source values that map to this column
		srcStart := i * len(data) / targetWidth
		srcEnd := (i + 1) * len(data) / targetWidth
		if srcEnd > len(data) {
			srcEnd = len(data)
		}
		if srcStart >= srcEnd {
			srcStart = srcEnd - 1
		}
		sum := float64(0)
		for j := srcStart; j < srcEnd; j++ {
			sum += data[j]
		}
		result[i] = sum / float64(srcEnd-srcStart)
	}
	return result
}

// niceSteps are the axis granularities autoScale snaps to.
var niceSteps = []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 200, 500}

// autoScale computes a padded Y range around the data, snapped outward to a
// round step so the axis does not jitter on every tick.
func autoScale(data []float64, floor float64) (float64, float64) {
	if len(data) == 0 {
		return floor, floor + 1
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span < 1 {
		span = 1
	}
	pad := span * 0.3
	step := niceSteps[len(niceSteps)-1]
	for _, s := range niceSteps {
		if s*4 >= span+2*pad {
			step = s
			break
		}
	}
	minVal := math.Floor((lo-pad)/step) * step
	maxVal := math.Ceil((hi+pad)/step) * step
	if minVal < floor {
		minVal = floor
	}
	if maxVal <= minVal {
		maxVal = minVal + step
	}
	return minVal, maxVal
}

// metricChartColor colors chart cells against the metric's alert thresholds.
func metricChartColor(m model.Metric, th engine.Thresholds) func(float64) lipgloss.Style {
	switch m {
	case model.MetricTemperature:
		return func(v float64) lipgloss.Style {
			switch {
			case v > th.TempCritical:
				return critStyle
			case v > th.TempWarning:
				return warnStyle
			default:
				return okStyle
			}
		}
	case model.MetricVibration:
		return func(v float64) lipgloss.Style {
			switch {
			case v > th.VibCritical:
				return critStyle
			case v > th.StressVib:
				return orangeStyle
			default:
				return okStyle
			}
		}
	}
	return func(float64) lipgloss.Style { return titleStyle }
}

// renderMetricChart draws the chart panel for one metric of the state.
func renderMetricChart(st *model.State, m model.Metric, th engine.Thresholds, width, height int) string {
	pts := st.History[m]
	data := st.Series(m)
	lo, hi := autoScale(data, 0)
	var start, end time.Time
	if len(pts) > 0 {
		start, end = pts[0].Timestamp, pts[len(pts)-1].Timestamp
	}
	label := fmt.Sprintf("%s %s", metricTitle(m), m.Unit())
	return areaChart(data, label, width, height, lo, hi, metricChartColor(m, th), start, end)
}

func metricTitle(m model.Metric) string {
	switch m {
	case model.MetricTemperature:
		return "Temperature"
	case model.MetricVibration:
		return "Vibration"
	case model.MetricRPM:
		return "Speed"
	case model.MetricPower:
		return "Power"
	}
	return string(m)
}
