package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colKey = 14 // key column inside KV boxes

type kv struct {
	Key string
	Val string
}

// styledPad pads a styled string to the given visual width using spaces.
// Unlike fmt.Sprintf("%-Xs"), this accounts for ANSI escape codes.
func styledPad(styled string, width int) string {
	visW := lipgloss.Width(styled)
	if visW >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visW)
}

// ─── BOX DRAWING HELPERS ─────────────────────────────────────────────────────

// boxTop renders the top border of a rounded box.
// Total visual width = innerW + 5 (1 indent + 1 corner + innerW+2 dashes + 1 corner).
func boxTop(innerW int) string {
	return " " + dimStyle.Render("╭"+strings.Repeat("─", innerW+2)+"╮")
}

// boxBot renders the bottom border of a rounded box.
func boxBot(innerW int) string {
	return " " + dimStyle.Render("╰"+strings.Repeat("─", innerW+2)+"╯")
}

// boxMid renders a horizontal divider inside a box.
func boxMid(innerW int) string {
	return " " + dimStyle.Render("├"+strings.Repeat("─", innerW+2)+"┤")
}

// boxRow renders one content line inside a box, padded to innerW.
// Content wider than the box is cut so the right border stays aligned.
func boxRow(content string, innerW int) string {
	visW := lipgloss.Width(content)
	if visW > innerW {
		content = lipgloss.NewStyle().MaxWidth(innerW).Render(content)
		visW = lipgloss.Width(content)
	}
	pad := innerW - visW
	if pad < 0 {
		pad = 0
	}
	return " " + dimStyle.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + dimStyle.Render("│")
}

// boxSection renders a titled section inside a bordered box.
func boxSection(title string, lines []string, innerW int) string {
	var sb strings.Builder
	sb.WriteString(boxTop(innerW) + "\n")
	sb.WriteString(boxRow(headerStyle.Render(title), innerW) + "\n")
	sb.WriteString(boxMid(innerW) + "\n")
	for _, line := range lines {
		sb.WriteString(boxRow(line, innerW) + "\n")
	}
	sb.WriteString(boxBot(innerW) + "\n")
	return sb.String()
}

// kvLine renders one key/value pair with an aligned key column.
func kvLine(d kv, vs lipgloss.Style) string {
	return fmt.Sprintf("%s %s", styledPad(dimStyle.Render(d.Key+":"), colKey), vs.Render(d.Val))
}

// gauge renders a percentage bar of given width in the given style.
func gauge(pct float64, width int, style lipgloss.Style) string {
	if width < 1 {
		width = 10
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// sparkline renders a single-line chart of data, colored by colorFn.
func sparkline(data []float64, width int, minVal, maxVal float64, colorFn func(float64) lipgloss.Style) string {
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	if maxVal <= minVal {
		maxVal = minVal + 1
	}
	if len(data) == 0 {
		return dimStyle.Render(strings.Repeat("▁", width))
	}

	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var sb strings.Builder
	for _, v := range resampled {
		ratio := (v - minVal) / (maxVal - minVal)
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		idx := int(ratio * float64(len(blocks)-1))
		sb.WriteString(colorFn(v).Render(string(blocks[idx])))
	}
	return sb.String()
}

// padRight pads s with spaces to width runes, truncating with an ellipsis.
func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-len(r))
}

// truncate shortens s to maxLen runes with ellipsis if needed.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// joinColumns places right beside left, padding left lines to leftW.
func joinColumns(left, right string, leftW int, sep string) string {
	leftLines := strings.Split(strings.TrimRight(left, "\n"), "\n")
	rightLines := strings.Split(strings.TrimRight(right, "\n"), "\n")

	maxLines := len(leftLines)
	if len(rightLines) > maxLines {
		maxLines = len(rightLines)
	}

	var sb strings.Builder
	for i := 0; i < maxLines; i++ {
		l, r := "", ""
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		pad := leftW - lipgloss.Width(l)
		if pad < 0 {
			pad = 0
		}
		sb.WriteString(l)
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString(sep)
		sb.WriteString(r)
		sb.WriteString("\n")
	}
	return sb.String()
}
