package table

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// cellWidth resolves a column width to terminal cells.
// Flexible columns and unparseable sizes report ok=false.
func cellWidth(w Width, tableWidth int) (int, bool) {
	if units, fixed := w.Units(); fixed {
		return max(int(units), 0), true
	}
	size := strings.ToLower(w.String())
	if size == "" {
		return 0, false
	}

	if pct, found := strings.CutSuffix(size, "%"); found {
		n, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return int(float64(tableWidth) * n / 100), true
	}

	for _, unit := range []string{"ch", "px", ""} {
		num, found := strings.CutSuffix(size, unit)
		if !found {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err == nil && n >= 0 {
			return int(n), true
		}
	}
	return 0, false
}

// columnWidths lays out widths across tableWidth cells, one space between columns.
// Flexible columns share what fixed columns leave over equally.
func columnWidths(widths []Width, tableWidth int) []int {
	result := make([]int, len(widths))
	if len(widths) == 0 || tableWidth <= 0 {
		return result
	}

	totalFixed := 0
	var flex []int
	for i, w := range widths {
		if n, ok := cellWidth(w, tableWidth); ok {
			result[i] = n
			totalFixed += n
		} else {
			flex = append(flex, i)
		}
	}
	if len(flex) == 0 {
		return result
	}

	separators := len(widths) - 1
	available := tableWidth - totalFixed - separators
	if available < len(flex) {
		// Not enough space, every flex column still gets one cell
		for _, i := range flex {
			result[i] = 1
		}
		return result
	}

	share := available / len(flex)
	remainder := available % len(flex)
	for _, i := range flex {
		result[i] = share
		if remainder > 0 {
			result[i]++
			remainder--
		}
	}
	return result
}

// fitCell truncates text to width and pads it according to align
func fitCell(text string, width int, align Align) string {
	if width <= 0 {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if lipgloss.Width(text) > width {
		text = truncate.StringWithTail(text, uint(width), "…")
	}

	style := lipgloss.NewStyle().Width(width).MaxWidth(width)
	switch align {
	case AlignEnd:
		style = style.Align(lipgloss.Right)
	case AlignCenter:
		style = style.Align(lipgloss.Center)
	default:
		style = style.Align(lipgloss.Left)
	}
	return style.Render(text)
}
