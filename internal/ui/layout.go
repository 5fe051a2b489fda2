package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Truncate shortens s to fit width cells, appending an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// PadRight pads s with spaces to exactly width cells, truncating if longer.
func PadRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// PlaceCentre places content in the middle of a w x h box.
func PlaceCentre(w, h int, content string) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, content)
}
