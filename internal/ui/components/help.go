package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gitfold/gitfold/internal/ui"
)

// HelpEntry is a single key-description pair for the help overlay.
type HelpEntry struct {
	Key  string
	Desc string
}

// RenderHelp renders a full-screen help overlay.
func RenderHelp(styles ui.Styles, title string, sections map[string][]HelpEntry, width, height int) string {
	t := styles.Theme

	titleStr := lipgloss.NewStyle().
		Foreground(t.Primary).Bold(true).
		Align(lipgloss.Center).
		Width(width - 4).
		Render(title)

	var body strings.Builder
	body.WriteString(titleStr + "\n\n")

	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Width(16).Align(lipgloss.Right)
	descStyle := lipgloss.NewStyle().Foreground(t.Text)

	// Deterministic order from a predefined list.
	order := []string{"Navigation", "Folding", "Staging", "Stashes", "General"}
	for _, section := range order {
		entries, ok := sections[section]
		if !ok || len(entries) == 0 {
			continue
		}
		body.WriteString(sectionStyle.Render(section) + "\n")
		for _, e := range entries {
			body.WriteString("  " + keyStyle.Render(e.Key) + "  " + descStyle.Render(e.Desc) + "\n")
		}
		body.WriteString("\n")
	}

	content := body.String()

	overlay := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3).
		Width(min(70, width-4)).
		MaxHeight(height - 2).
		Render(content)

	return ui.PlaceCentre(width, height, overlay)
}

// HelpEntries returns the help entries for all keybindings.
func HelpEntries() map[string][]HelpEntry {
	return map[string][]HelpEntry{
		"Navigation": {
			{Key: "j / ↓", Desc: "Move down"},
			{Key: "k / ↑", Desc: "Move up"},
			{Key: "g / Home", Desc: "Go to top"},
			{Key: "G / End", Desc: "Go to bottom"},
			{Key: "pgup / ctrl+u", Desc: "Page up"},
			{Key: "pgdn / ctrl+d", Desc: "Page down"},
			{Key: "enter", Desc: "Open file at cursor"},
			{Key: "esc", Desc: "Leave visual mode / cancel"},
		},
		"Folding": {
			{Key: "tab / za", Desc: "Toggle fold at cursor"},
		},
		"Staging": {
			{Key: "v", Desc: "Start visual selection"},
			{Key: "s", Desc: "Stage file / hunk / selection"},
			{Key: "u", Desc: "Unstage file / hunk / selection"},
			{Key: "x", Desc: "Discard file / hunk / selection"},
		},
		"Stashes": {
			{Key: "a", Desc: "Apply stash at cursor"},
			{Key: "p", Desc: "Pop stash at cursor"},
			{Key: "x", Desc: "Drop stash at cursor"},
		},
		"General": {
			{Key: "r", Desc: "Refresh"},
			{Key: "?", Desc: "Toggle this help"},
			{Key: "q / ctrl+c", Desc: "Quit"},
		},
	}
}
