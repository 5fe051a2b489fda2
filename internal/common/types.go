package common

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ── Custom messages ─────────────────────────────────────────────────────────

// RefreshMsg asks the status view to reload repository state.
type RefreshMsg struct{}

// ErrMsg carries an error to be displayed in the status bar.
type ErrMsg struct{ Err error }

// InfoMsg carries an informational message for the status bar.
type InfoMsg struct{ Text string }

// ToggleHelpMsg toggles the help overlay.
type ToggleHelpMsg struct{}

// EditMsg asks the app to suspend the TUI and open path in the
// configured editor, positioned at line (1-based, 0 means top).
type EditMsg struct {
	Path string
	Line int
}

// CmdRefresh returns a RefreshMsg (use as return from tea.Cmd).
func CmdRefresh() tea.Msg { return RefreshMsg{} }

// CmdErr creates a tea.Cmd that sends an ErrMsg.
func CmdErr(err error) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// CmdInfo creates a tea.Cmd that sends an InfoMsg.
func CmdInfo(text string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{Text: text} }
}
