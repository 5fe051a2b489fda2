package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings. Everything else (cursor
// motion, staging, folding) is handled inside the status view.
type KeyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Refresh key.Binding
	Back    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}
