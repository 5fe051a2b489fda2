package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds all colours for the application.
type Theme struct {
	Bg          lipgloss.Color
	Surface     lipgloss.Color
	CursorLine  lipgloss.Color
	VisualRange lipgloss.Color
	Border      lipgloss.Color

	Text        lipgloss.Color
	TextMuted   lipgloss.Color
	TextSubtle  lipgloss.Color
	TextInverse lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	SectionHeader lipgloss.Color
	Added         lipgloss.Color
	Removed       lipgloss.Color
	Context       lipgloss.Color
	HunkHeader    lipgloss.Color
	Untracked     lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	CommitHash lipgloss.Color
	Branch     lipgloss.Color
	Tag        lipgloss.Color
	Stash      lipgloss.Color
}

// DarkTheme returns the default dark theme (Catppuccin Mocha palette).
func DarkTheme() Theme {
	return Theme{
		Bg:          lipgloss.Color("#1e1e2e"),
		Surface:     lipgloss.Color("#282840"),
		CursorLine:  lipgloss.Color("#313152"),
		VisualRange: lipgloss.Color("#3b3b5c"),
		Border:      lipgloss.Color("#3b3b5c"),

		Text:        lipgloss.Color("#cdd6f4"),
		TextMuted:   lipgloss.Color("#9399b2"),
		TextSubtle:  lipgloss.Color("#6c7086"),
		TextInverse: lipgloss.Color("#1e1e2e"),

		Primary: lipgloss.Color("#89b4fa"),
		Accent:  lipgloss.Color("#f5c2e7"),

		SectionHeader: lipgloss.Color("#89b4fa"),
		Added:         lipgloss.Color("#a6e3a1"),
		Removed:       lipgloss.Color("#f38ba8"),
		Context:       lipgloss.Color("#9399b2"),
		HunkHeader:    lipgloss.Color("#b4befe"),
		Untracked:     lipgloss.Color("#9399b2"),

		Success: lipgloss.Color("#a6e3a1"),
		Warning: lipgloss.Color("#f9e2af"),
		Error:   lipgloss.Color("#f38ba8"),

		CommitHash: lipgloss.Color("#f9e2af"),
		Branch:     lipgloss.Color("#a6e3a1"),
		Tag:        lipgloss.Color("#f5c2e7"),
		Stash:      lipgloss.Color("#fab387"),
	}
}

// LightTheme returns a light variant (Catppuccin Latte palette).
func LightTheme() Theme {
	return Theme{
		Bg:          lipgloss.Color("#eff1f5"),
		Surface:     lipgloss.Color("#e6e9ef"),
		CursorLine:  lipgloss.Color("#dce0e8"),
		VisualRange: lipgloss.Color("#ccd0da"),
		Border:      lipgloss.Color("#bcc0cc"),

		Text:        lipgloss.Color("#4c4f69"),
		TextMuted:   lipgloss.Color("#6c6f85"),
		TextSubtle:  lipgloss.Color("#8c8fa1"),
		TextInverse: lipgloss.Color("#eff1f5"),

		Primary: lipgloss.Color("#1e66f5"),
		Accent:  lipgloss.Color("#ea76cb"),

		SectionHeader: lipgloss.Color("#1e66f5"),
		Added:         lipgloss.Color("#40a02b"),
		Removed:       lipgloss.Color("#d20f39"),
		Context:       lipgloss.Color("#6c6f85"),
		HunkHeader:    lipgloss.Color("#7287fd"),
		Untracked:     lipgloss.Color("#6c6f85"),

		Success: lipgloss.Color("#40a02b"),
		Warning: lipgloss.Color("#df8e1d"),
		Error:   lipgloss.Color("#d20f39"),

		CommitHash: lipgloss.Color("#df8e1d"),
		Branch:     lipgloss.Color("#40a02b"),
		Tag:        lipgloss.Color("#ea76cb"),
		Stash:      lipgloss.Color("#fe640b"),
	}
}

// ThemeByName resolves a configured theme name, defaulting to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}
