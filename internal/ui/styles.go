package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gitfold/gitfold/internal/status"
)

// Styles bundles the lipgloss styles derived from a Theme. Built once at
// startup and shared by every view.
type Styles struct {
	Theme Theme

	Text   lipgloss.Style
	Muted  lipgloss.Style
	Subtle lipgloss.Style

	SectionHeader lipgloss.Style
	FileLine      lipgloss.Style
	HunkHeader    lipgloss.Style
	DiffAdded     lipgloss.Style
	DiffRemoved   lipgloss.Style
	DiffContext   lipgloss.Style
	CommitLine    lipgloss.Style
	StashLine     lipgloss.Style

	CursorLine  lipgloss.Style
	VisualRange lipgloss.Style

	StatusBar    lipgloss.Style
	StatusBranch lipgloss.Style
	StatusInfo   lipgloss.Style
	StatusError  lipgloss.Style

	HelpOverlay lipgloss.Style
	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style

	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogButton lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,

		Text:   lipgloss.NewStyle().Foreground(t.Text),
		Muted:  lipgloss.NewStyle().Foreground(t.TextMuted),
		Subtle: lipgloss.NewStyle().Foreground(t.TextSubtle),

		SectionHeader: lipgloss.NewStyle().Foreground(t.SectionHeader).Bold(true),
		FileLine:      lipgloss.NewStyle().Foreground(t.Text),
		HunkHeader:    lipgloss.NewStyle().Foreground(t.HunkHeader),
		DiffAdded:     lipgloss.NewStyle().Foreground(t.Added),
		DiffRemoved:   lipgloss.NewStyle().Foreground(t.Removed),
		DiffContext:   lipgloss.NewStyle().Foreground(t.Context),
		CommitLine:    lipgloss.NewStyle().Foreground(t.CommitHash),
		StashLine:     lipgloss.NewStyle().Foreground(t.Stash),

		CursorLine:  lipgloss.NewStyle().Background(t.CursorLine),
		VisualRange: lipgloss.NewStyle().Background(t.VisualRange),

		StatusBar:    lipgloss.NewStyle().Background(t.Surface).Foreground(t.Text),
		StatusBranch: lipgloss.NewStyle().Background(t.Surface).Foreground(t.Branch).Bold(true),
		StatusInfo:   lipgloss.NewStyle().Background(t.Surface).Foreground(t.TextMuted),
		StatusError:  lipgloss.NewStyle().Background(t.Surface).Foreground(t.Error).Bold(true),

		HelpOverlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
		HelpKey:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(t.TextMuted),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Warning).
			Padding(1, 2),
		DialogTitle:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		DialogButton: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
	}
}

// ForTag returns the base style for a buffer line tag.
func (s Styles) ForTag(tag status.LineTag) lipgloss.Style {
	switch tag {
	case status.TagHeadLine:
		return s.Muted
	case status.TagSectionHeader:
		return s.SectionHeader
	case status.TagItem:
		return s.FileLine
	case status.TagHunkHeader:
		return s.HunkHeader
	case status.TagAdded:
		return s.DiffAdded
	case status.TagRemoved:
		return s.DiffRemoved
	case status.TagContext:
		return s.DiffContext
	default:
		return s.Text
	}
}
