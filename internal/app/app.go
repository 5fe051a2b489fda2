package app

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitfold/gitfold/internal/common"
	"github.com/gitfold/gitfold/internal/config"
	"github.com/gitfold/gitfold/internal/status"
	"github.com/gitfold/gitfold/internal/ui"
	"github.com/gitfold/gitfold/internal/ui/components"
	"github.com/gitfold/gitfold/internal/ui/views"
	"github.com/gitfold/gitfold/internal/watcher"
)

// Model is the top-level Bubbletea model: the status buffer view plus
// the status bar, help overlay, and watcher plumbing.
type Model struct {
	cfg      *config.Config
	registry *status.Registry
	styles   ui.Styles
	keys     KeyMap

	view *views.StatusView

	watchEvents <-chan watcher.Event

	width    int
	height   int
	showHelp bool

	statusMsg string
	statusErr bool
	statusExp time.Time
}

// editorDoneMsg is sent when a suspended editor process exits.
type editorDoneMsg struct{ err error }

// New creates the application model around an already-registered
// repository.
func New(cfg *config.Config, registry *status.Registry, repo *status.Repository, styles ui.Styles, events <-chan watcher.Event) Model {
	return Model{
		cfg:         cfg,
		registry:    registry,
		styles:      styles,
		keys:        DefaultKeyMap(),
		view:        views.NewStatusView(repo, styles, cfg.ConfirmDestructive),
		watchEvents: events,
	}
}

// Init triggers the first refresh and starts listening for watcher
// events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.view.Init()}
	if m.watchEvents != nil {
		cmds = append(cmds, m.waitForWatch())
	}
	return tea.Batch(cmds...)
}

// waitForWatch blocks on the watcher channel and re-arms itself after
// every event.
func (m Model) waitForWatch() tea.Cmd {
	ch := m.watchEvents
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

// Update processes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.SetSize(m.width, m.contentHeight())
		return m, nil

	case tea.KeyMsg:
		// The dialog gets every key while it is open.
		if m.view.InputCapture() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return common.RefreshMsg{} }
		case key.Matches(msg, m.keys.Back):
			if m.showHelp {
				m.showHelp = false
				return m, nil
			}
		}
		if m.showHelp {
			return m, nil
		}

	case watcher.Event:
		var cmds []tea.Cmd
		if repo := m.registry.Get(msg.Workdir); repo != nil {
			cmds = append(cmds, func() tea.Msg { return common.RefreshMsg{} })
		}
		cmds = append(cmds, m.waitForWatch())
		return m, tea.Batch(cmds...)

	case common.ErrMsg:
		m.statusMsg = msg.Err.Error()
		m.statusErr = true
		m.statusExp = time.Now().Add(5 * time.Second)
		return m, nil

	case common.InfoMsg:
		m.statusMsg = msg.Text
		m.statusErr = false
		m.statusExp = time.Now().Add(3 * time.Second)
		return m, nil

	case common.ToggleHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil

	case common.EditMsg:
		return m, m.openEditor(msg)

	case editorDoneMsg:
		if msg.err != nil {
			return m, common.CmdErr(msg.err)
		}
		return m, func() tea.Msg { return common.RefreshMsg{} }
	}

	view, cmd := m.view.Update(msg)
	m.view = view
	return m, cmd
}

// openEditor suspends the TUI and runs the configured editor on the
// file, jumping to the line when the editor understands +N.
func (m Model) openEditor(msg common.EditMsg) tea.Cmd {
	editor := m.cfg.Editor
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	parts := strings.Fields(editor)
	args := parts[1:]
	if msg.Line > 0 {
		args = append(args, "+"+strconv.Itoa(msg.Line))
	}
	args = append(args, msg.Path)

	c := exec.Command(parts[0], args...)
	c.Dir = m.view.Repo().Workdir()
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

// View renders the entire UI. No I/O here.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showHelp {
		return components.RenderHelp(m.styles, "Keyboard Shortcuts",
			components.HelpEntries(), m.width, m.height)
	}

	content := lipgloss.NewStyle().
		Width(m.width).Height(m.contentHeight()).
		Render(m.view.View())

	statusBar := components.RenderStatusBar(m.styles, m.barData(), m.width)

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

// barData assembles the status bar from in-memory state only.
func (m Model) barData() components.StatusBarData {
	repo := m.view.Repo()
	sum := repo.Summary()

	data := components.StatusBarData{
		Branch:     sum.Branch,
		Ahead:      sum.Ahead,
		Behind:     sum.Behind,
		Clean:      sum.Clean,
		Rebasing:   sum.Rebasing,
		Refreshing: m.view.Refreshing(),
		RepoRoot:   repo.Workdir(),
	}
	if m.statusMsg != "" && time.Now().Before(m.statusExp) {
		data.Message = m.statusMsg
		data.IsError = m.statusErr
	}
	if m.view.Visual() {
		data.Message = "-- VISUAL --"
		data.IsError = false
	}
	return data
}

func (m Model) contentHeight() int {
	h := m.height - 1 // status bar
	if h < 1 {
		h = 1
	}
	return h
}
