package views

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitfold/gitfold/internal/common"
	"github.com/gitfold/gitfold/internal/status"
	"github.com/gitfold/gitfold/internal/ui"
	"github.com/gitfold/gitfold/internal/ui/components"
)

// StatusView renders one repository's status buffer: a flat list of
// lines backed by the foldable tree, with a cursor and an optional
// visual range. All mutations go through the Repository; the view never
// touches git directly.
//
//	Head:     a1b2c3d main Fix parser
//	Merge:    e4f5a6b origin/main Fix parser
//
//	Unstaged changes (2)
//	    Modified internal/git/cli.go
//	@@ -10,4 +10,6 @@
//	 	ctx, cancel := context.WithTimeout(...)
//	+	defer cancel()
type StatusView struct {
	repo    *status.Repository
	styles  ui.Styles
	confirm bool // ask before discarding

	width  int
	height int

	view   status.BufferView
	cursor int // 1-based buffer line
	scroll int // 0-based index of first visible line

	visual      bool
	visualStart int

	pendingZ bool // saw "z", waiting for "a"

	dialog         components.Dialog
	pendingSel     status.Selection
	pendingPartial bool
	pendingOp      string

	refreshing bool
}

// NewStatusView creates the buffer view for one repository.
func NewStatusView(repo *status.Repository, styles ui.Styles, confirmDestructive bool) *StatusView {
	return &StatusView{
		repo:    repo,
		styles:  styles,
		confirm: confirmDestructive,
		cursor:  1,
	}
}

// ── Init / SetSize ──────────────────────────────────────────────────────────

func (v *StatusView) Init() tea.Cmd { return v.refresh() }

func (v *StatusView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.ensureVisible()
}

// ── Messages ────────────────────────────────────────────────────────────────

type viewMsg struct {
	view    status.BufferView
	workdir string
}

// opFailedMsg reports a failed mutation that still needs a refresh.
type opFailedMsg struct{ err error }

func (v *StatusView) refresh() tea.Cmd {
	kp := status.KeyPathAt(v.view.Tree, v.cursor)
	v.refreshing = true
	repo := v.repo
	return func() tea.Msg {
		view, err := repo.Refresh(kp)
		if err != nil {
			if errors.Is(err, status.ErrBusy) {
				// A refresh is already running; its result will arrive.
				return nil
			}
			return common.ErrMsg{Err: err}
		}
		return viewMsg{view: view, workdir: repo.Workdir()}
	}
}

// ── Update ──────────────────────────────────────────────────────────────────

func (v *StatusView) Update(msg tea.Msg) (*StatusView, tea.Cmd) {
	// The result message arrives after the dialog has hidden itself, so
	// it is handled outside the capture gate.
	if res, ok := msg.(components.DialogResult); ok {
		return v.dialogDone(res)
	}
	if v.dialog.Visible() {
		var cmd tea.Cmd
		v.dialog, cmd = v.dialog.Update(msg)
		return v, cmd
	}

	switch msg := msg.(type) {
	case viewMsg:
		if msg.workdir != v.repo.Workdir() {
			return v, nil
		}
		v.refreshing = false
		v.view = msg.view
		if msg.view.CursorLine > 0 {
			v.cursor = msg.view.CursorLine
		}
		v.clampCursor()
		v.ensureVisible()
		return v, nil

	case common.RefreshMsg:
		return v, v.refresh()

	case opFailedMsg:
		return v, tea.Batch(common.CmdErr(msg.err), v.refresh())

	case tea.MouseMsg:
		return v.handleMouse(msg)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *StatusView) dialogDone(res components.DialogResult) (*StatusView, tea.Cmd) {
	if !res.Confirmed {
		v.pendingOp = ""
		return v, nil
	}
	op := v.pendingOp
	sel := v.pendingSel
	partial := v.pendingPartial
	v.pendingOp = ""
	if op == "discard" {
		return v, v.doOp("discard", func() error {
			return v.repo.Discard(sel, partial)
		})
	}
	return v, nil
}

func (v *StatusView) handleMouse(msg tea.MouseMsg) (*StatusView, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		v.moveCursor(-3)
	case tea.MouseButtonWheelDown:
		v.moveCursor(3)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			break
		}
		line := v.scroll + msg.Y + 1
		if line >= 1 && line <= len(v.view.Lines) {
			v.cursor = line
		}
	}
	return v, nil
}

func (v *StatusView) handleKey(msg tea.KeyMsg) (*StatusView, tea.Cmd) {
	key := msg.String()

	// "za" fold toggle, vim style.
	if v.pendingZ {
		v.pendingZ = false
		if key == "a" {
			return v.toggleFold()
		}
		return v, nil
	}

	switch key {
	case "j", "down":
		v.moveCursor(1)
	case "k", "up":
		v.moveCursor(-1)
	case "g", "home":
		v.cursor = 1
		v.ensureVisible()
	case "G", "end":
		v.cursor = len(v.view.Lines)
		v.clampCursor()
		v.ensureVisible()
	case "ctrl+d", "pgdown":
		v.moveCursor(v.pageSize())
	case "ctrl+u", "pgup":
		v.moveCursor(-v.pageSize())

	case "z":
		v.pendingZ = true
	case "tab":
		return v.toggleFold()

	case "v", "V":
		v.visual = true
		v.visualStart = v.cursor
	case "esc":
		v.visual = false

	case "s":
		return v.stage()
	case "u":
		return v.unstage()
	case "x":
		return v.discard()
	case "a":
		return v.stashApply(false)
	case "p":
		return v.stashApply(true)

	case "enter":
		if path, diskLine, ok := status.JumpTarget(v.view.Tree, v.cursor); ok {
			return v, func() tea.Msg { return common.EditMsg{Path: path, Line: diskLine} }
		}

	case "r":
		return v, v.refresh()
	}
	return v, nil
}

// ── Cursor and scrolling ────────────────────────────────────────────────────

func (v *StatusView) moveCursor(delta int) {
	v.cursor += delta
	v.clampCursor()
	v.ensureVisible()
}

func (v *StatusView) clampCursor() {
	if n := len(v.view.Lines); v.cursor > n {
		v.cursor = n
	}
	if v.cursor < 1 {
		v.cursor = 1
	}
}

func (v *StatusView) pageSize() int {
	ps := v.height / 2
	if ps < 1 {
		ps = 1
	}
	return ps
}

// ensureVisible keeps the cursor inside the scroll window.
func (v *StatusView) ensureVisible() {
	if v.height <= 0 {
		return
	}
	row := v.cursor - 1
	if row < v.scroll {
		v.scroll = row
	}
	if row >= v.scroll+v.height {
		v.scroll = row - v.height + 1
	}
	maxScroll := len(v.view.Lines) - v.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if v.scroll > maxScroll {
		v.scroll = maxScroll
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
}

// ── Actions ─────────────────────────────────────────────────────────────────

// selection returns the current selection and whether it came from a
// visual range. Leaves visual mode as a side effect: commands consume
// the range.
func (v *StatusView) selection() (status.Selection, bool) {
	first, last := v.cursor, v.cursor
	partial := false
	if v.visual {
		first, last = v.visualStart, v.cursor
		if first > last {
			first, last = last, first
		}
		partial = true
		v.visual = false
	}
	return status.Select(v.view.Tree, first, last), partial
}

func (v *StatusView) stage() (*StatusView, tea.Cmd) {
	sel, partial := v.selection()
	if sel.Empty() {
		return v, nil
	}
	return v, v.doOp("stage", func() error { return v.repo.Stage(sel, partial) })
}

func (v *StatusView) unstage() (*StatusView, tea.Cmd) {
	sel, partial := v.selection()
	if sel.Empty() {
		return v, nil
	}
	return v, v.doOp("unstage", func() error { return v.repo.Unstage(sel, partial) })
}

func (v *StatusView) discard() (*StatusView, tea.Cmd) {
	sel, partial := v.selection()
	if sel.Empty() {
		return v, nil
	}
	if v.confirm {
		v.pendingSel = sel
		v.pendingPartial = partial
		v.pendingOp = "discard"
		what := describeSelection(sel)
		v.dialog = components.NewConfirmDialog(v.styles,
			"Discard changes?",
			fmt.Sprintf("This permanently discards %s.", what),
			"discard")
		return v, nil
	}
	return v, v.doOp("discard", func() error { return v.repo.Discard(sel, partial) })
}

func (v *StatusView) stashApply(pop bool) (*StatusView, tea.Cmd) {
	sel, _ := v.selection()
	if sel.Commit == nil {
		return v, nil
	}
	name := "apply stash"
	if pop {
		name = "pop stash"
	}
	return v, v.doOp(name, func() error { return v.repo.ApplyStash(sel, pop) })
}

// doOp runs a mutation off the update loop. A refresh follows either
// way; git may have partially applied a multi-hunk operation before
// failing, so the buffer must be rebuilt from what is actually there.
func (v *StatusView) doOp(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return opFailedMsg{err: fmt.Errorf("%s: %w", name, err)}
		}
		return common.RefreshMsg{}
	}
}

func (v *StatusView) toggleFold() (*StatusView, tea.Cmd) {
	view, ok := v.repo.ToggleFold(v.cursor)
	if !ok {
		return v, nil
	}
	v.view = view
	if view.CursorLine > 0 {
		v.cursor = view.CursorLine
	}
	v.clampCursor()
	v.ensureVisible()
	return v, nil
}

func describeSelection(sel status.Selection) string {
	switch {
	case sel.Commit != nil:
		return fmt.Sprintf("stash %q", sel.Commit.Name)
	case sel.Item != nil && sel.FirstLine != sel.LastLine:
		return fmt.Sprintf("the selected lines of %q", sel.Item.Name)
	case sel.Item != nil:
		return fmt.Sprintf("changes to %q", sel.Item.Name)
	case len(sel.Items) == 1:
		return fmt.Sprintf("changes to %q", sel.Items[0].Name)
	default:
		return fmt.Sprintf("changes to %d files", len(sel.Items))
	}
}

// ── View ────────────────────────────────────────────────────────────────────

func (v *StatusView) View() string {
	if len(v.view.Lines) == 0 {
		msg := "Loading…"
		if !v.refreshing {
			msg = "✓ Working tree clean"
		}
		return lipgloss.NewStyle().
			Foreground(v.styles.Theme.TextMuted).
			Width(v.width).Height(v.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(msg)
	}

	selFirst, selLast := -1, -1
	if v.visual {
		selFirst, selLast = v.visualStart, v.cursor
		if selFirst > selLast {
			selFirst, selLast = selLast, selFirst
		}
	}

	end := v.scroll + v.height
	if end > len(v.view.Lines) {
		end = len(v.view.Lines)
	}

	var buf strings.Builder
	for i := v.scroll; i < end; i++ {
		line := v.view.Lines[i]
		no := i + 1

		st := v.styles.ForTag(line.Tag)
		switch {
		case no == v.cursor:
			st = st.Background(v.styles.Theme.CursorLine)
		case no >= selFirst && no <= selLast:
			st = st.Background(v.styles.Theme.VisualRange)
		}

		text := line.Text
		if no == v.cursor || (no >= selFirst && no <= selLast) {
			// Pad so the background covers the full row.
			text = ui.PadRight(text, v.width)
		} else {
			text = ui.Truncate(text, v.width)
		}

		if i > v.scroll {
			buf.WriteByte('\n')
		}
		buf.WriteString(st.Render(text))
	}

	content := lipgloss.NewStyle().Width(v.width).Height(v.height).Render(buf.String())

	if v.dialog.Visible() {
		return ui.PlaceCentre(v.width, v.height, v.dialog.View())
	}
	return content
}

// ── Status bar data ─────────────────────────────────────────────────────────

// CursorPos returns the cursor position for the status bar.
func (v *StatusView) CursorPos() (line, total int) {
	return v.cursor, len(v.view.Lines)
}

// Visual reports whether a visual range is active.
func (v *StatusView) Visual() bool { return v.visual }

// InputCapture reports whether the view wants exclusive key input
// (a confirmation dialog is open).
func (v *StatusView) InputCapture() bool { return v.dialog.Visible() }

// Refreshing reports whether a refresh is in flight.
func (v *StatusView) Refreshing() bool { return v.refreshing }

// Repo returns the backing repository.
func (v *StatusView) Repo() *status.Repository { return v.repo }
