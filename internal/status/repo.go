package status

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gitfold/gitfold/internal/git"
	"github.com/gitfold/gitfold/internal/logging"
)

// BufferView is a completed render: the tree, its lines, and where the
// cursor should land. Consumers only ever see completed views, never a
// tree mid-build.
type BufferView struct {
	Tree       *Tree
	Lines      []Line
	CursorLine int
}

// Repository owns one working tree's status buffer: the git service,
// the current tree/lines, and the refresh coordinator that serializes
// rebuilds.
type Repository struct {
	svc         git.Service
	log         logging.Logger
	cfg         RenderConfig
	recentCount int
	coord       *Coordinator

	mu           sync.RWMutex
	snap         *git.Snapshot
	tree         *Tree
	lines        []Line
	installedGen uint64

	genCounter atomic.Uint64
}

// NewRepository creates a repository handle around a git service.
func NewRepository(svc git.Service, cfg RenderConfig, recentCount int, watchdog time.Duration, log logging.Logger) *Repository {
	if log == nil {
		log = logging.Nop()
	}
	return &Repository{
		svc:         svc,
		log:         log,
		cfg:         cfg,
		recentCount: recentCount,
		coord:       NewCoordinator(watchdog, log),
	}
}

// Service exposes the underlying git service.
func (r *Repository) Service() git.Service { return r.svc }

// Summary condenses the cached snapshot for the status bar. All fields
// are zero before the first refresh.
type Summary struct {
	Branch   string
	Ahead    int
	Behind   int
	Clean    bool
	Rebasing bool
}

// Summary reads the cached snapshot; no git I/O.
func (r *Repository) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snap == nil {
		return Summary{}
	}
	s := Summary{
		Ahead:    len(r.snap.UnmergedUpstream),
		Behind:   len(r.snap.UnpulledUpstream),
		Rebasing: r.snap.Rebase != nil,
		Clean: len(r.snap.Conflicted) == 0 && len(r.snap.Untracked) == 0 &&
			len(r.snap.Unstaged) == 0 && len(r.snap.Staged) == 0,
	}
	s.Branch = r.snap.Head.Branch
	if s.Branch == "" {
		s.Branch = r.snap.Head.Abbrev
	}
	return s
}

// Workdir returns the repository root path.
func (r *Repository) Workdir() string { return r.svc.RepoRoot() }

// Current returns the last completed view. The tree may be nil before
// the first refresh.
func (r *Repository) Current() BufferView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return BufferView{Tree: r.tree, Lines: r.lines}
}

// Refresh rebuilds the tree from a fresh snapshot, holding the
// coordinator permit for the duration. cursor is the key path of the
// node the cursor was on; the returned view carries the line it should
// be restored to in the new tree, falling back to the nearest
// surviving ancestor.
//
// Returns ErrBusy, without rebuilding, when a refresh is already in
// flight.
func (r *Repository) Refresh(cursor KeyPath) (BufferView, error) {
	var view BufferView
	err := r.coord.Do("refresh", func() error {
		gen := r.genCounter.Add(1)

		snap, err := r.svc.Snapshot(r.recentCount)
		if err != nil {
			return err
		}

		r.mu.RLock()
		prev := r.tree
		r.mu.RUnlock()

		tree, lines := Build(prev, snap, r.cfg)
		view = r.install(gen, snap, tree, lines, cursor)
		return nil
	})
	return view, err
}

// Rerender rebuilds the rendered buffer from the cached snapshot, with
// no git I/O. Used after fold toggles, when only the layout changed.
func (r *Repository) Rerender(cursor KeyPath) BufferView {
	gen := r.genCounter.Add(1)

	r.mu.RLock()
	snap, prev := r.snap, r.tree
	r.mu.RUnlock()
	if snap == nil {
		return BufferView{CursorLine: 1}
	}

	tree, lines := Build(prev, snap, r.cfg)
	return r.install(gen, snap, tree, lines, cursor)
}

// install publishes a completed build unless a newer generation was
// installed while this one was running (possible after a watchdog
// force-release).
func (r *Repository) install(gen uint64, snap *git.Snapshot, tree *Tree, lines []Line, cursor KeyPath) BufferView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen < r.installedGen {
		r.log.Debug("discarding stale rebuild", "gen", gen, "installed", r.installedGen)
		return BufferView{Tree: r.tree, Lines: r.lines, CursorLine: RestoreLine(r.tree, cursor)}
	}
	r.installedGen = gen
	r.snap = snap
	r.tree = tree
	r.lines = lines
	return BufferView{Tree: tree, Lines: lines, CursorLine: RestoreLine(tree, cursor)}
}

// ToggleFold flips the fold state of the deepest node at line and
// re-renders. Returns the updated view and true, or false when the
// line resolves to nothing foldable.
func (r *Repository) ToggleFold(line int) (BufferView, bool) {
	r.mu.RLock()
	tree := r.tree
	r.mu.RUnlock()

	sec, item, hunk := Resolve(tree, line)
	kp := KeyPathAt(tree, line)

	switch {
	case hunk != nil:
		hunk.Folded = !hunk.Folded
	case item != nil:
		item.Folded = !item.Folded
	case sec != nil && !sec.IgnoreSign:
		sec.Folded = !sec.Folded
	default:
		return BufferView{}, false
	}
	return r.Rerender(kp), true
}
