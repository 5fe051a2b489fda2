// Package watcher monitors Git-internal state files and reports which
// repository changed. It never watches the working tree itself: only the
// handful of files under .git that move on meaningful operations, so it
// stays cheap on monorepos where recursive watches would exhaust
// inotify/kqueue handles.
//
// Watched per repository:
//   - .git itself      → HEAD, index, MERGE_HEAD, packed-refs, ...
//   - .git/refs        → ref updates
//   - .git/refs/heads  → local branches
//   - .git/refs/tags   → tags
//   - .git/refs/remotes (one level deep) → fetch/pull updates
package watcher

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gitfold/gitfold/internal/logging"
)

// Event reports that a repository's git state changed.
type Event struct {
	Workdir string
}

// Watcher multiplexes fsnotify events from any number of repositories
// onto one debounced event channel.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      logging.Logger
	debounce time.Duration

	mu    sync.Mutex
	roots map[string]string // gitDir (absolute) → workdir

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// New creates a watcher. Events arrive on Events() after rapid bursts
// are coalesced within the debounce window, plus a random jitter of up
// to half the window so multiple instances watching the same .git do
// not all re-invoke git at the same instant.
func New(debounce time.Duration, log logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}
	w := &Watcher{
		fs:       fs,
		log:      log,
		debounce: debounce,
		roots:    make(map[string]string),
		events:   make(chan Event, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Events returns the debounced event channel. Closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Add starts watching one repository's git dir.
func (w *Watcher) Add(workdir, gitDir string) error {
	abs, err := filepath.Abs(gitDir)
	if err != nil {
		return err
	}

	targets := []string{
		abs,
		filepath.Join(abs, "refs"),
		filepath.Join(abs, "refs", "heads"),
		filepath.Join(abs, "refs", "tags"),
	}
	remotesDir := filepath.Join(abs, "refs", "remotes")
	if info, err := os.Stat(remotesDir); err == nil && info.IsDir() {
		targets = append(targets, remotesDir)
		if entries, err := os.ReadDir(remotesDir); err == nil {
			for _, e := range entries {
				if e.IsDir() {
					targets = append(targets, filepath.Join(remotesDir, e.Name()))
				}
			}
		}
	}

	added := 0
	for _, t := range targets {
		if info, err := os.Stat(t); err != nil || !info.IsDir() {
			continue
		}
		if err := w.fs.Add(t); err != nil {
			// Some dirs may vanish between Stat and Add; not fatal.
			w.log.Debug("watch add failed", "path", t, "error", err)
			continue
		}
		added++
	}

	w.mu.Lock()
	w.roots[abs] = workdir
	w.mu.Unlock()

	w.log.Debug("watching repository", "workdir", workdir, "targets", added)
	return nil
}

// Remove stops watching a repository. Pending events for it may still
// be delivered.
func (w *Watcher) Remove(gitDir string) {
	abs, err := filepath.Abs(gitDir)
	if err != nil {
		return
	}
	w.mu.Lock()
	delete(w.roots, abs)
	w.mu.Unlock()
}

// Close tears the watcher down and closes the event channel.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fs.Close()
}

func (w *Watcher) run() {
	defer close(w.events)

	// One pending timer per workdir, so a busy repo cannot starve
	// notifications for a quiet one.
	timers := make(map[string]*time.Timer)
	fired := make(chan string, 8)

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if shouldIgnore(ev.Name) {
				continue
			}
			workdir := w.workdirFor(ev.Name)
			if workdir == "" {
				continue
			}
			d := w.debounce + w.jitter()
			if t, ok := timers[workdir]; ok {
				t.Reset(d)
			} else {
				wd := workdir
				timers[workdir] = time.AfterFunc(d, func() {
					select {
					case fired <- wd:
					case <-w.done:
					}
				})
			}

		case wd := <-fired:
			delete(timers, wd)
			select {
			case w.events <- Event{Workdir: wd}:
			default:
				// Consumer is behind; it will refresh anyway.
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)

		case <-w.done:
			for _, t := range timers {
				t.Stop()
			}
			return
		}
	}
}

// workdirFor maps an event path back to the owning repository by
// longest git-dir prefix.
func (w *Watcher) workdirFor(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make([]string, 0, len(w.roots))
	for d := range w.roots {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	for _, d := range dirs {
		if abs == d || strings.HasPrefix(abs, d+string(filepath.Separator)) {
			return w.roots[d]
		}
	}
	return ""
}

func (w *Watcher) jitter() time.Duration {
	half := int64(w.debounce / 2)
	if half <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(half))
}

// shouldIgnore filters events that must not trigger a refresh.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	// Git lock files are held mid-operation; re-invoking git while a
	// lock exists is exactly what we must not do.
	if strings.HasSuffix(base, ".lock") {
		return true
	}

	// Editor swap/temp files that end up in .git.
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") ||
		strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") {
		return true
	}

	// Fires on every keystroke while a commit message is being edited.
	if base == "COMMIT_EDITMSG" {
		return true
	}

	if base == "gc.log" || strings.HasPrefix(base, "fsmonitor") {
		return true
	}

	return false
}
