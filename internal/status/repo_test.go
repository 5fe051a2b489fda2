package status

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gitfold/gitfold/internal/git"
)

// fakeService records every git operation instead of running git.
type fakeService struct {
	mu   sync.Mutex
	root string

	snap    *git.Snapshot
	snapErr error

	staged    [][]string
	unstaged  [][]string
	checkouts [][]string
	removed   [][]string
	patches   []appliedPatch
	stashOps  []string
}

type appliedPatch struct {
	patch string
	opts  git.ApplyOptions
}

func newFakeService(snap *git.Snapshot) *fakeService {
	return &fakeService{root: "/work/repo", snap: snap}
}

func (f *fakeService) RepoRoot() string { return f.root }
func (f *fakeService) GitDir() string   { return f.root + "/.git" }

func (f *fakeService) Snapshot(int) (*git.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return f.snap, nil
}

func (f *fakeService) Stage(paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staged = append(f.staged, paths)
	return nil
}

func (f *fakeService) StageAll() error { return nil }

func (f *fakeService) Unstage(paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unstaged = append(f.unstaged, paths)
	return nil
}

func (f *fakeService) UnstageAll() error { return nil }

func (f *fakeService) Checkout(paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, paths)
	return nil
}

func (f *fakeService) Remove(paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, paths)
	return nil
}

func (f *fakeService) ApplyPatch(patch string, opts git.ApplyOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, appliedPatch{patch: patch, opts: opts})
	return nil
}

func (f *fakeService) StashPop(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stashOps = append(f.stashOps, "pop")
	return nil
}

func (f *fakeService) StashApply(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stashOps = append(f.stashOps, "apply")
	return nil
}

func (f *fakeService) StashDrop(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stashOps = append(f.stashOps, "drop")
	return nil
}

func newTestRepo(t *testing.T, snap *git.Snapshot) (*Repository, *fakeService) {
	t.Helper()
	svc := newFakeService(snap)
	return NewRepository(svc, RenderConfig{}, 10, time.Minute, nil), svc
}

func TestRepositoryRefresh(t *testing.T) {
	repo, _ := newTestRepo(t, testSnapshot())

	require.Nil(t, repo.Current().Tree)

	view, err := repo.Refresh(KeyPath{})
	require.NoError(t, err)
	require.NotNil(t, view.Tree)
	require.Len(t, view.Lines, 25)
	require.Equal(t, 1, view.CursorLine)

	cur := repo.Current()
	require.Equal(t, view.Tree, cur.Tree)
}

func TestRepositoryRefreshError(t *testing.T) {
	repo, svc := newTestRepo(t, nil)
	svc.snapErr = errors.New("git exploded")

	_, err := repo.Refresh(KeyPath{})
	require.ErrorContains(t, err, "git exploded")
	require.Nil(t, repo.Current().Tree, "failed refresh installs nothing")
}

func TestRepositoryCursorRestore(t *testing.T) {
	snap := testSnapshot()
	repo, svc := newTestRepo(t, snap)

	view, err := repo.Refresh(KeyPath{})
	require.NoError(t, err)

	// Cursor inside the staged hunk body.
	kp := KeyPathAt(view.Tree, 14)
	require.Equal(t, "baz.go", kp.Item)

	// The staged file disappears; the cursor lands at the buffer top
	// since the whole section is gone.
	svc.mu.Lock()
	svc.snap = &git.Snapshot{
		Head:     snap.Head,
		Unstaged: snap.Unstaged,
		Stashes:  snap.Stashes,
		Recent:   snap.Recent,
	}
	svc.mu.Unlock()

	view2, err := repo.Refresh(kp)
	require.NoError(t, err)
	require.Nil(t, view2.Tree.Section(SectionStaged))
	require.Equal(t, 1, view2.CursorLine)

	// A cursor on a surviving item follows it to its new line.
	kp = KeyPath{Section: SectionUnstaged, Item: "foo.go"}
	view3, err := repo.Refresh(kp)
	require.NoError(t, err)
	require.Equal(t, view3.Tree.Section(SectionUnstaged).Item("foo.go").First, view3.CursorLine)
}

func TestRepositoryToggleFold(t *testing.T) {
	repo, _ := newTestRepo(t, testSnapshot())
	view, err := repo.Refresh(KeyPath{})
	require.NoError(t, err)
	full := len(view.Lines)

	// Toggle on the foo.go hunk header folds its body away.
	h := view.Tree.Section(SectionUnstaged).Item("foo.go").Hunks[0]
	view2, ok := repo.ToggleFold(h.First)
	require.True(t, ok)
	require.Len(t, view2.Lines, full-4)
	require.Equal(t, h.First, view2.CursorLine, "cursor stays on the folded hunk")

	// Toggle again restores it.
	view3, ok := repo.ToggleFold(view2.CursorLine)
	require.True(t, ok)
	require.Len(t, view3.Lines, full)

	// Gap lines toggle nothing.
	_, ok = repo.ToggleFold(2)
	require.False(t, ok)

	// The head section ignores fold commands.
	_, ok = repo.ToggleFold(1)
	require.False(t, ok)
}

func TestRepositoryRefreshBusy(t *testing.T) {
	_, svc := newTestRepo(t, testSnapshot())

	block := make(chan struct{})
	started := make(chan struct{})
	svcBlocking := &blockingService{fakeService: svc, started: started, release: block}
	repoBlocked := NewRepository(svcBlocking, RenderConfig{}, 10, time.Minute, nil)

	done := make(chan error, 1)
	go func() {
		_, err := repoBlocked.Refresh(KeyPath{})
		done <- err
	}()
	<-started

	_, err := repoBlocked.Refresh(KeyPath{})
	require.ErrorIs(t, err, ErrBusy)

	close(block)
	require.NoError(t, <-done)
}

// blockingService stalls Snapshot until released.
type blockingService struct {
	*fakeService
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingService) Snapshot(n int) (*git.Snapshot, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.fakeService.Snapshot(n)
}
