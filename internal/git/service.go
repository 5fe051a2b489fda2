package git

// ApplyOptions control how a generated patch fragment is applied.
type ApplyOptions struct {
	Cached  bool // apply to the index instead of the worktree
	Reverse bool // apply the patch in reverse
	Index   bool // apply to both worktree and index
}

// Service defines the contract for all Git operations the status buffer
// needs. Views and the status engine depend on this interface, never on
// exec.Command directly, so everything above it is testable with fakes.
type Service interface {
	// ── Repository info ──────────────────────────────────────────────
	RepoRoot() string
	GitDir() string

	// ── Snapshot gathering ───────────────────────────────────────────
	// Snapshot collects everything one refresh cycle needs: refs,
	// status file lists with parsed diffs, stashes, and the commit
	// lists for the unpulled/unmerged/recent sections.
	Snapshot(recentCount int) (*Snapshot, error)

	// ── Whole-file operations ────────────────────────────────────────
	Stage(paths ...string) error
	StageAll() error
	Unstage(paths ...string) error
	UnstageAll() error
	Checkout(paths ...string) error
	Remove(paths ...string) error

	// ── Patch application ────────────────────────────────────────────
	ApplyPatch(patch string, opts ApplyOptions) error

	// ── Stashes ──────────────────────────────────────────────────────
	StashPop(index int) error
	StashApply(index int) error
	StashDrop(index int) error
}
