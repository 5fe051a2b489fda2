package git

import "time"

// StatusCode represents a single-character Git status indicator.
type StatusCode byte

// Git status codes as single-byte indicators.
const (
	StatusUnmodified  StatusCode = ' '
	StatusModified    StatusCode = 'M'
	StatusTypeChanged StatusCode = 'T'
	StatusAdded       StatusCode = 'A'
	StatusDeleted     StatusCode = 'D'
	StatusRenamed     StatusCode = 'R'
	StatusCopied      StatusCode = 'C'
	StatusUnmerged    StatusCode = 'U'
	StatusUntracked   StatusCode = '?'
)

// Label returns the human-readable label rendered in the status buffer.
func (s StatusCode) Label() string {
	switch s {
	case StatusModified:
		return "Modified"
	case StatusTypeChanged:
		return "Type changed"
	case StatusAdded:
		return "New file"
	case StatusDeleted:
		return "Deleted"
	case StatusRenamed:
		return "Renamed"
	case StatusCopied:
		return "Copied"
	case StatusUnmerged:
		return "Unmerged"
	case StatusUntracked:
		return "Untracked"
	default:
		return ""
	}
}

// Hunk is one contiguous diff block, addressable both within the file's
// diff line sequence and by its position on disk.
//
// DiffFrom/DiffTo are 1-based indices into the owning Diff.Lines: DiffFrom
// is the "@@" header line, DiffTo the last body line. DiskFrom is the first
// line number of the hunk on the new-file side, used to translate a rendered
// line back to a worktree location.
type Hunk struct {
	Hash     string
	DiffFrom int
	DiffTo   int
	DiskFrom int
}

// Diff is a file's parsed unified diff: every hunk header and body line
// verbatim, plus per-hunk offsets into that line sequence.
type Diff struct {
	Lines []string
	Hunks []Hunk
}

// SubmoduleStatus describes what changed inside a dirty submodule.
type SubmoduleStatus struct {
	CommitChanged       bool
	HasTrackedChanges   bool
	HasUntrackedChanges bool
}

// File is one changed file within a status section.
type File struct {
	Name      string
	OrigName  string // set for renames/copies
	Mode      StatusCode
	Submodule *SubmoduleStatus
	Diff      *Diff
}

// HasDiff reports whether parsed hunks are available for the file.
func (f *File) HasDiff() bool { return f.Diff != nil && len(f.Diff.Hunks) > 0 }

// Ref describes a resolved reference (HEAD, upstream, push remote).
type Ref struct {
	Branch  string
	Ref     string // full tracking name, e.g. "origin/main"
	OID     string
	Abbrev  string
	Subject string
}

// Tag is the most recent reachable tag and its distance from HEAD.
type Tag struct {
	Name     string
	Distance int
}

// Commit represents a single commit in a log-like section.
type Commit struct {
	OID     string
	Abbrev  string
	Author  string
	Date    time.Time
	Subject string
}

// Stash is a single stash entry.
type Stash struct {
	Index   int
	Message string
}

// RebaseStatus reports an in-progress rebase and its progress counter.
type RebaseStatus struct {
	Onto    string
	Current int
	Total   int
}

// Snapshot is everything one refresh cycle reads from the repository.
// The status tree is built from a Snapshot and nothing else, which keeps
// rebuilds deterministic and testable without a live repository.
type Snapshot struct {
	Head       Ref
	Upstream   *Ref
	PushRemote *Ref
	Tag        *Tag
	Rebase     *RebaseStatus

	Conflicted []File
	Untracked  []File
	Unstaged   []File
	Staged     []File
	Stashes    []Stash
	Recent     []Commit

	UnpulledUpstream []Commit
	UnmergedUpstream []Commit
	UnpulledPush     []Commit
	UnmergedPush     []Commit
}
