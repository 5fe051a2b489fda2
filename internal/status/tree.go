// Package status implements the foldable status tree: building it from a
// repository snapshot, resolving rendered lines back to tree nodes,
// turning cursor/visual ranges into typed selections, generating sub-hunk
// patches, and coordinating rebuilds.
package status

import "github.com/gitfold/gitfold/internal/git"

// Category identifies a section's role. It is decided once at build time
// and carried on the node, never re-derived from the section name.
type Category int

// Section categories in render order.
const (
	CatHead Category = iota
	CatRebase
	CatConflicted
	CatUntracked
	CatUnstaged
	CatStaged
	CatStashes
	CatUnpulledPush
	CatUnmergedPush
	CatUnpulledUpstream
	CatUnmergedUpstream
	CatRecent
)

// Kind classifies how a section's items behave.
type Kind int

// Section kinds.
const (
	KindHeader        Kind = iota // informational rows, no actionable items
	KindDiffBearing               // items are files, possibly with hunks
	KindCommitBearing             // items are commits or stashes
)

// Kind returns the section kind implied by the category.
func (c Category) Kind() Kind {
	switch c {
	case CatHead, CatRebase:
		return KindHeader
	case CatConflicted, CatUntracked, CatUnstaged, CatStaged:
		return KindDiffBearing
	default:
		return KindCommitBearing
	}
}

// LineTag is the semantic tag attached to each rendered line, consumed by
// the view for syntax decoration.
type LineTag int

// Line tags.
const (
	TagNone LineTag = iota
	TagHeadLine
	TagSectionHeader
	TagItem
	TagHunkHeader
	TagAdded
	TagRemoved
	TagContext
)

// Line is one rendered buffer line plus its decoration tag.
type Line struct {
	Text string
	Tag  LineTag
}

// Hunk is one diff hunk's rendered extent within an item.
//
// First/Last are 1-based buffer lines covering the hunk header and, when
// unfolded, its body. A hunk hidden under a folded ancestor keeps zero
// ranges: it renders nothing but its key and fold state remain, so both
// survive rebuilds. DiffFrom/DiffTo/DiskFrom mirror the git.Hunk the
// node was built from. Hash is the stable identity used to carry Folded
// across rebuilds.
type Hunk struct {
	Hash     string
	First    int
	Last     int
	DiffFrom int
	DiffTo   int
	DiskFrom int
	Folded   bool
}

// Item is one file or commit-like entry within a section.
// Name is the stable key within the section. First/Last nest inside the
// owning section's range, and stay zero while the section is folded.
type Item struct {
	Name   string
	First  int
	Last   int
	Folded bool

	Mode      string // rendered mode label, file items only
	Hunks     []*Hunk
	Diff      *git.Diff
	OID       string // commit-like items
	StashIdx  int    // stash items
	Submodule bool
}

// Section is one status category's rendered block: a header line plus,
// when unfolded, one block per item. Name is the stable key.
type Section struct {
	Name       string
	Category   Category
	Kind       Kind
	First      int
	Last       int
	Folded     bool
	IgnoreSign bool
	Items      []*Item
}

// Tree is the complete status tree for one rendered buffer. It is
// rebuilt wholesale on every refresh; only fold state survives, carried
// over by key lookup against the previous tree.
type Tree struct {
	Sections []*Section
}

// Section returns the section with the given name, or nil.
func (t *Tree) Section(name string) *Section {
	for _, s := range t.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Item returns the item with the given name, or nil.
func (s *Section) Item(name string) *Item {
	for _, it := range s.Items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// Hunk returns the hunk with the given hash, or nil.
func (it *Item) Hunk(hash string) *Hunk {
	for _, h := range it.Hunks {
		if h.Hash == hash {
			return h
		}
	}
	return nil
}

// KeyPath addresses a node by stable keys rather than line numbers,
// which are invalidated by every rebuild.
type KeyPath struct {
	Section string
	Item    string
	Hunk    string
}

// KeyPathAt returns the key path of the deepest node containing line.
func KeyPathAt(t *Tree, line int) KeyPath {
	sec, item, hunk := Resolve(t, line)
	kp := KeyPath{}
	if sec != nil {
		kp.Section = sec.Name
	}
	if item != nil {
		kp.Item = item.Name
	}
	if hunk != nil {
		kp.Hunk = hunk.Hash
	}
	return kp
}

// RestoreLine re-resolves a key path against a freshly built tree,
// falling back to the nearest surviving ancestor. A node that survives
// only logically, hidden under a folded ancestor, counts as gone here:
// the cursor lands on the nearest rendered ancestor instead. Returns 1
// when nothing survives (or the tree is empty).
func RestoreLine(t *Tree, kp KeyPath) int {
	if t == nil {
		return 1
	}
	sec := t.Section(kp.Section)
	if sec == nil {
		return 1
	}
	item := sec.Item(kp.Item)
	if item == nil || item.First == 0 {
		return sec.First
	}
	if h := item.Hunk(kp.Hunk); h != nil && h.First > 0 {
		return h.First
	}
	return item.First
}
