package status

import (
	"fmt"
	"strings"

	"github.com/gitfold/gitfold/internal/git"
)

// Stable section names. These are the keys fold state and cursor
// restoration are reconciled by, so they must not change between
// rebuilds of the same repository state.
const (
	SectionHead       = "Head"
	SectionRebase     = "Rebasing"
	SectionConflicted = "Conflicted changes"
	SectionUntracked  = "Untracked files"
	SectionUnstaged   = "Unstaged changes"
	SectionStaged     = "Staged changes"
	SectionStashes    = "Stashes"
	SectionRecent     = "Recent commits"
)

// modeLabelWidth fits the longest mode label ("Type changed").
const modeLabelWidth = 12

// RenderConfig controls which sections render and how nodes default
// when they have no previous state to inherit.
type RenderConfig struct {
	// Hidden sections are skipped entirely.
	Hidden map[Category]bool
	// DefaultFolded sections start folded when not present in the
	// previous tree.
	DefaultFolded map[Category]bool
	// FoldHunks makes newly appearing hunks start folded.
	FoldHunks bool
}

// Build constructs a fresh status tree and its rendered lines from a
// repository snapshot. The previous tree is consulted only to carry
// fold state forward by stable key; line ranges are recomputed from
// scratch. Deterministic given identical inputs.
func Build(prev *Tree, snap *git.Snapshot, cfg RenderConfig) (*Tree, []Line) {
	b := &builder{
		tree: &Tree{},
		cfg:  cfg,
		prev: lookupTree(prev),
	}

	b.headSection(snap)
	b.rebaseSection(snap.Rebase)
	b.fileSection(SectionConflicted, CatConflicted, snap.Conflicted)
	b.fileSection(SectionUntracked, CatUntracked, snap.Untracked)
	b.fileSection(SectionUnstaged, CatUnstaged, snap.Unstaged)
	b.fileSection(SectionStaged, CatStaged, snap.Staged)
	b.stashSection(snap.Stashes)
	b.commitSection(unpulledName(snap.PushRemote), CatUnpulledPush, snap.UnpulledPush)
	b.commitSection(unmergedName(snap.PushRemote), CatUnmergedPush, snap.UnmergedPush)
	b.commitSection(unpulledName(snap.Upstream), CatUnpulledUpstream, snap.UnpulledUpstream)
	b.commitSection(unmergedName(snap.Upstream), CatUnmergedUpstream, snap.UnmergedUpstream)
	b.commitSection(SectionRecent, CatRecent, snap.Recent)

	return b.tree, b.lines
}

func unpulledName(ref *git.Ref) string {
	if ref == nil {
		return ""
	}
	return "Unpulled from " + ref.Ref
}

func unmergedName(ref *git.Ref) string {
	if ref == nil {
		return ""
	}
	return "Unmerged into " + ref.Ref
}

// ── previous-tree lookup ────────────────────────────────────────────────────

// treeLookup indexes the previous tree by stable key, built once per
// rebuild so the builder never walks or aliases old nodes directly.
type treeLookup struct {
	sections map[string]*sectionLookup
}

type sectionLookup struct {
	section *Section
	items   map[string]*itemLookup
}

type itemLookup struct {
	item  *Item
	hunks map[string]*Hunk
}

func lookupTree(prev *Tree) *treeLookup {
	lk := &treeLookup{sections: map[string]*sectionLookup{}}
	if prev == nil {
		return lk
	}
	for _, sec := range prev.Sections {
		sl := &sectionLookup{section: sec, items: map[string]*itemLookup{}}
		for _, it := range sec.Items {
			il := &itemLookup{item: it, hunks: map[string]*Hunk{}}
			for _, h := range it.Hunks {
				il.hunks[h.Hash] = h
			}
			sl.items[it.Name] = il
		}
		lk.sections[sec.Name] = sl
	}
	return lk
}

func (lk *treeLookup) section(name string) *sectionLookup {
	return lk.sections[name]
}

func (sl *sectionLookup) item(name string) *itemLookup {
	if sl == nil {
		return nil
	}
	return sl.items[name]
}

func (il *itemLookup) hunk(hash string) *Hunk {
	if il == nil {
		return nil
	}
	return il.hunks[hash]
}

// ── builder ─────────────────────────────────────────────────────────────────

type builder struct {
	lines []Line
	tree  *Tree
	cfg   RenderConfig
	prev  *treeLookup
}

// append emits one line and returns its 1-based line number.
func (b *builder) append(text string, tag LineTag) int {
	b.lines = append(b.lines, Line{Text: text, Tag: tag})
	return len(b.lines)
}

// gap emits the blank separator line before every section after the
// first. Gap lines belong to no section.
func (b *builder) gap() {
	if len(b.lines) > 0 {
		b.append("", TagNone)
	}
}

// open starts a section, resolving its fold state from the previous
// tree or the configured default.
func (b *builder) open(name string, cat Category) (*Section, *sectionLookup) {
	sec := &Section{Name: name, Category: cat, Kind: cat.Kind()}
	prev := b.prev.section(name)
	if prev != nil {
		sec.Folded = prev.section.Folded
	} else {
		sec.Folded = b.cfg.DefaultFolded[cat]
	}
	return sec, prev
}

func (b *builder) close(sec *Section) {
	sec.Last = len(b.lines)
	b.tree.Sections = append(b.tree.Sections, sec)
}

// ── header rows ─────────────────────────────────────────────────────────────

func (b *builder) headSection(snap *git.Snapshot) {
	sec, _ := b.open(SectionHead, CatHead)
	sec.IgnoreSign = true
	sec.Folded = false // header rows are never folded

	branch := snap.Head.Branch
	if branch == "" {
		branch = "(detached)"
	}
	sec.First = b.append(headRow("Head:", snap.Head.Abbrev, branch, snap.Head.Subject), TagHeadLine)
	if up := snap.Upstream; up != nil {
		b.append(headRow("Merge:", up.Abbrev, up.Ref, up.Subject), TagHeadLine)
	}
	if push := snap.PushRemote; push != nil && (snap.Upstream == nil || push.Ref != snap.Upstream.Ref) {
		b.append(headRow("Push:", push.Abbrev, push.Ref, push.Subject), TagHeadLine)
	}
	if tag := snap.Tag; tag != nil {
		b.append(fmt.Sprintf("Tag:   %s (%d)", tag.Name, tag.Distance), TagHeadLine)
	}
	b.close(sec)
}

func headRow(label, abbrev, name, subject string) string {
	parts := []string{label}
	if abbrev != "" {
		parts = append(parts, abbrev)
	}
	parts = append(parts, name)
	if subject != "" {
		parts = append(parts, subject)
	}
	return strings.Join(parts, " ")
}

func (b *builder) rebaseSection(rb *git.RebaseStatus) {
	if rb == nil {
		return
	}
	b.gap()
	sec, _ := b.open(SectionRebase, CatRebase)
	sec.IgnoreSign = true
	sec.First = b.append(
		fmt.Sprintf("Rebasing onto %s (%d/%d)", rb.Onto, rb.Current, rb.Total),
		TagSectionHeader,
	)
	b.close(sec)
}

// ── file sections ───────────────────────────────────────────────────────────

func (b *builder) fileSection(name string, cat Category, files []git.File) {
	if name == "" || b.cfg.Hidden[cat] || len(files) == 0 {
		return
	}
	b.gap()
	sec, prev := b.open(name, cat)
	sec.First = b.append(fmt.Sprintf("%s (%d)", name, len(files)), TagSectionHeader)
	for i := range files {
		b.fileItem(sec, prev, &files[i], sec.Folded)
	}
	b.close(sec)
}

// fileItem builds one file entry. When hidden (an ancestor is folded)
// the item and its hunks are still constructed, carrying their keys and
// fold state, but emit no lines and keep zero ranges.
func (b *builder) fileItem(sec *Section, prevSec *sectionLookup, f *git.File, hidden bool) {
	item := &Item{
		Name:      f.Name,
		Mode:      f.Mode.Label(),
		Diff:      f.Diff,
		Submodule: f.Submodule != nil,
	}
	prevItem := prevSec.item(f.Name)
	if prevItem != nil {
		item.Folded = prevItem.item.Folded
	}

	display := f.Name
	if f.OrigName != "" {
		display = f.OrigName + " -> " + f.Name
	}
	display += submoduleAnnotation(f.Submodule)

	if !hidden {
		item.First = b.append(fmt.Sprintf("%*s %s", modeLabelWidth, item.Mode, display), TagItem)
	}
	if f.HasDiff() {
		for _, gh := range f.Diff.Hunks {
			b.hunk(item, prevItem, f.Diff, gh, hidden || item.Folded)
		}
	}
	if !hidden {
		item.Last = len(b.lines)
	}
	sec.Items = append(sec.Items, item)
}

// submoduleAnnotation renders what changed inside a dirty submodule.
// A submodule reported dirty with none of the known change kinds set is
// rendered as malformed rather than failing the build.
func submoduleAnnotation(s *git.SubmoduleStatus) string {
	if s == nil {
		return ""
	}
	var parts []string
	if s.CommitChanged {
		parts = append(parts, "new commits")
	}
	if s.HasTrackedChanges {
		parts = append(parts, "modified content")
	}
	if s.HasUntrackedChanges {
		parts = append(parts, "untracked content")
	}
	if len(parts) == 0 {
		return " (malformed submodule)"
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func (b *builder) hunk(item *Item, prevItem *itemLookup, diff *git.Diff, gh git.Hunk, hidden bool) {
	h := &Hunk{
		Hash:     gh.Hash,
		DiffFrom: gh.DiffFrom,
		DiffTo:   gh.DiffTo,
		DiskFrom: gh.DiskFrom,
	}
	if prev := prevItem.hunk(gh.Hash); prev != nil {
		h.Folded = prev.Folded
	} else {
		h.Folded = b.cfg.FoldHunks
	}
	if hidden {
		item.Hunks = append(item.Hunks, h)
		return
	}

	h.First = b.append(diff.Lines[gh.DiffFrom-1], TagHunkHeader)
	if !h.Folded {
		for k := gh.DiffFrom + 1; k <= gh.DiffTo; k++ {
			b.append(diff.Lines[k-1], diffLineTag(diff.Lines[k-1]))
		}
	}
	h.Last = len(b.lines)
	item.Hunks = append(item.Hunks, h)
}

func diffLineTag(line string) LineTag {
	switch {
	case strings.HasPrefix(line, "+"):
		return TagAdded
	case strings.HasPrefix(line, "-"):
		return TagRemoved
	default:
		return TagContext
	}
}

// ── commit-like sections ────────────────────────────────────────────────────

func (b *builder) commitSection(name string, cat Category, commits []git.Commit) {
	if name == "" || b.cfg.Hidden[cat] || len(commits) == 0 {
		return
	}
	b.gap()
	sec, prev := b.open(name, cat)
	sec.First = b.append(fmt.Sprintf("%s (%d)", name, len(commits)), TagSectionHeader)
	for _, c := range commits {
		item := &Item{Name: c.OID, OID: c.OID}
		if pi := prev.item(c.OID); pi != nil {
			item.Folded = pi.item.Folded
		}
		if !sec.Folded {
			item.First = b.append(fmt.Sprintf("%s %s", c.Abbrev, c.Subject), TagItem)
			item.Last = item.First
		}
		sec.Items = append(sec.Items, item)
	}
	b.close(sec)
}

func (b *builder) stashSection(stashes []git.Stash) {
	if b.cfg.Hidden[CatStashes] || len(stashes) == 0 {
		return
	}
	b.gap()
	sec, prev := b.open(SectionStashes, CatStashes)
	sec.First = b.append(fmt.Sprintf("%s (%d)", SectionStashes, len(stashes)), TagSectionHeader)
	for _, st := range stashes {
		name := fmt.Sprintf("stash@{%d}", st.Index)
		item := &Item{Name: name, StashIdx: st.Index}
		if pi := prev.item(name); pi != nil {
			item.Folded = pi.item.Folded
		}
		if !sec.Folded {
			item.First = b.append(fmt.Sprintf("%s %s", name, st.Message), TagItem)
			item.Last = item.First
		}
		sec.Items = append(sec.Items, item)
	}
	b.close(sec)
}
