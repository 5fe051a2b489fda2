package status

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitfold/gitfold/internal/git"
)

// testSnapshot builds the snapshot used across the package tests:
//
//	 1  Head: a1b2c3d main Initial commit
//	 2
//	 3  Unstaged changes (1)
//	 4      Modified foo.go
//	 5  @@ -1,3 +1,4 @@
//	 6   ctx1
//	 7  +added
//	 8   ctx2
//	 9   ctx3
//	10
//	11  Staged changes (1)
//	12      New file baz.go
//	13  @@ -0,0 +1,5 @@
//	14  +l1
//	15  +l2
//	16  +l3
//	17  +l4
//	18  +l5
//	19
//	20  Stashes (1)
//	21  stash@{0} WIP on main
//	22
//	23  Recent commits (2)
//	24  aaaa111 Fix the parser
//	25  bbbb222 Add folding
func testSnapshot() *git.Snapshot {
	fooDiff := &git.Diff{
		Lines: []string{
			"@@ -1,3 +1,4 @@",
			" ctx1",
			"+added",
			" ctx2",
			" ctx3",
		},
		Hunks: []git.Hunk{
			{Hash: "foo-h1", DiffFrom: 1, DiffTo: 5, DiskFrom: 1},
		},
	}
	bazDiff := &git.Diff{
		Lines: []string{
			"@@ -0,0 +1,5 @@",
			"+l1",
			"+l2",
			"+l3",
			"+l4",
			"+l5",
		},
		Hunks: []git.Hunk{
			{Hash: "baz-h1", DiffFrom: 1, DiffTo: 6, DiskFrom: 1},
		},
	}
	return &git.Snapshot{
		Head: git.Ref{Branch: "main", Abbrev: "a1b2c3d", Subject: "Initial commit"},
		Unstaged: []git.File{
			{Name: "foo.go", Mode: git.StatusModified, Diff: fooDiff},
		},
		Staged: []git.File{
			{Name: "baz.go", Mode: git.StatusAdded, Diff: bazDiff},
		},
		Stashes: []git.Stash{
			{Index: 0, Message: "WIP on main"},
		},
		Recent: []git.Commit{
			{OID: "aaaa1111", Abbrev: "aaaa111", Subject: "Fix the parser"},
			{OID: "bbbb2222", Abbrev: "bbbb222", Subject: "Add folding"},
		},
	}
}

func TestBuildLayout(t *testing.T) {
	tree, lines := Build(nil, testSnapshot(), RenderConfig{})

	require.Len(t, lines, 25)
	require.Equal(t, "Head: a1b2c3d main Initial commit", lines[0].Text)
	require.Equal(t, "", lines[1].Text)
	require.Equal(t, "Unstaged changes (1)", lines[2].Text)
	require.Equal(t, "    Modified foo.go", lines[3].Text)
	require.Equal(t, "@@ -1,3 +1,4 @@", lines[4].Text)
	require.Equal(t, "Staged changes (1)", lines[10].Text)
	require.Equal(t, "    New file baz.go", lines[11].Text)
	require.Equal(t, "Stashes (1)", lines[19].Text)
	require.Equal(t, "stash@{0} WIP on main", lines[20].Text)
	require.Equal(t, "Recent commits (2)", lines[22].Text)
	require.Equal(t, "aaaa111 Fix the parser", lines[23].Text)

	require.Equal(t, TagHeadLine, lines[0].Tag)
	require.Equal(t, TagSectionHeader, lines[2].Tag)
	require.Equal(t, TagItem, lines[3].Tag)
	require.Equal(t, TagHunkHeader, lines[4].Tag)
	require.Equal(t, TagContext, lines[5].Tag)
	require.Equal(t, TagAdded, lines[6].Tag)

	require.Len(t, tree.Sections, 5)
	unstaged := tree.Section(SectionUnstaged)
	require.NotNil(t, unstaged)
	require.Equal(t, 3, unstaged.First)
	require.Equal(t, 9, unstaged.Last)
	require.Equal(t, KindDiffBearing, unstaged.Kind)

	foo := unstaged.Item("foo.go")
	require.NotNil(t, foo)
	require.Equal(t, 4, foo.First)
	require.Equal(t, 9, foo.Last)
	require.Len(t, foo.Hunks, 1)
	require.Equal(t, 5, foo.Hunks[0].First)
	require.Equal(t, 9, foo.Hunks[0].Last)
}

// Every rendered line belongs to at most one section, items partition
// their section's body, and hunks partition their item's body.
func TestBuildRangesNestAndPartition(t *testing.T) {
	tree, lines := Build(nil, testSnapshot(), RenderConfig{})

	for n := 1; n <= len(lines); n++ {
		owners := 0
		for _, sec := range tree.Sections {
			if sec.First <= n && n <= sec.Last {
				owners++
			}
		}
		if lines[n-1].Text == "" {
			require.Zero(t, owners, "gap line %d must belong to no section", n)
		} else {
			require.Equal(t, 1, owners, "line %d", n)
		}
	}

	prevLast := 0
	for _, sec := range tree.Sections {
		require.LessOrEqual(t, sec.First, sec.Last)
		require.Greater(t, sec.First, prevLast, "sections must be disjoint and ordered")
		prevLast = sec.Last

		itemLast := sec.First
		for _, it := range sec.Items {
			require.Greater(t, it.First, itemLast)
			require.LessOrEqual(t, it.Last, sec.Last)
			itemLast = it.Last

			hunkLast := it.First
			for _, h := range it.Hunks {
				require.Greater(t, h.First, hunkLast)
				require.LessOrEqual(t, h.Last, it.Last)
				hunkLast = h.Last
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	snap := testSnapshot()
	_, a := Build(nil, snap, RenderConfig{})
	_, b := Build(nil, snap, RenderConfig{})
	require.Equal(t, a, b)
}

func TestBuildFoldCarryOver(t *testing.T) {
	snap := testSnapshot()
	tree, lines := Build(nil, snap, RenderConfig{})
	full := len(lines)

	// Fold the baz.go hunk, rebuild: body lines disappear, state sticks.
	tree.Section(SectionStaged).Item("baz.go").Hunks[0].Folded = true
	tree2, lines2 := Build(tree, snap, RenderConfig{})
	require.Len(t, lines2, full-5)

	h := tree2.Section(SectionStaged).Item("baz.go").Hunks[0]
	require.True(t, h.Folded)
	require.Equal(t, h.First, h.Last, "folded hunk renders only its header")

	// A new file appearing before foo.go shifts every line, but fold
	// state follows the stable keys, not the positions.
	tree2.Section(SectionUnstaged).Item("foo.go").Folded = true
	snap.Unstaged = append([]git.File{{Name: "aaa.go", Mode: git.StatusModified}}, snap.Unstaged...)
	tree3, _ := Build(tree2, snap, RenderConfig{})

	require.True(t, tree3.Section(SectionUnstaged).Item("foo.go").Folded)
	require.True(t, tree3.Section(SectionStaged).Item("baz.go").Hunks[0].Folded)
}

func TestBuildFoldedSectionHidesItems(t *testing.T) {
	snap := testSnapshot()
	tree, _ := Build(nil, snap, RenderConfig{})

	tree.Section(SectionRecent).Folded = true
	tree2, lines2 := Build(tree, snap, RenderConfig{})

	recent := tree2.Section(SectionRecent)
	require.True(t, recent.Folded)
	require.Equal(t, recent.First, recent.Last)
	require.Equal(t, "Recent commits (2)", lines2[recent.First-1].Text)

	// Items keep their logical identity but render nothing.
	require.Len(t, recent.Items, 2)
	for _, it := range recent.Items {
		require.Zero(t, it.First)
		require.Zero(t, it.Last)
	}
}

// Folding an ancestor must not erase the fold state of what it hides:
// the hidden nodes keep their keys and flags through any number of
// rebuilds, so unfolding brings them back exactly as they were.
func TestBuildFoldStateSurvivesFoldedAncestor(t *testing.T) {
	snap := testSnapshot()
	tree, _ := Build(nil, snap, RenderConfig{})

	tree.Section(SectionStaged).Item("baz.go").Hunks[0].Folded = true
	tree.Section(SectionStaged).Folded = true

	tree2, _ := Build(tree, snap, RenderConfig{})
	tree3, _ := Build(tree2, snap, RenderConfig{})

	staged := tree3.Section(SectionStaged)
	require.True(t, staged.Folded)
	baz := staged.Item("baz.go")
	require.NotNil(t, baz)
	require.Zero(t, baz.First, "hidden item renders nothing")
	require.Len(t, baz.Hunks, 1)
	require.True(t, baz.Hunks[0].Folded,
		"hunk fold state must survive rebuilds under a folded section")

	staged.Folded = false
	tree4, _ := Build(tree3, snap, RenderConfig{})

	h := tree4.Section(SectionStaged).Item("baz.go").Hunks[0]
	require.True(t, h.Folded)
	require.Positive(t, h.First)
	require.Equal(t, h.First, h.Last, "still folded, so header only")
}

// Same one level down: a folded item hides its hunks but their fold
// state persists.
func TestBuildFoldStateSurvivesFoldedItem(t *testing.T) {
	snap := testSnapshot()
	tree, _ := Build(nil, snap, RenderConfig{})

	tree.Section(SectionUnstaged).Item("foo.go").Hunks[0].Folded = true
	tree.Section(SectionUnstaged).Item("foo.go").Folded = true

	tree2, _ := Build(tree, snap, RenderConfig{})
	foo := tree2.Section(SectionUnstaged).Item("foo.go")
	require.True(t, foo.Folded)
	require.Len(t, foo.Hunks, 1)
	require.True(t, foo.Hunks[0].Folded)
	require.Zero(t, foo.Hunks[0].First)

	foo.Folded = false
	tree3, _ := Build(tree2, snap, RenderConfig{})
	h := tree3.Section(SectionUnstaged).Item("foo.go").Hunks[0]
	require.True(t, h.Folded)
	require.Equal(t, h.First, h.Last)
}

func TestBuildDefaultFoldedAndHidden(t *testing.T) {
	snap := testSnapshot()

	_, lines := Build(nil, snap, RenderConfig{
		DefaultFolded: map[Category]bool{CatRecent: true},
		Hidden:        map[Category]bool{CatStashes: true},
	})

	for _, l := range lines {
		require.NotEqual(t, "Stashes (1)", l.Text)
		require.NotEqual(t, "aaaa111 Fix the parser", l.Text)
	}

	tree, _ := Build(nil, snap, RenderConfig{
		DefaultFolded: map[Category]bool{CatRecent: true},
	})
	require.True(t, tree.Section(SectionRecent).Folded)
	require.False(t, tree.Section(SectionStashes).Folded)
}

func TestBuildFoldHunksDefault(t *testing.T) {
	tree, _ := Build(nil, testSnapshot(), RenderConfig{FoldHunks: true})
	h := tree.Section(SectionUnstaged).Item("foo.go").Hunks[0]
	require.True(t, h.Folded)
	require.Equal(t, h.First, h.Last)
}

func TestBuildHeadRows(t *testing.T) {
	snap := testSnapshot()
	snap.Upstream = &git.Ref{Ref: "origin/main", Abbrev: "e4f5a6b", Subject: "Initial commit"}
	snap.PushRemote = &git.Ref{Ref: "origin/main", Abbrev: "e4f5a6b", Subject: "Initial commit"}
	snap.Tag = &git.Tag{Name: "v1.2.0", Distance: 4}

	_, lines := Build(nil, snap, RenderConfig{})
	require.Equal(t, "Head: a1b2c3d main Initial commit", lines[0].Text)
	require.Equal(t, "Merge: e4f5a6b origin/main Initial commit", lines[1].Text)
	// Push matches upstream, so no separate Push row.
	require.Equal(t, "Tag:   v1.2.0 (4)", lines[2].Text)

	snap.PushRemote = &git.Ref{Ref: "fork/main", Abbrev: "c0ffee1", Subject: "Fork point"}
	_, lines = Build(nil, snap, RenderConfig{})
	require.Equal(t, "Push: c0ffee1 fork/main Fork point", lines[2].Text)
}

func TestBuildDetachedHead(t *testing.T) {
	snap := testSnapshot()
	snap.Head.Branch = ""
	_, lines := Build(nil, snap, RenderConfig{})
	require.Equal(t, "Head: a1b2c3d (detached) Initial commit", lines[0].Text)
}

func TestBuildRebaseSection(t *testing.T) {
	snap := testSnapshot()
	snap.Rebase = &git.RebaseStatus{Onto: "main", Current: 2, Total: 5}

	tree, lines := Build(nil, snap, RenderConfig{})
	rb := tree.Section(SectionRebase)
	require.NotNil(t, rb)
	require.True(t, rb.IgnoreSign)
	require.Equal(t, "Rebasing onto main (2/5)", lines[rb.First-1].Text)
}

func TestBuildRenameAndSubmoduleLabels(t *testing.T) {
	snap := &git.Snapshot{
		Head: git.Ref{Branch: "main", Abbrev: "a1b2c3d"},
		Staged: []git.File{
			{Name: "new.go", OrigName: "old.go", Mode: git.StatusRenamed},
		},
		Unstaged: []git.File{
			{Name: "vendor/lib", Mode: git.StatusModified,
				Submodule: &git.SubmoduleStatus{CommitChanged: true, HasUntrackedChanges: true}},
			{Name: "vendor/other", Mode: git.StatusModified,
				Submodule: &git.SubmoduleStatus{}},
		},
	}

	_, lines := Build(nil, snap, RenderConfig{})
	var texts []string
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	require.Contains(t, texts, "     Renamed old.go -> new.go")
	require.Contains(t, texts, "    Modified vendor/lib (new commits, untracked content)")
	require.Contains(t, texts, "    Modified vendor/other (malformed submodule)")
}

func TestBuildUnpulledUnmergedSections(t *testing.T) {
	snap := testSnapshot()
	snap.Upstream = &git.Ref{Ref: "origin/main", Abbrev: "e4f5a6b"}
	snap.UnpulledUpstream = []git.Commit{{OID: "cccc3333", Abbrev: "cccc333", Subject: "Their fix"}}
	snap.UnmergedUpstream = []git.Commit{{OID: "dddd4444", Abbrev: "dddd444", Subject: "Our fix"}}

	tree, _ := Build(nil, snap, RenderConfig{})
	up := tree.Section("Unpulled from origin/main")
	require.NotNil(t, up)
	require.Equal(t, KindCommitBearing, up.Kind)
	require.Len(t, up.Items, 1)
	require.Equal(t, "cccc3333", up.Items[0].Name)

	um := tree.Section("Unmerged into origin/main")
	require.NotNil(t, um)
	require.Len(t, um.Items, 1)
}
