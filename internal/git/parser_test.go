package git

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func statusEntries(entries ...string) string {
	return strings.Join(entries, "\x00") + "\x00"
}

func TestParseStatusV2(t *testing.T) {
	t.Run("ordinaryEntries", func(t *testing.T) {
		out := statusEntries(
			"1 .M N... 100644 100644 100644 abc def internal/git/cli.go",
			"1 A. N... 000000 100644 100644 000 111 new.go",
			"1 MM N... 100644 100644 100644 abc def both.go",
		)
		var snap Snapshot
		ParseStatusV2(out, &snap)

		require.Len(t, snap.Unstaged, 2)
		require.Equal(t, "internal/git/cli.go", snap.Unstaged[0].Name)
		require.Equal(t, StatusModified, snap.Unstaged[0].Mode)
		require.Equal(t, "both.go", snap.Unstaged[1].Name)

		require.Len(t, snap.Staged, 2)
		require.Equal(t, "new.go", snap.Staged[0].Name)
		require.Equal(t, StatusAdded, snap.Staged[0].Mode)
		require.Equal(t, "both.go", snap.Staged[1].Name)
	})

	t.Run("renameCarriesOrigPath", func(t *testing.T) {
		out := statusEntries(
			"2 R. N... 100644 100644 100644 abc def R100 new_name.go",
			"old_name.go",
		)
		var snap Snapshot
		ParseStatusV2(out, &snap)

		require.Len(t, snap.Staged, 1)
		require.Equal(t, "new_name.go", snap.Staged[0].Name)
		require.Equal(t, "old_name.go", snap.Staged[0].OrigName)
		require.Equal(t, StatusRenamed, snap.Staged[0].Mode)
	})

	t.Run("unmergedAndUntracked", func(t *testing.T) {
		out := statusEntries(
			"u UU N... 100644 100644 100644 100644 abc def ghi conflict.go",
			"? scratch.txt",
		)
		var snap Snapshot
		ParseStatusV2(out, &snap)

		require.Len(t, snap.Conflicted, 1)
		require.Equal(t, "conflict.go", snap.Conflicted[0].Name)
		require.Equal(t, StatusUnmerged, snap.Conflicted[0].Mode)

		require.Len(t, snap.Untracked, 1)
		require.Equal(t, "scratch.txt", snap.Untracked[0].Name)
	})

	t.Run("submoduleField", func(t *testing.T) {
		out := statusEntries(
			"1 .M SCMU 160000 160000 160000 abc def vendor/lib",
		)
		var snap Snapshot
		ParseStatusV2(out, &snap)

		require.Len(t, snap.Unstaged, 1)
		sub := snap.Unstaged[0].Submodule
		require.NotNil(t, sub)
		require.True(t, sub.CommitChanged)
		require.True(t, sub.HasTrackedChanges)
		require.True(t, sub.HasUntrackedChanges)
	})

	t.Run("submoduleNoChanges", func(t *testing.T) {
		out := statusEntries(
			"1 .M S... 160000 160000 160000 abc def vendor/lib",
		)
		var snap Snapshot
		ParseStatusV2(out, &snap)

		require.Len(t, snap.Unstaged, 1)
		sub := snap.Unstaged[0].Submodule
		require.NotNil(t, sub)
		require.False(t, sub.CommitChanged)
		require.False(t, sub.HasTrackedChanges)
		require.False(t, sub.HasUntrackedChanges)
	})
}

const sampleDiff = `diff --git a/foo.go b/foo.go
index abc123..def456 100644
--- a/foo.go
+++ b/foo.go
@@ -1,3 +1,4 @@
 ctx1
+added
 ctx2
 ctx3
@@ -10,2 +11,3 @@ func main() {
 tail1
+tail2
 tail3
`

func TestParseDiffs(t *testing.T) {
	diffs := ParseDiffs(sampleDiff)
	require.Len(t, diffs, 1)

	d := diffs["foo.go"]
	require.NotNil(t, d)
	require.Len(t, d.Hunks, 2)

	// Lines hold hunk headers and bodies only; file headers are dropped.
	require.Equal(t, "@@ -1,3 +1,4 @@", d.Lines[0])
	require.Len(t, d.Lines, 9)

	h1, h2 := d.Hunks[0], d.Hunks[1]
	require.Equal(t, 1, h1.DiffFrom)
	require.Equal(t, 5, h1.DiffTo)
	require.Equal(t, 1, h1.DiskFrom)

	require.Equal(t, 6, h2.DiffFrom)
	require.Equal(t, 9, h2.DiffTo)
	require.Equal(t, 11, h2.DiskFrom)

	require.NotEmpty(t, h1.Hash)
	require.NotEmpty(t, h2.Hash)
	require.NotEqual(t, h1.Hash, h2.Hash)
}

func TestParseDiffsHashIgnoresPosition(t *testing.T) {
	// The same body at a shifted position must keep its identity, or
	// fold state would be lost whenever an earlier hunk changes size.
	shifted := strings.ReplaceAll(sampleDiff, "@@ -10,2 +11,3 @@", "@@ -20,2 +25,3 @@")

	a := ParseDiffs(sampleDiff)["foo.go"]
	b := ParseDiffs(shifted)["foo.go"]
	require.Equal(t, a.Hunks[1].Hash, b.Hunks[1].Hash)
}

func TestParseDiffsDuplicateHunkBodies(t *testing.T) {
	// Two hunks with byte-identical bodies in one file (think repeated
	// boilerplate blocks) must keep distinct identities, or they would
	// share one fold state. Only the later duplicates get an ordinal:
	// the first keeps the bare body hash for position-shift stability.
	out := "diff --git a/dup.go b/dup.go\n" +
		"--- a/dup.go\n+++ b/dup.go\n" +
		"@@ -1,1 +1,2 @@\n ctx\n+same\n" +
		"@@ -10,1 +11,2 @@\n ctx\n+same\n" +
		"@@ -20,1 +22,2 @@\n ctx\n+same\n"

	d := ParseDiffs(out)["dup.go"]
	require.NotNil(t, d)
	require.Len(t, d.Hunks, 3)

	h0, h1, h2 := d.Hunks[0].Hash, d.Hunks[1].Hash, d.Hunks[2].Hash
	require.NotEqual(t, h0, h1)
	require.NotEqual(t, h0, h2)
	require.NotEqual(t, h1, h2)
	require.Equal(t, h0+"#1", h1)
	require.Equal(t, h0+"#2", h2)

	solo := "diff --git a/dup.go b/dup.go\n" +
		"--- a/dup.go\n+++ b/dup.go\n" +
		"@@ -1,1 +1,2 @@\n ctx\n+same\n"
	require.Equal(t, ParseDiffs(solo)["dup.go"].Hunks[0].Hash, h0)
}

func TestParseDiffsMultipleFiles(t *testing.T) {
	out := "diff --git a/a.go b/a.go\n" +
		"--- a/a.go\n+++ b/a.go\n" +
		"@@ -1,1 +1,2 @@\n ctx\n+one\n" +
		"diff --git a/b.go b/b.go\n" +
		"--- a/b.go\n+++ b/b.go\n" +
		"@@ -1,1 +1,2 @@\n ctx\n+two\n"

	diffs := ParseDiffs(out)
	require.Len(t, diffs, 2)
	require.NotNil(t, diffs["a.go"])
	require.NotNil(t, diffs["b.go"])
	require.NotEqual(t, diffs["a.go"].Hunks[0].Hash, diffs["b.go"].Hunks[0].Hash)
}

func TestParseHunkHeader(t *testing.T) {
	cases := []struct {
		line                   string
		oldS, oldC, newS, newC int
	}{
		{"@@ -1,3 +1,4 @@", 1, 3, 1, 4},
		{"@@ -0,0 +1,5 @@", 0, 0, 1, 5},
		{"@@ -7 +7 @@", 7, 1, 7, 1},
		{"@@ -10,2 +11,3 @@ func main() {", 10, 2, 11, 3},
	}
	for _, tc := range cases {
		oldS, oldC, newS, newC := ParseHunkHeader(tc.line)
		require.Equal(t, tc.oldS, oldS, tc.line)
		require.Equal(t, tc.oldC, oldC, tc.line)
		require.Equal(t, tc.newS, newS, tc.line)
		require.Equal(t, tc.newC, newC, tc.line)
	}
}

func TestParseStashList(t *testing.T) {
	out := "stash@{0}\x00WIP on main: abc123 first\n" +
		"stash@{1}\x00On feature: spike\n"

	stashes := ParseStashList(out)
	require.Len(t, stashes, 2)
	require.Equal(t, 0, stashes[0].Index)
	require.Equal(t, "WIP on main: abc123 first", stashes[0].Message)
	require.Equal(t, 1, stashes[1].Index)
}

func TestParseLogOutput(t *testing.T) {
	out := "aaaa1111\x00aaaa111\x00Alice\x001700000000\x00Fix the parser\n" +
		"bbbb2222\x00bbbb222\x00Bob\x001700000100\x00Add folding\n"

	commits := ParseLogOutput(out)
	require.Len(t, commits, 2)
	require.Equal(t, "aaaa1111", commits[0].OID)
	require.Equal(t, "aaaa111", commits[0].Abbrev)
	require.Equal(t, "Alice", commits[0].Author)
	require.Equal(t, "Fix the parser", commits[0].Subject)
	require.Equal(t, int64(1700000000), commits[0].Date.Unix())
}
