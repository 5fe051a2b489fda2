package git

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ── Status parsing (porcelain v2) ───────────────────────────────────────────

// ParseStatusV2 parses `git status --porcelain=v2 -z` into the snapshot's
// per-section file lists. NUL-delimited scanning avoids allocating a huge
// []string for repos with thousands of changed files.
func ParseStatusV2(out string, snap *Snapshot) {
	for len(out) > 0 {
		entry, rest := nextNul(out)
		out = rest
		if entry == "" {
			continue
		}
		switch entry[0] {
		case '1':
			parseChangedEntry(entry, "", snap)
		case '2':
			// Rename/copy entries carry the original path in the
			// following NUL-separated record.
			orig, rest2 := nextNul(out)
			out = rest2
			parseChangedEntry(entry, orig, snap)
		case 'u':
			fields := strings.SplitN(entry, " ", 11)
			if len(fields) == 11 {
				snap.Conflicted = append(snap.Conflicted, File{
					Name: fields[10],
					Mode: StatusUnmerged,
				})
			}
		case '?':
			if len(entry) > 2 {
				snap.Untracked = append(snap.Untracked, File{
					Name: entry[2:],
					Mode: StatusUntracked,
				})
			}
		}
	}
}

func nextNul(s string) (entry, rest string) {
	if i := strings.IndexByte(s, '\x00'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// parseChangedEntry handles "1" (ordinary) and "2" (rename/copy) records.
// Layout: <type> <XY> <sub> <mH> <mI> <mW> <hH> <hI> [<Xscore>] <path>
func parseChangedEntry(entry, origPath string, snap *Snapshot) {
	n := 9
	if entry[0] == '2' {
		n = 10
	}
	fields := strings.SplitN(entry, " ", n)
	if len(fields) < n {
		return
	}
	xy := fields[1]
	if len(xy) != 2 {
		return
	}
	sub := parseSubmoduleField(fields[2])
	path := fields[n-1]

	staged := StatusCode(xy[0])
	unstaged := StatusCode(xy[1])

	if staged != StatusUnmodified && staged != '.' {
		snap.Staged = append(snap.Staged, File{
			Name:      path,
			OrigName:  origPath,
			Mode:      normalizeCode(staged),
			Submodule: sub,
		})
	}
	if unstaged != StatusUnmodified && unstaged != '.' {
		snap.Unstaged = append(snap.Unstaged, File{
			Name:      path,
			OrigName:  origPath,
			Mode:      normalizeCode(unstaged),
			Submodule: sub,
		})
	}
}

// parseSubmoduleField decodes the 4-character <sub> field: "N..." for a
// regular file, "S<c><m><u>" for a submodule.
func parseSubmoduleField(f string) *SubmoduleStatus {
	if len(f) != 4 || f[0] != 'S' {
		return nil
	}
	return &SubmoduleStatus{
		CommitChanged:       f[1] == 'C',
		HasTrackedChanges:   f[2] == 'M',
		HasUntrackedChanges: f[3] == 'U',
	}
}

func normalizeCode(c StatusCode) StatusCode {
	if c == '.' {
		return StatusUnmodified
	}
	return c
}

// ── Diff parsing ────────────────────────────────────────────────────────────

// ParseDiffs splits a multi-file unified diff into per-file Diff values
// keyed by new-side path. Diff.Lines holds only the hunk headers and hunk
// body lines; the file-level headers (diff --git, index, ---/+++) are
// dropped because the patch generator reconstructs its own.
func ParseDiffs(out string) map[string]*Diff {
	diffs := make(map[string]*Diff)
	if out == "" {
		return diffs
	}

	var (
		cur     *Diff
		curPath string
		hunk    *Hunk
		hasher  = sha1.New()
	)
	closeHunk := func() {
		if hunk == nil {
			return
		}
		hunk.DiffTo = len(cur.Lines)
		hunk.Hash = hex.EncodeToString(hasher.Sum(nil))
		hasher.Reset()
		cur.Hunks = append(cur.Hunks, *hunk)
		hunk = nil
	}
	closeFile := func() {
		closeHunk()
		if cur != nil && curPath != "" {
			disambiguateHunks(cur.Hunks)
			diffs[curPath] = cur
		}
		cur = nil
		curPath = ""
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			closeFile()
			cur = &Diff{}
			curPath = pathFromDiffHeader(line)
		case cur == nil:
			// Preamble before the first file header.
		case strings.HasPrefix(line, "+++ "):
			// Prefer the explicit new-side path; handles spaces better
			// than the "diff --git" heuristic.
			p := strings.TrimPrefix(line, "+++ ")
			p = strings.TrimSuffix(p, "\t")
			if p != "/dev/null" {
				curPath = strings.TrimPrefix(p, "b/")
			}
		case strings.HasPrefix(line, "@@ "):
			closeHunk()
			cur.Lines = append(cur.Lines, line)
			hunk = &Hunk{DiffFrom: len(cur.Lines)}
			_, _, newStart, _ := ParseHunkHeader(line)
			hunk.DiskFrom = newStart
		case hunk != nil:
			cur.Lines = append(cur.Lines, line)
			// Identity hashes the body only, so hunks keep their fold
			// state when edits elsewhere shift their position.
			hasher.Write([]byte(line))
			hasher.Write([]byte{'\n'})
		}
	}
	closeFile()
	return diffs
}

// disambiguateHunks appends an ordinal to the hash of repeated
// identical-body hunks within one file. The first occurrence keeps the
// bare body hash (position shifts alone never change identity); later
// duplicates are numbered by their order among same-hash siblings.
func disambiguateHunks(hunks []Hunk) {
	seen := make(map[string]int, len(hunks))
	for i := range hunks {
		h := hunks[i].Hash
		n := seen[h]
		seen[h] = n + 1
		if n > 0 {
			hunks[i].Hash = fmt.Sprintf("%s#%d", h, n)
		}
	}
}

// pathFromDiffHeader extracts the new-side path from "diff --git a/x b/x".
func pathFromDiffHeader(line string) string {
	parts := strings.Split(line, " ")
	if len(parts) < 4 {
		return ""
	}
	return strings.TrimPrefix(parts[len(parts)-1], "b/")
}

// ParseHunkHeader parses "@@ -a,b +c,d @@ ..." into its four operands.
// Omitted counts default to 1 per the unified-diff format.
func ParseHunkHeader(line string) (oldStart, oldCount, newStart, newCount int) {
	oldCount, newCount = 1, 1
	rest := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(rest, " @@")
	if end >= 0 {
		rest = rest[:end]
	}
	for _, field := range strings.Fields(rest) {
		if len(field) < 2 {
			continue
		}
		sign := field[0]
		nums := strings.SplitN(field[1:], ",", 2)
		start, _ := strconv.Atoi(nums[0])
		count := 1
		if len(nums) == 2 {
			count, _ = strconv.Atoi(nums[1])
		}
		switch sign {
		case '-':
			oldStart, oldCount = start, count
		case '+':
			newStart, newCount = start, count
		}
	}
	return oldStart, oldCount, newStart, newCount
}

// attachDiffs pairs parsed diffs with their files by path.
func attachDiffs(files []File, diffs map[string]*Diff) {
	for i := range files {
		if d, ok := diffs[files[i].Name]; ok {
			files[i].Diff = d
		}
	}
}

// ── Stash parsing ───────────────────────────────────────────────────────────

// ParseStashList parses `git stash list --format=%gd%x00%gs`.
func ParseStashList(out string) []Stash {
	if out == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	entries := make([]Stash, 0, len(lines))
	for _, line := range lines {
		sel, msg, ok := strings.Cut(line, "\x00")
		if !ok {
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(sel, "stash@{%d}", &idx); err != nil {
			continue
		}
		entries = append(entries, Stash{Index: idx, Message: msg})
	}
	return entries
}

// ── Log parsing ─────────────────────────────────────────────────────────────

// ParseLogOutput parses one-commit-per-line log output using the
// NUL-separated field format from logFormat.
func ParseLogOutput(out string) []Commit {
	if out == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	commits := make([]Commit, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "\x00", 5)
		if len(parts) < 5 {
			continue
		}
		ts, _ := strconv.ParseInt(parts[3], 10, 64)
		commits = append(commits, Commit{
			OID:     parts[0],
			Abbrev:  parts[1],
			Author:  parts[2],
			Date:    time.Unix(ts, 0),
			Subject: parts[4],
		})
	}
	return commits
}
