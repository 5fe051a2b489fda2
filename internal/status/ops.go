package status

import (
	"fmt"

	"github.com/gitfold/gitfold/internal/git"
)

// Stage stages everything the selection covers. Hunk-level extents go
// through the patch generator; a file with no hunks in range is staged
// whole. An empty selection is a no-op, not an error.
func (r *Repository) Stage(sel Selection, partial bool) error {
	if sel.Empty() {
		return nil
	}
	for _, ss := range sel.Sections {
		switch ss.Section.Category {
		case CatUntracked, CatConflicted:
			if len(ss.Items) > 0 {
				if err := r.svc.Stage(itemPaths(ss.Items)...); err != nil {
					return err
				}
			}
		case CatUnstaged:
			for _, it := range ss.Items {
				if err := r.applyHunksOrFile(it, sel, partial,
					git.ApplyOptions{Cached: true}, false,
					func() error { return r.svc.Stage(it.Name) },
				); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Unstage moves staged extents back out of the index, via reverse
// patches applied to the index, or whole-file reset when the file line
// itself was targeted.
func (r *Repository) Unstage(sel Selection, partial bool) error {
	if sel.Empty() {
		return nil
	}
	for _, ss := range sel.Sections {
		if ss.Section.Category != CatStaged {
			continue
		}
		for _, it := range ss.Items {
			if err := r.applyHunksOrFile(it, sel, partial,
				git.ApplyOptions{Cached: true}, true,
				func() error { return r.svc.Unstage(it.Name) },
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// Discard throws selected changes away. Untracked files are removed
// from the worktree. Staged extents are reverse-applied to both index
// and worktree; unstaged extents to the worktree only, so an unstaged
// discard never disturbs what is already staged. Stash items are
// dropped.
func (r *Repository) Discard(sel Selection, partial bool) error {
	if sel.Empty() {
		return nil
	}
	for _, ss := range sel.Sections {
		switch ss.Section.Category {
		case CatUntracked:
			if len(ss.Items) > 0 {
				if err := r.svc.Remove(itemPaths(ss.Items)...); err != nil {
					return err
				}
			}
		case CatUnstaged:
			for _, it := range ss.Items {
				if err := r.applyHunksOrFile(it, sel, partial,
					git.ApplyOptions{}, true,
					func() error { return r.svc.Checkout(it.Name) },
				); err != nil {
					return err
				}
			}
		case CatStaged:
			for _, it := range ss.Items {
				if err := r.applyHunksOrFile(it, sel, partial,
					git.ApplyOptions{Index: true}, true,
					func() error {
						if err := r.svc.Unstage(it.Name); err != nil {
							return err
						}
						return r.svc.Checkout(it.Name)
					},
				); err != nil {
					return err
				}
			}
		case CatStashes:
			for _, it := range ss.Items {
				if err := r.svc.StashDrop(it.StashIdx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ApplyStash applies (pop=false) or pops (pop=true) the focal stash.
func (r *Repository) ApplyStash(sel Selection, pop bool) error {
	if sel.Commit == nil || sel.Commit.Name == "" {
		return nil
	}
	if pop {
		return r.svc.StashPop(sel.Commit.StashIdx)
	}
	return r.svc.StashApply(sel.Commit.StashIdx)
}

// applyHunksOrFile applies the selected extents of one item as patch
// fragments, or falls back to the whole-file operation when the
// selection touches none of the item's hunks.
func (r *Repository) applyHunksOrFile(it *Item, sel Selection, partial bool, opts git.ApplyOptions, reverse bool, wholeFile func() error) error {
	hunks := HunksInRange(it, sel.FirstLine, sel.LastLine, partial)
	if len(hunks) == 0 {
		return wholeFile()
	}
	for _, sh := range hunks {
		patch := GeneratePatch(it, sh.Hunk, sh.From, sh.To, reverse)
		if err := r.svc.ApplyPatch(patch, opts); err != nil {
			return fmt.Errorf("%s: %w", it.Name, err)
		}
	}
	return nil
}

func itemPaths(items []*Item) []string {
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.Name)
	}
	return paths
}

// JumpTarget translates a rendered line into a worktree location for
// "jump to file". Within a hunk body, the disk line is the hunk's disk
// start advanced by the context and added lines preceding the cursor.
func JumpTarget(t *Tree, line int) (path string, diskLine int, ok bool) {
	sec, item, hunk := Resolve(t, line)
	if sec == nil || item == nil || sec.Kind != KindDiffBearing {
		return "", 0, false
	}
	if hunk == nil || line <= hunk.First {
		return item.Name, 1, true
	}
	diskLine = hunk.DiskFrom
	for k := hunk.DiffFrom + 1; k < hunk.DiffFrom+(line-hunk.First); k++ {
		l := item.Diff.Lines[k-1]
		if !hasPrefix(l, '-') && !hasPrefix(l, '\\') {
			diskLine++
		}
	}
	return item.Name, diskLine, true
}

func hasPrefix(s string, b byte) bool { return len(s) > 0 && s[0] == b }
