package status

import (
	"fmt"
	"strings"

	"github.com/gitfold/gitfold/internal/git"
)

// SelectedHunk is one hunk's contribution to a range selection: the
// hunk, the selected bounds in diff-line coordinates (1-based indices
// into the item's Diff.Lines), and the literal body lines in that
// extent.
type SelectedHunk struct {
	Hunk  *Hunk
	From  int
	To    int
	Lines []string
}

// HunksInRange returns the hunks of item whose rendered extent
// intersects [first, last].
//
// When partial is false the command was issued on whole lines (cursor
// on a file or hunk header), so each selected extent covers the hunk's
// entire diff body. When partial is true the extent is clipped to the
// intersection, translated from rendered-line to diff-line coordinates
// by the constant offset between the two numberings.
func HunksInRange(item *Item, first, last int, partial bool) []SelectedHunk {
	var out []SelectedHunk
	for _, h := range item.Hunks {
		if h.Last < first || h.First > last {
			continue
		}
		sh := SelectedHunk{Hunk: h, From: h.DiffFrom + 1, To: h.DiffTo}
		if partial {
			// Rendered line h.First is diff line h.DiffFrom; the
			// offset is constant across the hunk.
			off := h.DiffFrom - h.First
			if first+off > sh.From {
				sh.From = first + off
			}
			if last+off < sh.To {
				sh.To = last + off
			}
			if sh.From > sh.To {
				continue
			}
		}
		for k := sh.From; k <= sh.To; k++ {
			sh.Lines = append(sh.Lines, item.Diff.Lines[k-1])
		}
		out = append(out, sh)
	}
	return out
}

// GeneratePatch builds a standalone unified-diff fragment for the
// sub-range [from, to] (diff-line coordinates) of one hunk, appliable
// on its own via git apply.
//
// Lines outside the sub-range are not simply dropped: a deletion the
// user did not select still exists in the pre-image, so it is emitted
// as context; an unselected addition does not exist there and is
// omitted. The "@@" counts are recomputed to cover exactly what the
// fragment contains.
//
// When reverse is true the fragment is the textual inverse: additions
// become deletions and vice versa, unselected additions become context
// (they exist in the post-image the reverse patch applies to),
// unselected deletions are omitted, and the range-line operand pairs
// swap sides. Applying a fragment and then its reverse restores the
// target byte for byte.
func GeneratePatch(item *Item, h *Hunk, from, to int, reverse bool) string {
	oldStart, _, newStart, _ := git.ParseHunkHeader(item.Diff.Lines[h.DiffFrom-1])

	var body []string
	var oldCount, newCount int
	for k := h.DiffFrom + 1; k <= h.DiffTo; k++ {
		line := item.Diff.Lines[k-1]
		var op byte
		if len(line) > 0 {
			op = line[0]
		}
		if op == '\\' {
			// "\ No newline at end of file" counts on neither side.
			body = append(body, line)
			continue
		}
		inRange := from <= k && k <= to
		switch {
		case op == '+' && inRange:
			if reverse {
				body = append(body, "-"+line[1:])
				oldCount++
			} else {
				body = append(body, line)
				newCount++
			}
		case op == '-' && inRange:
			if reverse {
				body = append(body, "+"+line[1:])
				newCount++
			} else {
				body = append(body, line)
				oldCount++
			}
		case op == '+':
			if reverse {
				body = append(body, " "+line[1:])
				oldCount++
				newCount++
			}
		case op == '-':
			if !reverse {
				body = append(body, " "+line[1:])
				oldCount++
				newCount++
			}
		default:
			body = append(body, line)
			oldCount++
			newCount++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", item.Name)
	fmt.Fprintf(&sb, "+++ b/%s\n", item.Name)
	if reverse {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", newStart, oldCount, oldStart, newCount)
	} else {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	}
	for _, line := range body {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
