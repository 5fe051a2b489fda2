package status

// SectionSelection is one section's contribution to a selection: the
// section itself and the items whose ranges intersect the selected
// range.
type SectionSelection struct {
	Section *Section
	Items   []*Item
}

// Selection is the closed set of nodes affected by a cursor position or
// visual range. Every mutating command consumes one of these.
//
// Item and Commit are the focal nodes: the single unambiguous target of
// a point-cursor command, set only when one item's range fully contains
// the selected range. Items and Commits aggregate everything the range
// touches, for bulk commands.
type Selection struct {
	Sections []SectionSelection
	Item     *Item
	Commit   *Item
	Items    []*Item
	Commits  []*Item

	FirstLine int
	LastLine  int
}

// Empty reports whether the selection touched nothing actionable.
func (s *Selection) Empty() bool {
	return len(s.Items) == 0 && len(s.Commits) == 0 && len(s.Sections) == 0
}

// Paths returns the file names of all selected file items.
func (s *Selection) Paths() []string {
	paths := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		paths = append(paths, it.Name)
	}
	return paths
}

// Select computes the selection for the inclusive line range
// [first, last]. A single-line selection of a section header selects
// the whole section, letting header-line commands act on every item.
func Select(t *Tree, first, last int) Selection {
	sel := Selection{FirstLine: first, LastLine: last}
	if t == nil || first > last {
		return sel
	}

	for _, sec := range t.Sections {
		if sec.Last < first {
			continue
		}
		if sec.First > last {
			break
		}

		ss := SectionSelection{Section: sec}
		if sec.First == first && sec.First == last {
			// Point selection on the header line: whole section.
			ss.Items = append(ss.Items, sec.Items...)
		} else {
			for _, it := range sec.Items {
				if it.Last < first || it.First > last {
					continue
				}
				ss.Items = append(ss.Items, it)
				if sel.Item == nil && sel.Commit == nil &&
					it.First <= first && last <= it.Last {
					switch sec.Kind {
					case KindDiffBearing:
						sel.Item = it
					case KindCommitBearing:
						sel.Commit = it
					}
				}
			}
		}

		switch sec.Kind {
		case KindCommitBearing:
			sel.Commits = append(sel.Commits, ss.Items...)
		default:
			sel.Items = append(sel.Items, ss.Items...)
		}
		sel.Sections = append(sel.Sections, ss)
	}

	// A range spanning multiple sections has no unambiguous target.
	if len(sel.Sections) > 1 {
		sel.Item = nil
		sel.Commit = nil
	}
	return sel
}
