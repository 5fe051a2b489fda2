package status

import "sort"

// Resolve returns the smallest section, item, and hunk containing the
// given 1-based buffer line. Any of the results may be nil: a header or
// gap line resolves to a section with no item, a file line to an item
// with no hunk. Nodes hidden under a folded ancestor carry zero ranges
// and never resolve.
//
// Sibling ranges are sorted and disjoint (a builder invariant; a hidden
// sibling set is uniformly zero), so each level is a binary search.
func Resolve(t *Tree, line int) (*Section, *Item, *Hunk) {
	if t == nil {
		return nil, nil, nil
	}
	sec := findSection(t.Sections, line)
	if sec == nil {
		return nil, nil, nil
	}
	item := findItem(sec.Items, line)
	if item == nil {
		return sec, nil, nil
	}
	return sec, item, findHunk(item.Hunks, line)
}

func findSection(secs []*Section, line int) *Section {
	i := sort.Search(len(secs), func(i int) bool { return secs[i].Last >= line })
	if i < len(secs) && secs[i].First <= line {
		return secs[i]
	}
	return nil
}

func findItem(items []*Item, line int) *Item {
	i := sort.Search(len(items), func(i int) bool { return items[i].Last >= line })
	if i < len(items) && items[i].First <= line {
		return items[i]
	}
	return nil
}

func findHunk(hunks []*Hunk, line int) *Hunk {
	i := sort.Search(len(hunks), func(i int) bool { return hunks[i].Last >= line })
	if i < len(hunks) && hunks[i].First <= line {
		return hunks[i]
	}
	return nil
}
