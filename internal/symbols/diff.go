package symbols

import (
	"github.com/reviewstation/engine/pkg/models"
)

// hunkRange is the line range on one side of a hunk.
type hunkRange struct {
	hunk  *models.Hunk
	start int
	end   int
}

// overlaps reports whether two inclusive ranges intersect. A zero-count
// side (start==0, end==0 meaning "no lines on this side") never overlaps.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	if aEnd == 0 || bEnd == 0 {
		return false
	}
	return aStart <= bEnd && bStart <= aEnd
}

func oldRange(h *models.Hunk) (int, int) {
	if h.OldCount == 0 {
		return 0, 0
	}
	return h.OldStart, h.OldStart + h.OldCount - 1
}

func newRange(h *models.Hunk) (int, int) {
	if h.NewCount == 0 {
		return 0, 0
	}
	return h.NewStart, h.NewStart + h.NewCount - 1
}

// DiffFile builds the FileSymbolDiff for one file given its old and new
// symbol trees (nil/empty if the file didn't exist on that side) and the
// hunks touching it. A file with no grammar reports all its hunks as
// top-level (spec.md §4.3).
func DiffFile(path string, hasGrammar bool, oldSyms, newSyms []*models.Symbol, hunks []*models.Hunk) *models.FileSymbolDiff {
	if !hasGrammar {
		ids := make([]string, len(hunks))
		for i, h := range hunks {
			ids[i] = h.ID
		}
		return &models.FileSymbolDiff{Path: path, HasGrammar: false, TopLevelIDs: ids}
	}

	consumed := make(map[string]bool)
	diffs := diffSymbolLists(oldSyms, newSyms, hunks, consumed)

	var topLevel []string
	for _, h := range hunks {
		if !consumed[h.ID] {
			topLevel = append(topLevel, h.ID)
		}
	}

	return &models.FileSymbolDiff{Path: path, HasGrammar: true, Symbols: diffs, TopLevelIDs: topLevel}
}

// diffSymbolLists implements spec.md §4.3's five-step matching algorithm
// for one container's direct children.
func diffSymbolLists(oldSyms, newSyms []*models.Symbol, hunks []*models.Hunk, consumed map[string]bool) []*models.SymbolDiff {
	matchedOld := make(map[int]bool)
	matchedNew := make(map[int]bool)

	var out []*models.SymbolDiff

	// Step 1: match by (name, kind), first match wins.
	for ni, ns := range newSyms {
		for oi, os := range oldSyms {
			if matchedOld[oi] {
				continue
			}
			if os.Name == ns.Name && os.Kind == ns.Kind {
				matchedOld[oi] = true
				matchedNew[ni] = true
				if sd := diffMatchedPair(os, ns, hunks, consumed); sd != nil {
					out = append(out, sd)
				}
				break
			}
		}
	}

	// Step 3: unmatched new symbols are Added.
	for ni, ns := range newSyms {
		if matchedNew[ni] {
			continue
		}
		start, end := ns.StartLine, ns.EndLine
		var ids []string
		for _, h := range hunks {
			hs, he := newRange(h)
			if overlaps(hs, he, start, end) {
				ids = append(ids, h.ID)
				consumed[h.ID] = true
			}
		}
		out = append(out, &models.SymbolDiff{
			Name: ns.Name, Kind: ns.Kind, ChangeType: models.ChangeAdded,
			HunkIDs: ids, NewRange: &models.LineRange{Start: start, End: end},
			Children: allChildren(ns.Children, models.ChangeAdded),
		})
	}

	// Step 4: unmatched old symbols are Removed.
	for oi, os := range oldSyms {
		if matchedOld[oi] {
			continue
		}
		start, end := os.StartLine, os.EndLine
		var ids []string
		for _, h := range hunks {
			hs, he := oldRange(h)
			if overlaps(hs, he, start, end) {
				ids = append(ids, h.ID)
				consumed[h.ID] = true
			}
		}
		out = append(out, &models.SymbolDiff{
			Name: os.Name, Kind: os.Kind, ChangeType: models.ChangeRemoved,
			HunkIDs: ids, OldRange: &models.LineRange{Start: start, End: end},
			Children: allChildren(os.Children, models.ChangeRemoved),
		})
	}

	return out
}

// diffMatchedPair handles step 2: a symbol present on both sides.
func diffMatchedPair(os, ns *models.Symbol, hunks []*models.Hunk, consumed map[string]bool) *models.SymbolDiff {
	oldStart, oldEnd := os.StartLine, os.EndLine
	newStart, newEnd := ns.StartLine, ns.EndLine

	var containerHunks []*models.Hunk
	var ids []string
	for _, h := range hunks {
		hOldS, hOldE := oldRange(h)
		hNewS, hNewE := newRange(h)
		if overlaps(hOldS, hOldE, oldStart, oldEnd) || overlaps(hNewS, hNewE, newStart, newEnd) {
			containerHunks = append(containerHunks, h)
			ids = append(ids, h.ID)
			consumed[h.ID] = true
		}
	}

	children := diffSymbolLists(os.Children, ns.Children, containerHunks, consumed)

	if len(ids) == 0 && len(children) == 0 {
		return nil
	}

	return &models.SymbolDiff{
		Name: ns.Name, Kind: ns.Kind, ChangeType: models.ChangeModified,
		HunkIDs:  ids,
		Children: children,
		OldRange: &models.LineRange{Start: oldStart, End: oldEnd},
		NewRange: &models.LineRange{Start: newStart, End: newEnd},
	}
}

func allChildren(children []*models.Symbol, change models.ChangeType) []*models.SymbolDiff {
	var out []*models.SymbolDiff
	for _, c := range children {
		rng := &models.LineRange{Start: c.StartLine, End: c.EndLine}
		sd := &models.SymbolDiff{Name: c.Name, Kind: c.Kind, ChangeType: change, Children: allChildren(c.Children, change)}
		if change == models.ChangeAdded {
			sd.NewRange = rng
		} else {
			sd.OldRange = rng
		}
		out = append(out, sd)
	}
	return out
}
