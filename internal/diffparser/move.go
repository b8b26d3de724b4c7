package diffparser

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/reviewstation/engine/pkg/models"
)

// MovePair is a detected cross-file code move.
type MovePair struct {
	AddedHunkID   string
	RemovedHunkID string
}

// DetectMoves finds cross-file move pairs among hunks and sets
// MovePairID on both hunks of each pair (spec.md §4.2). Same-file moves
// are ignored — a rename manifests elsewhere. When several deletions and
// additions share a changed-content hash, they are paired in iteration
// order; this is documented as a tie-break rule, not a correctness
// guarantee (spec.md §9).
func DetectMoves(hunks []*models.Hunk) []MovePair {
	type bucket struct {
		additions []*models.Hunk
		removals  []*models.Hunk
	}
	buckets := make(map[string]*bucket)

	for _, h := range hunks {
		if h.MovePairID != nil {
			h.MovePairID = nil
		}
		hash := changedContentHash(h)
		b, ok := buckets[hash]
		if !ok {
			b = &bucket{}
			buckets[hash] = b
		}
		switch {
		case isAdditionsOnly(h):
			b.additions = append(b.additions, h)
		case isRemovalsOnly(h):
			b.removals = append(b.removals, h)
		}
	}

	var pairs []MovePair
	var hashes []string
	for h := range buckets {
		hashes = append(hashes, h)
	}
	// Deterministic bucket iteration order; pairing within a bucket still
	// follows hunk discovery order per the documented tie-break.
	sortStrings(hashes)

	for _, hash := range hashes {
		b := buckets[hash]
		n := len(b.additions)
		if len(b.removals) < n {
			n = len(b.removals)
		}
		for i := 0; i < n; i++ {
			add, rem := b.additions[i], b.removals[i]
			if add.FilePath == rem.FilePath {
				continue
			}
			addID, remID := add.ID, rem.ID
			add.MovePairID = &remID
			rem.MovePairID = &addID
			pairs = append(pairs, MovePair{AddedHunkID: add.ID, RemovedHunkID: rem.ID})
		}
	}

	return pairs
}

func isAdditionsOnly(h *models.Hunk) bool {
	hasAdded := false
	for _, l := range h.Lines {
		if l.Type == models.LineRemoved {
			return false
		}
		if l.Type == models.LineAdded {
			hasAdded = true
		}
	}
	return hasAdded
}

func isRemovalsOnly(h *models.Hunk) bool {
	hasRemoved := false
	for _, l := range h.Lines {
		if l.Type == models.LineAdded {
			return false
		}
		if l.Type == models.LineRemoved {
			hasRemoved = true
		}
	}
	return hasRemoved
}

// changedContentHash hashes only the Added/Removed line contents
// (excluding context), which is what makes a move pairable regardless of
// the surrounding context differing between the two files.
func changedContentHash(h *models.Hunk) string {
	var b strings.Builder
	for _, l := range h.Lines {
		if l.Type == models.LineContext {
			continue
		}
		b.WriteString(l.Content)
		b.WriteByte('\n')
	}
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
