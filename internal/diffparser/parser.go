// Package diffparser turns unified-diff text into Hunks with a stable,
// content-addressed identity, generalizing the state-machine shape of the
// teacher's internal/diff/parser.go into the full per-line parser
// spec.md §4.2 requires.
package diffparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/reviewstation/engine/pkg/models"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// parseState is the per-file state machine: before the first hunk header,
// or accumulating hunk body lines. A header line is consumed as it is seen
// and moves the parser into stateInHunk.
type parseState int

const (
	statePreamble parseState = iota
	stateInHunk
)

// Parse parses a single-file or multi-file unified diff into an ordered
// sequence of Hunks. An empty diff yields an empty, non-nil slice.
func Parse(diffText string) []*models.Hunk {
	if diffText == "" {
		return []*models.Hunk{}
	}
	sections, paths := splitByFile(diffText)
	var hunks []*models.Hunk
	for i, section := range sections {
		hunks = append(hunks, parseFileSection(paths[i], section)...)
	}
	return hunks
}

// splitByFile splits multi-file diff text on "diff --git " boundaries and
// binds each section to the path named by its "+++ b/<path>" marker.
// Sections whose new side is /dev/null (pure deletions) are skipped — the
// old path is not recoverable from the new-side marker alone, and callers
// already have name-status output for deletions.
func splitByFile(diffText string) (sections []string, paths []string) {
	raw := strings.Split(diffText, "diff --git ")
	for i, chunk := range raw {
		if i == 0 {
			if !strings.Contains(chunk, "+++ ") {
				continue
			}
		} else {
			chunk = "diff --git " + chunk
		}
		path, ok := extractNewPath(chunk)
		if !ok {
			continue
		}
		sections = append(sections, chunk)
		paths = append(paths, path)
	}
	return sections, paths
}

func extractNewPath(section string) (string, bool) {
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "+++ ") {
			target := strings.TrimSpace(strings.TrimPrefix(line, "+++ "))
			if target == "/dev/null" {
				return "", false
			}
			return strings.TrimPrefix(strings.TrimPrefix(target, "b/"), "a/"), true
		}
	}
	return "", false
}

// parseFileSection walks one file's diff text and emits its Hunks.
func parseFileSection(path, section string) []*models.Hunk {
	var hunks []*models.Hunk
	state := statePreamble

	var cur *models.Hunk
	var oldLine, newLine int

	flush := func() {
		if cur != nil {
			finalizeHunk(path, cur)
			hunks = append(hunks, cur)
			cur = nil
		}
	}

	// The newline ending the last line does not start another (empty,
	// context) line.
	for _, line := range strings.Split(strings.TrimSuffix(section, "\n"), "\n") {
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			state = stateInHunk
			oldStart, oldCount := parseCountedPair(m[1], m[2])
			newStart, newCount := parseCountedPair(m[3], m[4])
			cur = &models.Hunk{
				FilePath: path,
				OldStart: oldStart,
				OldCount: oldCount,
				NewStart: newStart,
				NewCount: newCount,
			}
			oldLine, newLine = oldStart, newStart
			continue
		}

		if state != stateInHunk || cur == nil {
			continue
		}

		if line == `\ No newline at end of file` {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			cur.Lines = append(cur.Lines, models.DiffLine{Type: models.LineAdded, Content: line[1:], NewLine: newLine})
			newLine++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			cur.Lines = append(cur.Lines, models.DiffLine{Type: models.LineRemoved, Content: line[1:], OldLine: oldLine})
			oldLine++
		case line == "" || strings.HasPrefix(line, " "):
			content := line
			if len(content) > 0 {
				content = content[1:]
			}
			cur.Lines = append(cur.Lines, models.DiffLine{Type: models.LineContext, Content: content, OldLine: oldLine, NewLine: newLine})
			oldLine++
			newLine++
		default:
			// A line inside the hunk body that isn't +/-/context (e.g. a
			// stray preamble artifact) is silently skipped per spec.md §7.
		}
	}
	flush()

	return hunks
}

// parseCountedPair parses the "a[,b]" components of a hunk header, where
// the count defaults to 1 when omitted ("@@ -5 +5 @@") and 0 is a valid
// explicit count ("@@ -1,0 +1,5 @@").
func parseCountedPair(startStr, countStr string) (start, count int) {
	start, _ = strconv.Atoi(startStr)
	if countStr == "" {
		return start, 1
	}
	count, _ = strconv.Atoi(countStr)
	return start, count
}

// finalizeHunk computes the content hash and id once a hunk's lines are
// complete.
func finalizeHunk(path string, h *models.Hunk) {
	h.ContentHash = hashLines(h.Lines)
	h.ID = h.FilePath + ":" + h.ContentHash
}

func hashLines(lines []models.DiffLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Content)
		b.WriteByte('\n')
	}
	sum := xxhash.Sum64String(b.String())
	return strconv.FormatUint(sum, 16)
}

// UntrackedPlaceholder produces the synthetic single-hunk diff for a
// net-new untracked file, so every file with changes has at least one
// hunk to attach labels to (spec.md §4.2).
func UntrackedPlaceholder(path string) *models.Hunk {
	h := &models.Hunk{
		FilePath: path,
		OldStart: 0,
		OldCount: 0,
		NewStart: 1,
		NewCount: 1,
		Lines: []models.DiffLine{
			{Type: models.LineAdded, Content: "(new file)", NewLine: 1},
		},
	}
	finalizeHunk(path, h)
	return h
}
