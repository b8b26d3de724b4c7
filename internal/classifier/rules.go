package classifier

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

var lockfileNames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"Gemfile.lock":      true,
	"composer.lock":     true,
	"poetry.lock":       true,
	"Pipfile.lock":      true,
	"go.sum":            true,
	"mix.lock":          true,
}

var lineCommentPrefix = map[string]string{
	"go": "//", "rs": "//", "js": "//", "jsx": "//", "ts": "//", "tsx": "//",
	"java": "//", "c": "//", "h": "//", "cpp": "//", "cc": "//", "cs": "//",
	"py": "#", "rb": "#", "sh": "#", "yaml": "#", "yml": "#", "toml": "#",
	"php": "//", "sql": "--", "lua": "--",
}

// blockCommentOnlyExts are extensions whose language has no line-comment
// syntax at all, only the <!-- --> block form — rule 6 still applies to
// them, driven entirely by allCommentLines' block-comment tracking.
var blockCommentOnlyExts = map[string]bool{
	"html": true, "htm": true, "xml": true, "vue": true, "svelte": true,
}

// noLineCommentPrefix never matches strings.HasPrefix against a real
// line, so allCommentLines falls through to block-comment delimiters.
const noLineCommentPrefix = "\x00"

// StaticClassify applies spec.md §4.4's nine ordered rules to a single
// hunk, returning nil (never guess) when no rule matches.
func StaticClassify(h *models.Hunk, ext string) *models.ClassificationResult {
	if rule := classifyMove(h); rule != nil {
		return rule
	}
	if rule := classifyLockfile(h); rule != nil {
		return rule
	}
	if rule := classifyAddedEmpty(h); rule != nil {
		return rule
	}
	if rule := classifyWhitespace(h); rule != nil {
		return rule
	}
	if rule := classifyLineLength(h); rule != nil {
		return rule
	}
	if rule := classifyStyle(h); rule != nil {
		return rule
	}
	if rule := classifyComments(h, ext); rule != nil {
		return rule
	}
	if rule := classifyTypeAnnotations(h, ext); rule != nil {
		return rule
	}
	if rule := classifyImports(h, ext); rule != nil {
		return rule
	}
	return nil
}

func label(l, reason string) *models.ClassificationResult {
	return &models.ClassificationResult{Label: []string{l}, Reasoning: reason}
}

// changedLines returns every Added/Removed line in a hunk, in order.
func changedLines(h *models.Hunk) []models.DiffLine {
	var out []models.DiffLine
	for _, l := range h.Lines {
		if l.Type == models.LineAdded || l.Type == models.LineRemoved {
			out = append(out, l)
		}
	}
	return out
}

func addedLines(h *models.Hunk) []models.DiffLine  { return linesOfType(h, models.LineAdded) }
func removedLines(h *models.Hunk) []models.DiffLine { return linesOfType(h, models.LineRemoved) }

func linesOfType(h *models.Hunk, t models.LineType) []models.DiffLine {
	var out []models.DiffLine
	for _, l := range h.Lines {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}

// Rule 0: move pair.
func classifyMove(h *models.Hunk) *models.ClassificationResult {
	if h.MovePairID != nil {
		return label("move:code", "hunk is half of a detected code move")
	}
	return nil
}

// Rule 1: closed lockfile filename set.
func classifyLockfile(h *models.Hunk) *models.ClassificationResult {
	if lockfileNames[filepath.Base(h.FilePath)] {
		return label("generated:lockfile", "file is a recognized dependency lockfile")
	}
	return nil
}

// Rule 2: brand-new file, all-added, all-whitespace content.
func classifyAddedEmpty(h *models.Hunk) *models.ClassificationResult {
	if h.OldCount != 0 {
		return nil
	}
	for _, l := range h.Lines {
		if l.Type != models.LineAdded {
			return nil
		}
		if strings.TrimSpace(l.Content) != "" {
			return nil
		}
	}
	if len(h.Lines) == 0 {
		return nil
	}
	return label("file:added-empty", "new file containing only whitespace")
}

// Rule 3: every changed line is whitespace-only after trimming.
func classifyWhitespace(h *models.Hunk) *models.ClassificationResult {
	changed := changedLines(h)
	if len(changed) == 0 {
		return nil
	}
	for _, l := range changed {
		if strings.TrimSpace(l.Content) != "" {
			return nil
		}
	}
	return label("formatting:whitespace", "all changed lines are blank")
}

var wsCollapseRe = regexp.MustCompile(`\s+`)

func collapseWS(s string) string {
	return strings.TrimSpace(wsCollapseRe.ReplaceAllString(s, " "))
}

// Rule 4: collapsed-whitespace join of removed lines equals that of added
// lines, non-empty.
func classifyLineLength(h *models.Hunk) *models.ClassificationResult {
	added, removed := addedLines(h), removedLines(h)
	if len(added) == 0 || len(removed) == 0 {
		return nil
	}
	addedJoined := collapseWS(joinContents(added))
	removedJoined := collapseWS(joinContents(removed))
	if addedJoined == "" || addedJoined != removedJoined {
		return nil
	}
	return label("formatting:line-length", "reflow of identical content")
}

func joinContents(lines []models.DiffLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Content)
		b.WriteByte(' ')
	}
	return b.String()
}

var styleTrailPunctRe = regexp.MustCompile(`[;,]+$`)

func normalizeStyle(s string) string {
	s = strings.TrimSpace(s)
	s = styleTrailPunctRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", `"`)
	return collapseWS(s)
}

// Rule 5: removed/added lines pair 1:1 and are equal after stylistic
// normalization.
func classifyStyle(h *models.Hunk) *models.ClassificationResult {
	added, removed := addedLines(h), removedLines(h)
	if len(added) == 0 || len(added) != len(removed) {
		return nil
	}
	for i := range added {
		if normalizeStyle(added[i].Content) != normalizeStyle(removed[i].Content) {
			return nil
		}
	}
	return label("formatting:style", "equivalent after punctuation/quote normalization")
}

// Rule 6: every changed line is a comment line, tracking block-comment
// region state per side.
func classifyComments(h *models.Hunk, ext string) *models.ClassificationResult {
	prefix, ok := lineCommentPrefix[ext]
	if !ok {
		if !blockCommentOnlyExts[ext] {
			return nil
		}
		prefix = noLineCommentPrefix
	}
	changed := changedLines(h)
	if len(changed) == 0 {
		return nil
	}
	if !allCommentLines(addedLines(h), prefix) || !allCommentLines(removedLines(h), prefix) {
		return nil
	}

	added, removed := len(addedLines(h)) > 0, len(removedLines(h)) > 0
	switch {
	case added && removed:
		return label("comments:modified", "all changed lines are comments")
	case added:
		return label("comments:added", "all changed lines are comments")
	default:
		return label("comments:removed", "all changed lines are comments")
	}
}

// blockCommentPairs are the open/close delimiters rule 6 recognizes.
// """ and ''' use the same token for open and close.
var blockCommentPairs = []struct{ open, close string }{
	{"/*", "*/"},
	{"<!--", "-->"},
	{`"""`, `"""`},
	{"'''", "'''"},
}

// allCommentLines reports whether every non-blank line on one side of a
// hunk is a comment, carrying open/closed block-comment state across
// lines so a changed line of plain prose inside an already-open /* ... */
// (opened on a prior line within this same hunk) still counts as a
// comment line. A block still open at the end of the hunk is accepted:
// without the surrounding file we can't see where it closes.
func allCommentLines(lines []models.DiffLine, prefix string) bool {
	openClose := ""
	for _, l := range lines {
		trimmed := strings.TrimSpace(l.Content)
		if trimmed == "" {
			continue
		}
		if openClose != "" {
			idx := strings.Index(trimmed, openClose)
			if idx < 0 {
				continue
			}
			if rest := strings.TrimSpace(trimmed[idx+len(openClose):]); rest != "" {
				return false
			}
			openClose = ""
			continue
		}
		if strings.HasPrefix(trimmed, prefix) {
			continue
		}
		matched := false
		for _, pair := range blockCommentPairs {
			if !strings.HasPrefix(trimmed, pair.open) {
				continue
			}
			matched = true
			rest := trimmed[len(pair.open):]
			if idx := strings.Index(rest, pair.close); idx >= 0 {
				if trailing := strings.TrimSpace(rest[idx+len(pair.close):]); trailing != "" {
					return false
				}
			} else {
				openClose = pair.close
			}
			break
		}
		if !matched {
			return false
		}
	}
	return true
}
