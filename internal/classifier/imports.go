package classifier

import (
	"regexp"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

var (
	closeFromRe  = regexp.MustCompile(`^[\}\)]\s*from\s+['"][^'"]+['"];?$`)
	bareIdentRe  = regexp.MustCompile(`^[A-Za-z_$][\w$]*\s*,?$`)
	quotedOnlyRe = regexp.MustCompile(`^['"][^'"]+['"],?$`)
)

// classifyImports is rule 8: every changed line is an import statement or
// has the shape of a multi-line import continuation. Continuation lines
// are recognized by shape alone; bracket depth is not tracked, so such a
// line is accepted even when no import bracket is open around it.
func classifyImports(h *models.Hunk, ext string) *models.ClassificationResult {
	changed := changedLines(h)
	if len(changed) == 0 {
		return nil
	}
	for _, l := range changed {
		if !isImportOrContinuation(l.Content, ext) {
			return nil
		}
	}

	added := normalizeImportSet(addedLines(h))
	removed := normalizeImportSet(removedLines(h))

	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	if len(added) > 0 && multisetEqual(added, removed) {
		return label("imports:reordered", "same import set, different order")
	}
	switch {
	case len(removed) == 0:
		return label("imports:added", "only import statements added")
	case len(added) == 0:
		return label("imports:removed", "only import statements removed")
	default:
		return label("imports:modified", "import statements changed")
	}
}

func isImportOrContinuation(content, ext string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "import ") || trimmed == "import" {
		return true
	}
	if ext == "py" && strings.HasPrefix(trimmed, "from ") {
		return true
	}
	if ext == "go" && strings.HasPrefix(trimmed, `"`) {
		return true
	}
	if ext == "rs" && strings.HasPrefix(trimmed, "use ") {
		return true
	}
	// Multi-line import continuations: a lone closing bracket, a
	// "} from '...'" closer, a bare identifier, or a quoted module string.
	if trimmed == "}" || trimmed == ")" || trimmed == "]" {
		return true
	}
	if closeFromRe.MatchString(trimmed) {
		return true
	}
	if bareIdentRe.MatchString(trimmed) {
		return true
	}
	if quotedOnlyRe.MatchString(trimmed) {
		return true
	}
	return false
}

func normalizeImportSet(lines []models.DiffLine) []string {
	var out []string
	for _, l := range lines {
		trimmed := strings.TrimSpace(l.Content)
		if trimmed == "" {
			continue
		}
		trimmed = strings.TrimSuffix(trimmed, ";")
		out = append(out, collapseWS(trimmed))
	}
	return out
}

// multisetEqual compares two string slices as multisets.
func multisetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}
