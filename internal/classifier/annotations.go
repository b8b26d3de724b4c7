package classifier

import (
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

// classifyTypeAnnotations is rule 7: Python/TypeScript only.
func classifyTypeAnnotations(h *models.Hunk, ext string) *models.ClassificationResult {
	if ext != "py" && ext != "ts" && ext != "tsx" {
		return nil
	}
	added, removed := addedLines(h), removedLines(h)
	if len(added) == 0 || len(added) != len(removed) {
		return nil
	}
	for i := range added {
		if stripTypeAnnotations(added[i].Content) != stripTypeAnnotations(removed[i].Content) {
			return nil
		}
	}
	return label("type-annotations:modified", "equal after stripping parameter/return type annotations")
}

// stripTypeAnnotations drops ": type" annotations after an identifier or
// closing paren, and "-> type" return annotations, tracking bracket and
// generic depth so "Foo<A, B>" is treated as a single unit. This is a
// lightweight heuristic pass, not a parser — string contents are not
// specially protected.
func stripTypeAnnotations(s string) string {
	runes := []rune(s)
	var out strings.Builder
	depth := 0
	sqDepth := 0
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch c {
		case '(', '[':
			depth++
			if c == '[' {
				sqDepth++
			}
			out.WriteRune(c)
			i++
			continue
		case ')', ']':
			if depth > 0 {
				depth--
			}
			if c == ']' && sqDepth > 0 {
				sqDepth--
			}
			out.WriteRune(c)
			i++
			continue
		case '<':
			// Only treat as generic-open when preceded by an identifier char,
			// to avoid mistaking a less-than operator for a generic.
			if out.Len() > 0 && isIdentRune(rune(out.String()[out.Len()-1])) {
				depth++
				out.WriteRune(c)
				i++
				continue
			}
		case '>':
			if depth > 0 {
				depth--
				out.WriteRune(c)
				i++
				continue
			}
		}

		if c == '-' && i+1 < len(runes) && runes[i+1] == '>' && depth == 0 {
			i = skipTypeExpr(runes, i+2)
			continue
		}

		// A ':' inside [...] is a slice or subscript, not an annotation.
		if c == ':' && sqDepth == 0 {
			prev := strings.TrimRight(out.String(), " \t")
			if prev != "" && (isIdentRune(rune(prev[len(prev)-1])) || prev[len(prev)-1] == ')') {
				i = skipTypeExpr(runes, i+1)
				continue
			}
		}

		out.WriteRune(c)
		i++
	}
	return collapseWS(out.String())
}

// skipTypeExpr advances past a type expression starting at idx, stopping
// at a top-level ',', ')', ']', '=', ';', '{' or end of string.
func skipTypeExpr(runes []rune, idx int) int {
	depth := 0
	j := idx
	for j < len(runes) {
		c := runes[j]
		switch c {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth == 0 {
				return j
			}
			depth--
		case ',', '=', ';', '{':
			if depth == 0 {
				return j
			}
		}
		j++
	}
	return j
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
