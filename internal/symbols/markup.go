package symbols

import (
	"regexp"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

var cssRuleRe = regexp.MustCompile(`^([^{}]+)\{`)

// extractCSS treats each top-level selector block as a Type symbol; the
// selector text itself is the name, mirroring how the rest of the package
// names constructs by their declared identifier.
func extractCSS(lines []string) []*models.Symbol {
	var out []*models.Symbol
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if m := cssRuleRe.FindStringSubmatch(trimmed); m != nil {
			name := strings.TrimSpace(m[1])
			if name == "" || strings.HasPrefix(name, "@media") || strings.HasPrefix(name, "@keyframes") {
				continue
			}
			out = append(out, &models.Symbol{Name: name, Kind: models.KindType, StartLine: i + 1, EndLine: matchBrace(lines, i)})
		}
	}
	return out
}

var (
	htmlIDRe     = regexp.MustCompile(`id\s*=\s*["']([^"']+)["']`)
	htmlTagOpenRe = regexp.MustCompile(`<(script|style)\b[^>]*>`)
)

// extractHTML extracts elements carrying an id attribute as "#id", plus
// <script> and <style> blocks. Every line is scanned, so elements nested at
// any depth are found (spec.md §4.3).
func extractHTML(lines []string) []*models.Symbol {
	var out []*models.Symbol
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := htmlIDRe.FindStringSubmatch(line); m != nil {
			out = append(out, &models.Symbol{Name: "#" + m[1], Kind: models.KindModule, StartLine: i + 1, EndLine: i + 1})
		}
		if m := htmlTagOpenRe.FindStringSubmatch(line); m != nil {
			tag := m[1]
			out = append(out, &models.Symbol{Name: "<" + tag + ">", Kind: models.KindModule, StartLine: i + 1, EndLine: htmlClosingTag(lines, i, tag)})
		}
	}
	return out
}

func htmlClosingTag(lines []string, start int, tag string) int {
	closer := "</" + tag + ">"
	for i := start; i < len(lines); i++ {
		if strings.Contains(lines[i], closer) {
			return i + 1
		}
	}
	return len(lines)
}

var mdHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// extractMarkdown reports each heading as a Module symbol spanning until
// the next heading of equal-or-shallower depth.
func extractMarkdown(lines []string) []*models.Symbol {
	var headings []*models.Symbol
	var depths []int
	for i, line := range lines {
		m := mdHeadingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		headings = append(headings, &models.Symbol{
			Name:      strings.TrimSpace(m[2]),
			Kind:      models.KindModule,
			StartLine: i + 1,
			EndLine:   len(lines),
		})
		depths = append(depths, len(m[1]))
	}
	for i := range headings {
		for j := i + 1; j < len(headings); j++ {
			if depths[j] <= depths[i] {
				headings[i].EndLine = headings[j].StartLine - 1
				break
			}
		}
	}
	return headings
}
