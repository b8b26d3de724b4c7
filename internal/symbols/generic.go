package symbols

import (
	"regexp"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

var (
	genericClassRe = regexp.MustCompile(`^(?:public|private|protected|internal|final|abstract|static)?\s*(?:class|struct|interface|trait)\s+([A-Za-z_]\w*)`)
	genericMethodRe = regexp.MustCompile(`^(?:public|private|protected|internal|final|static|abstract|virtual|override|async|function)+\s+[\w<>\[\],\s\*&]+?\s+([A-Za-z_]\w*)\s*\([^;{]*\)\s*\{?\s*$`)
	phpFuncRe       = regexp.MustCompile(`^(?:public|private|protected|static)?\s*function\s+([A-Za-z_]\w*)\s*\(`)
)

// extractBraceGeneric handles Java/C/C++/C#/PHP: class/struct/interface
// bodies recursed for method members, found via brace matching.
func extractBraceGeneric(lines []string) []*models.Symbol {
	var out []*models.Symbol
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if m := genericClassRe.FindStringSubmatch(trimmed); m != nil {
			end := matchBrace(lines, i)
			kind := models.KindClass
			if strings.Contains(trimmed, "struct") {
				kind = models.KindStruct
			} else if strings.Contains(trimmed, "interface") {
				kind = models.KindInterface
			} else if strings.Contains(trimmed, "trait") {
				kind = models.KindTrait
			}
			out = append(out, &models.Symbol{
				Name: m[1], Kind: kind,
				StartLine: i + 1, EndLine: end,
				Children: extractGenericMembers(lines, i, end),
			})
			i = end - 1
			continue
		}
		if m := genericMethodRe.FindStringSubmatch(trimmed); m != nil {
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindFunction, StartLine: i + 1, EndLine: matchBrace(lines, i)})
			continue
		}
		if m := phpFuncRe.FindStringSubmatch(trimmed); m != nil {
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindFunction, StartLine: i + 1, EndLine: matchBrace(lines, i)})
		}
	}
	return out
}

func extractGenericMembers(lines []string, start, end int) []*models.Symbol {
	var children []*models.Symbol
	for i := start + 1; i < end-1; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if m := genericMethodRe.FindStringSubmatch(trimmed); m != nil {
			children = append(children, &models.Symbol{Name: m[1], Kind: models.KindMethod, StartLine: i + 1, EndLine: matchBrace(lines, i)})
			continue
		}
		if m := phpFuncRe.FindStringSubmatch(trimmed); m != nil {
			children = append(children, &models.Symbol{Name: m[1], Kind: models.KindMethod, StartLine: i + 1, EndLine: matchBrace(lines, i)})
		}
	}
	return children
}

var (
	rubyClassRe  = regexp.MustCompile(`^class\s+([A-Za-z_][\w:]*)`)
	rubyModuleRe = regexp.MustCompile(`^module\s+([A-Za-z_][\w:]*)`)
	rubyDefRe    = regexp.MustCompile(`^def\s+(self\.)?([A-Za-z_]\w*[?!=]?)`)
)

// extractRuby matches class/module/def blocks terminated by a matching
// "end", tracking nesting depth since Ruby has no braces.
func extractRuby(lines []string) []*models.Symbol {
	var out []*models.Symbol
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case rubyClassRe.MatchString(trimmed):
			m := rubyClassRe.FindStringSubmatch(trimmed)
			end := rubyEnd(lines, i)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindClass, StartLine: i + 1, EndLine: end, Children: extractRubyMethods(lines, i, end)})
			i = end
		case rubyModuleRe.MatchString(trimmed):
			m := rubyModuleRe.FindStringSubmatch(trimmed)
			end := rubyEnd(lines, i)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindModule, StartLine: i + 1, EndLine: end})
			i = end
		case rubyDefRe.MatchString(trimmed):
			m := rubyDefRe.FindStringSubmatch(trimmed)
			end := rubyEnd(lines, i)
			out = append(out, &models.Symbol{Name: m[2], Kind: models.KindFunction, StartLine: i + 1, EndLine: end})
			i = end
		default:
			i++
		}
	}
	return out
}

func extractRubyMethods(lines []string, start, end int) []*models.Symbol {
	var children []*models.Symbol
	i := start + 1
	for i < end-1 {
		trimmed := strings.TrimSpace(lines[i])
		if m := rubyDefRe.FindStringSubmatch(trimmed); m != nil {
			methodEnd := rubyEnd(lines, i)
			children = append(children, &models.Symbol{Name: m[2], Kind: models.KindMethod, StartLine: i + 1, EndLine: methodEnd})
			i = methodEnd
			continue
		}
		i++
	}
	return children
}

var rubyBlockOpenerRe = regexp.MustCompile(`^(class|module|def|if|unless|case|while|until|begin|do\b)`)

func rubyEnd(lines []string, start int) int {
	depth := 0
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if rubyBlockOpenerRe.MatchString(trimmed) {
			depth++
		}
		if trimmed == "end" || strings.HasPrefix(trimmed, "end ") || strings.HasPrefix(trimmed, "end.") {
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(lines)
}
