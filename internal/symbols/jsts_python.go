package symbols

import (
	"regexp"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

var (
	jsFuncDeclRe  = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s+([A-Za-z_$]\w*)\s*\(`)
	jsClassRe     = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$]\w*)`)
	jsInterfaceRe = regexp.MustCompile(`^(?:export\s+)?interface\s+([A-Za-z_$]\w*)`)
	jsTypeAliasRe = regexp.MustCompile(`^(?:export\s+)?type\s+([A-Za-z_$]\w*)\s*=`)
	jsEnumRe      = regexp.MustCompile(`^(?:export\s+)?(?:const\s+)?enum\s+([A-Za-z_$]\w*)`)
	jsConstFuncRe = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:const|let|var)\s+([A-Za-z_$]\w*)\s*(?::[^=]+)?=\s*(?:async\s*)?(?:\([^)]*\)\s*(?::[^=]+)?=>|function\s*\()`)
	jsMethodRe    = regexp.MustCompile(`^(?:public|private|protected|static|async|\*)*\s*([A-Za-z_$][\w$]*)\s*\([^)]*\)\s*(?::[^{]+)?\{`)
)

// extractJSTS recognizes top-level declarations, including ones wrapped in
// an export_statement (every declaration regex tolerates a leading
// "export "/"export default "), and recurses into class bodies for methods
// (spec.md §4.3).
func extractJSTS(lines []string) []*models.Symbol {
	return extractJSTSRange(lines, 0, len(lines))
}

func extractJSTSRange(lines []string, start, end int) []*models.Symbol {
	var out []*models.Symbol
	for i := start; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}

		switch {
		case jsClassRe.MatchString(trimmed):
			m := jsClassRe.FindStringSubmatch(trimmed)
			bodyEnd := matchBrace(lines, i)
			out = append(out, &models.Symbol{
				Name: m[1], Kind: models.KindClass,
				StartLine: i + 1, EndLine: bodyEnd,
				Children: extractJSMethods(lines, i, bodyEnd),
			})
			i = bodyEnd - 1

		case jsInterfaceRe.MatchString(trimmed):
			m := jsInterfaceRe.FindStringSubmatch(trimmed)
			bodyEnd := matchBrace(lines, i)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindInterface, StartLine: i + 1, EndLine: bodyEnd})
			i = bodyEnd - 1

		case jsEnumRe.MatchString(trimmed):
			m := jsEnumRe.FindStringSubmatch(trimmed)
			bodyEnd := matchBrace(lines, i)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindEnum, StartLine: i + 1, EndLine: bodyEnd})
			i = bodyEnd - 1

		case jsTypeAliasRe.MatchString(trimmed):
			m := jsTypeAliasRe.FindStringSubmatch(trimmed)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindType, StartLine: i + 1, EndLine: i + 1})

		case jsFuncDeclRe.MatchString(trimmed):
			m := jsFuncDeclRe.FindStringSubmatch(trimmed)
			bodyEnd := matchBrace(lines, i)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindFunction, StartLine: i + 1, EndLine: bodyEnd})
			i = bodyEnd - 1

		case jsConstFuncRe.MatchString(trimmed):
			m := jsConstFuncRe.FindStringSubmatch(trimmed)
			bodyEnd := matchBrace(lines, i)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindFunction, StartLine: i + 1, EndLine: bodyEnd})
			i = bodyEnd - 1
		}
	}
	return out
}

func extractJSMethods(lines []string, start, end int) []*models.Symbol {
	var children []*models.Symbol
	for i := start + 1; i < end-1; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if m := jsMethodRe.FindStringSubmatch(trimmed); m != nil && m[1] != "constructor" {
			children = append(children, &models.Symbol{
				Name: m[1], Kind: models.KindMethod,
				StartLine: i + 1, EndLine: matchBrace(lines, i),
			})
		}
	}
	return children
}

var (
	pyDefRe   = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)`)
	pyDecoRe  = regexp.MustCompile(`^@\w`)
)

// extractPython is indentation-driven: a def/class header's block runs
// until indentation returns to or below the header's own level.
// decorated_definition preserves the decorator's start line as the
// symbol's StartLine per spec.md §4.3.
func extractPython(lines []string) []*models.Symbol {
	var out []*models.Symbol
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			i++
			continue
		}
		indent := indentOf(lines[i])

		declStart := i
		for declStart > 0 && pyDecoRe.MatchString(strings.TrimSpace(lines[declStart-1])) && indentOf(lines[declStart-1]) == indent {
			declStart--
		}

		switch {
		case pyClassRe.MatchString(trimmed):
			m := pyClassRe.FindStringSubmatch(trimmed)
			end := indentBlockEnd(lines, i, indent)
			out = append(out, &models.Symbol{
				Name: m[1], Kind: models.KindClass,
				StartLine: declStart + 1, EndLine: end,
				Children: extractPythonMethods(lines, i, end, indent),
			})
			i = end

		case pyDefRe.MatchString(trimmed):
			m := pyDefRe.FindStringSubmatch(trimmed)
			end := indentBlockEnd(lines, i, indent)
			if indent == 0 {
				out = append(out, &models.Symbol{Name: m[1], Kind: models.KindFunction, StartLine: declStart + 1, EndLine: end})
			}
			i = end

		default:
			i++
		}
	}
	return out
}

func extractPythonMethods(lines []string, classLine, classEnd, classIndent int) []*models.Symbol {
	var children []*models.Symbol
	i := classLine + 1
	for i < classEnd {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			i++
			continue
		}
		indent := indentOf(lines[i])
		if indent <= classIndent {
			i++
			continue
		}
		if m := pyDefRe.FindStringSubmatch(trimmed); m != nil {
			end := indentBlockEnd(lines, i, indent)
			declStart := i
			for declStart > classLine+1 && pyDecoRe.MatchString(strings.TrimSpace(lines[declStart-1])) && indentOf(lines[declStart-1]) == indent {
				declStart--
			}
			children = append(children, &models.Symbol{Name: m[1], Kind: models.KindMethod, StartLine: declStart + 1, EndLine: end})
			i = end
			continue
		}
		i++
	}
	return children
}
