package symbols

import (
	"regexp"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

var (
	goFuncRe      = regexp.MustCompile(`^func\s+([A-Za-z_]\w*)\s*\(`)
	goMethodRe    = regexp.MustCompile(`^func\s+\(([^)]*)\)\s+([A-Za-z_]\w*)\s*\(`)
	goTypeRe      = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s+(struct|interface)\b`)
	goTypeAliasRe = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s*(=|\[)?`)
)

func extractGo(lines []string) []*models.Symbol {
	var out []*models.Symbol
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := goMethodRe.FindStringSubmatch(trimmed); m != nil {
			receiver := strings.Fields(strings.TrimSpace(m[1]))
			recvType := receiver[len(receiver)-1]
			recvType = strings.TrimPrefix(recvType, "*")
			name := "(" + recvType + ")." + m[2]
			out = append(out, &models.Symbol{
				Name: name, Kind: models.KindMethod,
				StartLine: i + 1, EndLine: matchBrace(lines, i),
			})
			continue
		}
		if m := goFuncRe.FindStringSubmatch(trimmed); m != nil {
			out = append(out, &models.Symbol{
				Name: m[1], Kind: models.KindFunction,
				StartLine: i + 1, EndLine: matchBrace(lines, i),
			})
			continue
		}
		if m := goTypeRe.FindStringSubmatch(trimmed); m != nil {
			kind := models.KindStruct
			if m[2] == "interface" {
				kind = models.KindInterface
			}
			out = append(out, &models.Symbol{
				Name: m[1], Kind: kind,
				StartLine: i + 1, EndLine: matchBrace(lines, i),
			})
			continue
		}
		if m := goTypeAliasRe.FindStringSubmatch(trimmed); m != nil && !strings.Contains(trimmed, "struct") && !strings.Contains(trimmed, "interface") {
			out = append(out, &models.Symbol{
				Name: m[1], Kind: models.KindType,
				StartLine: i + 1, EndLine: i + 1,
			})
		}
	}
	return out
}

var (
	rustFnRe     = regexp.MustCompile(`^(?:pub\s+)?(?:async\s+)?fn\s+([A-Za-z_]\w*)`)
	rustStructRe = regexp.MustCompile(`^(?:pub\s+)?struct\s+([A-Za-z_]\w*)`)
	rustEnumRe   = regexp.MustCompile(`^(?:pub\s+)?enum\s+([A-Za-z_]\w*)`)
	rustTraitRe  = regexp.MustCompile(`^(?:pub\s+)?trait\s+([A-Za-z_]\w*)`)
	rustImplRe   = regexp.MustCompile(`^impl(?:<[^>]*>)?\s+(?:([A-Za-z_][\w:<>]*)\s+for\s+)?([A-Za-z_][\w:<>]*)`)
	rustTypeRe   = regexp.MustCompile(`^(?:pub\s+)?type\s+([A-Za-z_]\w*)`)
	rustModRe    = regexp.MustCompile(`^(?:pub\s+)?mod\s+([A-Za-z_]\w*)\s*\{`)
)

// extractRust walks fn/struct/enum/trait/impl/type/inline-mod items,
// attaching methods found inside a trait or impl body as children.
func extractRust(lines []string) []*models.Symbol {
	var out []*models.Symbol
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])

		switch {
		case rustTraitRe.MatchString(trimmed):
			m := rustTraitRe.FindStringSubmatch(trimmed)
			end := matchBrace(lines, i)
			out = append(out, &models.Symbol{
				Name: m[1], Kind: models.KindTrait,
				StartLine: i + 1, EndLine: end,
				Children: extractRustMethods(lines, i, end),
			})
			i = end

		case rustImplRe.MatchString(trimmed):
			m := rustImplRe.FindStringSubmatch(trimmed)
			name := m[2]
			if m[1] != "" {
				name = m[1] + " for " + m[2]
			}
			end := matchBrace(lines, i)
			out = append(out, &models.Symbol{
				Name: name, Kind: models.KindImpl,
				StartLine: i + 1, EndLine: end,
				Children: extractRustMethods(lines, i, end),
			})
			i = end

		case rustStructRe.MatchString(trimmed):
			m := rustStructRe.FindStringSubmatch(trimmed)
			end := i + 1
			if !strings.HasSuffix(trimmed, ";") {
				end = matchBrace(lines, i)
			}
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindStruct, StartLine: i + 1, EndLine: end})
			i++

		case rustEnumRe.MatchString(trimmed):
			m := rustEnumRe.FindStringSubmatch(trimmed)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindEnum, StartLine: i + 1, EndLine: matchBrace(lines, i)})
			i++

		case rustTypeRe.MatchString(trimmed):
			m := rustTypeRe.FindStringSubmatch(trimmed)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindType, StartLine: i + 1, EndLine: i + 1})
			i++

		case rustModRe.MatchString(trimmed):
			m := rustModRe.FindStringSubmatch(trimmed)
			out = append(out, &models.Symbol{Name: m[1], Kind: models.KindModule, StartLine: i + 1, EndLine: matchBrace(lines, i)})
			i++

		default:
			if rustFnRe.MatchString(trimmed) {
				m := rustFnRe.FindStringSubmatch(trimmed)
				out = append(out, &models.Symbol{Name: m[1], Kind: models.KindFunction, StartLine: i + 1, EndLine: matchBrace(lines, i)})
			}
			i++
		}
	}
	return out
}

func extractRustMethods(lines []string, start, end int) []*models.Symbol {
	var children []*models.Symbol
	for i := start + 1; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if m := rustFnRe.FindStringSubmatch(trimmed); m != nil {
			children = append(children, &models.Symbol{
				Name: m[1], Kind: models.KindMethod,
				StartLine: i + 1, EndLine: matchBrace(lines, i),
			})
		}
	}
	return children
}
