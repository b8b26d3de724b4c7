// Package symbols extracts named, line-ranged symbols from source text and
// diffs two symbol trees against a hunk set. No tree-sitter binding exists
// anywhere in the example pack, so extraction here is a line-oriented
// heuristic scanner per language family rather than a concrete-syntax-tree
// walk (spec.md §4.3; see DESIGN.md for why this is the one component built
// without a third-party grammar library).
package symbols

import (
	"path/filepath"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

// language groups file extensions that share an extraction strategy.
type language int

const (
	langUnknown language = iota
	langGo
	langRust
	langJSTS
	langPython
	langBraceGeneric // Java, C, C++, C#, PHP
	langRuby
	langCSS
	langHTML
	langMarkdown
)

var extToLang = map[string]language{
	"go":   langGo,
	"rs":   langRust,
	"js":   langJSTS,
	"jsx":  langJSTS,
	"mjs":  langJSTS,
	"cjs":  langJSTS,
	"ts":   langJSTS,
	"tsx":  langJSTS,
	"py":   langPython,
	"pyi":  langPython,
	"java": langBraceGeneric,
	"c":    langBraceGeneric,
	"h":    langBraceGeneric,
	"cc":   langBraceGeneric,
	"cpp":  langBraceGeneric,
	"hpp":  langBraceGeneric,
	"cs":   langBraceGeneric,
	"php":  langBraceGeneric,
	"rb":   langRuby,
	"css":  langCSS,
	"scss": langCSS,
	"html": langHTML,
	"htm":  langHTML,
	"md":   langMarkdown,
	"mdx":  langMarkdown,
}

// Extract dispatches on path's extension and returns the file's top-level
// symbols plus whether a grammar (extraction strategy) was found for it.
func Extract(path, content string) (syms []*models.Symbol, hasGrammar bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	lang, ok := extToLang[ext]
	if !ok {
		return nil, false
	}

	lines := strings.Split(content, "\n")

	switch lang {
	case langGo:
		return extractGo(lines), true
	case langRust:
		return extractRust(lines), true
	case langJSTS:
		return extractJSTS(lines), true
	case langPython:
		return extractPython(lines), true
	case langBraceGeneric:
		return extractBraceGeneric(lines), true
	case langRuby:
		return extractRuby(lines), true
	case langCSS:
		return extractCSS(lines), true
	case langHTML:
		return extractHTML(lines), true
	case langMarkdown:
		return extractMarkdown(lines), true
	default:
		return nil, false
	}
}

// matchBrace scans forward from startIdx (0-indexed, the line the opening
// construct appears on) counting '{'/'}' and returns the 1-indexed line the
// matching closing brace sits on. If the opening line has no '{' at all
// (e.g. Go's brace is always on the declaration line, but some languages
// put it on the next line), it keeps scanning until it finds the first one.
// Strings and comments are not tokenized — a deliberate heuristic
// simplification, not a parser.
func matchBrace(lines []string, startIdx int) int {
	depth := 0
	seenOpen := false
	for i := startIdx; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				seenOpen = true
			case '}':
				depth--
				if seenOpen && depth == 0 {
					return i + 1
				}
			}
		}
	}
	return len(lines)
}

// indentBlockEnd returns the 1-indexed last line of a Python-style
// indentation block starting at startIdx (0-indexed header line): the last
// contiguous line indented more than baseIndent, skipping blank lines.
func indentBlockEnd(lines []string, startIdx, baseIndent int) int {
	end := startIdx + 1
	for i := startIdx + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[i]) <= baseIndent {
			break
		}
		end = i + 1
	}
	return end
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 8
		} else {
			break
		}
	}
	return n
}
