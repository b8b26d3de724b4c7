package watcher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignorePattern is a single gitignore-style line, grounded on the
// teacher-adjacent `dshills-keystorm` internal/project/watcher/ignore.go
// hand-rolled matcher (no gitignore library appears anywhere in the
// example pack, so this stays a heuristic matcher rather than a CST-grade
// implementation).
type ignorePattern struct {
	pattern string
	dirOnly bool
	rooted  bool
}

// GitignoreMatcher matches repo-relative paths against a flat set of
// gitignore patterns loaded from the repo's .gitignore plus a small set of
// common global ignores.
type GitignoreMatcher struct {
	patterns []ignorePattern
}

// NewGitignoreMatcher loads repoRoot/.gitignore (if present) plus common
// global patterns.
func NewGitignoreMatcher(repoRoot string) *GitignoreMatcher {
	m := &GitignoreMatcher{}
	m.addLines([]string{
		".DS_Store", "*.swp", "*.swo", "*~", ".idea", ".vscode",
	})
	m.addFile(filepath.Join(repoRoot, ".gitignore"))
	return m
}

func (m *GitignoreMatcher) addFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	m.addLines(lines)
}

func (m *GitignoreMatcher) addLines(lines []string) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		p := ignorePattern{pattern: line}
		if strings.HasSuffix(p.pattern, "/") {
			p.dirOnly = true
			p.pattern = strings.TrimSuffix(p.pattern, "/")
		}
		if strings.HasPrefix(p.pattern, "/") {
			p.rooted = true
			p.pattern = strings.TrimPrefix(p.pattern, "/")
		}
		m.patterns = append(m.patterns, p)
	}
}

// Match reports whether relPath (slash-separated, relative to the repo
// root) should be ignored.
func (m *GitignoreMatcher) Match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	base := filepath.Base(relPath)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.rooted {
			if ok, _ := filepath.Match(p.pattern, relPath); ok {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(p.pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p.pattern, relPath); ok {
			return true
		}
		if strings.Contains(relPath, "/"+p.pattern+"/") || strings.HasPrefix(relPath, p.pattern+"/") {
			return true
		}
	}
	return false
}
