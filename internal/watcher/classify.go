package watcher

import (
	"path/filepath"
	"strings"
)

// Category is the classification a changed path falls into for
// notification-coalescing purposes (spec.md §4.6).
type Category int

const (
	CategoryIgnored Category = iota
	CategoryWorkingTree
	CategoryReviewState
)

var noisyDirs = map[string]bool{
	"node_modules": true, "venv": true, "__pycache__": true, "target": true,
	".next": true, "dist": true, "build": true, ".cache": true,
}

// gitMeaningfulPrefixes lists the .git-relative prefixes that still produce a
// git-changed notification; everything else under .git/ is noise.
var gitMeaningfulPrefixes = []string{"refs/heads", "refs/remotes", "HEAD", "index"}

// classifier holds the per-repo state needed to classify a changed path:
// the gitignore matcher, the repo root, the storage subdirectory (our own
// review-state files), and our own log file names to break feedback loops.
type classifier struct {
	repoRoot    string
	storageSub  string // repo-relative, e.g. ".reviewengine"
	ignore      *GitignoreMatcher
	ownLogNames map[string]bool
}

func newClassifier(repoRoot, storageSub string) *classifier {
	return &classifier{
		repoRoot:   repoRoot,
		storageSub: filepath.ToSlash(storageSub),
		ignore:     NewGitignoreMatcher(repoRoot),
		ownLogNames: map[string]bool{
			"reviewengine.log": true,
		},
	}
}

// classify maps an absolute changed path to a Category.
func (c *classifier) classify(absPath string, isDir bool) Category {
	rel, err := filepath.Rel(c.repoRoot, absPath)
	if err != nil {
		return CategoryIgnored
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)

	if c.ownLogNames[base] {
		return CategoryIgnored
	}

	if c.storageSub != "" && (rel == c.storageSub || strings.HasPrefix(rel, c.storageSub+"/")) {
		if c.ownLogNames[base] {
			return CategoryIgnored
		}
		return CategoryReviewState
	}

	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return c.classifyGit(strings.TrimPrefix(rel, ".git/"))
	}

	if isNoisyPath(rel) {
		return CategoryIgnored
	}

	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") || strings.HasSuffix(base, "~") {
		return CategoryIgnored
	}

	if c.ignore.Match(rel, isDir) {
		return CategoryIgnored
	}

	return CategoryWorkingTree
}

func (c *classifier) classifyGit(gitRelPath string) Category {
	if strings.HasSuffix(gitRelPath, ".lock") {
		return CategoryIgnored
	}
	if c.storageSub != "" && strings.HasPrefix(gitRelPath, c.storageSub) {
		return CategoryReviewState
	}
	for _, prefix := range gitMeaningfulPrefixes {
		if gitRelPath == prefix || strings.HasPrefix(gitRelPath, prefix+"/") {
			return CategoryWorkingTree
		}
	}
	return CategoryIgnored
}

func isNoisyPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if noisyDirs[part] {
			return true
		}
	}
	return false
}
