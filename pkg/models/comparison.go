package models

import (
	"fmt"
	"strconv"
	"strings"
)

// filenameUnsafe lists the characters spec.md §3 requires substituted with
// "_" so a comparison key is always safe to use as a path component.
const filenameUnsafe = `/\:*?"<>|`

// sanitizeForFilename replaces every filename-unsafe rune in s with "_".
func sanitizeForFilename(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(filenameUnsafe, r) {
			return '_'
		}
		return r
	}, s)
}

// BuildComparisonKey canonicalizes (old, new, working_tree, staged_only)
// into the `<old>..<new>` (+ optional `+working-tree`/`+staged` suffix)
// key format spec.md §3 defines, filename-sanitized.
func BuildComparisonKey(old, new string, workingTree, stagedOnly bool) string {
	key := old + ".." + new
	switch {
	case stagedOnly:
		key += "+staged"
	case workingTree:
		key += "+working-tree"
	}
	return sanitizeForFilename(key)
}

// PullRequestComparisonKey builds the `pr-<number>` key form for a
// PR-backed comparison.
func PullRequestComparisonKey(number int) string {
	return fmt.Sprintf("pr-%d", number)
}

// ParseComparisonKey reconstructs a Comparison from a key string, per
// spec.md §4.7: split on ".." and inspect the suffix. A `pr-<number>` key
// has no recoverable old/new refs — the caller must already hold the
// persisted ReviewState for those.
func ParseComparisonKey(key string) (Comparison, error) {
	if strings.HasPrefix(key, "pr-") {
		if _, err := strconv.Atoi(strings.TrimPrefix(key, "pr-")); err != nil {
			return Comparison{}, fmt.Errorf("parsing comparison key %q: invalid pr number", key)
		}
		return Comparison{Key: key}, nil
	}

	rest := key
	workingTree := false
	stagedOnly := false
	switch {
	case strings.HasSuffix(rest, "+staged"):
		stagedOnly = true
		rest = strings.TrimSuffix(rest, "+staged")
	case strings.HasSuffix(rest, "+working-tree"):
		workingTree = true
		rest = strings.TrimSuffix(rest, "+working-tree")
	}

	idx := strings.Index(rest, "..")
	if idx < 0 {
		return Comparison{}, fmt.Errorf("parsing comparison key %q: missing \"..\" separator", key)
	}

	return Comparison{
		Old:         rest[:idx],
		New:         rest[idx+2:],
		WorkingTree: workingTree,
		StagedOnly:  stagedOnly,
		Key:         key,
	}, nil
}
