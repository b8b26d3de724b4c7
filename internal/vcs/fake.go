package vcs

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/reviewstation/engine/pkg/models"
)

// Fake is a pure in-memory VCS implementation for tests — the test
// harness the "Polymorphic VCS backends" design note calls for, so the
// sync server's handler tests do not need a real git checkout.
type Fake struct {
	Root     string
	Diffs    map[string]string // comparison key -> unified diff text
	Files    map[string][]byte // "ref:path" -> content
	Branches []BranchInfo
	Commits  []CommitInfo
	Statuses []*models.FileEntry
}

// NewFake constructs an empty Fake rooted at root.
func NewFake(root string) *Fake {
	return &Fake{
		Root:  root,
		Diffs: make(map[string]string),
		Files: make(map[string][]byte),
	}
}

func (f *Fake) RepoRoot() string { return f.Root }

func (f *Fake) Command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, "true")
}

func (f *Fake) GetDiff(ctx context.Context, cmp models.Comparison) (string, error) {
	return f.Diffs[cmp.Key], nil
}

func (f *Fake) GetFileBytes(ctx context.Context, ref, path string) ([]byte, error) {
	b, ok := f.Files[ref+":"+path]
	if !ok {
		return nil, fmt.Errorf("fake vcs: no file %s at %s", path, ref)
	}
	return b, nil
}

func (f *Fake) GetFileLines(ctx context.Context, ref, path string) ([]string, error) {
	b, err := f.GetFileBytes(ctx, ref, path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(b), "\n"), nil
}

func (f *Fake) ListBranches(ctx context.Context) ([]BranchInfo, error) { return f.Branches, nil }

func (f *Fake) GetStatus(ctx context.Context) ([]*models.FileEntry, error) { return f.Statuses, nil }

func (f *Fake) ListCommits(ctx context.Context, ref string, limit int) ([]CommitInfo, error) {
	out := f.Commits
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) GetCommitDetail(ctx context.Context, sha string) (*CommitDetail, error) {
	for _, c := range f.Commits {
		if c.SHA == sha {
			return &CommitDetail{CommitInfo: c}, nil
		}
	}
	return nil, fmt.Errorf("fake vcs: no commit %s", sha)
}

func (f *Fake) ResolveRef(ctx context.Context, ref string) (string, error) {
	for _, c := range f.Commits {
		if c.SHA == ref {
			return ref, nil
		}
	}
	return EmptyTreeSHA, nil
}

func (f *Fake) MergeBase(ctx context.Context, a, b string) (string, error) {
	return EmptyTreeSHA, nil
}

func (f *Fake) SearchContents(ctx context.Context, pattern string) ([]SearchMatch, error) {
	var matches []SearchMatch
	keys := make([]string, 0, len(f.Files))
	for k := range f.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts := strings.SplitN(k, ":", 2)
		if len(parts) != 2 {
			continue
		}
		for i, line := range strings.Split(string(f.Files[k]), "\n") {
			if strings.Contains(line, pattern) {
				matches = append(matches, SearchMatch{Path: parts[1], Line: i + 1, Text: line})
			}
		}
	}
	return matches, nil
}

func (f *Fake) StageHunks(ctx context.Context, path string, hunkIDs []string, reverse bool) error {
	return nil
}

func (f *Fake) ListFiles(ctx context.Context, cmp models.Comparison) ([]*models.FileEntry, error) {
	byPath := make(map[string]*models.FileEntry)
	for _, s := range f.Statuses {
		byPath[s.Path] = s
	}
	return buildTree(byPath), nil
}

var _ VCS = (*Fake)(nil)
var _ VCS = (*LocalGit)(nil)
