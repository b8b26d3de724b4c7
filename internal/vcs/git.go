package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/reviewstation/engine/internal/diffparser"
	"github.com/reviewstation/engine/pkg/models"
)

// LocalGit drives all VCS operations by spawning the git executable
// against a repository root, following the histogram-diff-algorithm and
// explicit-prefix conventions spec.md §4.1 mandates for stable output.
type LocalGit struct {
	root string
}

// NewLocalGit validates path is inside a git repository and returns a
// LocalGit rooted at its toplevel.
func NewLocalGit(ctx context.Context, path string) (*LocalGit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", path, err)
	}
	g := &LocalGit{root: abs}
	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s: %w", abs, err)
	}
	g.root = strings.TrimSpace(out)
	return g, nil
}

func (g *LocalGit) RepoRoot() string { return g.root }

func (g *LocalGit) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.root
	return cmd
}

func (g *LocalGit) run(ctx context.Context, args ...string) (string, error) {
	cmd := g.Command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

// diffArgs are appended to every diff invocation for output stability.
var diffArgs = []string{"--src-prefix=a/", "--dst-prefix=b/", "--diff-algorithm=histogram"}

// GetDiff implements the contract in spec.md §4.1.
func (g *LocalGit) GetDiff(ctx context.Context, cmp models.Comparison) (string, error) {
	base := append([]string{"diff"}, diffArgs...)

	if cmp.StagedOnly {
		return g.run(ctx, append(base, "--cached")...)
	}

	if cmp.WorkingTree {
		head, err := g.ResolveRef(ctx, "HEAD")
		if err != nil {
			return "", err
		}
		mb, err := g.MergeBase(ctx, cmp.Old, head)
		if err != nil {
			mb = EmptyTreeSHA
		}
		return g.run(ctx, append(base, mb)...)
	}

	mb, err := g.MergeBase(ctx, cmp.Old, cmp.New)
	if err != nil {
		mb = EmptyTreeSHA
	}
	return g.run(ctx, append(base, mb, cmp.New)...)
}

// ResolveRef resolves ref to a SHA or falls back to the empty-tree SHA,
// enabling comparisons against an unborn HEAD.
func (g *LocalGit) ResolveRef(ctx context.Context, ref string) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return EmptyTreeSHA, nil
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the merge-base of a and b, falling back to treating
// unreachable refs as the empty tree.
func (g *LocalGit) MergeBase(ctx context.Context, a, b string) (string, error) {
	shaA, _ := g.ResolveRef(ctx, a)
	shaB, _ := g.ResolveRef(ctx, b)
	if shaA == EmptyTreeSHA || shaB == EmptyTreeSHA {
		return EmptyTreeSHA, nil
	}
	out, err := g.run(ctx, "merge-base", shaA, shaB)
	if err != nil {
		return EmptyTreeSHA, nil
	}
	return strings.TrimSpace(out), nil
}

func (g *LocalGit) GetFileBytes(ctx context.Context, ref, path string) ([]byte, error) {
	out, err := g.run(ctx, "show", ref+":"+path)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (g *LocalGit) GetFileLines(ctx context.Context, ref, path string) ([]string, error) {
	b, err := g.GetFileBytes(ctx, ref, path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(b), "\n"), nil
}

func (g *LocalGit) ListBranches(ctx context.Context) ([]BranchInfo, error) {
	out, err := g.run(ctx, "branch", "-a", "--format=%(refname:short)|%(HEAD)")
	if err != nil {
		return nil, err
	}
	var branches []BranchInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		name := parts[0]
		current := len(parts) > 1 && strings.TrimSpace(parts[1]) == "*"
		branches = append(branches, BranchInfo{
			Name:      name,
			IsRemote:  strings.HasPrefix(name, "remotes/"),
			IsCurrent: current,
		})
	}
	return branches, nil
}

func (g *LocalGit) ListCommits(ctx context.Context, ref string, limit int) ([]CommitInfo, error) {
	args := []string{"log", "--format=%H|%an|%aI|%s"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	if ref != "" {
		args = append(args, ref)
	}
	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	var commits []CommitInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, CommitInfo{SHA: parts[0], Author: parts[1], Timestamp: parts[2], Subject: parts[3]})
	}
	return commits, nil
}

func (g *LocalGit) GetCommitDetail(ctx context.Context, sha string) (*CommitDetail, error) {
	out, err := g.run(ctx, "log", "-1", "--format=%H|%an|%aI|%s", sha)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(strings.TrimSpace(out), "|", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("unexpected commit log format for %s", sha)
	}
	diff, err := g.run(ctx, append([]string{"show", "--format=", sha}, diffArgs...)...)
	if err != nil {
		return nil, err
	}
	return &CommitDetail{
		CommitInfo: CommitInfo{SHA: parts[0], Author: parts[1], Timestamp: parts[2], Subject: parts[3]},
		Diff:       diff,
	}, nil
}

// classifySymlink inspects path (relative to g.root) via Lstat, never
// following the link itself: a symlink targeting a directory is reported
// as a directory, and ok is false for a broken symlink (or anything else
// that no longer stat()s) so callers can drop it from listings entirely
// (spec.md §4.1's non-following symlink handling).
func (g *LocalGit) classifySymlink(path string) (isSymlink bool, target string, isDir bool, ok bool) {
	full := filepath.Join(g.root, path)
	lst, err := os.Lstat(full)
	if err != nil {
		return false, "", false, false
	}
	if lst.Mode()&os.ModeSymlink == 0 {
		return false, "", lst.IsDir(), true
	}
	target, err = os.Readlink(full)
	if err != nil {
		return true, "", false, false
	}
	st, err := os.Stat(full)
	if err != nil {
		return true, target, false, false
	}
	return true, target, st.IsDir(), true
}

// applySymlinkClassification overwrites entry's IsDir/IsSymlink/
// SymlinkTarget from an Lstat of its path, returning false when the
// entry is a broken symlink and should be dropped.
func (g *LocalGit) applySymlinkClassification(entry *models.FileEntry) bool {
	isSymlink, target, isDir, ok := g.classifySymlink(entry.Path)
	if !ok {
		return false
	}
	entry.IsSymlink = isSymlink
	entry.SymlinkTarget = target
	if isSymlink {
		entry.IsDir = isDir
	}
	return true
}

// GetStatus lists working-tree/index status entries via `git status
// --porcelain=v1 -z` plus an ls-files pass for collapsed gitignored
// directories.
func (g *LocalGit) GetStatus(ctx context.Context) ([]*models.FileEntry, error) {
	out, err := g.run(ctx, "status", "--porcelain=v1", "-z")
	if err != nil {
		return nil, err
	}

	var entries []*models.FileEntry
	tokens := strings.Split(out, "\x00")
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if len(tok) < 4 {
			continue
		}
		code := tok[:2]
		path := tok[3:]
		if strings.Contains(code, "R") && i+1 < len(tokens) {
			// Renamed entries carry the old path in the following token.
			i++
		}
		entry := &models.FileEntry{
			Name:   filepath.Base(path),
			Path:   path,
			Status: statusFromPorcelain(code),
		}
		if !g.applySymlinkClassification(entry) {
			continue
		}
		entries = append(entries, entry)
	}

	ignored, err := g.run(ctx, "ls-files", "--others", "--ignored", "--exclude-standard", "--directory")
	if err == nil {
		for _, path := range strings.Split(strings.TrimSpace(ignored), "\n") {
			if path == "" {
				continue
			}
			entry := &models.FileEntry{
				Name:   filepath.Base(strings.TrimSuffix(path, "/")),
				Path:   strings.TrimSuffix(path, "/"),
				IsDir:  strings.HasSuffix(path, "/"),
				Status: models.StatusGitignored,
			}
			if !g.applySymlinkClassification(entry) {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func statusFromPorcelain(code string) models.FileStatus {
	switch {
	case strings.Contains(code, "?"):
		return models.StatusUntracked
	case strings.Contains(code, "A"):
		return models.StatusAdded
	case strings.Contains(code, "D"):
		return models.StatusDeleted
	case strings.Contains(code, "R"):
		return models.StatusRenamed
	default:
		return models.StatusModified
	}
}

// ListFiles builds a tree from tracked files unioned with status entries,
// sorted directories-first then lexicographic-case-insensitive at every
// depth (spec.md §4.1).
func (g *LocalGit) ListFiles(ctx context.Context, cmp models.Comparison) ([]*models.FileEntry, error) {
	tracked, err := g.run(ctx, "ls-files")
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]*models.FileEntry)
	for _, p := range strings.Split(strings.TrimSpace(tracked), "\n") {
		if p == "" {
			continue
		}
		entry := &models.FileEntry{Name: filepath.Base(p), Path: p}
		if !g.applySymlinkClassification(entry) {
			continue
		}
		byPath[p] = entry
	}

	statuses, err := g.GetStatus(ctx)
	if err == nil {
		for _, s := range statuses {
			byPath[s.Path] = s
		}
	}

	return buildTree(byPath), nil
}

func buildTree(byPath map[string]*models.FileEntry) []*models.FileEntry {
	root := &models.FileEntry{IsDir: true}
	dirs := map[string]*models.FileEntry{"": root}

	var ensureDir func(path string) *models.FileEntry
	ensureDir = func(path string) *models.FileEntry {
		if d, ok := dirs[path]; ok {
			return d
		}
		parentPath := filepath.Dir(path)
		if parentPath == "." || parentPath == path {
			parentPath = ""
		}
		parent := ensureDir(parentPath)
		d := &models.FileEntry{Name: filepath.Base(path), Path: path, IsDir: true}
		parent.Children = append(parent.Children, d)
		dirs[path] = d
		return d
	}

	var paths []string
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		entry := byPath[p]
		dir := filepath.Dir(p)
		if dir == "." {
			dir = ""
		}
		parent := ensureDir(dir)
		parent.Children = append(parent.Children, entry)
	}

	sortTree(root)
	return root.Children
}

func sortTree(e *models.FileEntry) {
	sort.Slice(e.Children, func(i, j int) bool {
		a, b := e.Children[i], e.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range e.Children {
		if c.IsDir {
			sortTree(c)
		}
	}
}

// StageHunks reconstructs a minimal patch covering only hunkIDs out of
// path's unstaged diff (its staged diff when reverse is set) and applies
// it to the index via `git apply --cached` (with --reverse to unstage), so
// a reviewer can stage/unstage at hunk granularity rather than whole-file
// granularity (spec.md §4.1).
func (g *LocalGit) StageHunks(ctx context.Context, path string, hunkIDs []string, reverse bool) error {
	diffCmd := append([]string{"diff"}, diffArgs...)
	if reverse {
		// Hunks to unstage are the ones already in the index.
		diffCmd = append(diffCmd, "--cached")
	}
	fileDiff, err := g.run(ctx, append(diffCmd, "--", path)...)
	if err != nil {
		return err
	}
	if strings.TrimSpace(fileDiff) == "" {
		return &NoMatchingHunks{}
	}

	header, sections := diffparser.SplitSections(path, fileDiff)

	textual := strings.Count(fileDiff, "\n@@ -")
	if strings.HasPrefix(fileDiff, "@@ -") {
		textual++
	}
	if textual != len(sections) {
		return &HunkCountMismatch{Parsed: len(sections), Textual: textual}
	}

	want := make(map[string]bool, len(hunkIDs))
	for _, id := range hunkIDs {
		want[id] = true
	}

	var patch strings.Builder
	patch.WriteString(header)
	patch.WriteString("\n")
	matched := 0
	for _, s := range sections {
		if !want[s.ID] {
			continue
		}
		matched++
		patch.WriteString(s.Raw)
		patch.WriteString("\n")
	}
	if matched == 0 {
		return &NoMatchingHunks{}
	}

	args := []string{"apply", "--cached", "--allow-empty"}
	if reverse {
		args = append(args, "--reverse")
	}
	cmd := g.Command(ctx, args...)
	cmd.Stdin = strings.NewReader(patch.String())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git apply --cached: %w: %s", err, stderr.String())
	}
	return nil
}

func (g *LocalGit) SearchContents(ctx context.Context, pattern string) ([]SearchMatch, error) {
	out, err := g.run(ctx, "grep", "-n", "-I", "--no-color", pattern)
	if err != nil {
		// git-grep exits 1 with no output on no matches; treat as empty.
		if strings.TrimSpace(out) == "" {
			return nil, nil
		}
		return nil, err
	}
	var matches []SearchMatch
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		lineNum, _ := strconv.Atoi(parts[1])
		matches = append(matches, SearchMatch{Path: parts[0], Line: lineNum, Text: parts[2]})
	}
	return matches, nil
}
