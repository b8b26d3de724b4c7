// Package vcs defines a capability-based interface over a version-control
// backend and provides a local-git implementation plus a pure in-memory
// test double. Modeling the backend as a capability set rather than a
// class hierarchy lets test harnesses supply a fake without touching a
// real git checkout (spec.md design note "Polymorphic VCS backends").
package vcs

import (
	"context"
	"os/exec"

	"github.com/reviewstation/engine/pkg/models"
)

// EmptyTreeSHA is git's well-known empty-tree object, used as a fallback
// when a ref cannot be resolved (e.g. HEAD in an unborn repository).
const EmptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// BranchInfo describes a single branch.
type BranchInfo struct {
	Name      string
	IsRemote  bool
	IsCurrent bool
}

// CommitInfo describes a single commit.
type CommitInfo struct {
	SHA       string
	Author    string
	Timestamp string
	Subject   string
}

// CommitDetail is a commit plus its diff against its first parent.
type CommitDetail struct {
	CommitInfo
	Diff string
}

// SearchMatch is a single git-grep hit.
type SearchMatch struct {
	Path string
	Line int
	Text string
}

// VCS is the capability set the engine requires of a version-control
// backend. Implementations must be safe for concurrent use; every
// operation that can block takes a context.
type VCS interface {
	// RepoRoot returns the absolute path to the repository root.
	RepoRoot() string

	// Command builds an *exec.Cmd for an operation not covered below (the
	// low-level escape hatch, mirrored from the capability-interface
	// pattern in the example pack).
	Command(ctx context.Context, args ...string) *exec.Cmd

	// ListFiles returns the file tree for a Comparison.
	ListFiles(ctx context.Context, cmp models.Comparison) ([]*models.FileEntry, error)

	// GetDiff produces unified-diff text per the contract in spec.md §4.1.
	GetDiff(ctx context.Context, cmp models.Comparison) (string, error)

	// GetFileBytes retrieves a file's raw content at a ref.
	GetFileBytes(ctx context.Context, ref, path string) ([]byte, error)

	// GetFileLines retrieves a file's content at a ref, split into lines.
	GetFileLines(ctx context.Context, ref, path string) ([]string, error)

	// ListBranches lists local and remote branches.
	ListBranches(ctx context.Context) ([]BranchInfo, error)

	// GetStatus lists the working-tree/index status entries.
	GetStatus(ctx context.Context) ([]*models.FileEntry, error)

	// ListCommits lists commits reachable from ref, most recent first.
	ListCommits(ctx context.Context, ref string, limit int) ([]CommitInfo, error)

	// GetCommitDetail retrieves one commit plus its diff.
	GetCommitDetail(ctx context.Context, sha string) (*CommitDetail, error)

	// ResolveRef resolves ref to a SHA, or EmptyTreeSHA if unresolvable.
	ResolveRef(ctx context.Context, ref string) (string, error)

	// MergeBase returns the merge-base of two refs.
	MergeBase(ctx context.Context, a, b string) (string, error)

	// SearchContents runs a git-grep style content search.
	SearchContents(ctx context.Context, pattern string) ([]SearchMatch, error)

	// StageHunks stages the given hunk ids out of the unstaged diff for
	// path. reverse=true unstages hunk ids taken from the staged diff
	// instead.
	StageHunks(ctx context.Context, path string, hunkIDs []string, reverse bool) error
}

// UnparseableRemote is returned by ParseRemoteURL when a remote URL does
// not match any recognized form.
type UnparseableRemote struct {
	URL string
}

func (e *UnparseableRemote) Error() string {
	return "unparseable remote url: " + e.URL
}

// NoMatchingHunks is returned by StageHunks when none of the requested
// hunk ids are present in the diff it selects hunks from.
type NoMatchingHunks struct{}

func (e *NoMatchingHunks) Error() string { return "no matching hunks to stage" }

// HunkCountMismatch is returned by StageHunks when the diff parser's hunk
// count diverges from the textual hunk-section count in the raw diff —
// a sign of parser drift rather than a user error.
type HunkCountMismatch struct {
	Parsed  int
	Textual int
}

func (e *HunkCountMismatch) Error() string {
	return "hunk count mismatch between parser and raw diff sections"
}
