// Package models holds the data types shared across the diff, symbol,
// classifier, and review-state components of the engine.
package models

import "time"

// Comparison identifies a reviewable pair of refs within a repository.
type Comparison struct {
	Old         string `json:"old"`
	New         string `json:"new"`
	WorkingTree bool   `json:"working_tree"`
	StagedOnly  bool   `json:"staged_only"`
	Key         string `json:"key"`
}

// FileStatus classifies a file entry's change relative to the comparison.
type FileStatus string

const (
	StatusAdded      FileStatus = "Added"
	StatusModified   FileStatus = "Modified"
	StatusDeleted    FileStatus = "Deleted"
	StatusRenamed    FileStatus = "Renamed"
	StatusUntracked  FileStatus = "Untracked"
	StatusGitignored FileStatus = "Gitignored"
)

// FileEntry is a node in the repository's file tree for a comparison.
type FileEntry struct {
	Name           string       `json:"name"`
	Path           string       `json:"path"`
	IsDir          bool         `json:"is_dir"`
	Children       []*FileEntry `json:"children,omitempty"`
	Status         FileStatus   `json:"status,omitempty"`
	IsSymlink      bool         `json:"is_symlink,omitempty"`
	SymlinkTarget  string       `json:"symlink_target,omitempty"`
}

// LineType distinguishes context, added, and removed diff lines.
type LineType string

const (
	LineContext LineType = "context"
	LineAdded   LineType = "added"
	LineRemoved LineType = "removed"
)

// DiffLine is a single line inside a hunk.
type DiffLine struct {
	Type    LineType `json:"type"`
	Content string   `json:"content"`
	OldLine int      `json:"old_line,omitempty"`
	NewLine int      `json:"new_line,omitempty"`
}

// Hunk is a contiguous region of change with a stable content identity.
type Hunk struct {
	FilePath   string     `json:"file_path"`
	OldStart   int        `json:"old_start"`
	OldCount   int        `json:"old_count"`
	NewStart   int        `json:"new_start"`
	NewCount   int        `json:"new_count"`
	Lines      []DiffLine `json:"lines"`
	ContentHash string    `json:"content_hash"`
	ID         string     `json:"id"`
	MovePairID *string    `json:"move_pair_id,omitempty"`
}

// MovePair is two hunks in different files sharing changed-content hash,
// one additions-only and one removals-only.
type MovePair struct {
	AddedHunkID   string `json:"added_hunk_id"`
	RemovedHunkID string `json:"removed_hunk_id"`
}

// SymbolKind enumerates the node kinds the symbol extractor recognizes.
type SymbolKind string

const (
	KindFunction  SymbolKind = "Function"
	KindMethod    SymbolKind = "Method"
	KindClass     SymbolKind = "Class"
	KindStruct    SymbolKind = "Struct"
	KindTrait     SymbolKind = "Trait"
	KindImpl      SymbolKind = "Impl"
	KindEnum      SymbolKind = "Enum"
	KindInterface SymbolKind = "Interface"
	KindModule    SymbolKind = "Module"
	KindType      SymbolKind = "Type"
)

// Symbol is a named, line-ranged node extracted from source text.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	Children  []*Symbol  `json:"children,omitempty"`
}

// ChangeType describes how a symbol differs between the old and new trees.
type ChangeType string

const (
	ChangeAdded    ChangeType = "Added"
	ChangeRemoved  ChangeType = "Removed"
	ChangeModified ChangeType = "Modified"
)

// LineRange is an inclusive 1-indexed line span.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SymbolDiff is a recursive node describing a symbol's change status, the
// hunks attributed to it, and its changed children.
type SymbolDiff struct {
	Name       string        `json:"name"`
	Kind       SymbolKind    `json:"kind"`
	ChangeType ChangeType    `json:"change_type"`
	HunkIDs    []string      `json:"hunk_ids"`
	Children   []*SymbolDiff `json:"children,omitempty"`
	OldRange   *LineRange    `json:"old_range,omitempty"`
	NewRange   *LineRange    `json:"new_range,omitempty"`
}

// FileSymbolDiff is the per-file result of diffing two symbol trees: the
// recognized top-level symbol diffs plus any hunks not consumed by a symbol.
type FileSymbolDiff struct {
	Path        string        `json:"path"`
	HasGrammar  bool          `json:"has_grammar"`
	Symbols     []*SymbolDiff `json:"symbols"`
	TopLevelIDs []string      `json:"top_level_hunk_ids"`
}

// ReviewStatus is a reviewer's disposition on a single hunk.
type ReviewStatus string

const (
	StatusPending   ReviewStatus = "pending"
	StatusApproved  ReviewStatus = "approved"
	StatusDismissed ReviewStatus = "dismissed"
	StatusFlagged   ReviewStatus = "flagged"
)

// ClassifiedVia records which stage produced a hunk's label.
type ClassifiedVia string

const (
	ViaStatic ClassifiedVia = "static"
	ViaAI     ClassifiedVia = "ai"
	ViaManual ClassifiedVia = "manual"
)

// HunkState is the persisted per-hunk review record.
type HunkState struct {
	Label         []string       `json:"label"`
	Reasoning     string         `json:"reasoning,omitempty"`
	Status        *ReviewStatus  `json:"status,omitempty"`
	ClassifiedVia *ClassifiedVia `json:"classified_via,omitempty"`
}

// PullRequestRef optionally ties a review state to a hosted PR/MR.
type PullRequestRef struct {
	Provider string `json:"provider"`
	Number   int    `json:"number"`
	URL      string `json:"url,omitempty"`
}

// ReviewState is the persistent, versioned document for one (repo,
// comparison) pair.
type ReviewState struct {
	Comparison Comparison           `json:"comparison"`
	Version    uint64               `json:"version"`
	Hunks      map[string]HunkState `json:"hunks"`
	Notes      string               `json:"notes"`
	TrustList  []string             `json:"trust_list"`
	UpdatedAt  time.Time            `json:"updated_at"`
	PullRequest *PullRequestRef     `json:"pull_request,omitempty"`
}

// NewReviewState creates a fresh, zero-version state for a comparison.
func NewReviewState(cmp Comparison) *ReviewState {
	return &ReviewState{
		Comparison: cmp,
		Version:    0,
		Hunks:      make(map[string]HunkState),
		TrustList:  []string{},
	}
}

// ClassificationResult is the output of either classifier stage for one
// hunk.
type ClassificationResult struct {
	Label     []string `json:"label"`
	Reasoning string   `json:"reasoning"`
}

// RepoRecord is one entry in the central cross-repository index.
type RepoRecord struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ReviewSummary is a lightweight listing entry for the global review list.
type ReviewSummary struct {
	RepoPath   string    `json:"repo_path"`
	RepoName   string    `json:"repo_name"`
	Comparison Comparison `json:"comparison"`
	Version    uint64    `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}
