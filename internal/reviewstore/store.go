// Package reviewstore persists ReviewState documents as pretty-printed
// JSON under a central root directory, one file per (repo, comparison)
// pair, with optimistic-concurrency saves and a cross-repo index. The
// file-per-document-under-a-root layout generalizes a single
// `~/.lrc.toml`-style home-directory config file into a whole document
// tree.
package reviewstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/reviewstation/engine/pkg/models"
)

// VersionConflict is returned by Save when the incoming state's expected
// predecessor version doesn't match what's on disk.
type VersionConflict struct {
	Expected uint64
	Found    uint64
}

func (e *VersionConflict) Error() string {
	return fmt.Sprintf("review state version conflict: expected %d, found %d", e.Expected, e.Found)
}

var sanitizeRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeKey turns a comparison key into a safe filename component.
func sanitizeKey(key string) string {
	s := sanitizeRe.ReplaceAllString(key, "_")
	if s == "" {
		s = "_"
	}
	return s
}

// Store is a file-backed ReviewState store rooted at Root.
type Store struct {
	Root string
}

// New returns a Store rooted at root. Callers typically derive root from
// $REVIEW_HOME or a per-platform user data directory (see RootFromEnv).
func New(root string) *Store {
	return &Store{Root: root}
}

// RootFromEnv resolves the central root: $REVIEW_HOME if set, otherwise
// "<user config dir>/reviewengine".
func RootFromEnv() (string, error) {
	if home := os.Getenv("REVIEW_HOME"); home != "" {
		return home, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(dir, "reviewengine"), nil
}

func (s *Store) repoDir(repoKey string) string {
	return filepath.Join(s.Root, repoKey)
}

func (s *Store) reviewPath(repoKey string, cmp models.Comparison) string {
	return filepath.Join(s.repoDir(repoKey), "reviews", sanitizeKey(cmp.Key)+".json")
}

func (s *Store) indexPath() string {
	return filepath.Join(s.Root, "repos.json")
}

// Load reads the persisted state for (repoKey, cmp). A missing file yields
// a fresh zero-version state that is not persisted until Save.
func (s *Store) Load(repoKey string, cmp models.Comparison) (*models.ReviewState, error) {
	path := s.reviewPath(repoKey, cmp)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.NewReviewState(cmp), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading review state %s: %w", path, err)
	}
	var state models.ReviewState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("parsing review state %s: %w", path, err)
	}
	return &state, nil
}

// PrepareForSave bumps state's version and updated_at in place, returning
// the predecessor version the on-disk file must match.
func PrepareForSave(state *models.ReviewState) uint64 {
	expected := state.Version
	state.Version = state.Version + 1
	state.UpdatedAt = time.Now()
	return expected
}

// Save writes state to disk under optimistic concurrency: the on-disk
// file's version must equal expected. The check is skipped only when no
// file exists yet on disk at all — not merely when expected == 0, since
// two concurrent writers that both loaded a fresh zero-version state
// would otherwise both compute expected == 0 and each write unconditionally,
// the second silently clobbering the first. repoPath is the repo's real
// filesystem location, recorded in the central index.
func (s *Store) Save(repoKey, repoPath string, state *models.ReviewState, expected uint64) error {
	path := s.reviewPath(repoKey, state.Comparison)

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading review state %s: %w", path, err)
	}
	if err == nil {
		var onDisk models.ReviewState
		if err := json.Unmarshal(existing, &onDisk); err != nil {
			return fmt.Errorf("parsing review state %s: %w", path, err)
		}
		if onDisk.Version != expected {
			return &VersionConflict{Expected: expected, Found: onDisk.Version}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating review directory: %w", err)
	}
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling review state: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing review state %s: %w", path, err)
	}
	return s.registerRepo(repoKey, repoPath)
}

// EnsureExists creates the review file if and only if none exists yet, so
// newly-opened comparisons appear immediately in a listing.
func (s *Store) EnsureExists(repoKey, repoPath string, cmp models.Comparison) error {
	path := s.reviewPath(repoKey, cmp)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat review state %s: %w", path, err)
	}
	state := models.NewReviewState(cmp)
	return s.Save(repoKey, repoPath, state, 0)
}

// Delete removes the per-comparison file, if present.
func (s *Store) Delete(repoKey string, cmp models.Comparison) error {
	err := os.Remove(s.reviewPath(repoKey, cmp))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting review state: %w", err)
	}
	return nil
}

// registerRepo idempotently records repoKey -> repoPath in the central
// index.
func (s *Store) registerRepo(repoKey, repoPath string) error {
	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	if rec, ok := index[repoKey]; ok && rec.Path == repoPath {
		return nil
	}
	index[repoKey] = models.RepoRecord{Path: repoPath, Name: filepath.Base(repoPath), RegisteredAt: time.Now()}
	return s.saveIndex(index)
}

func (s *Store) loadIndex() (map[string]models.RepoRecord, error) {
	b, err := os.ReadFile(s.indexPath())
	if os.IsNotExist(err) {
		return make(map[string]models.RepoRecord), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading central index: %w", err)
	}
	var index map[string]models.RepoRecord
	if err := json.Unmarshal(b, &index); err != nil {
		return nil, fmt.Errorf("parsing central index: %w", err)
	}
	return index, nil
}

func (s *Store) saveIndex(index map[string]models.RepoRecord) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("creating central root: %w", err)
	}
	b, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling central index: %w", err)
	}
	return os.WriteFile(s.indexPath(), b, 0o644)
}

// ListAll returns every review across every registered repo whose path
// still exists on disk, sorted by updated_at descending. Repos whose path
// has vanished are skipped silently.
func (s *Store) ListAll() ([]models.ReviewSummary, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	var summaries []models.ReviewSummary
	for repoKey, rec := range index {
		if _, err := os.Stat(rec.Path); err != nil {
			continue
		}
		reviewsDir := filepath.Join(s.repoDir(repoKey), "reviews")
		entries, err := os.ReadDir(reviewsDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			b, err := os.ReadFile(filepath.Join(reviewsDir, entry.Name()))
			if err != nil {
				continue
			}
			var state models.ReviewState
			if err := json.Unmarshal(b, &state); err != nil {
				continue
			}
			summaries = append(summaries, models.ReviewSummary{
				RepoPath: rec.Path, RepoName: rec.Name,
				Comparison: state.Comparison, Version: state.Version, UpdatedAt: state.UpdatedAt,
			})
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Repos returns the central index, keyed by repoKey, for the sync server's
// /api/repos surface.
func (s *Store) Repos() (map[string]models.RepoRecord, error) {
	return s.loadIndex()
}

// RepoByKey returns the single registered repo for repoKey.
func (s *Store) RepoByKey(repoKey string) (models.RepoRecord, bool, error) {
	index, err := s.loadIndex()
	if err != nil {
		return models.RepoRecord{}, false, err
	}
	rec, ok := index[repoKey]
	return rec, ok, nil
}

// ListComparisons lists the saved reviews for a single repo, most recently
// updated first.
func (s *Store) ListComparisons(repoKey string) ([]models.ReviewSummary, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	rec, ok := index[repoKey]
	if !ok {
		return nil, nil
	}

	reviewsDir := filepath.Join(s.repoDir(repoKey), "reviews")
	entries, err := os.ReadDir(reviewsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading reviews dir for %s: %w", repoKey, err)
	}

	var summaries []models.ReviewSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(reviewsDir, entry.Name()))
		if err != nil {
			continue
		}
		var state models.ReviewState
		if err := json.Unmarshal(b, &state); err != nil {
			continue
		}
		summaries = append(summaries, models.ReviewSummary{
			RepoPath: rec.Path, RepoName: rec.Name,
			Comparison: state.Comparison, Version: state.Version, UpdatedAt: state.UpdatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}
