package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\nvendor/\n"), 0o644))
	return root
}

func TestClassify_NoisyDirSkipped(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, "node_modules", "pkg", "index.js"), false)
	assert.Equal(t, CategoryIgnored, got)
}

func TestClassify_DotNextDirSkipped(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, ".next", "static", "chunk.js"), false)
	assert.Equal(t, CategoryIgnored, got)
}

func TestClassify_DotCacheDirSkipped(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, ".cache", "tmp.bin"), false)
	assert.Equal(t, CategoryIgnored, got)
}

func TestClassify_GitLockIgnored(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, ".git", "index.lock"), false)
	assert.Equal(t, CategoryIgnored, got)
}

func TestClassify_GitRefsMeaningful(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, ".git", "refs", "heads", "main"), false)
	assert.Equal(t, CategoryWorkingTree, got)
}

func TestClassify_GitOtherNoise(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, ".git", "hooks", "pre-commit.sample"), false)
	assert.Equal(t, CategoryIgnored, got)
}

func TestClassify_StorageSubdirIsReviewState(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, ".reviewengine")
	got := c.classify(filepath.Join(root, ".reviewengine", "reviews", "abc.json"), false)
	assert.Equal(t, CategoryReviewState, got)
}

func TestClassify_OwnLogIgnored(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, ".reviewengine")
	got := c.classify(filepath.Join(root, "reviewengine.log"), false)
	assert.Equal(t, CategoryIgnored, got)
}

func TestClassify_GitignoredFileSkipped(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, "debug.log"), false)
	assert.Equal(t, CategoryIgnored, got)
}

func TestClassify_OrdinarySourceFileIsWorkingTree(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, "main.go"), false)
	assert.Equal(t, CategoryWorkingTree, got)
}

func TestClassify_SwapFileIgnored(t *testing.T) {
	root := setupRepo(t)
	c := newClassifier(root, "")
	got := c.classify(filepath.Join(root, ".main.go.swp"), false)
	assert.Equal(t, CategoryIgnored, got)
}
