package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreMatcher_BasicPatterns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n/build/\ntmp\n"), 0o644))

	m := NewGitignoreMatcher(root)

	assert.True(t, m.Match("debug.log", false))
	assert.True(t, m.Match("nested/debug.log", false))
	assert.True(t, m.Match("build", true))
	assert.False(t, m.Match("src/build.go", false))
	assert.True(t, m.Match("tmp", true))
	assert.False(t, m.Match("main.go", false))
}

func TestGitignoreMatcher_NoFilePresent(t *testing.T) {
	root := t.TempDir()
	m := NewGitignoreMatcher(root)
	assert.False(t, m.Match("main.go", false))
	assert.True(t, m.Match(".DS_Store", false))
}
