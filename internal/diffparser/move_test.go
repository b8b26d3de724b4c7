package diffparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/reviewstation/engine/pkg/models"
)

func hunk(path string, lines ...models.DiffLine) *models.Hunk {
	h := &models.Hunk{FilePath: path, Lines: lines}
	finalizeHunk(path, h)
	return h
}

func TestDetectMoves_CrossFilePair(t *testing.T) {
	removed := hunk("old.go",
		models.DiffLine{Type: models.LineRemoved, Content: "func Helper() {}"},
	)
	added := hunk("new.go",
		models.DiffLine{Type: models.LineAdded, Content: "func Helper() {}"},
	)
	unrelated := hunk("other.go",
		models.DiffLine{Type: models.LineContext, Content: "package other"},
		models.DiffLine{Type: models.LineAdded, Content: "var x = 1"},
	)

	pairs := DetectMoves([]*models.Hunk{removed, added, unrelated})

	require.Len(t, pairs, 1)
	assert.Equal(t, added.ID, pairs[0].AddedHunkID)
	assert.Equal(t, removed.ID, pairs[0].RemovedHunkID)

	require.NotNil(t, removed.MovePairID)
	require.NotNil(t, added.MovePairID)
	assert.Equal(t, added.ID, *removed.MovePairID)
	assert.Equal(t, removed.ID, *added.MovePairID)
	assert.Nil(t, unrelated.MovePairID)
}

func TestDetectMoves_SameFileIgnored(t *testing.T) {
	removed := hunk("same.go", models.DiffLine{Type: models.LineRemoved, Content: "x := 1"})
	added := hunk("same.go", models.DiffLine{Type: models.LineAdded, Content: "x := 1"})

	pairs := DetectMoves([]*models.Hunk{removed, added})

	assert.Len(t, pairs, 0)
	assert.Nil(t, removed.MovePairID)
	assert.Nil(t, added.MovePairID)
}

func TestDetectMoves_MixedHunkNotPaired(t *testing.T) {
	mixed := hunk("file.go",
		models.DiffLine{Type: models.LineRemoved, Content: "old"},
		models.DiffLine{Type: models.LineAdded, Content: "new"},
	)
	added := hunk("other.go", models.DiffLine{Type: models.LineAdded, Content: "old"})

	pairs := DetectMoves([]*models.Hunk{mixed, added})

	assert.Len(t, pairs, 0)
	assert.Nil(t, mixed.MovePairID)
	assert.Nil(t, added.MovePairID)
}
