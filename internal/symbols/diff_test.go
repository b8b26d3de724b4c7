package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/reviewstation/engine/pkg/models"
)

func mkHunk(id string, oldStart, oldCount, newStart, newCount int) *models.Hunk {
	return &models.Hunk{ID: id, OldStart: oldStart, OldCount: oldCount, NewStart: newStart, NewCount: newCount}
}

func TestDiffFile_NoGrammar(t *testing.T) {
	hunks := []*models.Hunk{mkHunk("h1", 1, 1, 1, 1)}
	fd := DiffFile("data.bin", false, nil, nil, hunks)
	assert.False(t, fd.HasGrammar)
	assert.Equal(t, []string{"h1"}, fd.TopLevelIDs)
	assert.Nil(t, fd.Symbols)
}

func TestDiffFile_MethodRemoved(t *testing.T) {
	old := []*models.Symbol{
		{Name: "Foo", Kind: models.KindFunction, StartLine: 1, EndLine: 3},
		{Name: "Bar", Kind: models.KindFunction, StartLine: 5, EndLine: 7},
	}
	newSyms := []*models.Symbol{
		{Name: "Foo", Kind: models.KindFunction, StartLine: 1, EndLine: 3},
	}
	hunk := mkHunk("h1", 5, 3, 0, 0)
	fd := DiffFile("f.go", true, old, newSyms, []*models.Hunk{hunk})

	require.Len(t, fd.Symbols, 1)
	assert.Equal(t, "Bar", fd.Symbols[0].Name)
	assert.Equal(t, models.ChangeRemoved, fd.Symbols[0].ChangeType)
	assert.Contains(t, fd.Symbols[0].HunkIDs, "h1")
	assert.Len(t, fd.TopLevelIDs, 0)
}

func TestDiffFile_MethodAdded(t *testing.T) {
	old := []*models.Symbol{
		{Name: "Foo", Kind: models.KindFunction, StartLine: 1, EndLine: 3},
	}
	newSyms := []*models.Symbol{
		{Name: "Foo", Kind: models.KindFunction, StartLine: 1, EndLine: 3},
		{Name: "Baz", Kind: models.KindFunction, StartLine: 5, EndLine: 8},
	}
	hunk := mkHunk("h1", 0, 0, 5, 4)
	fd := DiffFile("f.go", true, old, newSyms, []*models.Hunk{hunk})

	require.Len(t, fd.Symbols, 1)
	assert.Equal(t, "Baz", fd.Symbols[0].Name)
	assert.Equal(t, models.ChangeAdded, fd.Symbols[0].ChangeType)
}

func TestDiffFile_UnchangedSymbolOmitted(t *testing.T) {
	old := []*models.Symbol{{Name: "Foo", Kind: models.KindFunction, StartLine: 1, EndLine: 3}}
	newSyms := []*models.Symbol{{Name: "Foo", Kind: models.KindFunction, StartLine: 1, EndLine: 3}}
	// A hunk entirely outside Foo's range on both sides.
	hunk := mkHunk("h1", 10, 2, 10, 2)
	fd := DiffFile("f.go", true, old, newSyms, []*models.Hunk{hunk})

	assert.Len(t, fd.Symbols, 0)
	assert.Equal(t, []string{"h1"}, fd.TopLevelIDs)
}

func TestOverlaps_ZeroCountNeverOverlaps(t *testing.T) {
	assert.False(t, overlaps(0, 0, 1, 5))
	assert.True(t, overlaps(1, 5, 5, 10))
}
