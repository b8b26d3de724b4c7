package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewstation/engine/pkg/models"
)

func TestClassifyAll_StaticOnlyNoAICall(t *testing.T) {
	h := &models.Hunk{
		FilePath: "package-lock.json",
		ID:       "h1",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "a"),
			ln(models.LineAdded, "b"),
		},
	}
	tax := LoadTaxonomy(nil)
	out, err := ClassifyAll(context.Background(), []*models.Hunk{h}, map[string]string{"package-lock.json": "json"}, nil, tax, AIConfig{}, discardLogger(), nil)
	require.NoError(t, err)
	st := out["h1"]
	assert.Equal(t, []string{"generated:lockfile"}, st.Label)
	require.NotNil(t, st.ClassifiedVia)
	assert.Equal(t, models.ViaStatic, *st.ClassifiedVia)
}

func TestClassifyAll_ManualNeverOverwritten(t *testing.T) {
	h := &models.Hunk{
		FilePath: "package-lock.json",
		ID:       "h1",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "a"),
			ln(models.LineAdded, "b"),
		},
	}
	via := models.ViaManual
	existing := map[string]models.HunkState{
		"h1": {Label: []string{"needs-attention:reviewed-by-hand"}, ClassifiedVia: &via},
	}
	tax := LoadTaxonomy([]string{"needs-attention:reviewed-by-hand"})
	out, err := ClassifyAll(context.Background(), []*models.Hunk{h}, map[string]string{"package-lock.json": "json"}, existing, tax, AIConfig{}, discardLogger(), nil)
	require.NoError(t, err)
	st := out["h1"]
	assert.Equal(t, []string{"needs-attention:reviewed-by-hand"}, st.Label)
	assert.Equal(t, models.ViaManual, *st.ClassifiedVia)
}

func TestClassifyAll_PriorStaticLabelNotRetracted(t *testing.T) {
	// A hunk whose content no longer matches a static rule (e.g. its id
	// is stale relative to existing state) keeps its prior static label
	// rather than falling through to the AI fallback.
	h := &models.Hunk{
		FilePath: "main.go",
		ID:       "h1",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "return a + b"),
			ln(models.LineAdded, "return a * b"),
		},
	}
	via := models.ViaStatic
	existing := map[string]models.HunkState{
		"h1": {Label: []string{"formatting:style"}, ClassifiedVia: &via},
	}
	tax := LoadTaxonomy(nil)
	out, err := ClassifyAll(context.Background(), []*models.Hunk{h}, map[string]string{"main.go": "go"}, existing, tax, AIConfig{}, discardLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"formatting:style"}, out["h1"].Label)
}
