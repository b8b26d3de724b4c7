package classifier

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewstation/engine/pkg/models"
)

func discardLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestExtractJSON_PlainObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"a\":1}\n```\nThanks."
	assert.Equal(t, `{"a":1}`, extractJSON(raw))
}

func TestExtractJSON_EmbeddedInProse(t *testing.T) {
	raw := `Sure, the classification is {"label": ["comments:added"], "reasoning": "ok"} as requested.`
	assert.Equal(t, `{"label": ["comments:added"], "reasoning": "ok"}`, extractJSON(raw))
}

func TestExtractJSON_NoJSONFound(t *testing.T) {
	assert.Equal(t, "", extractJSON("no json here at all"))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 1, clampInt(0, 1, 20))
	assert.Equal(t, 20, clampInt(50, 1, 20))
	assert.Equal(t, 5, clampInt(5, 1, 20))
}

func TestPartitionHunks(t *testing.T) {
	hunks := make([]*models.Hunk, 7)
	for i := range hunks {
		hunks[i] = &models.Hunk{ID: string(rune('a' + i))}
	}
	batches := partitionHunks(hunks, 3)
	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[2], 1)
}

func TestParseResponse_SingleHunk(t *testing.T) {
	tax := LoadTaxonomy(nil)
	batch := []*models.Hunk{{ID: "h1"}}
	out, err := parseResponse(`{"label": ["comments:added"], "reasoning": "all comment lines"}`, batch, tax, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"comments:added"}, out["h1"].Label)
}

func TestParseResponse_MultiHunkDropsInvalidLabel(t *testing.T) {
	tax := LoadTaxonomy(nil)
	batch := []*models.Hunk{{ID: "h1"}, {ID: "h2"}}
	raw := `{"h1": {"label": ["comments:added"], "reasoning": "x"}, "h2": {"label": ["made:up"], "reasoning": "y"}}`
	out, err := parseResponse(raw, batch, tax, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"comments:added"}, out["h1"].Label)
	assert.Empty(t, out["h2"].Label)
}
