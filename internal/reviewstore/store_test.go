package reviewstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/reviewstation/engine/pkg/models"
)

func TestLoad_MissingFileYieldsFreshState(t *testing.T) {
	s := New(t.TempDir())
	cmp := models.Comparison{Old: "main", New: "feature", Key: "main...feature"}

	state, err := s.Load("myrepo", cmp)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), state.Version)
	assert.Equal(t, cmp, state.Comparison)
	assert.NotNil(t, state.Hunks)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	cmp := models.Comparison{Key: "abc"}
	state := models.NewReviewState(cmp)
	state.Notes = "looks good"

	expected := PrepareForSave(state)
	require.NoError(t, s.Save("myrepo", "/repos/myrepo", state, expected))

	loaded, err := s.Load("myrepo", cmp)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), loaded.Version)
	assert.Equal(t, "looks good", loaded.Notes)
}

func TestSaveLoadRoundTrip_PreservesFullStructure(t *testing.T) {
	s := New(t.TempDir())
	cmp_ := models.Comparison{Old: "main", New: "feature", Key: "main..feature"}
	state := models.NewReviewState(cmp_)
	status := models.ReviewStatus("approved")
	via := models.ClassifiedVia("static")
	state.Hunks["a.go:12"] = models.HunkState{
		Label:         []string{"comments:added"},
		Reasoning:     "docstring only",
		Status:        &status,
		ClassifiedVia: &via,
	}
	state.TrustList = []string{"vendor/"}

	expected := PrepareForSave(state)
	require.NoError(t, s.Save("myrepo", "/repos/myrepo", state, expected))

	loaded, err := s.Load("myrepo", cmp_)
	require.NoError(t, err)

	if diff := cmp.Diff(state, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_VersionConflict(t *testing.T) {
	s := New(t.TempDir())
	cmp := models.Comparison{Key: "abc"}
	state := models.NewReviewState(cmp)

	expected := PrepareForSave(state)
	require.NoError(t, s.Save("myrepo", "/repos/myrepo", state, expected))

	// A second writer believes the predecessor version is 5, but the
	// on-disk file is actually at version 1.
	stale := models.NewReviewState(cmp)
	stale.Version = 6
	err := s.Save("myrepo", "/repos/myrepo", stale, 5)
	require.Error(t, err)
	var conflict *VersionConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint64(5), conflict.Expected)
	assert.Equal(t, uint64(1), conflict.Found)
}

func TestSave_NewFileSkipsVersionCheck(t *testing.T) {
	s := New(t.TempDir())
	cmp := models.Comparison{Key: "abc"}
	state := models.NewReviewState(cmp)
	state.Version = 1

	err := s.Save("myrepo", "/repos/myrepo", state, 0)
	require.NoError(t, err)
}

func TestSave_ConcurrentNewDocumentRaceIsRejected(t *testing.T) {
	s := New(t.TempDir())
	cmp := models.Comparison{Key: "abc"}

	// Two writers both Load a fresh/missing file and both call
	// PrepareForSave, so both compute expected == 0. The first writer's
	// save must win and the second must see a conflict, not a silent
	// overwrite, even though neither ever saw a nonzero on-disk version.
	first := models.NewReviewState(cmp)
	first.Notes = "first"
	expFirst := PrepareForSave(first)
	require.NoError(t, s.Save("myrepo", "/repos/myrepo", first, expFirst))

	second := models.NewReviewState(cmp)
	second.Notes = "second"
	expSecond := PrepareForSave(second)
	err := s.Save("myrepo", "/repos/myrepo", second, expSecond)
	require.Error(t, err)
	var conflict *VersionConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint64(0), conflict.Expected)
	assert.Equal(t, uint64(1), conflict.Found)

	loaded, err := s.Load("myrepo", cmp)
	require.NoError(t, err)
	assert.Equal(t, "first", loaded.Notes)
}

func TestEnsureExists_Idempotent(t *testing.T) {
	s := New(t.TempDir())
	cmp := models.Comparison{Key: "abc"}

	require.NoError(t, s.EnsureExists("myrepo", "/repos/myrepo", cmp))
	first, err := s.Load("myrepo", cmp)
	require.NoError(t, err)

	require.NoError(t, s.EnsureExists("myrepo", "/repos/myrepo", cmp))
	second, err := s.Load("myrepo", cmp)
	require.NoError(t, err)

	assert.Equal(t, first.Version, second.Version)
}

func TestDelete_NoErrorOnMissing(t *testing.T) {
	s := New(t.TempDir())
	cmp := models.Comparison{Key: "nope"}
	assert.NoError(t, s.Delete("myrepo", cmp))
}

func TestListAll_SortedByUpdatedDesc(t *testing.T) {
	s := New(t.TempDir())
	repoA, repoB := t.TempDir(), t.TempDir()

	older := models.NewReviewState(models.Comparison{Key: "older"})
	exp := PrepareForSave(older)
	require.NoError(t, s.Save("repoA", repoA, older, exp))

	newer := models.NewReviewState(models.Comparison{Key: "newer"})
	exp2 := PrepareForSave(newer)
	require.NoError(t, s.Save("repoB", repoB, newer, exp2))

	summaries, err := s.ListAll()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.False(t, summaries[0].UpdatedAt.Before(summaries[1].UpdatedAt))
}
