package syncserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewstation/engine/internal/classifier"
	"github.com/reviewstation/engine/internal/companion"
	"github.com/reviewstation/engine/internal/reviewstore"
	"github.com/reviewstation/engine/internal/vcs"
	"github.com/reviewstation/engine/pkg/models"
)

func discardLog() zerolog.Logger {
	return zerolog.New(io.Discard)
}

const testToken = "test-token-0123456789abcdef"

func newTestServer(t *testing.T) (*Server, *reviewstore.Store) {
	t.Helper()
	store := reviewstore.New(t.TempDir())
	fake := vcs.NewFake("/repo")
	s := NewServer(Config{
		Port:         0,
		Token:        testToken,
		Store:        store,
		NewVCS:       func(ctx context.Context, repoPath string) (vcs.VCS, error) { return fake, nil },
		BaseTaxonomy: classifier.LoadTaxonomy(nil),
		Log:          discardLog(),
	})
	return s, store
}

func newTestServerWithCompanion(t *testing.T, companionRoot string) *Server {
	t.Helper()
	store := reviewstore.New(t.TempDir())
	fake := vcs.NewFake("/repo")
	return NewServer(Config{
		Port:         0,
		Token:        testToken,
		Store:        store,
		NewVCS:       func(ctx context.Context, repoPath string) (vcs.VCS, error) { return fake, nil },
		BaseTaxonomy: classifier.LoadTaxonomy(nil),
		Companion:    companion.NewReaderAt(companionRoot),
		Log:          discardLog(),
	})
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func TestHealth_Unauthenticated(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedEndpoint_RequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/repos", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetState_FreshComparisonIsZeroVersion(t *testing.T) {
	s, _ := newTestServer(t)
	repoID := encodeRepoID("/repo")
	key := models.BuildComparisonKey("main", "feature", false, false)
	req := authed(httptest.NewRequest(http.MethodGet, "/api/state/"+repoID+"/"+key, nil))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var state models.ReviewState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, uint64(0), state.Version)
}

func TestPatchState_SavesAndBroadcastsOnMatchingVersion(t *testing.T) {
	s, store := newTestServer(t)
	repoID := encodeRepoID("/repo")
	key := models.BuildComparisonKey("main", "feature", false, false)

	via := models.ViaManual
	body := patchStateRequest{
		State: models.ReviewState{
			Hunks: map[string]models.HunkState{
				"h1": {Label: []string{"comments:added"}, ClassifiedVia: &via},
			},
			TrustList: []string{},
		},
		ExpectedVersion: 0,
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)

	events := make(chan ServerEvent, 1)
	s.subs["test-subscriber"] = events

	req := authed(httptest.NewRequest(http.MethodPatch, "/api/state/"+repoID+"/"+key, bytes.NewReader(b)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, EventStateChanged, ev.Type)
	assert.Equal(t, uint64(1), ev.Version)

	var saved models.ReviewState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, uint64(1), saved.Version)

	cmp, err := models.ParseComparisonKey(key)
	require.NoError(t, err)
	reloaded, err := store.Load(repoID, cmp)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reloaded.Version)
	assert.Equal(t, []string{"comments:added"}, reloaded.Hunks["h1"].Label)
}

func TestPatchState_VersionMismatchReturns409(t *testing.T) {
	s, _ := newTestServer(t)
	repoID := encodeRepoID("/repo")
	key := models.BuildComparisonKey("main", "feature", false, false)

	body := patchStateRequest{State: models.ReviewState{TrustList: []string{}}, ExpectedVersion: 7}
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := authed(httptest.NewRequest(http.MethodPatch, "/api/state/"+repoID+"/"+key, bytes.NewReader(b)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var conflict versionConflictBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, uint64(0), conflict.CurrentVersion)
}

func TestGetDiffTree_UsesFakeVCS(t *testing.T) {
	s, _ := newTestServer(t)
	repoID := encodeRepoID("/repo")
	key := models.BuildComparisonKey("main", "feature", false, false)
	req := authed(httptest.NewRequest(http.MethodGet, "/api/diff/"+repoID+"/"+key, nil))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetTaxonomy_BuiltinOnly(t *testing.T) {
	s, _ := newTestServer(t)
	req := authed(httptest.NewRequest(http.MethodGet, "/api/taxonomy", nil))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tv taxonomyView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tv))
	assert.Contains(t, tv.Labels, "comments:added")
}

func TestCompanionActivity_NoTranscriptDirIsEmpty(t *testing.T) {
	s := newTestServerWithCompanion(t, t.TempDir())
	repoID := encodeRepoID("/repo")
	req := authed(httptest.NewRequest(http.MethodGet, "/api/companion/activity/"+repoID, nil))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status companion.ActivityStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0, status.SessionCount)
	assert.False(t, status.Active)
}

func TestCompanionMessages_ReadsSessionTranscript(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "-repo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	line := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","message":{"role":"user","content":"hi there"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s1.jsonl"), []byte(line+"\n"), 0o644))

	s := newTestServerWithCompanion(t, root)
	repoID := encodeRepoID("/repo")
	req := authed(httptest.NewRequest(http.MethodGet, "/api/companion/messages/"+repoID+"?session_id=s1", nil))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var msgs []companion.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi there", msgs[0].Text)
}

func TestCompanionChains_EmptyWhenNoTranscripts(t *testing.T) {
	s := newTestServerWithCompanion(t, t.TempDir())
	repoID := encodeRepoID("/repo")
	req := authed(httptest.NewRequest(http.MethodGet, "/api/companion/chains/"+repoID, nil))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var chains []companion.ChainInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chains))
	assert.Empty(t, chains)
}

func TestParseComparisonKey_RoundTrips(t *testing.T) {
	key := models.BuildComparisonKey("main", "feature/x", true, false)
	cmp, err := models.ParseComparisonKey(key)
	require.NoError(t, err)
	assert.Equal(t, "main", cmp.Old)
	assert.Equal(t, "feature_x", cmp.New)
	assert.True(t, cmp.WorkingTree)
	assert.False(t, cmp.StagedOnly)
}
