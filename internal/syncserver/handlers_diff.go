package syncserver

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/reviewstation/engine/internal/diffparser"
	"github.com/reviewstation/engine/internal/symbols"
	"github.com/reviewstation/engine/internal/watcher"
	"github.com/reviewstation/engine/pkg/models"
)

// ensureWatcher lazily registers a filesystem watcher for repoRoot the
// first time it is seen, and forwards its notifications onto the
// WebSocket broadcast channel as git_changed events. Subsequent requests
// for the same repo reuse the existing watcher rather than tearing it
// down and restarting (Registry.Register would otherwise replace it on
// every call).
func (s *Server) ensureWatcher(repoKey, repoRoot string) {
	if s.watchers == nil {
		return
	}
	if _, ok := s.watchers.Get(repoRoot); ok {
		return
	}
	w, err := s.watchers.Register(repoRoot, "", s.log)
	if err != nil {
		s.log.Warn().Err(err).Str("repo", repoRoot).Msg("failed to start watcher")
		return
	}
	go func() {
		for n := range w.Notifications() {
			if n.Kind == watcher.GitChanged {
				s.broadcast(ServerEvent{Type: EventGitChanged, Repo: repoKey})
			}
		}
	}()
}

func (s *Server) getDiffTree(c echo.Context) error {
	repoKey := c.Param("repo_id")
	repoPath, err := decodeRepoID(repoKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid repo id")
	}
	cmp, err := models.ParseComparisonKey(c.Param("comparison_key"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	v, err := s.newVCS(ctx, repoPath)
	if err != nil {
		return httpError(err)
	}
	s.ensureWatcher(repoKey, v.RepoRoot())

	entries, err := v.ListFiles(ctx, cmp)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// diffFileResponse is the per-file payload spec.md §4.7's
// `/api/diff/:repo_id/:comparison_key/:file` endpoint returns: the file's
// hunks plus its symbol diff, when the language has one.
type diffFileResponse struct {
	Path       string                   `json:"path"`
	Hunks      []*models.Hunk           `json:"hunks"`
	SymbolDiff *models.FileSymbolDiff   `json:"symbol_diff,omitempty"`
}

func (s *Server) getDiffFile(c echo.Context) error {
	repoKey := c.Param("repo_id")
	repoPath, err := decodeRepoID(repoKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid repo id")
	}
	cmp, err := models.ParseComparisonKey(c.Param("comparison_key"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	file := strings.TrimPrefix(c.Param("*"), "/")
	if file == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file path")
	}

	ctx := c.Request().Context()
	v, err := s.newVCS(ctx, repoPath)
	if err != nil {
		return httpError(err)
	}

	diffText, err := v.GetDiff(ctx, cmp)
	if err != nil {
		return httpError(err)
	}

	var fileHunks []*models.Hunk
	for _, h := range diffparser.Parse(diffText) {
		if h.FilePath == file {
			fileHunks = append(fileHunks, h)
		}
	}

	resp := diffFileResponse{Path: file, Hunks: fileHunks}

	oldLines, oldErr := v.GetFileLines(ctx, cmp.Old, file)
	var newLines []string
	var newErr error
	if cmp.WorkingTree {
		var b []byte
		b, newErr = os.ReadFile(filepath.Join(v.RepoRoot(), file))
		if newErr == nil {
			newLines = strings.Split(string(b), "\n")
		}
	} else {
		newLines, newErr = v.GetFileLines(ctx, cmp.New, file)
	}
	if oldErr == nil && newErr == nil {
		oldSyms, hasGrammar := symbols.Extract(file, strings.Join(oldLines, "\n"))
		newSyms, _ := symbols.Extract(file, strings.Join(newLines, "\n"))
		resp.SymbolDiff = symbols.DiffFile(file, hasGrammar, oldSyms, newSyms, fileHunks)
	}

	return c.JSON(http.StatusOK, resp)
}
