package syncserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// repoView is the JSON shape for a single known repo, including its
// encoded id so a client never has to compute one itself.
type repoView struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	RegisteredAt string `json:"registered_at"`
}

func (s *Server) listRepos(c echo.Context) error {
	index, err := s.store.Repos()
	if err != nil {
		return httpError(err)
	}
	out := make([]repoView, 0, len(index))
	for repoKey, rec := range index {
		out = append(out, repoView{
			ID:           repoKey,
			Path:         rec.Path,
			Name:         rec.Name,
			RegisteredAt: rec.RegisteredAt.Format(httpTimeFormat),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getRepo(c echo.Context) error {
	repoKey := c.Param("id")
	rec, ok, err := s.store.RepoByKey(repoKey)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown repo")
	}
	return c.JSON(http.StatusOK, repoView{
		ID:           repoKey,
		Path:         rec.Path,
		Name:         rec.Name,
		RegisteredAt: rec.RegisteredAt.Format(httpTimeFormat),
	})
}

func (s *Server) listComparisons(c echo.Context) error {
	repoKey := c.Param("repo_id")
	summaries, err := s.store.ListComparisons(repoKey)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summaries)
}

const httpTimeFormat = "2006-01-02T15:04:05Z07:00"
