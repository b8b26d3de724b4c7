package syncserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewstation/engine/internal/classifier"
	"github.com/reviewstation/engine/internal/config"
)

// taxonomyView lists every label a client may apply, either built-in only
// or merged with a repo's custom overlay (spec.md §4.7: `/api/taxonomy` /
// `/:repo_id`).
type taxonomyView struct {
	Labels []string `json:"labels"`
}

func (s *Server) getTaxonomy(c echo.Context) error {
	repoKey := c.Param("repo_id")
	if repoKey == "" {
		return c.JSON(http.StatusOK, taxonomyView{Labels: allLabels(s.baseTaxonomy)})
	}

	repoPath, err := decodeRepoID(repoKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid repo id")
	}
	custom, err := config.LoadRepoTaxonomy(repoPath)
	if err != nil {
		return httpError(err)
	}
	tax := classifier.LoadTaxonomy(custom)
	return c.JSON(http.StatusOK, taxonomyView{Labels: allLabels(tax)})
}

// allLabels reports the full merged taxonomy, including the static-only
// labels PromptLabels() deliberately omits from the AI prompt — clients
// display every label a hunk can carry, not just the ones the AI may pick.
func allLabels(tax *classifier.Taxonomy) []string {
	return tax.AllLabels()
}
