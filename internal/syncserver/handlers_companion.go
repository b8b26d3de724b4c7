package syncserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewstation/engine/internal/companion"
)

// companionActivity, companionMessages, and companionChains expose
// internal/companion's best-effort session-transcript reader (spec.md
// §4.8) the same way the rest of the API exposes diff/symbol/taxonomy
// data: one GET per operation, scoped to a repo id.

func (s *Server) companionActivity(c echo.Context) error {
	repoPath, err := decodeRepoID(c.Param("repo_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid repo id")
	}
	return c.JSON(http.StatusOK, s.companion.Activity(repoPath))
}

func (s *Server) companionMessages(c echo.Context) error {
	repoPath, err := decodeRepoID(c.Param("repo_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid repo id")
	}
	sessionID := c.QueryParam("session_id")
	msgs := s.companion.RecentMessages(repoPath, sessionID)
	if msgs == nil {
		msgs = []companion.Message{}
	}
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) companionChains(c echo.Context) error {
	repoPath, err := decodeRepoID(c.Param("repo_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid repo id")
	}

	if chainID := c.QueryParam("chain_id"); chainID != "" {
		msgs := s.companion.MergedChain(repoPath, chainID)
		if msgs == nil {
			msgs = []companion.Message{}
		}
		return c.JSON(http.StatusOK, msgs)
	}

	chains := s.companion.Chains(repoPath)
	if chains == nil {
		chains = []companion.ChainInfo{}
	}
	return c.JSON(http.StatusOK, chains)
}
