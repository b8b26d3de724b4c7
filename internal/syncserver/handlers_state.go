package syncserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewstation/engine/internal/reviewstore"
	"github.com/reviewstation/engine/pkg/models"
)

func (s *Server) getState(c echo.Context) error {
	repoKey := c.Param("repo_id")
	cmp, err := models.ParseComparisonKey(c.Param("comparison_key"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	state, err := s.store.Load(repoKey, cmp)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, state)
}

// patchStateRequest is the body spec.md §6 defines for PATCH /api/state.
type patchStateRequest struct {
	State           models.ReviewState `json:"state"`
	ExpectedVersion uint64             `json:"expected_version"`
}

// versionConflictBody is the 409 body spec.md §4.7 requires:
// {error, current_version, current_state}.
type versionConflictBody struct {
	Error          string              `json:"error"`
	CurrentVersion uint64              `json:"current_version"`
	CurrentState   *models.ReviewState `json:"current_state"`
}

func (s *Server) patchState(c echo.Context) error {
	repoKey := c.Param("repo_id")
	repoPath, err := decodeRepoID(repoKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid repo id")
	}
	cmp, err := models.ParseComparisonKey(c.Param("comparison_key"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req patchStateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	current, err := s.store.Load(repoKey, cmp)
	if err != nil {
		return httpError(err)
	}
	if current.Version != req.ExpectedVersion {
		return c.JSON(http.StatusConflict, versionConflictBody{
			Error:          "version conflict",
			CurrentVersion: current.Version,
			CurrentState:   current,
		})
	}

	newState := req.State
	newState.Comparison = cmp
	newState.Version = current.Version
	expected := reviewstore.PrepareForSave(&newState)

	if err := s.store.Save(repoKey, repoPath, &newState, expected); err != nil {
		var conflict *reviewstore.VersionConflict
		if ok := asVersionConflict(err, &conflict); ok {
			reloaded, loadErr := s.store.Load(repoKey, cmp)
			if loadErr != nil {
				return httpError(loadErr)
			}
			return c.JSON(http.StatusConflict, versionConflictBody{
				Error:          conflict.Error(),
				CurrentVersion: conflict.Found,
				CurrentState:   reloaded,
			})
		}
		return httpError(err)
	}

	reloaded, err := s.store.Load(repoKey, cmp)
	if err != nil {
		return httpError(err)
	}

	s.broadcast(ServerEvent{
		Type:          EventStateChanged,
		Repo:          repoKey,
		ComparisonKey: cmp.Key,
		Version:       reloaded.Version,
	})

	return c.JSON(http.StatusOK, reloaded)
}

func asVersionConflict(err error, target **reviewstore.VersionConflict) bool {
	vc, ok := err.(*reviewstore.VersionConflict)
	if !ok {
		return false
	}
	*target = vc
	return true
}
