package syncserver

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/reviewstation/engine/internal/vcs"
)

// httpError maps an internal error to the status codes spec.md §7
// prescribes: 400 (bad input), 404 (unknown repo/comparison), 409 (version
// conflict — handled separately in patchState, which needs the richer
// body), 500 (everything else).
func httpError(err error) *echo.HTTPError {
	var unparseable *vcs.UnparseableRemote
	var noMatch *vcs.NoMatchingHunks
	var mismatch *vcs.HunkCountMismatch
	switch {
	case errors.As(err, &unparseable), errors.As(err, &noMatch), errors.As(err, &mismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case os.IsNotExist(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
