package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/common"
)

// writeError maps a service error onto the HTTP surface. Storage failures
// surface as 503 so clients know to retry; anything unclassified is a 500.
func writeError(c echo.Context, err error) error {
	kind := common.KindOf(err)

	var status int
	switch kind {
	case common.KindValidation:
		status = http.StatusBadRequest
	case common.KindAuthentication:
		status = http.StatusUnauthorized
	case common.KindAuthorization:
		status = http.StatusForbidden
	case common.KindNotFound:
		status = http.StatusNotFound
	case common.KindConflict:
		status = http.StatusConflict
	case common.KindStorage:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	msg := err.Error()
	if e, ok := err.(*common.Error); ok {
		msg = e.Msg
	}
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}

	return c.JSON(status, common.CreateErrorResponse(kind.String(), msg, nil))
}

// principal pulls the authenticated caller out of the request context; the
// auth middleware guarantees it exists on protected routes.
func principal(c echo.Context) (*common.Principal, error) {
	p, ok := common.PrincipalFromContext(c.Request().Context())
	if !ok || p == nil {
		return nil, common.AuthenticationError("authentication required")
	}
	return p, nil
}
