package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/services"
)

const principalContextKey = "principal"

// Auth resolves the bearer token on every request and stores the principal in
// both the echo context and the request context. Requests with a bad or
// missing credential get 401; a valid credential on a deactivated account
// gets 403.
func Auth(guard services.GuardService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := guard.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return rejection(c, err)
			}

			c.Set(principalContextKey, p)
			c.SetRequest(c.Request().WithContext(common.WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

// RequireAdmin gates a route group to admin principals. Must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if p == nil {
				return rejection(c, common.AuthenticationError("authentication required"))
			}
			if p.Role != models.RoleAdmin {
				return rejection(c, common.AuthorizationError("admin role required"))
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Auth, or nil.
func PrincipalFrom(c echo.Context) *common.Principal {
	p, _ := c.Get(principalContextKey).(*common.Principal)
	return p
}

func rejection(c echo.Context, err error) error {
	kind := common.KindOf(err)
	status := http.StatusUnauthorized
	if kind == common.KindAuthorization {
		status = http.StatusForbidden
	} else if kind == common.KindStorage {
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	if e, ok := err.(*common.Error); ok {
		msg = e.Msg
	}
	return c.JSON(status, common.CreateErrorResponse(kind.String(), msg, nil))
}
