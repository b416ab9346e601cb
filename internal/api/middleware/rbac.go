package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// RequireRole enforces role-based access control. It must run after Auth.
// Admin satisfies every role.
func RequireRole(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return unauthorized(domain.ErrUnauthenticated)
			}
			if !identity.Role.Satisfies(required) {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error()).SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
