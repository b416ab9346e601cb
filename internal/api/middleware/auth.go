package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

const identityKey = "identity"

// Auth requires a valid bearer token and injects the caller's identity into
// the context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(domain.ErrUnauthenticated)
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				return unauthorized(domain.ErrInvalidToken)
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				return unauthorized(domain.ErrInvalidToken)
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// OptionalAuth injects the identity when a valid bearer token is present and
// otherwise lets the request through as anonymous. A malformed or expired
// token is treated like no token at all.
func OptionalAuth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
				if identity, err := verifier.Verify(token); err == nil {
					SetIdentity(c, identity)
				}
			}
			return next(c)
		}
	}
}

func SetIdentity(c echo.Context, identity domain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the identity injected by Auth or OptionalAuth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(identityKey).(domain.Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
}
