package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devportfolio/portfolio-api/internal/api/middleware"
	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. Its
// absence means the route was wired without Auth, so the request is
// rejected rather than served anonymously.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.UserID == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error()).
			SetInternal(domain.ErrUnauthenticated)
	}
	return identity, nil
}

// ctxViewer returns the optional identity of the caller; nil when anonymous.
func ctxViewer(c echo.Context) *domain.Identity {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil
	}
	return &identity
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload").SetInternal(err)
	}
	return c.Validate(req)
}

// pageQuery reads the optional page and limit query parameters. Zero means
// "use the default"; the services clamp out-of-range values.
func pageQuery(c echo.Context) (page, limit int, err error) {
	err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return 0, 0, queryError(err)
	}
	return page, limit, nil
}

func queryError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return domain.NewValidationError(domain.FieldError{Field: be.Field, Message: "has an invalid value"})
	}
	return domain.NewValidationError(domain.FieldError{Field: "query", Message: err.Error()})
}
