package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/api/handler"
	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	fail := func(code int, msg string) (int, handler.ErrorResponse) {
		return code, handler.ErrorResponse{Success: false, Message: msg}
	}

	// Field-level validation failures carry their details to the client.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, handler.ErrorResponse{
			Success: false,
			Message: "validation failed",
			Errors:  ve.Fields,
		}
	}

	// Echo's own errors (bind failures, 404 from router, auth middleware, rate limiter).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fail(he.Code, fmt.Sprintf("%v", he.Message))
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidToken):
		return fail(http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrAccountInactive):
		return fail(http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAccountLocked):
		return fail(http.StatusLocked, err.Error())
	case errors.Is(err, domain.ErrIncorrectPassword), errors.Is(err, domain.ErrSelfDelete):
		return fail(http.StatusBadRequest, err.Error())
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return fail(http.StatusInternalServerError, "internal server error")
}
