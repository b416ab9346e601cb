package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// Response is the envelope shared by every successful API response.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Response{Success: true, Message: message, Data: data})
}

func respondPage(c echo.Context, code int, message string, data any, p Pagination) error {
	return c.JSON(code, Response{Success: true, Message: message, Data: data, Pagination: &p})
}

// ErrorResponse is the failure envelope. Validation failures list the
// offending fields.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}
