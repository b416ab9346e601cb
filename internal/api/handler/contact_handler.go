package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devportfolio/portfolio-api/internal/api/metrics"
	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

type ContactHandler struct {
	contactService ports.ContactService
}

func NewContactHandler(contactService ports.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type submitContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=5,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type updateContactStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read replied archived"`
}

// submitContactResponse carries only the ID of the stored message.
type submitContactResponse struct {
	ID string `json:"id"`
}

// Submit stores a message from the public contact form.
//
// @Summary      Send a contact message
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body      submitContactRequest  true  "Message"
// @Success      201   {object}  Response{data=submitContactResponse}
// @Failure      400   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /api/contact [post]
func (h *ContactHandler) Submit(c echo.Context) error {
	var req submitContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.contactService.Submit(c.Request().Context(), ports.SubmitContactInput{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}
	metrics.ContactMessagesTotal.Inc()

	return respond(c, http.StatusCreated, "thank you for your message, I will get back to you soon", submitContactResponse{ID: msg.ID})
}

// List returns a page of the inbox.
//
// @Summary      List contact messages
// @Tags         contact
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "new, read, replied or archived"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  Response{data=[]domain.Contact}
// @Router       /api/contact [get]
func (h *ContactHandler) List(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}

	filter := ports.ListContactsFilter{Page: page, Limit: limit}
	if raw := c.QueryParam("status"); raw != "" {
		status, ok := domain.ParseContactStatus(raw)
		if !ok {
			return domain.NewValidationError(domain.FieldError{Field: "status", Message: "status must be one of: new read replied archived"})
		}
		filter.Status = status
	}

	result, err := h.contactService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respondPage(c, http.StatusOK, "messages retrieved", result.Items, Pagination{
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get returns a message and marks it as read.
//
// @Summary      Get a contact message
// @Tags         contact
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  Response{data=domain.Contact}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/contact/{id} [get]
func (h *ContactHandler) Get(c echo.Context) error {
	msg, err := h.contactService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "message retrieved", msg)
}

// UpdateStatus moves a message to any status.
//
// @Summary      Update a contact message status
// @Tags         contact
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                      true  "Message ID"
// @Param        body  body      updateContactStatusRequest  true  "New status"
// @Success      200   {object}  Response{data=domain.Contact}
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/contact/{id}/status [put]
func (h *ContactHandler) UpdateStatus(c echo.Context) error {
	var req updateContactStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.contactService.UpdateStatus(c.Request().Context(), c.Param("id"), domain.ContactStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "message status updated", msg)
}

// Delete removes a message.
//
// @Summary      Delete a contact message
// @Tags         contact
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /api/contact/{id} [delete]
func (h *ContactHandler) Delete(c echo.Context) error {
	if err := h.contactService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "message deleted", nil)
}
