package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

// UserHandler exposes account administration. Every route is admin only.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
	Bio      string `json:"bio" validate:"max=500"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"isActive"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
}

// Create registers a new account.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  Response{data=domain.User}
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/auth/register [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Bio:      req.Bio,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "user created", user)
}

// List returns a page of accounts.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Param        role    query     string  false  "user or admin"
// @Param        search  query     string  false  "Partial match on name or email"
// @Success      200     {object}  Response{data=[]domain.User}
// @Router       /api/auth/users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}

	filter := ports.ListUsersFilter{
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	}
	if raw := c.QueryParam("role"); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return domain.NewValidationError(domain.FieldError{Field: "role", Message: "role must be one of: user admin"})
		}
		filter.Role = role
	}

	result, err := h.userService.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respondPage(c, http.StatusOK, "users retrieved", result.Items, Pagination{
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get returns one account.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Response{data=domain.User}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/auth/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user retrieved", user)
}

// Update changes any subset of an account's fields.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  Response{data=domain.User}
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/auth/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	update := ports.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		IsActive: req.IsActive,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user updated", user)
}

// Delete removes an account. Admins cannot delete themselves.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/auth/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user deleted", nil)
}

// Unlock clears the failed-login counter and any lock.
//
// @Summary      Unlock a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Response{data=domain.User}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/auth/users/{id}/unlock [put]
func (h *UserHandler) Unlock(c echo.Context) error {
	user, err := h.userService.UnlockUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user unlocked", user)
}
