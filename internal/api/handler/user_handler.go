package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identity-hub/identity-service/internal/core/ports"
)

type UserHandler struct {
	profiles ports.ProfileService
	queries  ports.UserQueryService
}

func NewUserHandler(profiles ports.ProfileService, queries ports.UserQueryService) *UserHandler {
	return &UserHandler{profiles: profiles, queries: queries}
}

// List returns every account.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.queries.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one account.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.queries.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateEmail changes the email and derives a new username from it.
//
// @Summary      Update email
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "User ID"
// @Param        body  body      updateEmailRequest  true  "New email"
// @Success      200   {object}  updateEmailResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /v1/users/{id}/email [put]
func (h *UserHandler) UpdateEmail(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	username, err := h.profiles.UpdateEmail(c.Request().Context(), actor, c.Param("id"), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateEmailResponse{Message: "Email updated successfully", Username: username})
}

// UpdatePassword changes the password. Admins resetting another account
// may omit old_password.
//
// @Summary      Update password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      updatePasswordRequest  true  "Passwords"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /v1/users/{id}/password [put]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.profiles.UpdatePassword(c.Request().Context(), actor, c.Param("id"), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

// UpdateName replaces first and last name.
//
// @Summary      Update name
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateNameRequest  true  "Names"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /v1/users/{id}/name [put]
func (h *UserHandler) UpdateName(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateNameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.profiles.UpdateName(c.Request().Context(), actor, c.Param("id"), req.FirstName, req.LastName); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Name updated successfully"})
}

// Delete removes an account.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.profiles.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
