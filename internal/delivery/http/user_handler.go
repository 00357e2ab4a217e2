package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/internal/usecase"
)

// UserHandler serves profile reads and mutations. Every route here requires
// a resolved identity.
type UserHandler struct {
	usecase *usecase.UserUsecase
}

// NewUserHandler registers the profile routes.
func NewUserHandler(e *echo.Group, u *usecase.UserUsecase, sessions domain.SessionRepository, accessSecret string) {
	handler := &UserHandler{usecase: u}
	auth := Authenticated(sessions, accessSecret)

	e.GET("/me", handler.Me, auth)
	e.PUT("/update-user-info", handler.UpdateInfo, auth)
	e.PUT("/update-user-password", handler.UpdatePassword, auth)
	e.PUT("/update-user-avatar", handler.UpdateAvatar, auth)
}

type updateInfoRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type updateAvatarRequest struct {
	Avatar domain.Avatar `json:"avatar"`
}

// Me returns the caller's cached profile.
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.usecase.Me(c.Request().Context(), identityFrom(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// UpdateInfo changes name/email. Role changes are not accepted on any
// update path.
func (h *UserHandler) UpdateInfo(c echo.Context) error {
	var req updateInfoRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	user, err := h.usecase.UpdateInfo(c.Request().Context(), identityFrom(c).ID, req.Name, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// UpdatePassword rotates the password after verifying the old one.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	if err := h.usecase.UpdatePassword(c.Request().Context(), identityFrom(c).ID, req.OldPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password updated successfully"})
}

// UpdateAvatar swaps the avatar reference.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	var req updateAvatarRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	user, err := h.usecase.UpdateAvatar(c.Request().Context(), identityFrom(c).ID, req.Avatar)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}
