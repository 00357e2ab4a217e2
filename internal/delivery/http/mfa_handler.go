package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/internal/usecase"
)

// MFAHandler handles TOTP enrollment for an authenticated user.
type MFAHandler struct {
	usecase *usecase.AuthUsecase
}

// NewMFAHandler registers the MFA management routes.
func NewMFAHandler(e *echo.Group, u *usecase.AuthUsecase, sessions domain.SessionRepository, accessSecret string) {
	handler := &MFAHandler{usecase: u}
	auth := Authenticated(sessions, accessSecret)

	e.POST("/mfa/setup", handler.Setup, auth)
	e.POST("/mfa/enable", handler.Enable, auth)
}

type mfaSetupResponse struct {
	Success bool   `json:"success"`
	Secret  string `json:"secret"`
	QRCode  string `json:"qr_code_uri"`
}

type mfaEnableRequest struct {
	Code string `json:"code"`
}

// Setup generates a pending TOTP secret for the caller.
func (h *MFAHandler) Setup(c echo.Context) error {
	secret, uri, err := h.usecase.SetupMFA(c.Request().Context(), identityFrom(c).ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, mfaSetupResponse{Success: true, Secret: secret, QRCode: uri})
}

// Enable verifies the first code and turns the second factor on.
func (h *MFAHandler) Enable(c echo.Context) error {
	var req mfaEnableRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	if err := h.usecase.EnableMFA(c.Request().Context(), identityFrom(c).ID, req.Code); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "MFA enabled successfully"})
}
