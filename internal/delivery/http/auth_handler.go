package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/internal/usecase"
)

// AuthHandler represents the HTTP delivery layer for the auth lifecycle.
type AuthHandler struct {
	usecase *usecase.AuthUsecase
	cookies *CookieWriter
}

// NewAuthHandler registers the authentication routes on the provided group.
func NewAuthHandler(e *echo.Group, u *usecase.AuthUsecase, cookies *CookieWriter, sessions domain.SessionRepository, accessSecret string) {
	handler := &AuthHandler{usecase: u, cookies: cookies}

	e.POST("/register", handler.Register)
	e.POST("/activate-user", handler.Activate)
	e.POST("/login-user", handler.Login)
	e.POST("/social-auth", handler.SocialAuth)
	e.POST("/mfa/verify", handler.VerifyMFA)
	e.GET("/refreshtoken", handler.Refresh)
	e.GET("/logout-user", handler.Logout, Authenticated(sessions, accessSecret))
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type activateRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialAuthRequest struct {
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Avatar domain.Avatar `json:"avatar"`
}

type mfaVerifyRequest struct {
	MFAToken string `json:"mfa_token"`
	Code     string `json:"code"`
}

// Register issues an activation token; the account is created only when the
// token is redeemed with the right code.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	token, err := h.usecase.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":         true,
		"message":         fmt.Sprintf("Please check the mail sent to %s to activate your account", req.Email),
		"activationToken": token,
	})
}

// Activate redeems the activation token and code.
func (h *AuthHandler) Activate(c echo.Context) error {
	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	if err := h.usecase.Activate(c.Request().Context(), req.ActivationToken, req.ActivationCode); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Account activated successfully",
	})
}

// Login validates credentials. MFA-enabled accounts get a 202 carrying the
// challenge token; everyone else gets a session and both auth cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	res, err := h.usecase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	if res.MFAChallenge != "" {
		return c.JSON(http.StatusAccepted, echo.Map{
			"success":   true,
			"message":   "mfa_required",
			"mfa_token": res.MFAChallenge,
		})
	}

	h.cookies.SetAuthCookies(c, res.Pair)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"user":        res.User,
		"accessToken": res.Pair.AccessToken,
	})
}

// VerifyMFA completes a TOTP-gated login. The challenge token from the
// preceding password check is required alongside the code.
func (h *AuthHandler) VerifyMFA(c echo.Context) error {
	var req mfaVerifyRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	pair, user, err := h.usecase.VerifyMFA(c.Request().Context(), req.MFAToken, req.Code)
	if err != nil {
		return fail(c, err)
	}

	h.cookies.SetAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// SocialAuth signs in through an external identity provider.
func (h *AuthHandler) SocialAuth(c echo.Context) error {
	var req socialAuthRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	pair, user, err := h.usecase.SocialAuth(c.Request().Context(), req.Name, req.Email, req.Avatar)
	if err != nil {
		return fail(c, err)
	}

	h.cookies.SetAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// Refresh rotates both tokens off the refresh cookie and the live session.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return fail(c, domain.ErrUnauthenticated)
	}

	pair, _, err := h.usecase.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return fail(c, err)
	}

	h.cookies.SetAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"accessToken": pair.AccessToken,
	})
}

// Logout removes the server-side session and expires both cookies. The
// session removal must land before the response so no validity window
// remains.
func (h *AuthHandler) Logout(c echo.Context) error {
	user := identityFrom(c)
	if err := h.usecase.Logout(c.Request().Context(), user.ID); err != nil {
		return fail(c, err)
	}

	h.cookies.ClearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}
