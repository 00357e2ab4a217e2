package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/pkg/security"
)

// envelope is the uniform failure payload; every handler-level error
// converts to it, regardless of where in the pipeline it surfaced.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, security.ErrCodeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrInvalidMFACode),
		errors.Is(err, security.ErrTokenExpired),
		errors.Is(err, security.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail renders the error envelope. Unexpected errors are masked so internal
// details never reach the client.
func fail(c echo.Context, err error) error {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	return c.JSON(status, envelope{Success: false, Message: message})
}
