package http

import (
	"github.com/labstack/echo/v4"

	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/pkg/security"
)

const identityContextKey = "identity"

// Authenticated resolves the caller's identity from the access-token cookie
// and the server-side session store. A verified token without a live session
// is rejected: the session is the revocation point, not token expiry.
// The middleware performs no writes.
func Authenticated(sessions domain.SessionRepository, accessSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(accessCookieName)
			if err != nil || cookie.Value == "" {
				return fail(c, domain.ErrUnauthenticated)
			}

			claims, err := security.ParseToken(cookie.Value, accessSecret)
			if err != nil {
				return fail(c, err)
			}

			user, err := sessions.Get(c.Request().Context(), claims.UserID)
			if err != nil {
				return fail(c, err)
			}

			c.Set(identityContextKey, user)
			return next(c)
		}
	}
}

// RequireRoles gates a route on the resolved identity's role. The role
// comes from the session snapshot only; claims or request-body roles are
// never consulted. Evaluated strictly after Authenticated.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := identityFrom(c)
			if user == nil {
				return fail(c, domain.ErrUnauthenticated)
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return fail(c, domain.ErrForbidden)
		}
	}
}

func identityFrom(c echo.Context) *domain.User {
	user, _ := c.Get(identityContextKey).(*domain.User)
	return user
}
