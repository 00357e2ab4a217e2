package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edupress/edupress/internal/usecase"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// CookieWriter issues and clears the auth cookies. Built once at startup
// from configuration; expiry tracks the token TTLs and the Secure flag is
// forced on in production.
type CookieWriter struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	secure     bool
}

func NewCookieWriter(accessTTL, refreshTTL time.Duration, secure bool) *CookieWriter {
	return &CookieWriter{accessTTL: accessTTL, refreshTTL: refreshTTL, secure: secure}
}

func (w *CookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   w.secure,
	}
}

// SetAuthCookies attaches both token cookies to the response.
func (w *CookieWriter) SetAuthCookies(c echo.Context, pair *usecase.TokenPair) {
	c.SetCookie(w.cookie(accessCookieName, pair.AccessToken, w.accessTTL))
	c.SetCookie(w.cookie(refreshCookieName, pair.RefreshToken, w.refreshTTL))
}

// ClearAuthCookies expires both token cookies immediately.
func (w *CookieWriter) ClearAuthCookies(c echo.Context) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		cookie := w.cookie(name, "", 0)
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
		c.SetCookie(cookie)
	}
}
