// middleware.go - Authentication middleware
package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/auth"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

const (
	// SessionCookieName carries the token for browser navigation and
	// <img> tags, which cannot set an Authorization header.
	SessionCookieName = "console_session"

	sessionContextKey = "console.session"
)

// extractToken pulls the session token from the Authorization header,
// the session cookie, or a token query parameter, in that order.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return c.QueryParam("token")
}

// RequireAuth rejects requests without a valid session token. When
// enabled is false (auth disabled in config) every request passes with
// an implicit admin session.
func RequireAuth(manager *auth.Manager, enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				c.Set(sessionContextKey, &auth.Session{Username: "anonymous", Role: models.RoleAdmin})
				return next(c)
			}

			token := extractToken(c)
			if token == "" {
				return NewUnauthorizedError("authentication required")
			}
			session, ok := manager.Resolve(token)
			if !ok {
				return NewUnauthorizedError("session expired or invalid")
			}

			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// RequireAdmin rejects non-admin sessions. Must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := CurrentSession(c)
			if session == nil || session.Role != models.RoleAdmin {
				return NewForbiddenError("admin role required")
			}
			return next(c)
		}
	}
}

// CurrentSession returns the authenticated session for a request, or nil.
func CurrentSession(c echo.Context) *auth.Session {
	if s, ok := c.Get(sessionContextKey).(*auth.Session); ok {
		return s
	}
	return nil
}
