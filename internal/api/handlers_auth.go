// handlers_auth.go - Login and session handlers
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/auth"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/eventlog"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/metrics"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// AuthHandlerImpl implements the AuthHandler interface
type AuthHandlerImpl struct {
	manager *auth.Manager
	events  *eventlog.DuckStore
	metrics *metrics.Metrics
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(manager *auth.Manager, events *eventlog.DuckStore, m *metrics.Metrics) AuthHandler {
	return &AuthHandlerImpl{manager: manager, events: events, metrics: m}
}

// HandleLogin validates credentials and issues a session token
func (h *AuthHandlerImpl) HandleLogin(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Username == "" || req.Password == "" {
		return NewValidationError("username and password")
	}

	session, err := h.manager.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			if h.metrics != nil {
				h.metrics.LoginFailures.Add(1)
			}
			h.recordEvent(models.LevelWarning, "failed login for "+req.Username)
			return NewUnauthorizedError("invalid username or password")
		}
		return NewInternalError("login failed", err)
	}

	if h.metrics != nil {
		h.metrics.LoginSuccesses.Add(1)
		h.metrics.ActiveSessions.Store(uint64(h.manager.Count()))
	}
	h.recordEvent(models.LevelInfo, "user "+session.Username+" logged in")

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
	})
	return c.JSON(http.StatusOK, session)
}

// HandleLogout revokes the current session
func (h *AuthHandlerImpl) HandleLogout(c echo.Context) error {
	token := extractToken(c)
	if token != "" {
		h.manager.Logout(token)
	}
	if h.metrics != nil {
		h.metrics.ActiveSessions.Store(uint64(h.manager.Count()))
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
	return c.NoContent(http.StatusNoContent)
}

// HandleMe returns the authenticated session
func (h *AuthHandlerImpl) HandleMe(c echo.Context) error {
	session := CurrentSession(c)
	if session == nil {
		return NewUnauthorizedError("authentication required")
	}
	return c.JSON(http.StatusOK, session)
}

func (h *AuthHandlerImpl) recordEvent(level models.EventLevel, message string) {
	if h.events == nil {
		return
	}
	h.events.Append(&models.Event{
		Level:   level,
		Source:  models.SourceAuth,
		Message: message,
	})
	if h.metrics != nil {
		h.metrics.EventsRecorded.Add(1)
	}
}
