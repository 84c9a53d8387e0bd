// handlers_users.go - Console account management handlers
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/auth"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
)

// MinPasswordLength is the shortest password accepted for new accounts.
const MinPasswordLength = 8

// UserHandlerImpl implements the UserHandler interface
type UserHandlerImpl struct {
	users    store.UserStore
	sessions *auth.Manager
}

// NewUserHandler creates a new user handler instance
func NewUserHandler(users store.UserStore, sessions *auth.Manager) UserHandler {
	return &UserHandlerImpl{users: users, sessions: sessions}
}

// HandleListUsers returns all accounts (without password hashes)
func (h *UserHandlerImpl) HandleListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list users", err)
	}
	return c.JSON(http.StatusOK, users)
}

// HandleCreateUser creates an account
func (h *UserHandlerImpl) HandleCreateUser(c echo.Context) error {
	var req struct {
		Username string          `json:"username"`
		Password string          `json:"password"`
		Role     models.UserRole `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Username == "" {
		return NewValidationError("username")
	}
	if len(req.Password) < MinPasswordLength {
		return NewBadRequestError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength), nil)
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleViewer {
		return NewValidationError("role")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Username:     req.Username,
		Role:         req.Role,
		PasswordHash: hash,
	}
	if err := h.users.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return NewConflictError(fmt.Sprintf("username %q already in use", req.Username))
		}
		return NewInternalError("failed to create user", err)
	}

	return c.JSON(http.StatusCreated, user)
}

// HandleUpdateUser changes an account's role or password
func (h *UserHandlerImpl) HandleUpdateUser(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req struct {
		Password string          `json:"password,omitempty"`
		Role     models.UserRole `json:"role,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	ctx := c.Request().Context()
	user, err := h.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to load user", err)
	}

	if req.Role != "" {
		if req.Role != models.RoleAdmin && req.Role != models.RoleViewer {
			return NewValidationError("role")
		}
		user.Role = req.Role
	}
	passwordChanged := false
	if req.Password != "" {
		if len(req.Password) < MinPasswordLength {
			return NewBadRequestError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength), nil)
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return NewInternalError("failed to hash password", err)
		}
		user.PasswordHash = hash
		passwordChanged = true
	}

	if err := h.users.UpdateUser(ctx, user); err != nil {
		return NewInternalError("failed to update user", err)
	}
	if passwordChanged && h.sessions != nil {
		h.sessions.RevokeUser(user.ID)
	}

	return c.JSON(http.StatusOK, user)
}

// HandleDeleteUser removes an account. The caller cannot delete itself.
func (h *UserHandlerImpl) HandleDeleteUser(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	if session := CurrentSession(c); session != nil && session.UserID == id {
		return NewBadRequestError("cannot delete your own account", nil)
	}

	if err := h.users.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to delete user", err)
	}
	if h.sessions != nil {
		h.sessions.RevokeUser(id)
	}

	return c.NoContent(http.StatusNoContent)
}
