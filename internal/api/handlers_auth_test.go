// handlers_auth_test.go - Tests for login handlers and auth middleware
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/auth"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/testutil"
)

func newAuthManager(t *testing.T) (*auth.Manager, *testutil.MockUserStore) {
	t.Helper()
	users := testutil.NewMockUserStore()
	hash, err := auth.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	err = users.CreateUser(context.Background(), &models.User{
		Username:     "admin",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return auth.NewManager(users, time.Hour), users
}

func loginRequest(username, password string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_HandleLogin(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
		errCode  string
	}{
		{
			name:     "valid credentials",
			username: "admin",
			password: "correct horse battery",
		},
		{
			name:     "wrong password",
			username: "admin",
			password: "nope",
			wantErr:  true,
			errCode:  "UNAUTHORIZED",
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "whatever",
			wantErr:  true,
			errCode:  "UNAUTHORIZED",
		},
		{
			name:     "missing password",
			username: "admin",
			password: "",
			wantErr:  true,
			errCode:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, _ := newAuthManager(t)
			handler := NewAuthHandler(manager, nil, nil)

			c, rec := loginRequest(tt.username, tt.password)
			err := handler.HandleLogin(c)

			if tt.wantErr {
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected code %s, got %s", tt.errCode, apiErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var session auth.Session
			if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
				t.Fatalf("decode session: %v", err)
			}
			if session.Token == "" {
				t.Error("expected a session token")
			}
			if session.Role != models.RoleAdmin {
				t.Errorf("expected admin role, got %s", session.Role)
			}

			var cookie *http.Cookie
			for _, ck := range rec.Result().Cookies() {
				if ck.Name == SessionCookieName {
					cookie = ck
				}
			}
			if cookie == nil {
				t.Fatal("expected session cookie to be set")
			}
			if cookie.Value != session.Token {
				t.Error("cookie value should match the session token")
			}
			if !cookie.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
		})
	}
}

func TestAuthHandler_HandleLogout(t *testing.T) {
	manager, _ := newAuthManager(t)
	session, err := manager.Login(context.Background(), "admin", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	handler := NewAuthHandler(manager, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleLogout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if _, ok := manager.Resolve(session.Token); ok {
		t.Error("token should be revoked after logout")
	}
}

func TestRequireAuth(t *testing.T) {
	manager, _ := newAuthManager(t)
	session, err := manager.Login(context.Background(), "admin", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("rejects missing token", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth(manager, true)(next)(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("accepts bearer token", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+session.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := RequireAuth(manager, true)(next)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := CurrentSession(c)
		if got == nil || got.Username != "admin" {
			t.Errorf("expected admin session in context, got %+v", got)
		}
	})

	t.Run("accepts cookie token", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/stream", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := RequireAuth(manager, true)(next)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("accepts query token", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/stream?token="+session.Token, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := RequireAuth(manager, true)(next)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("disabled auth injects admin session", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := RequireAuth(manager, false)(next)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := CurrentSession(c)
		if got == nil || got.Role != models.RoleAdmin {
			t.Errorf("expected implicit admin session, got %+v", got)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("rejects viewer", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/zones", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(sessionContextKey, &auth.Session{Username: "viewer", Role: models.RoleViewer})

		err := RequireAdmin()(next)(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Code != "FORBIDDEN" {
			t.Errorf("expected FORBIDDEN, got %v", err)
		}
	})

	t.Run("accepts admin", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/zones", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(sessionContextKey, &auth.Session{Username: "root", Role: models.RoleAdmin})

		if err := RequireAdmin()(next)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
