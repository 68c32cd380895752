package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dailyskills/marketplace/internal/api/middleware"
	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, string, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.Identity, string, error)
	logoutFn   func(ctx context.Context, token string) error
	profileFn  func(ctx context.Context, userID string) (*domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, string, error) {
	return s.registerFn(ctx, email, password, name, role)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAuthService) Verify(context.Context, string) (*ports.TokenClaims, error) {
	return nil, errors.New("not used")
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.Identity, error) {
	return s.profileFn(ctx, userID)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, string, error) {
			if email != "alice@example.com" || name != "Alice" || role != domain.RoleWorker {
				t.Fatalf("unexpected args: %s %s %s", email, name, role)
			}
			return &domain.Identity{ID: "u-1", Email: email, Name: name, Role: role}, "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1","role":"worker"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	identity, ok := resp["identity"].(map[string]any)
	if !ok || identity["email"] != "alice@example.com" || identity["role"] != "worker" {
		t.Fatalf("unexpected identity payload: %+v", resp["identity"])
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string, domain.Role) (*domain.Identity, string, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/auth/register", `{"email":"bad","password":"123","role":"admin"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"name", "email", "password", "role"} {
		if ve.Field(field) == "" {
			t.Fatalf("expected error for %s, got %v", field, ve.Fields)
		}
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", "not-json"), httptest.NewRecorder())

	var he *echo.HTTPError
	if err := handler.Register(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Identity, string, error) {
			if email != "alice@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.Identity{ID: "u-1", Email: email, Role: domain.RoleEmployer}, "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret1"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.Identity == nil || resp.Identity.Role != domain.RoleEmployer {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_FailurePassesThrough(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.Identity, string, error) {
			return nil, "", domain.ErrAuthenticationFailed
		},
	}
	handler := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"bad"}`), httptest.NewRecorder())

	if err := handler.Login(c); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	var revoked string
	handler := NewAuthHandler(&stubAuthService{
		logoutFn: func(_ context.Context, token string) error {
			revoked = token
			return nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)
	c.Set(middleware.KeyToken, "token123")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || revoked != "token123" {
		t.Fatalf("expected token revoked, got code %d token %q", rec.Code, revoked)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		profileFn: func(_ context.Context, userID string) (*domain.Identity, error) {
			return &domain.Identity{ID: userID, Name: "Alice", Role: domain.RoleWorker}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), rec)
	c.Set(middleware.KeyUserID, "u-1")
	c.Set(middleware.KeyRole, domain.RoleWorker)

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Identity.ID != "u-1" {
		t.Fatalf("unexpected payload %s (%v)", rec.Body.String(), err)
	}
}

func TestAuthHandler_Me_MissingClaims(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), httptest.NewRecorder())

	var he *echo.HTTPError
	if err := handler.Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
