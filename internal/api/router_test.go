package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
	"github.com/dailyskills/marketplace/internal/infrastructure/http/handlers"
)

type stubAuth struct {
	registerErr error
	loginErr    error
	claims      map[string]*ports.TokenClaims
}

func (s *stubAuth) Register(_ context.Context, email, _, name string, role domain.Role) (*domain.Identity, string, error) {
	if s.registerErr != nil {
		return nil, "", s.registerErr
	}
	return &domain.Identity{ID: "u-1", Email: email, Name: name, Role: role}, "tok", nil
}

func (s *stubAuth) Login(_ context.Context, email, _ string) (*domain.Identity, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return &domain.Identity{ID: "u-1", Email: email, Role: domain.RoleWorker}, "tok", nil
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) Verify(_ context.Context, token string) (*ports.TokenClaims, error) {
	if token == "revoked" {
		return nil, domain.ErrTokenRevoked
	}
	if c, ok := s.claims[token]; ok {
		return c, nil
	}
	return nil, domain.ErrTokenInvalid
}

func (s *stubAuth) Profile(_ context.Context, userID string) (*domain.Identity, error) {
	if userID == "ghost" {
		return nil, domain.ErrUserNotFound
	}
	return &domain.Identity{ID: userID, Role: domain.RoleWorker}, nil
}

type stubJobs struct{ created int }

func (s *stubJobs) ListJobs(context.Context, ports.JobFilter) ([]*domain.Job, error) {
	return []*domain.Job{}, nil
}

func (s *stubJobs) CreateJob(_ context.Context, in ports.CreateJobInput) (*domain.Job, error) {
	s.created++
	return &domain.Job{ID: "j-1", Title: in.Title, Category: in.Category, EmployerID: in.EmployerID}, nil
}

type stubMessages struct{}

func (stubMessages) StartConversation(context.Context, string, string, string) (*domain.Conversation, error) {
	return nil, domain.ErrInvalidInput
}

func (stubMessages) ListConversations(context.Context, string) ([]*domain.Conversation, error) {
	return nil, errors.New("mongo: connection reset")
}

func (stubMessages) ListMessages(context.Context, string, string) ([]*domain.Message, error) {
	return nil, domain.ErrNotParticipant
}

func (stubMessages) SendMessage(context.Context, string, string, string) (*domain.Message, error) {
	return nil, domain.ErrConversationNotFound
}

func (stubMessages) Watch(context.Context, string, string, func([]*domain.Message)) error {
	return domain.ErrConversationNotFound
}

func newTestRouter(t *testing.T, auth *stubAuth, jobs *stubJobs) http.Handler {
	t.Helper()
	if auth.claims == nil {
		auth.claims = map[string]*ports.TokenClaims{
			"worker":   {UserID: "w-1", Role: domain.RoleWorker},
			"employer": {UserID: "e-1", Role: domain.RoleEmployer},
			"ghost":    {UserID: "ghost", Role: domain.RoleWorker},
		}
	}
	return NewRouter(Dependencies{
		Auth:     auth,
		Jobs:     jobs,
		Messages: stubMessages{},
		Checks: map[string]handlers.Check{
			"mongo": func(context.Context) error { return nil },
		},
		Registerer: prometheus.NewRegistry(),
		Log:        zerolog.Nop(),
	})
}

func do(t *testing.T, h http.Handler, method, target, token, body string) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out errorResponse
	if rec.Code >= 400 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("error body is not json: %q", rec.Body.String())
		}
	}
	return rec, out
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		auth      *stubAuth
		method    string
		target    string
		token     string
		body      string
		wantCode  int
		wantError string
	}{
		{
			name:      "login failure hides cause",
			auth:      &stubAuth{loginErr: domain.ErrAuthenticationFailed},
			method:    http.MethodPost,
			target:    "/auth/login",
			body:      `{"email":"a@b.co","password":"nope"}`,
			wantCode:  http.StatusUnauthorized,
			wantError: "invalid email or password",
		},
		{
			name:      "duplicate registration conflicts",
			auth:      &stubAuth{registerErr: &domain.RegistrationError{Reason: "email already registered"}},
			method:    http.MethodPost,
			target:    "/auth/register",
			body:      `{"name":"A","email":"a@b.co","password":"secret1","role":"worker"}`,
			wantCode:  http.StatusConflict,
			wantError: "registration failed",
		},
		{
			name:      "invalid register form",
			auth:      &stubAuth{},
			method:    http.MethodPost,
			target:    "/auth/register",
			body:      `{"name":"A","email":"nope","password":"secret1","role":"worker"}`,
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "validation failed",
		},
		{
			name:      "missing token",
			auth:      &stubAuth{},
			method:    http.MethodGet,
			target:    "/v1/jobs",
			wantCode:  http.StatusUnauthorized,
			wantError: "missing authorization header",
		},
		{
			name:      "revoked token",
			auth:      &stubAuth{},
			method:    http.MethodGet,
			target:    "/v1/jobs",
			token:     "revoked",
			wantCode:  http.StatusUnauthorized,
			wantError: "token revoked",
		},
		{
			name:      "worker cannot post jobs",
			auth:      &stubAuth{},
			method:    http.MethodPost,
			target:    "/v1/jobs",
			token:     "worker",
			body:      `{"title":"t","description":"d","category":"c","location":"l"}`,
			wantCode:  http.StatusForbidden,
			wantError: "forbidden",
		},
		{
			name:      "unknown profile",
			auth:      &stubAuth{},
			method:    http.MethodGet,
			target:    "/auth/me",
			token:     "ghost",
			wantCode:  http.StatusNotFound,
			wantError: "user not found",
		},
		{
			name:      "not a participant",
			auth:      &stubAuth{},
			method:    http.MethodGet,
			target:    "/v1/conversations/c-1/messages",
			token:     "worker",
			wantCode:  http.StatusForbidden,
			wantError: "not a participant of this conversation",
		},
		{
			name:      "missing conversation",
			auth:      &stubAuth{},
			method:    http.MethodPost,
			target:    "/v1/conversations/c-1/messages",
			token:     "worker",
			body:      `{"content":"hi"}`,
			wantCode:  http.StatusNotFound,
			wantError: "conversation not found",
		},
		{
			name:      "unexpected error is masked",
			auth:      &stubAuth{},
			method:    http.MethodGet,
			target:    "/v1/conversations",
			token:     "worker",
			wantCode:  http.StatusInternalServerError,
			wantError: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, tt.auth, &stubJobs{})
			rec, body := do(t, h, tt.method, tt.target, tt.token, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tt.wantCode, rec.Code, rec.Body.String())
			}
			if body.Error != tt.wantError {
				t.Fatalf("expected error %q, got %q", tt.wantError, body.Error)
			}
		})
	}
}

func TestRouter_RegistrationReasonReturned(t *testing.T) {
	h := newTestRouter(t, &stubAuth{registerErr: &domain.RegistrationError{Reason: "email already registered"}}, &stubJobs{})
	_, body := do(t, h, http.MethodPost, "/auth/register", "", `{"name":"A","email":"a@b.co","password":"secret1","role":"worker"}`)
	if body.Reason != "email already registered" {
		t.Fatalf("expected reason to be passed through, got %+v", body)
	}
}

func TestRouter_EmployerCreatesJob(t *testing.T) {
	jobs := &stubJobs{}
	h := newTestRouter(t, &stubAuth{}, jobs)
	rec, _ := do(t, h, http.MethodPost, "/v1/jobs", "employer", `{"title":"t","description":"d","category":"moving","location":"l"}`)
	if rec.Code != http.StatusCreated || jobs.created != 1 {
		t.Fatalf("expected job created, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, &stubAuth{}, &stubJobs{})

	for _, target := range []string{"/health", "/health/ready", "/metrics"} {
		rec, _ := do(t, h, http.MethodGet, target, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}
