package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAuthenticate_Success(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /auth/login": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("bad body: %v", err)
			}
			if body["email"] != "a@b.co" || body["password"] != "secret1" {
				t.Fatalf("unexpected body: %v", body)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"identity": map[string]any{"id": "u-1", "email": "a@b.co", "role": "employer"},
				"token":    "tok-1",
			})
		},
	})

	identity, err := client.Authenticate(context.Background(), "a@b.co", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "u-1" || identity.Role != domain.RoleEmployer || identity.Token != "tok-1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestAuthenticate_Unauthorized(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /auth/login": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		},
	})

	_, err := client.Authenticate(context.Background(), "a@b.co", "nope")
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestCreateAccount_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       map[string]any
		wantReason string
	}{
		{
			name:       "reason from backend",
			status:     http.StatusConflict,
			body:       map[string]any{"error": "registration failed", "reason": "email already registered"},
			wantReason: "email already registered",
		},
		{
			name:   "field errors",
			status: http.StatusUnprocessableEntity,
			body: map[string]any{"error": "validation failed", "fields": map[string]string{
				"password": "password must be at least 6 characters",
				"email":    "email must be a valid email",
			}},
			wantReason: "email must be a valid email; password must be at least 6 characters",
		},
		{
			name:       "opaque",
			status:     http.StatusInternalServerError,
			body:       map[string]any{"error": "internal server error"},
			wantReason: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, map[string]http.HandlerFunc{
				"POST /auth/register": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, tt.status, tt.body)
				},
			})

			_, err := client.CreateAccount(context.Background(), "a@b.co", "pw", "A", domain.RoleWorker)
			var regErr *domain.RegistrationError
			if !errors.As(err, &regErr) {
				t.Fatalf("expected RegistrationError, got %v", err)
			}
			if regErr.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, regErr.Reason)
			}
		})
	}
}

func TestCreateAccount_SendsRole(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /auth/register": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["role"] != "worker" || body["name"] != "A" {
				t.Fatalf("unexpected body: %v", body)
			}
			writeJSON(w, http.StatusCreated, map[string]any{
				"identity": map[string]any{"id": "u-2", "role": "worker"},
				"token":    "tok-2",
			})
		},
	})

	identity, err := client.CreateAccount(context.Background(), "a@b.co", "secret1", "A", domain.RoleWorker)
	if err != nil || identity.Token != "tok-2" {
		t.Fatalf("unexpected result %+v, %v", identity, err)
	}
}

func TestListJobs_QueryAndToken(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"GET /v1/jobs": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Fatalf("unexpected auth header %q", got)
			}
			if r.URL.Query().Get("status") != "open" || r.URL.Query().Get("limit") != "5" {
				t.Fatalf("unexpected query %q", r.URL.RawQuery)
			}
			writeJSON(w, http.StatusOK, map[string]any{"jobs": []map[string]any{{"id": "j-1", "title": "Painter"}}})
		},
	})

	jobs, err := client.ListJobs(context.Background(), "tok", ports.JobFilter{Status: domain.JobOpen, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Painter" {
		t.Fatalf("unexpected jobs %+v", jobs)
	}
}

func TestCreateJob_Forbidden(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /v1/jobs": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		},
	})

	_, err := client.CreateJob(context.Background(), "tok", ports.CreateJobInput{Title: "t"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "forbidden" {
		t.Fatalf("expected APIError with message, got %v", err)
	}
}

func TestMessaging(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /v1/conversations": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"id": "c-1", "participants": []string{"u-1", "u-2"}})
		},
		"POST /v1/conversations/c-1/messages": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusCreated, map[string]any{"id": "m-1", "conversation_id": "c-1", "content": body["content"]})
		},
		"GET /v1/conversations/c-1/messages": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"messages": []map[string]any{{"id": "m-1", "content": "hi"}}})
		},
	})
	ctx := context.Background()

	conv, err := client.StartConversation(ctx, "tok", "u-2", "")
	if err != nil || conv.ID != "c-1" || !conv.HasParticipant("u-2") {
		t.Fatalf("unexpected conversation %+v, %v", conv, err)
	}
	msg, err := client.SendMessage(ctx, "tok", "c-1", "hi")
	if err != nil || msg.Content != "hi" {
		t.Fatalf("unexpected message %+v, %v", msg, err)
	}
	msgs, err := client.ListMessages(ctx, "tok", "c-1")
	if err != nil || len(msgs) != 1 {
		t.Fatalf("unexpected messages %+v, %v", msgs, err)
	}
}

func TestLogout_Unauthorized(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /auth/logout": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token revoked"})
		},
	})

	if err := client.Logout(context.Background(), "tok"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
