package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

// Client talks to the marketplace HTTP API. It satisfies ports.Authenticator
// so a client-side session can log in against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Reason     string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the matching domain error, if any.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrTokenInvalid
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	}
	return nil
}

type authResponse struct {
	Identity *domain.Identity `json:"identity"`
	Token    string           `json:"token"`
}

// Authenticate logs in and returns the identity carrying its bearer token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	return withToken(resp)
}

// CreateAccount registers a new account. Rejections come back as a
// *domain.RegistrationError carrying the backend's reason.
func (c *Client) CreateAccount(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     string(role),
	}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &domain.RegistrationError{Reason: registrationReason(apiErr)}
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return withToken(resp)
}

// Logout revokes token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Profile fetches the account behind token.
func (c *Client) Profile(ctx context.Context, token string) (*domain.Identity, error) {
	var resp struct {
		Identity *domain.Identity `json:"identity"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Identity, nil
}

// ListJobs returns jobs matching filter, newest first.
func (c *Client) ListJobs(ctx context.Context, token string, filter ports.JobFilter) ([]*domain.Job, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.EmployerID != "" {
		q.Set("employer_id", filter.EmployerID)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/v1/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Jobs []*domain.Job `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

type createJobRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Skills      []string      `json:"skills,omitempty"`
	Location    string        `json:"location"`
	Budget      domain.Budget `json:"budget"`
	IsUrgent    bool          `json:"is_urgent"`
}

// CreateJob posts a job. The employer is whoever token belongs to.
func (c *Client) CreateJob(ctx context.Context, token string, input ports.CreateJobInput) (*domain.Job, error) {
	var job domain.Job
	err := c.do(ctx, http.MethodPost, "/v1/jobs", token, createJobRequest{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Skills:      input.Skills,
		Location:    input.Location,
		Budget:      input.Budget,
		IsUrgent:    input.IsUrgent,
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// StartConversation opens a chat with otherID, optionally about jobID.
func (c *Client) StartConversation(ctx context.Context, token, otherID, jobID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := c.do(ctx, http.MethodPost, "/v1/conversations", token, map[string]string{
		"participant_id": otherID,
		"job_id":         jobID,
	}, &conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns the caller's conversations.
func (c *Client) ListConversations(ctx context.Context, token string) ([]*domain.Conversation, error) {
	var resp struct {
		Conversations []*domain.Conversation `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/conversations", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// ListMessages returns a conversation's messages oldest first.
func (c *Client) ListMessages(ctx context.Context, token, conversationID string) ([]*domain.Message, error) {
	var resp struct {
		Messages []*domain.Message `json:"messages"`
	}
	path := "/v1/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage posts content to a conversation.
func (c *Client) SendMessage(ctx context.Context, token, conversationID, content string) (*domain.Message, error) {
	var msg domain.Message
	path := "/v1/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, token, map[string]string{"content": content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// do performs a JSON request and decodes a 2xx body into target.
func (c *Client) do(ctx context.Context, method, path, token string, body, target any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %w", err)
	}
	return parseResponse(resp, target)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields"`
}

func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Message = errResp.Error
			apiErr.Reason = errResp.Reason
			apiErr.Fields = errResp.Fields
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func withToken(resp authResponse) (*domain.Identity, error) {
	if resp.Identity == nil {
		return nil, errors.New("response carried no identity")
	}
	identity := resp.Identity.Clone()
	identity.Token = resp.Token
	return identity, nil
}

// registrationReason picks the text shown for a rejected registration:
// the backend's reason, else its field errors in a stable order.
func registrationReason(e *APIError) string {
	if e.Reason != "" {
		return e.Reason
	}
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}
