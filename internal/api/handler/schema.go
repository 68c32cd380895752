package handler

import "github.com/dailyskills/marketplace/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=worker employer"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Identity *domain.Identity `json:"identity"`
	Token    string           `json:"token"`
}

type profileResponse struct {
	Identity *domain.Identity `json:"identity"`
}

// --- Jobs ---

type budgetRequest struct {
	MinRate  float64 `json:"min_rate"  validate:"gte=0"`
	MaxRate  float64 `json:"max_rate"  validate:"gte=0"`
	IsHourly bool    `json:"is_hourly"`
}

type createJobRequest struct {
	Title       string        `json:"title"       validate:"required"`
	Description string        `json:"description" validate:"required"`
	Category    string        `json:"category"    validate:"required"`
	Skills      []string      `json:"skills"`
	Location    string        `json:"location"    validate:"required"`
	Budget      budgetRequest `json:"budget"`
	IsUrgent    bool          `json:"is_urgent"`
}

type jobsResponse struct {
	Jobs []*domain.Job `json:"jobs"`
}

// --- Messaging ---

type startConversationRequest struct {
	ParticipantID string `json:"participant_id" validate:"required"`
	JobID         string `json:"job_id"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type conversationsResponse struct {
	Conversations []*domain.Conversation `json:"conversations"`
}

type messagesResponse struct {
	Messages []*domain.Message `json:"messages"`
}

type statusResponse struct {
	Message string `json:"message"`
}
