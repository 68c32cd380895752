package ports

import (
	"context"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// CreateJobInput carries what an employer submits when posting a job.
type CreateJobInput struct {
	EmployerID  string
	Role        domain.Role
	Title       string
	Description string
	Category    string
	Skills      []string
	Location    string
	Budget      domain.Budget
	IsUrgent    bool
}

// JobService defines use-case operations for jobs.
type JobService interface {
	ListJobs(ctx context.Context, filter JobFilter) ([]*domain.Job, error)
	CreateJob(ctx context.Context, input CreateJobInput) (*domain.Job, error)
}

// MessagingService defines use-case operations for chat.
type MessagingService interface {
	// StartConversation opens a chat between userID and otherID, optionally
	// about a job.
	StartConversation(ctx context.Context, userID, otherID, jobID string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error)
	ListMessages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error)
	SendMessage(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error)
	// Watch calls fn with the full message list once immediately and again
	// after every change to the conversation, until ctx is cancelled.
	Watch(ctx context.Context, userID, conversationID string, fn func([]*domain.Message)) error
}

// AuthService defines the server-side account operations exposed over HTTP.
type AuthService interface {
	Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, string, error)
	Login(ctx context.Context, email, password string) (*domain.Identity, string, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*TokenClaims, error)
	Profile(ctx context.Context, userID string) (*domain.Identity, error)
}
