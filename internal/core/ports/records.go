package ports

import (
	"context"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// JobFilter narrows ListJobs. Zero values mean no filter.
type JobFilter struct {
	Status     domain.JobStatus
	EmployerID string
	Limit      int
}

// JobRepository defines persistence for posted jobs.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	// List returns jobs newest first.
	List(ctx context.Context, filter JobFilter) ([]*domain.Job, error)
}

// MessageRepository defines persistence for conversations and messages.
type MessageRepository interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	FindConversation(ctx context.Context, id string) (*domain.Conversation, error)
	// ListConversations returns conversations userID takes part in, most
	// recently updated first.
	ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error)
	// ListMessages returns a conversation's messages oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)
	// InsertMessage stores msg and bumps the conversation's updated_at.
	InsertMessage(ctx context.Context, msg *domain.Message) error
}

// ChangeFeed publishes and delivers row-change notifications.
type ChangeFeed interface {
	Publish(ctx context.Context, change domain.Change) error
	// Subscribe delivers changes for table until ctx is cancelled.
	Subscribe(ctx context.Context, table string) (<-chan domain.Change, error)
}
