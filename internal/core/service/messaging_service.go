package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

// MessagesTable is the change feed table chat messages are announced on.
const MessagesTable = "messages"

// ChangeRouter fans change notifications out to handlers registered per key.
type ChangeRouter interface {
	Register(key string, fn func(domain.Change)) (unregister func())
}

type messagingService struct {
	repo    ports.MessageRepository
	feed    ports.ChangeFeed
	changes ChangeRouter
	log     zerolog.Logger
	now     func() time.Time
}

// NewMessagingService returns a MessagingService. Watch requires changes.
func NewMessagingService(repo ports.MessageRepository, feed ports.ChangeFeed, changes ChangeRouter, log zerolog.Logger) ports.MessagingService {
	return &messagingService{repo: repo, feed: feed, changes: changes, log: log, now: time.Now}
}

func (s *messagingService) StartConversation(ctx context.Context, userID, otherID, jobID string) (*domain.Conversation, error) {
	otherID = strings.TrimSpace(otherID)
	if otherID == "" || otherID == userID {
		return nil, fmt.Errorf("%w: conversation needs another participant", domain.ErrInvalidInput)
	}

	conv := &domain.Conversation{
		ID:           uuid.NewString(),
		Participants: []string{userID, otherID},
		JobID:        strings.TrimSpace(jobID),
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("start conversation: %w", err)
	}
	s.log.Info().Str("conversation_id", conv.ID).Msg("conversation started")
	return conv, nil
}

func (s *messagingService) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	return s.repo.ListConversations(ctx, userID)
}

func (s *messagingService) ListMessages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error) {
	if _, err := s.participant(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, conversationID)
}

// SendMessage stores a message from senderID and announces it.
func (s *messagingService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is empty", domain.ErrInvalidInput)
	}
	if _, err := s.participant(ctx, senderID, conversationID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	publish(ctx, s.feed, s.log, domain.Change{Table: MessagesTable, Key: conversationID, Op: domain.ChangeInsert, At: msg.CreatedAt})
	return msg, nil
}

// Watch re-fetches the full message list after every change to the
// conversation and hands it to fn. Calls to fn never overlap.
func (s *messagingService) Watch(ctx context.Context, userID, conversationID string, fn func([]*domain.Message)) error {
	if s.changes == nil {
		return fmt.Errorf("watch: no change router configured")
	}
	if _, err := s.participant(ctx, userID, conversationID); err != nil {
		return err
	}

	var mu sync.Mutex
	reload := func() {
		msgs, err := s.repo.ListMessages(ctx, conversationID)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to reload messages")
			}
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() == nil {
			fn(msgs)
		}
	}

	unregister := s.changes.Register(conversationID, func(domain.Change) { reload() })
	defer unregister()

	reload()
	<-ctx.Done()
	return nil
}

func (s *messagingService) participant(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	conv, err := s.repo.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}
	return conv, nil
}
