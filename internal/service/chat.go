package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
)

type SendMessageRequest struct {
	ReceiverID int64
	Content    string
}

// ChatService appends direct messages and derives conversations from them.
type ChatService struct {
	messages messageRepository
	users    userLookup
}

func NewChatService(messages messageRepository, users userLookup) *ChatService {
	return &ChatService{messages: messages, users: users}
}

func (s *ChatService) SendMessage(ctx context.Context, senderID int64, req SendMessageRequest) (*domain.Message, error) {
	content := strings.TrimSpace(req.Content)

	var verr domain.ValidationError
	if req.ReceiverID <= 0 {
		verr.Add("receiver_id", "required")
	}
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		verr.Add("content", "required")
	case n > domain.MaxMessageLength:
		verr.Add("content", fmt.Sprintf("must be at most %d characters", domain.MaxMessageLength))
	}
	if err := verr.Err(); err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}

	if req.ReceiverID == senderID {
		return nil, fmt.Errorf("SendMessage: %w", domain.ErrSelfTarget)
	}

	if _, err := s.users.GetSummary(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("SendMessage: %w", domain.ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("SendMessage: %w", err)
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}

	logging.FromContext(ctx).Info("message sent", "message_id", msg.ID, "receiver_id", msg.ReceiverID)

	sent, err := s.messages.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}
	return sent, nil
}

// GetConversation returns every message exchanged between userID and
// partnerID in either direction, oldest first.
func (s *ChatService) GetConversation(ctx context.Context, userID, partnerID int64) ([]domain.Message, error) {
	if _, err := s.users.GetSummary(ctx, partnerID); err != nil {
		return nil, fmt.Errorf("GetConversation: %w", err)
	}

	msgs, err := s.messages.ListBetween(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("GetConversation: %w", err)
	}
	return msgs, nil
}

// ListConversations returns one entry per partner with the latest message
// exchanged, most recent first.
func (s *ChatService) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	convs, err := s.messages.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListConversations: %w", err)
	}
	sortConversations(convs)
	return convs, nil
}

// sortConversations orders by last message time descending, then message id
// descending. Entries without a last message go last.
func sortConversations(convs []domain.Conversation) {
	slices.SortStableFunc(convs, func(a, b domain.Conversation) int {
		switch {
		case a.LastMessage == nil && b.LastMessage == nil:
			return 0
		case a.LastMessage == nil:
			return 1
		case b.LastMessage == nil:
			return -1
		}
		if c := compareTimeDesc(a.LastMessage.CreatedAt, b.LastMessage.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.LastMessage.ID > b.LastMessage.ID:
			return -1
		case a.LastMessage.ID < b.LastMessage.ID:
			return 1
		}
		return 0
	})
}

func compareTimeDesc(a, b time.Time) int {
	return b.Compare(a)
}
