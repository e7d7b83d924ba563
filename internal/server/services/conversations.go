package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vizzyhq/vizzy/internal/common"
	"github.com/vizzyhq/vizzy/internal/server/models"
	"github.com/vizzyhq/vizzy/internal/server/repositories/repomanager"
)

// ConversationDetail is a conversation with its full thread; assets are
// attached to their messages.
type ConversationDetail struct {
	Conversation models.Conversation
	Messages     []MessageWithAssets
}

type MessageWithAssets struct {
	Message models.Message
	Assets  []models.Asset
}

type ConversationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewConversationService(db *sql.DB, m repomanager.RepositoryManager) *ConversationService {
	return &ConversationService{db: db, repomanager: m}
}

// List returns the user's conversations, newest first.
func (s *ConversationService) List(ctx context.Context, userID string) ([]models.Conversation, error) {
	repo := s.repomanager.Conversations(s.db)

	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	return list, nil
}

// getOwned loads the conversation and verifies it belongs to userID. A
// conversation owned by someone else is reported as not found, so ids cannot
// be probed.
func (s *ConversationService) getOwned(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	repo := s.repomanager.Conversations(s.db)

	conv, err := repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return conv, nil
}

// GetDetail returns the full thread of an owned conversation.
func (s *ConversationService) GetDetail(ctx context.Context, userID, conversationID string) (*ConversationDetail, error) {
	conv, err := s.getOwned(ctx, userID, conversationID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}

	repo := s.repomanager.Conversations(s.db)

	messages, err := repo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading messages: %w", err)
	}
	assets, err := repo.ListAssets(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading assets: %w", err)
	}

	byMessage := make(map[string][]models.Asset)
	for _, a := range assets {
		byMessage[a.MessageID] = append(byMessage[a.MessageID], a)
	}

	detail := &ConversationDetail{Conversation: *conv}
	for _, m := range messages {
		detail.Messages = append(detail.Messages, MessageWithAssets{
			Message: m,
			Assets:  byMessage[m.ID],
		})
	}
	return detail, nil
}

// Delete removes an owned conversation with its messages and assets.
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	if _, err := s.getOwned(ctx, userID, conversationID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error loading conversation: %w", err)
	}

	repo := s.repomanager.Conversations(s.db)
	if err := repo.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("error deleting conversation: %w", err)
	}
	return nil
}
