package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vizzyhq/vizzy/internal/common"
	"github.com/vizzyhq/vizzy/internal/dbx"
	"github.com/vizzyhq/vizzy/internal/logging"
	"github.com/vizzyhq/vizzy/internal/server/models"
	"github.com/vizzyhq/vizzy/internal/server/repositories/repomanager"
	"github.com/vizzyhq/vizzy/internal/server/storage"
)

// assistantText is the fixed reply accompanying generated assets.
const assistantText = "Generated successfully."

// titleMaxLen caps auto-generated conversation titles.
const titleMaxLen = 40

// SendInput is one user turn entering the pipeline.
type SendInput struct {
	UserID         string
	ConversationID string
	Text           string
	ImageURL       string
	UsePreferences bool
}

// SendResult is what a completed turn produced.
type SendResult struct {
	Conversation     models.Conversation
	UserMessage      MessageWithAssets
	AssistantMessage MessageWithAssets
}

// ChatService runs the send pipeline: validate, classify, recall taste
// history, persist the user turn, generate, persist the assistant turn.
type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	classifier  Classifier
	generator   Generator
	store       storage.Store
	memory      *MemoryService
	logger      logging.Logger
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager, classifier Classifier,
	generator Generator, store storage.Store, memory *MemoryService, logger logging.Logger) *ChatService {
	return &ChatService{
		db:          db,
		repomanager: m,
		classifier:  classifier,
		generator:   generator,
		store:       store,
		memory:      memory,
		logger:      logger,
	}
}

func (s *ChatService) Send(ctx context.Context, in *SendInput) (*SendResult, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.ImageURL == "" {
		return nil, common.NewValidationError("A message or an image is required.")
	}

	var conv *models.Conversation
	if in.ConversationID != "" {
		existing, err := s.getOwned(ctx, in.UserID, in.ConversationID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorNotFound
			}
			return nil, fmt.Errorf("error loading conversation: %w", err)
		}
		conv = existing
	}

	intent, err := s.classifier.Classify(ctx, text, in.ImageURL != "")
	if err != nil {
		return nil, fmt.Errorf("error classifying prompt: %w", err)
	}
	if !intent.Valid {
		return nil, common.NewValidationError(intent.ErrorMessage)
	}

	var taste []models.MemoryItem
	if in.UsePreferences {
		taste, err = s.memory.Recall(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
	}

	var userMsg *models.Message
	var userAssets []models.Asset

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Conversations(tx)

		if conv == nil {
			created, err := repo.Create(ctx, &models.Conversation{
				UserID: in.UserID,
				Title:  titleFor(text),
			})
			if err != nil {
				return fmt.Errorf("error creating conversation: %w", err)
			}
			conv = created
		}

		userMsg, err = repo.AddMessage(ctx, &models.Message{
			ConversationID: conv.ID,
			Role:           common.RoleUser,
			Text:           text,
		})
		if err != nil {
			return fmt.Errorf("error storing user message: %w", err)
		}

		if in.ImageURL != "" {
			asset, err := repo.AddAsset(ctx, &models.Asset{
				MessageID: userMsg.ID,
				Type:      common.AssetTypeImage,
				URL:       in.ImageURL,
			})
			if err != nil {
				return fmt.Errorf("error storing uploaded asset: %w", err)
			}
			userAssets = append(userAssets, *asset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Taste history only grows when the user opted in for this send.
	if in.UsePreferences && text != "" {
		if err := s.memory.Remember(ctx, in.UserID, text); err != nil {
			s.logger.Warn(ctx, "failed to update taste history", "error", err)
		}
	}

	prompt := buildPrompt(intent.Task, taste)

	generated, err := s.generator.Generate(ctx, intent, prompt, in.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("error generating: %w", err)
	}

	urls := make([]string, 0, len(generated))
	for _, g := range generated {
		url, err := s.store.Save(ctx, "generated"+g.Ext, bytes.NewReader(g.Data))
		if err != nil {
			return nil, fmt.Errorf("error saving generated asset: %w", err)
		}
		urls = append(urls, url)
	}

	var assistantMsg *models.Message
	var assistantAssets []models.Asset

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Conversations(tx)

		assistantMsg, err = repo.AddMessage(ctx, &models.Message{
			ConversationID: conv.ID,
			Role:           common.RoleAssistant,
			Text:           assistantText,
		})
		if err != nil {
			return fmt.Errorf("error storing assistant message: %w", err)
		}

		for i, g := range generated {
			asset, err := repo.AddAsset(ctx, &models.Asset{
				MessageID:  assistantMsg.ID,
				Type:       g.Type,
				URL:        urls[i],
				PromptUsed: prompt,
				ModelUsed:  g.ModelUsed,
			})
			if err != nil {
				return fmt.Errorf("error storing generated asset: %w", err)
			}
			assistantAssets = append(assistantAssets, *asset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SendResult{
		Conversation:     *conv,
		UserMessage:      MessageWithAssets{Message: *userMsg, Assets: userAssets},
		AssistantMessage: MessageWithAssets{Message: *assistantMsg, Assets: assistantAssets},
	}, nil
}

func (s *ChatService) getOwned(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
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

// titleFor derives a conversation title from the first message.
func titleFor(text string) string {
	if text == "" {
		return "New Chat"
	}
	runes := []rune(text)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen])
	}
	return text
}

// buildPrompt appends the taste history to the task so generations lean
// toward what the user has asked for before.
func buildPrompt(task string, taste []models.MemoryItem) string {
	if len(taste) == 0 {
		return task
	}

	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\nUser taste history (most recent last):\n")
	for _, item := range taste {
		b.WriteString("- ")
		b.WriteString(item.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
