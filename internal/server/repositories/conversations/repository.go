package conversations

import (
	"context"

	"github.com/vizzyhq/vizzy/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	Delete(ctx context.Context, id string) error
	AddMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	AddAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	ListAssets(ctx context.Context, conversationID string) ([]models.Asset, error)
}
