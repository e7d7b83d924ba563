package memory

import (
	"context"

	"github.com/vizzyhq/vizzy/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID, content string) (*models.MemoryItem, error)
	// LastN returns up to n newest items, oldest first.
	LastN(ctx context.Context, userID string, n int) ([]models.MemoryItem, error)
	// Trim deletes everything but the keep newest items.
	Trim(ctx context.Context, userID string, keep int) error
	Clear(ctx context.Context, userID string) error
}
