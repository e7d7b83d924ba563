package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vizzyhq/vizzy/internal/server/models"
	"github.com/vizzyhq/vizzy/internal/server/repositories/repomanager"
)

// memoryLimit caps the taste history at the newest entries.
const memoryLimit = 25

type MemoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMemoryService(db *sql.DB, m repomanager.RepositoryManager) *MemoryService {
	return &MemoryService{db: db, repomanager: m}
}

// Recall returns up to memoryLimit newest items, oldest first.
func (s *MemoryService) Recall(ctx context.Context, userID string) ([]models.MemoryItem, error) {
	repo := s.repomanager.Memory(s.db)

	items, err := repo.LastN(ctx, userID, memoryLimit)
	if err != nil {
		return nil, fmt.Errorf("error recalling memory: %w", err)
	}
	return items, nil
}

// Remember appends one item and trims the history back to the limit.
func (s *MemoryService) Remember(ctx context.Context, userID, content string) error {
	repo := s.repomanager.Memory(s.db)

	if _, err := repo.Add(ctx, userID, content); err != nil {
		return fmt.Errorf("error storing memory: %w", err)
	}
	if err := repo.Trim(ctx, userID, memoryLimit); err != nil {
		return fmt.Errorf("error trimming memory: %w", err)
	}
	return nil
}

// Reset wipes the user's taste history.
func (s *MemoryService) Reset(ctx context.Context, userID string) error {
	repo := s.repomanager.Memory(s.db)

	if err := repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("error clearing memory: %w", err)
	}
	return nil
}
