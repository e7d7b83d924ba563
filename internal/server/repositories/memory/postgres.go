package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vizzyhq/vizzy/internal/dbx"
	"github.com/vizzyhq/vizzy/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, userID, content string) (*models.MemoryItem, error) {
	item := &models.MemoryItem{
		ID:      uuid.NewString(),
		UserID:  userID,
		Content: content,
	}

	query :=
		`INSERT INTO user_memory (id, user_id, content)
         VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.UserID, item.Content).Scan(&item.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) LastN(ctx context.Context, userID string, n int) ([]models.MemoryItem, error) {
	query :=
		`SELECT id, user_id, content, created_at FROM (
		    SELECT id, user_id, content, created_at FROM user_memory
		    WHERE user_id = $1
		    ORDER BY created_at DESC
		    LIMIT $2
		 ) recent
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, n)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.MemoryItem{}
	for rows.Next() {
		var m models.MemoryItem
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Trim(ctx context.Context, userID string, keep int) error {
	query :=
		`DELETE FROM user_memory
		 WHERE user_id = $1 AND id NOT IN (
		    SELECT id FROM user_memory
		    WHERE user_id = $1
		    ORDER BY created_at DESC
		    LIMIT $2
		 )`

	if _, err := r.db.ExecContext(ctx, query, userID, keep); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	query := `DELETE FROM user_memory WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
