package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vizzyhq/vizzy/internal/common"
	"github.com/vizzyhq/vizzy/internal/dbx"
	"github.com/vizzyhq/vizzy/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO conversations (id, user_id, title)
         VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		conv.ID, conv.UserID, conv.Title).Scan(&conv.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return conv, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	query :=
		`SELECT id, user_id, title, created_at FROM conversations
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query :=
		`SELECT id, user_id, title, created_at FROM conversations
		 WHERE id = $1
		 `

	conv := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return conv, nil
}

// Delete removes the conversation; messages and assets go with it via
// ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM conversations WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) AddMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO messages (id, conversation_id, role, text)
         VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.ConversationID, msg.Role, msg.Text).Scan(&msg.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) AddAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO assets (id, message_id, type, url, prompt_used, model_used)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		asset.ID, asset.MessageID, asset.Type, asset.URL, asset.PromptUsed, asset.ModelUsed).Scan(&asset.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return asset, nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	query :=
		`SELECT id, conversation_id, role, text, created_at FROM messages
		 WHERE conversation_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListAssets(ctx context.Context, conversationID string) ([]models.Asset, error) {
	query :=
		`SELECT a.id, a.message_id, a.type, a.url, a.prompt_used, a.model_used, a.created_at
		 FROM assets a
		 JOIN messages m ON m.id = a.message_id
		 WHERE m.conversation_id = $1
		 ORDER BY a.created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Asset{}
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.MessageID, &a.Type, &a.URL, &a.PromptUsed, &a.ModelUsed, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
