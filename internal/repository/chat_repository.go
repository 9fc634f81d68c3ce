package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

// ChatRepository stores per-user chat history.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates a new instance of ChatRepository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// ListByUser returns the user's history oldest first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	const query = `SELECT id, user_id, role, content, created_at FROM chat_messages WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	messages := []models.ChatMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return messages, nil
}

// Append stores messages in one transaction, preserving their order.
func (r *ChatRepository) Append(ctx context.Context, messages ...*models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chat append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES (:id, :user_id, :role, :content, :created_at)`
	base := time.Now().UTC()
	for i, msg := range messages {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
		if _, err := tx.NamedExecContext(ctx, query, msg); err != nil {
			return fmt.Errorf("append chat message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chat append: %w", err)
	}
	return nil
}

// DeleteByUser clears the user's history.
func (r *ChatRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear chat messages: %w", err)
	}
	return nil
}
