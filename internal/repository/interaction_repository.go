package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

// InteractionRepository stores the assistant interaction log.
type InteractionRepository struct {
	db *sqlx.DB
}

// NewInteractionRepository creates a new instance of InteractionRepository.
func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create appends an interaction.
func (r *InteractionRepository) Create(ctx context.Context, interaction *models.AIInteraction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO ai_interactions (id, user_id, input_text, intent, entities, response_text, created_at) VALUES (:id, :user_id, :input_text, :intent, :entities, :response_text, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, interaction); err != nil {
		return fmt.Errorf("create interaction: %w", err)
	}
	return nil
}

// List returns a page of the user's interactions, newest first, with the total count.
func (r *InteractionRepository) List(ctx context.Context, filter models.InteractionFilter) ([]models.AIInteraction, int, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)+1))
		args = append(args, filter.EndDate.UTC())
	}
	if filter.Intent != "" {
		conditions = append(conditions, fmt.Sprintf("intent = $%d", len(args)+1))
		args = append(args, filter.Intent)
	}
	baseQuery := "FROM ai_interactions WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, user_id, input_text, intent, entities, response_text, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)
	items := []models.AIInteraction{}
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list interactions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count interactions: %w", err)
	}
	return items, total, nil
}
