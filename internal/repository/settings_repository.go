package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

// SettingsRepository persists per-user settings.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// FindByUserID returns the stored settings for userID.
func (r *SettingsRepository) FindByUserID(ctx context.Context, userID string) (*models.UserSettings, error) {
	const query = `SELECT id, user_id, timezone, language, created_at, updated_at FROM user_settings WHERE user_id = $1 LIMIT 1`
	var settings models.UserSettings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return &settings, nil
}

// Upsert inserts settings or replaces the timezone and language of the
// existing row for the same user.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.UserSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	const query = `INSERT INTO user_settings (id, user_id, timezone, language, created_at, updated_at) VALUES (:id, :user_id, :timezone, :language, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET timezone = EXCLUDED.timezone, language = EXCLUDED.language, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
