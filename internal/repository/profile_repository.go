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

// ProfileRepository persists user profiles. Each user has at most one.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUserID returns the profile for userID.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	const query = `SELECT id, user_id, name, surname, age, sex, description, hometown, created_at, updated_at FROM user_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

// Create inserts a profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	const query = `INSERT INTO user_profiles (id, user_id, name, surname, age, sex, description, hometown, created_at, updated_at) VALUES (:id, :user_id, :name, :surname, :age, :sex, :description, :hometown, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update overwrites the mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE user_profiles SET name = :name, surname = :surname, age = :age, sex = :sex, description = :description, hometown = :hometown, updated_at = :updated_at WHERE user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireAffected(res)
}
