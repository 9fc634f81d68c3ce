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

const userColumns = `id, email, name, password_hash, google_id, active, last_login, created_at, updated_at`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(ctx context.Context, column, value, op string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email", email, "find user by email")
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id", id, "find user by id")
}

// FindByGoogleID returns the user linked to a Google account.
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, "google_id", googleID, "find user by google id")
}

// UpdateLastLogin stamps a successful sign-in.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, ts)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return requireAffected(res)
}

// Create inserts an account. Accounts created through Google carry no
// password hash.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.UpdatedAt = time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}
	const query = `INSERT INTO users (id, email, name, password_hash, google_id, active, created_at, updated_at)
		VALUES (:id, :email, :name, :password_hash, :google_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update overwrites the account row, including the linked Google id.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, name = :name, password_hash = :password_hash,
		google_id = :google_id, active = :active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res)
}

const sessionColumns = `id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent`

// CreateRefreshToken stores the refresh half of a session.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO refresh_tokens (` + sessionColumns + `)
		VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken looks a session up by its opaque refresh token.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var session models.RefreshToken
	err := r.db.GetContext(ctx, &session, `SELECT `+sessionColumns+` FROM refresh_tokens WHERE token = $1 LIMIT 1`, token)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &session, nil
}

// RevokeRefreshToken closes a single session.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return r.revoke(ctx, "revoke refresh token", `id = $1`, id, revokedAt)
}

// RevokeUserRefreshTokens closes every open session of a user.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return r.revoke(ctx, "revoke user refresh tokens", `user_id = $1 AND revoked = FALSE`, userID, time.Now().UTC())
}

func (r *UserRepository) revoke(ctx context.Context, op, where, arg string, at time.Time) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE ` + where
	if _, err := r.db.ExecContext(ctx, query, arg, at); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
