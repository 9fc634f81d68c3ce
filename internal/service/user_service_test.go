package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	revoked []string
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func newUserFixture() (*UserService, *mockUserRepo) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "ann@example.com", Name: "Ann"},
		"u2": {ID: "u2", Email: "bob@example.com", Name: "Bob"},
	}}
	return NewUserService(repo, validator.New(), zap.NewNop()), repo
}

func TestUserServiceGet(t *testing.T) {
	svc, _ := newUserFixture()

	user, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	_, err = svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdate(t *testing.T) {
	svc, repo := newUserFixture()
	name := "Anna"
	password := "new-secret"

	user, err := svc.Update(context.Background(), "u1", models.UpdateUserRequest{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Anna", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))
	assert.Equal(t, []string{"u1"}, repo.revoked)
}

func TestUserServiceUpdateEmailConflict(t *testing.T) {
	svc, _ := newUserFixture()
	email := "Bob@example.com"

	_, err := svc.Update(context.Background(), "u1", models.UpdateUserRequest{Email: &email})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	bad := "not-an-email"
	_, err = svc.Update(context.Background(), "u1", models.UpdateUserRequest{Email: &bad})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
