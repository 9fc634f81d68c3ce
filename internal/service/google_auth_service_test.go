package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type fakeGoogleUsers struct {
	mockAuthRepo
	byGoogleID map[string]*models.User
	updated    []*models.User
}

func (f *fakeGoogleUsers) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if user, ok := f.byGoogleID[googleID]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGoogleUsers) Update(ctx context.Context, user *models.User) error {
	f.updated = append(f.updated, user)
	return nil
}

func newGoogleFixture(users *fakeGoogleUsers, identity *models.GoogleIdentity) *GoogleAuthService {
	svc := NewGoogleAuthService(GoogleConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/callback"}, users, newAuthService(&users.mockAuthRepo), nil)
	svc.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		if code == "bad" {
			return nil, errors.New("invalid_grant")
		}
		return &oauth2.Token{AccessToken: "google-token"}, nil
	}
	svc.identity = func(ctx context.Context, token *oauth2.Token) (*models.GoogleIdentity, error) {
		return identity, nil
	}
	return svc
}

func TestGoogleAuthURL(t *testing.T) {
	svc := newGoogleFixture(&fakeGoogleUsers{}, nil)
	url := svc.AuthURL("state-123")
	assert.True(t, strings.HasPrefix(url, "https://accounts.google.com/"))
	assert.Contains(t, url, "state=state-123")
	assert.Contains(t, url, "client_id=id")
}

func TestGoogleCallbackCreatesUser(t *testing.T) {
	users := &fakeGoogleUsers{}
	svc := newGoogleFixture(users, &models.GoogleIdentity{ID: "g1", Email: "Ann@Example.com", Name: "Ann"})

	res, err := svc.Callback(context.Background(), "code", "", "")
	require.NoError(t, err)
	require.Len(t, users.created, 1)
	assert.Equal(t, "ann@example.com", users.created[0].Email)
	require.NotNil(t, users.created[0].GoogleID)
	assert.Equal(t, "g1", *users.created[0].GoogleID)
	assert.NotEmpty(t, res.AccessToken)
}

func TestGoogleCallbackLinksExistingEmail(t *testing.T) {
	users := &fakeGoogleUsers{}
	users.userByEmail = &models.User{ID: "u1", Email: "ann@example.com", Active: true}
	svc := newGoogleFixture(users, &models.GoogleIdentity{ID: "g1", Email: "ann@example.com"})

	res, err := svc.Callback(context.Background(), "code", "", "")
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
	require.Len(t, users.updated, 1)
	assert.Empty(t, users.created)
}

func TestGoogleCallbackRejectsBadCode(t *testing.T) {
	svc := newGoogleFixture(&fakeGoogleUsers{}, nil)

	_, err := svc.Callback(context.Background(), "bad", "", "")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Callback(context.Background(), "", "", "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
